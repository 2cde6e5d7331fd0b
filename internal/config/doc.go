// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package config loads the backend configuration from environment
// variables, command-line flags, and an optional JSON file, merging them
// in that priority order. Use GetStructuredConfig as the single entry
// point; it returns a validated *StructuredConfig with defaults applied.
package config
