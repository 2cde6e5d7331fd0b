// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import "errors"

var (
	// ErrEnvConfigLoad indicates environment variable parsing failed.
	ErrEnvConfigLoad = errors.New("failed to load config from environment")

	// ErrFlagConfigLoad indicates command-line flag parsing failed.
	ErrFlagConfigLoad = errors.New("failed to load config from flags")

	// ErrJSONConfigLoad indicates the JSON config file could not be read
	// or parsed.
	ErrJSONConfigLoad = errors.New("failed to load config from JSON file")

	// ErrConfigMerge indicates merging two configuration sources failed.
	ErrConfigMerge = errors.New("failed to merge configuration sources")

	// ErrInvalidConfig indicates the merged configuration violates a
	// cross-field constraint.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidAddress indicates a malformed host:port value.
	ErrInvalidAddress = errors.New("invalid network address")

	// ErrInvalidDuration indicates a JSON duration that is neither a
	// string nor a number.
	ErrInvalidDuration = errors.New("invalid duration value")
)
