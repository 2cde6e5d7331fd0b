// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package http implements the HTTP transport layer of the backend.
//
// It exposes route wiring, request handlers, and middleware used by the
// REST API. Cross-cutting concerns such as authentication, brute-force
// protection, CSRF verification, request tracing, access logging,
// throttling, metrics, and audit capture are handled in this package
// before requests are delegated to the service layer.
package http
