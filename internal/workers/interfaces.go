// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface, a Workers aggregate that runs
// multiple workers in a unified way, and the janitor worker sweeping
// expired brute-force records.
package workers

// Worker is the interface implemented by every background worker.
//
// Run starts the worker's execution. Implementations are expected to
// spawn their long-running loop internally and return; Stop requests a
// graceful halt.
type Worker interface {
	Run()
	Stop()
}
