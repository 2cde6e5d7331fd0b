// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package workers

import (
	"github.com/pmdworks/pmd-backend/internal/bruteforce"
	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
)

// Workers aggregates the application's background workers.
type Workers struct {
	workers []Worker
}

// NewWorkers assembles the worker set from the configuration.
func NewWorkers(guard *bruteforce.Guard, cfg config.Workers, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{
			newJanitor(guard, cfg.SweepInterval, logger),
		},
	}
}

// Run starts every worker.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop requests a graceful halt of every worker.
func (w *Workers) Stop() {
	for _, worker := range w.workers {
		worker.Stop()
	}
}
