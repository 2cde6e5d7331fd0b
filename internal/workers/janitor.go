// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package workers

import (
	"sync"
	"time"

	"github.com/pmdworks/pmd-backend/internal/bruteforce"
	"github.com/pmdworks/pmd-backend/internal/logger"
)

const defaultSweepInterval = 5 * time.Minute

// janitor periodically sweeps expired brute-force records. The guard's
// lazy expiry already guarantees correctness; the sweep only bounds
// memory held for identifiers that never come back.
type janitor struct {
	guard    *bruteforce.Guard
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	logger *logger.Logger
}

func newJanitor(guard *bruteforce.Guard, interval time.Duration, logger *logger.Logger) *janitor {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &janitor{
		guard:    guard,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Run launches the sweep loop in its own goroutine and returns.
func (j *janitor) Run() {
	j.logger.Info().Dur("interval", j.interval).Msg("brute-force janitor started")

	go func() {
		defer close(j.done)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := j.guard.Sweep(); removed > 0 {
					j.logger.Debug().Int("removed", removed).Msg("swept expired brute-force records")
				}
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit.
func (j *janitor) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	<-j.done
	j.logger.Info().Msg("brute-force janitor stopped")
}
