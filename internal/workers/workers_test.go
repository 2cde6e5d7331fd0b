// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package workers

import (
	"testing"
	"time"

	"github.com/pmdworks/pmd-backend/internal/bruteforce"
	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
)

// mockWorker tracks how many times Run and Stop were called.
type mockWorker struct {
	runCount  int
	stopCount int
}

func (m *mockWorker) Run()  { m.runCount++ }
func (m *mockWorker) Stop() { m.stopCount++ }

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}

	ws := &Workers{workers: []Worker{w1, w2}}
	ws.Run()
	ws.Stop()

	for i, w := range []*mockWorker{w1, w2} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
		if w.stopCount != 1 {
			t.Errorf("worker[%d]: expected stopCount=1, got %d", i, w.stopCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
	ws.Stop()
}

func TestJanitor_SweepsExpiredRecords(t *testing.T) {
	guard := bruteforce.New(10, time.Millisecond, time.Millisecond)
	guard.RecordFailedAttempt("stale@example.com")

	j := newJanitor(guard, 5*time.Millisecond, logger.Nop())
	j.Run()

	// Snapshot keeps listing the record until the sweep drops it; the
	// lazy per-read expiry never removes entries on its own here.
	deadline := time.After(2 * time.Second)
	for len(guard.Snapshot()) != 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never swept the stale record")
		case <-time.After(5 * time.Millisecond):
		}
	}

	j.Stop()
}

func TestJanitor_StopIsIdempotent(t *testing.T) {
	j := newJanitor(bruteforce.New(10, time.Hour, time.Hour), time.Hour, logger.Nop())
	j.Run()
	j.Stop()
	j.Stop()
}

func TestNewWorkers_DefaultsInterval(t *testing.T) {
	ws := NewWorkers(bruteforce.New(10, time.Hour, time.Hour), config.Workers{}, logger.Nop())
	if len(ws.workers) != 1 {
		t.Fatalf("expected one worker, got %d", len(ws.workers))
	}

	ws.Run()
	ws.Stop()
}
