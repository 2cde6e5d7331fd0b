// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package bruteforce implements a per-identifier failed-login counter
// with a sliding window and a time-boxed block.
//
// State is process-local: horizontal scaling without a shared backing
// store means limits are enforced per instance. The Guard is an
// explicitly constructed, injectable component with no package-level
// state, so a shared store can replace the map without touching call
// sites.
package bruteforce

import (
	"sort"
	"sync"
	"time"

	"github.com/pmdworks/pmd-backend/models"
)

// Default protection parameters.
const (
	DefaultMaxAttempts    = 10
	DefaultWindowDuration = time.Hour
	DefaultBlockDuration  = 15 * time.Minute
)

// record tracks failed attempts for one identifier. Guarded by Guard.mu;
// never handed out to callers.
type record struct {
	count        int
	firstAttempt time.Time
	lastAttempt  time.Time
	blockedUntil *time.Time
}

// Guard is a concurrency-safe failed-attempt tracker. All operations on
// a single identifier are atomic under the internal mutex, so a blocked
// check can never race a concurrent reset into a bypass.
type Guard struct {
	mu       sync.Mutex
	attempts map[string]*record

	maxAttempts    int
	windowDuration time.Duration
	blockDuration  time.Duration

	// now is the clock source; replaceable in tests.
	now func() time.Time
}

// New constructs a Guard. Non-positive parameters fall back to the
// package defaults.
func New(maxAttempts int, windowDuration, blockDuration time.Duration) *Guard {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if windowDuration <= 0 {
		windowDuration = DefaultWindowDuration
	}
	if blockDuration <= 0 {
		blockDuration = DefaultBlockDuration
	}
	return &Guard{
		attempts:       make(map[string]*record),
		maxAttempts:    maxAttempts,
		windowDuration: windowDuration,
		blockDuration:  blockDuration,
		now:            time.Now,
	}
}

// RecordFailedAttempt registers one failed login for the identifier.
// If the sliding window has elapsed since the first recorded attempt the
// counter restarts at one; reaching the attempt ceiling sets a block.
func (g *Guard) RecordFailedAttempt(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	rec, ok := g.attempts[identifier]
	if !ok {
		rec = &record{firstAttempt: now}
		g.attempts[identifier] = rec
	}

	if now.Sub(rec.firstAttempt) > g.windowDuration {
		rec.count = 0
		rec.firstAttempt = now
		rec.blockedUntil = nil
	}

	rec.count++
	rec.lastAttempt = now

	if rec.count >= g.maxAttempts {
		until := now.Add(g.blockDuration)
		rec.blockedUntil = &until
	}
}

// RecordSuccessfulAttempt clears the identifier entirely: a successful
// login is a full reset, not a decrement.
func (g *Guard) RecordSuccessfulAttempt(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, identifier)
}

// IsBlocked reports whether the identifier is currently blocked.
// An expired block is deleted on observation (lazy expiry) and reported
// as not blocked.
func (g *Guard) IsBlocked(identifier string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok || rec.blockedUntil == nil {
		return false
	}

	if !g.now().Before(*rec.blockedUntil) {
		delete(g.attempts, identifier)
		return false
	}

	return true
}

// RemainingBlockTime returns how long the identifier stays blocked, or
// zero when it is not blocked.
func (g *Guard) RemainingBlockTime(identifier string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok || rec.blockedUntil == nil {
		return 0
	}

	remaining := rec.blockedUntil.Sub(g.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AttemptCount returns the current failed-attempt count, lazily
// resetting it when the sliding window has elapsed.
func (g *Guard) AttemptCount(identifier string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.attempts[identifier]
	if !ok {
		return 0
	}

	if g.now().Sub(rec.firstAttempt) > g.windowDuration {
		delete(g.attempts, identifier)
		return 0
	}

	return rec.count
}

// RemainingAttempts returns how many more failures the identifier may
// accumulate before being blocked.
func (g *Guard) RemainingAttempts(identifier string) int {
	remaining := g.maxAttempts - g.AttemptCount(identifier)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetBlock unconditionally deletes the identifier's record.
// Administrative override.
func (g *Guard) ResetBlock(identifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, identifier)
}

// ResetAllBlocks drops every tracked identifier.
func (g *Guard) ResetAllBlocks() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = make(map[string]*record)
}

// Status returns the identifier's current state for the administrative
// status endpoint. Reads share the lazy semantics of AttemptCount.
func (g *Guard) Status(identifier string) models.BruteForceStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusLocked(identifier)
}

// Snapshot lists every tracked identifier, ordered by identifier, for
// the administrative list endpoint.
func (g *Guard) Snapshot() []models.BruteForceStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]models.BruteForceStatus, 0, len(g.attempts))
	for identifier := range g.attempts {
		out = append(out, g.statusLocked(identifier))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// Sweep removes records whose block has expired or whose window elapsed
// with no block set, and returns how many were dropped. Run periodically
// by the janitor worker; purely a memory bound, the lazy checks above
// already guarantee correctness without it.
func (g *Guard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for identifier, rec := range g.attempts {
		expired := rec.blockedUntil != nil && !now.Before(*rec.blockedUntil)
		stale := rec.blockedUntil == nil && now.Sub(rec.firstAttempt) > g.windowDuration
		if expired || stale {
			delete(g.attempts, identifier)
			removed++
		}
	}
	return removed
}

func (g *Guard) statusLocked(identifier string) models.BruteForceStatus {
	status := models.BruteForceStatus{Identifier: identifier, RemainingAttempts: g.maxAttempts}

	rec, ok := g.attempts[identifier]
	if !ok {
		return status
	}

	now := g.now()
	if now.Sub(rec.firstAttempt) <= g.windowDuration {
		status.Attempts = rec.count
		status.RemainingAttempts = max(g.maxAttempts-rec.count, 0)
	}
	status.FirstAttempt = rec.firstAttempt
	status.LastAttempt = rec.lastAttempt
	if rec.blockedUntil != nil && now.Before(*rec.blockedUntil) {
		status.Blocked = true
		status.BlockedUntil = rec.blockedUntil
	}
	return status
}
