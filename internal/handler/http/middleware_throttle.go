// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"
	"sync"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"golang.org/x/time/rate"
)

// relaxedThrottleFactor multiplies the configured limits outside
// production so local development and test runs are never throttled.
const relaxedThrottleFactor = 10

// ipThrottle is a per-IP token-bucket limiter. This is transport-level
// backpressure against bursts from one address; the stateful
// BruteForceGuard handles credential abuse separately.
type ipThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

func newIPThrottle(rps float64, burst int) *ipThrottle {
	return &ipThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (t *ipThrottle) allow(ip string) bool {
	t.mu.Lock()
	limiter, ok := t.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[ip] = limiter
	}
	t.mu.Unlock()
	return limiter.Allow()
}

// withThrottle rejects requests exceeding the per-IP rate with 429.
func (h *Handler) withThrottle(next http.Handler) http.Handler {
	rps := h.cfg.Server.RateLimitRPS
	burst := h.cfg.Server.RateLimitBurst
	if !h.cfg.IsProduction() {
		rps *= relaxedThrottleFactor
		burst *= relaxedThrottleFactor
	}
	throttle := newIPThrottle(rps, burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !throttle.allow(ip) {
			logger.FromRequest(r).Warn().Str("ip", ip).Msg("request rate limit exceeded")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
