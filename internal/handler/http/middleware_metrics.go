// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pmdworks/pmd-backend/internal/metrics"
)

// withMetrics records request counts, latencies, and the in-flight
// gauge. The route pattern is resolved after the handler runs so chi has
// already matched the request, keeping the path label low-cardinality.
func (h *Handler) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestStarted()
		start := time.Now()

		mw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(mw, r)

		path := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		metrics.ObserveHTTPRequest(r.Method, path, mw.status, time.Since(start))
		metrics.RequestFinished()
	})
}
