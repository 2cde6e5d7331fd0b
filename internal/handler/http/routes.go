// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pmdworks/pmd-backend/internal/metrics"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(h.cfg.Server.RequestTimeout))
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)
	router.Use(h.withThrottle)
	router.Use(h.withCSRF)

	router.Get("/health", h.health)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Get("/auth/csrf-token", h.csrfToken)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/register", h.register)
		r.Get("/api/auth/refresh", h.refresh)
	})

	// routes behind JWT authentication with per-request permission
	// re-derivation
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.withAudit)

		r.Get("/api/auth/me", h.me)
		r.Post("/api/auth/logout", h.logout)

		r.Get("/api/auth/brute-force-status", h.bruteForceStatus)
		r.Get("/api/auth/brute-force-list", h.bruteForceList)
		r.Post("/api/auth/brute-force-reset", h.bruteForceReset)
		r.Post("/api/auth/brute-force-reset-all", h.bruteForceResetAll)

		r.Get("/api/audit", h.requirePermission("audit.read", h.listAuditLogs))
	})

	return router
}
