// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_HealthEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.handler.Init()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestInit_ProtectedRoutesRequireAuth(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.handler.Init()

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/audit"},
		{http.MethodGet, "/api/auth/brute-force-list"},
		{http.MethodPost, "/api/auth/brute-force-reset-all"},
	}

	for _, tc := range protected {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s must require authentication", tc.method, tc.path)
	}
}

func TestInit_CsrfTokenEndpointIsOpen(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.handler.Init()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInit_TraceIDHeaderSet(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.handler.Init()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))

	// a caller-supplied trace id is echoed back
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(traceIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get(traceIDHeader))
}
