// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, serverURL string) *httpOperatorAdapter {
	t.Helper()
	log := logger.NewLogger("test")

	a, err := NewHTTPOperatorAdapter(serverURL, 5*time.Second, log)
	require.NoError(t, err)
	return a.(*httpOperatorAdapter)
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	want := models.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &models.Principal{ID: 1, Email: "admin@example.com"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@example.com", req.Email)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Login(context.Background(), "admin@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, want.AccessToken, got.AccessToken)
	assert.Equal(t, want.AccessToken, a.Token())
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials","reason":"INVALID_PASSWORD"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), "admin@example.com", "wrong")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_Blocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"too many failed login attempts"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), "admin@example.com", "wrong")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

// ── BruteForceStatus ─────────────────────────────────────────────────────────

func TestBruteForceStatus_Success(t *testing.T) {
	want := models.BruteForceStatus{Identifier: "alice@example.com", Attempts: 4, RemainingAttempts: 6}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/auth/brute-force-status", r.URL.Path)
		assert.Equal(t, "alice@example.com", r.URL.Query().Get("identifier"))
		assert.Equal(t, "Bearer sometoken", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	got, err := a.BruteForceStatus(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, want.Identifier, got.Identifier)
	assert.Equal(t, want.Attempts, got.Attempts)
}

func TestBruteForceStatus_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token is expired"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.BruteForceStatus(context.Background(), "alice@example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── BruteForceList ───────────────────────────────────────────────────────────

func TestBruteForceList_Success(t *testing.T) {
	want := []models.BruteForceStatus{
		{Identifier: "alice@example.com", Attempts: 2},
		{Identifier: "bob@example.com", Attempts: 10, Blocked: true},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/brute-force-list", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	got, err := a.BruteForceList(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[1].Identifier, got[1].Identifier)
	assert.True(t, got[1].Blocked)
}

// ── BruteForceReset ──────────────────────────────────────────────────────────

func TestBruteForceReset_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/brute-force-reset", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req["identifier"])

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	err := a.BruteForceReset(context.Background(), "alice@example.com")
	require.NoError(t, err)
}

func TestBruteForceReset_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("identifier is required"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	err := a.BruteForceReset(context.Background(), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestBruteForceResetAll_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/brute-force-reset-all", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	require.NoError(t, a.BruteForceResetAll(context.Background()))
}

// ── AuditLogs ────────────────────────────────────────────────────────────────

func TestAuditLogs_Success(t *testing.T) {
	want := models.AuditListResponse{
		Items: []models.AuditLog{{Module: "users", Action: "delete"}},
		Page:  2,
		Limit: 25,
		Total: 51,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/audit", r.URL.Path)
		assert.Equal(t, "users", r.URL.Query().Get("module"))
		assert.Equal(t, "delete", r.URL.Query().Get("action"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	got, err := a.AuditLogs(context.Background(), AuditQuery{Module: "users", Action: "delete", Page: 2, Limit: 25})

	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, want.Total, got.Total)
}

func TestAuditLogs_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("permission denied"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	a.SetToken("sometoken")

	_, err := a.AuditLogs(context.Background(), AuditQuery{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

// ── normalizeBaseURL ─────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", "http://localhost:8080", false},
		{"no scheme", "localhost:8080", "http://localhost:8080", false},
		{"trailing slash", "http://localhost:8080/", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
