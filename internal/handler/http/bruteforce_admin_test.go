// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pmdworks/pmd-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBruteForceStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.guard.RecordFailedAttempt("203.0.113.7")
	f.guard.RecordFailedAttempt("203.0.113.7")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/brute-force-status?identifier=203.0.113.7", nil)
	rec := httptest.NewRecorder()

	f.handler.bruteForceStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.BruteForceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "203.0.113.7", status.Identifier)
	assert.Equal(t, 2, status.Attempts)
	assert.Equal(t, 1, status.RemainingAttempts)
	assert.False(t, status.Blocked)
}

func TestBruteForceStatus_MissingIdentifier(t *testing.T) {
	f := newHandlerFixture(t)

	rec := httptest.NewRecorder()
	f.handler.bruteForceStatus(rec, httptest.NewRequest(http.MethodGet, "/api/auth/brute-force-status", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBruteForceList(t *testing.T) {
	f := newHandlerFixture(t)
	f.guard.RecordFailedAttempt("203.0.113.7")
	f.guard.RecordFailedAttempt("203.0.113.8")

	rec := httptest.NewRecorder()
	f.handler.bruteForceList(rec, httptest.NewRequest(http.MethodGet, "/api/auth/brute-force-list", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.BruteForceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "203.0.113.7", list[0].Identifier)
	assert.Equal(t, "203.0.113.8", list[1].Identifier)
}

func TestBruteForceReset(t *testing.T) {
	f := newHandlerFixture(t)
	for i := 0; i < 3; i++ {
		f.guard.RecordFailedAttempt("203.0.113.7")
	}
	require.True(t, f.guard.IsBlocked("203.0.113.7"))

	body := `{"identifier": "203.0.113.7"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/brute-force-reset", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.handler.bruteForceReset(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.guard.IsBlocked("203.0.113.7"))
}

func TestBruteForceResetAll(t *testing.T) {
	f := newHandlerFixture(t)
	f.guard.RecordFailedAttempt("203.0.113.7")
	f.guard.RecordFailedAttempt("203.0.113.8")

	rec := httptest.NewRecorder()
	f.handler.bruteForceResetAll(rec, httptest.NewRequest(http.MethodPost, "/api/auth/brute-force-reset-all", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.guard.Snapshot())
}

func TestListAuditLogs(t *testing.T) {
	f := newHandlerFixture(t)
	f.audit.listFn = func(_ context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error) {
		assert.Equal(t, "works", filter.Module)
		assert.Equal(t, "login", filter.Action)
		assert.Equal(t, 2, filter.Page)
		assert.Equal(t, 25, filter.Limit)
		require.NotNil(t, filter.UserID)
		assert.Equal(t, int64(7), *filter.UserID)
		return []models.AuditLog{{ID: "r1", Action: "login"}}, 41, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit?module=works&action=login&page=2&limit=25&user_id=7", nil)
	rec := httptest.NewRecorder()

	f.handler.listAuditLogs(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AuditListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 41, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 25, resp.Limit)
}

func TestListAuditLogs_DefaultPagination(t *testing.T) {
	f := newHandlerFixture(t)
	f.audit.listFn = func(_ context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error) {
		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 50, filter.Limit)
		assert.Nil(t, filter.UserID)
		return nil, 0, nil
	}

	rec := httptest.NewRecorder()
	f.handler.listAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
