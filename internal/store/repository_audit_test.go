// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

func newTestAuditRepo(t *testing.T) (*auditRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &auditRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

var auditColumns = []string{
	"id", "user_id", "action", "module", "entity_id", "entity_type",
	"previous_value", "new_value", "ip_address", "user_agent", "device_info",
	"criticality", "created_at",
}

func TestInsertAuditLog_Success(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	userID := int64(1)
	entry := models.AuditLog{
		ID:          "0192d7e0-0000-7000-8000-000000000001",
		UserID:      &userID,
		Action:      models.AuditActionLogin,
		Module:      "auth",
		IPAddress:   "203.0.113.9",
		UserAgent:   "curl/8.4.0",
		DeviceInfo:  []byte(`{"deviceType":"unknown"}`),
		Criticality: models.CriticalityHigh,
		CreatedAt:   time.Now(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.InsertAuditLog(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsertAuditLog_ExecError(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnError(errors.New("db network error"))

	err := repo.InsertAuditLog(context.Background(), models.AuditLog{ID: "x"})
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}

func TestFindLastLoginEvent_Success(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	userID := int64(1)
	now := time.Now()

	rows := sqlmock.NewRows(auditColumns).AddRow(
		"0192d7e0-0000-7000-8000-000000000001", userID, models.AuditActionLogin, "auth",
		nil, nil, nil, nil, "203.0.113.9", "curl/8.4.0",
		[]byte(`{"deviceType":"unknown"}`), models.CriticalityHigh, now,
	)

	mock.ExpectQuery("SELECT id, user_id, action").
		WithArgs(userID).
		WillReturnRows(rows)

	entry, err := repo.FindLastLoginEvent(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Action != models.AuditActionLogin {
		t.Errorf("expected login action, got %q", entry.Action)
	}
	if entry.UserID == nil || *entry.UserID != userID {
		t.Errorf("expected user id %d, got %v", userID, entry.UserID)
	}
}

func TestFindLastLoginEvent_NeverLoggedIn(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, action").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(auditColumns))

	_, err := repo.FindLastLoginEvent(context.Background(), 7)
	if !errors.Is(err, ErrNoAuditLogWasFound) {
		t.Fatalf("expected ErrNoAuditLogWasFound, got %v", err)
	}
}

func TestListAuditLogs_FilterAndPagination(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	now := time.Now()
	userID := int64(3)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("auth", userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	rows := sqlmock.NewRows(auditColumns).
		AddRow("id-2", userID, "post", "auth", nil, nil, nil, nil, "203.0.113.9", "curl/8.4.0", nil, models.CriticalityMedium, now).
		AddRow("id-1", userID, "post", "auth", nil, nil, nil, nil, "203.0.113.9", "curl/8.4.0", nil, models.CriticalityMedium, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT id, user_id, action").
		WithArgs("auth", userID).
		WillReturnRows(rows)

	entries, total, err := repo.ListAuditLogs(context.Background(), models.AuditListFilter{
		Module: "auth",
		UserID: &userID,
		Page:   2,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestListAuditLogs_CountError(t *testing.T) {
	repo, mock, db := newTestAuditRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(errors.New("db network error"))

	_, _, err := repo.ListAuditLogs(context.Background(), models.AuditListFilter{})
	if !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
}

func TestBuildAuditListQuery_Defaults(t *testing.T) {
	query, args, err := buildAuditListQuery(models.AuditListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("expected no args for empty filter, got %v", args)
	}
	for _, want := range []string{"ORDER BY created_at DESC", "LIMIT 50", "OFFSET 0"} {
		if !strings.Contains(query, want) {
			t.Errorf("expected query to contain %q, got %q", want, query)
		}
	}
}
