// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"

	"github.com/pmdworks/pmd-backend/models"
)

// RequestMeta carries the transport-level facts the service layer needs
// for auditing: where the request came from and what client sent it.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuthService implements the credential and token lifecycle: login,
// registration, refresh, logout, and the per-request principal
// re-derivation used by the auth middleware.
type AuthService interface {
	Login(ctx context.Context, email, password string, meta RequestMeta) (*models.Principal, models.TokenPair, error)
	Register(ctx context.Context, req models.RegisterRequest, meta RequestMeta) (*models.Principal, models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Principal, models.TokenPair, error)

	// LoadPrincipal re-derives the principal from storage, including the
	// normalized permission set. Absent and inactive users both yield
	// ErrUserNotFound.
	LoadPrincipal(ctx context.Context, userID int64) (*models.Principal, error)

	// Logout records the audit event and never fails: a logout request
	// always succeeds from the client's point of view.
	Logout(ctx context.Context, principal *models.Principal, meta RequestMeta)

	// ParseToken verifies a JWT and returns its claims and subject.
	ParseToken(tokenString string) (*models.Claims, int64, error)
}

// AuthEvent describes one authentication outcome for the audit trail.
type AuthEvent struct {
	// Action is one of the models.AuditAction* constants.
	Action string

	// UserID is nil for failed logins against unknown emails.
	UserID *int64

	// Email is the attempted login identifier, recorded for failures.
	Email string

	// Reason is the rejection reason code for failed logins.
	Reason string

	Meta RequestMeta
}

// AuditService persists audit records. Recording never propagates
// failures to the caller: a broken audit sink must not break the
// operation being audited.
type AuditService interface {
	// Record sanitizes and persists one generic audit record.
	Record(ctx context.Context, entry models.AuditLog)

	// RecordAuthEvent persists a login, failed-login, or logout record,
	// annotating successful logins with device-change detection.
	RecordAuthEvent(ctx context.Context, event AuthEvent)

	ListAuditLogs(ctx context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error)
}

// BootstrapService repairs the designated administrator account and its
// role at startup.
type BootstrapService interface {
	EnsureAdminUser(ctx context.Context) error
}
