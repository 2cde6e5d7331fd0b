// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import "time"

// Rejection reason codes returned alongside 401 responses on login.
// The split between USER_NOT_FOUND and INVALID_PASSWORD is a deliberate
// debuggability tradeoff; inactive accounts report USER_NOT_FOUND so
// they are indistinguishable from absent ones.
const (
	ReasonUserNotFound    = "USER_NOT_FOUND"
	ReasonInvalidPassword = "INVALID_PASSWORD"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	RoleID   *int64 `json:"role_id,omitempty"`
}

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	User         *Principal `json:"user"`
}

// RefreshResponse is returned by GET /api/auth/refresh. The snake_case
// token keys are part of the published contract.
type RefreshResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *Principal `json:"user"`
}

// ErrorResponse is the generic error body. Reason carries a machine
// readable code where the contract defines one.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// BlockedResponse is the 429 body returned while an identifier is
// brute-force blocked.
type BlockedResponse struct {
	Error            string    `json:"error"`
	RemainingTime    int64     `json:"remainingTime"`    // milliseconds
	RemainingMinutes int       `json:"remainingMinutes"` // rounded up
	RetryAfter       time.Time `json:"retryAfter"`
}

// CSRFTokenResponse is returned by GET /auth/csrf-token.
type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// AuditListResponse is the paginated audit listing body.
type AuditListResponse struct {
	Items []AuditLog `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
}

// BruteForceStatus describes one identifier's attempt record for the
// administrative endpoints.
type BruteForceStatus struct {
	Identifier        string     `json:"identifier"`
	Attempts          int        `json:"attempts"`
	RemainingAttempts int        `json:"remainingAttempts"`
	Blocked           bool       `json:"blocked"`
	BlockedUntil      *time.Time `json:"blockedUntil,omitempty"`
	FirstAttempt      time.Time  `json:"firstAttempt"`
	LastAttempt       time.Time  `json:"lastAttempt"`
}
