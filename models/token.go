// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token types embedded in the token_type claim. Refresh endpoints accept
// either type as the bearer credential; the distinction exists for audit
// and debugging, not access control.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT claim set issued by the authentication service.
//
// The payload deliberately does NOT carry permissions: they are re-derived
// from the database on every request so that role edits take effect
// without waiting for token expiry.
type Claims struct {
	// Email mirrors the account email at issuance time.
	Email string `json:"email"`

	// Role is the role name at issuance time. Informational only; the
	// auth middleware always reloads the current role from the database.
	Role string `json:"role,omitempty"`

	// OrganizationID is the tenant reference, when the user has one.
	OrganizationID *int64 `json:"organizationId,omitempty"`

	// TokenType is "access" or "refresh".
	TokenType string `json:"tokenType"`

	jwt.RegisteredClaims
}

// TokenPair bundles the two independently expiring JWTs issued on login,
// registration, and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
