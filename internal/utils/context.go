// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package utils provides general-purpose helper utilities used across
// different parts of the application: type-safe context keys, HTTP
// response writing, JWT token generation and validation, and UUID
// generation.
package utils

import (
	"context"

	"github.com/pmdworks/pmd-backend/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// PrincipalCtxKey is the key used to store the authenticated principal
// in the request context. Set by the authentication middleware after the
// access token is verified and the principal re-derived from storage.
var PrincipalCtxKey = contextKey("principal")

// GetPrincipalFromContext retrieves the authenticated principal from the
// context.
//
// Returns the principal and an ok flag:
//   - ok == true:  a principal is attached and has the correct type
//   - ok == false: the request is unauthenticated
func GetPrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	principal, ok := ctx.Value(PrincipalCtxKey).(*models.Principal)
	return principal, ok && principal != nil
}

// SetPrincipalInContext attaches the authenticated principal to ctx.
func SetPrincipalInContext(ctx context.Context, principal *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalCtxKey, principal)
}
