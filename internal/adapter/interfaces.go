// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package adapter provides transport-layer abstractions for talking to a
// running PMD backend from operator tooling.
//
// The primary abstraction is [OperatorAdapter], which decouples command-line
// tools from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPOperatorAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrForbidden] for 403).
package adapter

import (
	"context"

	"github.com/pmdworks/pmd-backend/models"
)

// AuditQuery narrows an audit listing request. Zero values mean "no
// filter"; Page and Limit fall back to the server defaults when zero.
type AuditQuery struct {
	Module    string
	Action    string
	IPAddress string
	UserID    int64
	Page      int
	Limit     int
}

// OperatorAdapter defines transport-agnostic communication with the PMD
// backend's operator surface. Implementations are responsible for
// serialisation, authentication header management, and mapping
// transport-level errors to the sentinel values defined in this package.
type OperatorAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if none has been set.
	Token() string

	// Login authenticates against the backend with email and password. On
	// success the access token is stored via SetToken and the full login
	// response is returned.
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)

	// BruteForceStatus fetches one identifier's failed-login record.
	BruteForceStatus(ctx context.Context, identifier string) (models.BruteForceStatus, error)

	// BruteForceList fetches every identifier the guard currently tracks.
	BruteForceList(ctx context.Context) ([]models.BruteForceStatus, error)

	// BruteForceReset clears one identifier's record, lifting any block.
	BruteForceReset(ctx context.Context, identifier string) error

	// BruteForceResetAll drops every tracked identifier.
	BruteForceResetAll(ctx context.Context) error

	// AuditLogs fetches a page of audit records matching query.
	AuditLogs(ctx context.Context, query AuditQuery) (models.AuditListResponse, error)
}
