// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEmailAlreadyExists is returned when an attempt to create a user
	// fails because an account with the same email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least
	// one user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrNoRoleWasFound is returned when a role lookup by name or ID
	// produces an empty result set.
	ErrNoRoleWasFound = errors.New("no role was found")

	// ErrNoOrganizationWasFound is returned when an organization lookup
	// produces an empty result set.
	ErrNoOrganizationWasFound = errors.New("no organization was found")

	// ErrNoAuditLogWasFound is returned when an audit lookup (e.g. the
	// last login event for a user) produces an empty result set.
	ErrNoAuditLogWasFound = errors.New("no audit log was found")

	// ErrUserNotUpdated is returned when an UPDATE targeting a user by ID
	// affects zero rows.
	ErrUserNotUpdated = errors.New("user was not updated")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. an update with no fields to set).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
