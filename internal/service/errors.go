// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"errors"

	"github.com/pmdworks/pmd-backend/models"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrUserNotFound covers both truly absent accounts and inactive
	// ones: an inactive account must be indistinguishable from a missing
	// one everywhere outside the audit trail.
	ErrUserNotFound = errors.New("user not found")

	ErrInvalidPassword = errors.New("invalid password")

	ErrEmailAlreadyTaken = errors.New("email already taken")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
)

// ReasonForError maps an authentication failure to its machine-readable
// rejection reason code, or "" when the error carries none.
func ReasonForError(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return models.ReasonUserNotFound
	case errors.Is(err, ErrInvalidPassword):
		return models.ReasonInvalidPassword
	default:
		return ""
	}
}
