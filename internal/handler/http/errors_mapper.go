// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"errors"
	"net/http"

	"github.com/pmdworks/pmd-backend/internal/service"
	"github.com/pmdworks/pmd-backend/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrUserNotFound:            http.StatusUnauthorized,
	service.ErrInvalidPassword:         http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrEmailAlreadyTaken:       http.StatusConflict,

	store.ErrEmailAlreadyExists:      http.StatusConflict,
	store.ErrNoUserWasFound:          http.StatusNotFound,
	store.ErrNoRoleWasFound:          http.StatusNotFound,
	store.ErrNoOrganizationWasFound:  http.StatusNotFound,
	store.ErrNoAuditLogWasFound:      http.StatusNotFound,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
