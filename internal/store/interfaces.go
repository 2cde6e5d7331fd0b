// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"encoding/json"

	"github.com/pmdworks/pmd-backend/models"
)

// UserUpdate is a partial update applied to a user record. Nil fields
// are left untouched.
type UserUpdate struct {
	PasswordHash *string
	FullName     *string
	Phone        *string
	IsActive     *bool
	RoleID       *int64
}

// UserRepository persists and retrieves user accounts. Lookups eagerly
// join the role and organization tables so callers receive a fully
// hydrated record in one round trip.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) error
}

// RoleRepository retrieves and maintains role records.
type RoleRepository interface {
	FindRoleByName(ctx context.Context, name string) (models.Role, error)
	FindRoleByID(ctx context.Context, id int64) (models.Role, error)
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	UpdateRolePermissions(ctx context.Context, id int64, permissions json.RawMessage) error
}

// OrganizationRepository retrieves and maintains organization (tenant)
// records.
type OrganizationRepository interface {
	FindOrganizationByID(ctx context.Context, id int64) (models.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (models.Organization, error)
	CreateOrganization(ctx context.Context, org models.Organization) (models.Organization, error)
}

// AuditRepository persists audit records and serves the listing and
// device-change queries.
type AuditRepository interface {
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
	FindLastLoginEvent(ctx context.Context, userID int64) (models.AuditLog, error)
	ListAuditLogs(ctx context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error)
}
