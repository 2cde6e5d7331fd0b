// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import "github.com/pmdworks/pmd-backend/internal/logger"

// Repositories bundles every repository behind one value so the service
// layer takes a single dependency.
type Repositories struct {
	UserRepository         UserRepository
	RoleRepository         RoleRepository
	OrganizationRepository OrganizationRepository
	AuditRepository        AuditRepository
}

// NewRepositories wires all PostgreSQL-backed repositories onto the
// given connection.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db, log),
		RoleRepository:         NewRoleRepository(db, log),
		OrganizationRepository: NewOrganizationRepository(db, log),
		AuditRepository:        NewAuditRepository(db, log),
	}
}
