// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/useragent"
)

// Services bundles the service layer behind one value.
type Services struct {
	AuthService      AuthService
	AuditService     AuditService
	BootstrapService BootstrapService
}

// NewServices wires the service layer onto the repositories.
func NewServices(repos *store.Repositories, cfg *config.StructuredConfig, logger *logger.Logger) *Services {
	audit := NewAuditService(repos.AuditRepository, useragent.NewHeuristicParser(), logger)
	return &Services{
		AuditService:     audit,
		AuthService:      NewAuthService(repos.UserRepository, repos.RoleRepository, audit, cfg.App, logger),
		BootstrapService: NewBootstrapService(repos.UserRepository, repos.RoleRepository, repos.OrganizationRepository, cfg.App, logger),
	}
}
