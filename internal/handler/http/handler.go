// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"github.com/pmdworks/pmd-backend/internal/bruteforce"
	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/csrf"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/service"
)

// Handler owns the HTTP surface: route handlers plus the middleware
// that guards them.
type Handler struct {
	services *service.Services
	guard    *bruteforce.Guard
	csrf     *csrf.TokenService
	cfg      *config.StructuredConfig

	logger *logger.Logger
}

func NewHandler(services *service.Services, guard *bruteforce.Guard, csrfService *csrf.TokenService, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		guard:    guard,
		csrf:     csrfService,
		cfg:      cfg,
		logger:   logger,
	}
}
