// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

// organizationRepository is the PostgreSQL-backed implementation of
// [OrganizationRepository].
type organizationRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewOrganizationRepository constructs an [OrganizationRepository]
// backed by the provided database connection and logger.
func NewOrganizationRepository(db *DB, logger *logger.Logger) OrganizationRepository {
	logger.Debug().Msg("creating organization repository")
	return &organizationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *organizationRepository) FindOrganizationByID(ctx context.Context, id int64) (models.Organization, error) {
	return r.findOrganization(ctx, findOrganizationByID, id)
}

func (r *organizationRepository) FindOrganizationByName(ctx context.Context, name string) (models.Organization, error) {
	return r.findOrganization(ctx, findOrganizationByName, name)
}

func (r *organizationRepository) findOrganization(ctx context.Context, query string, arg any) (models.Organization, error) {
	log := logger.FromContext(ctx)

	var org models.Organization
	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*organizationRepository.findOrganization").Msg("error: row is nil")
		return models.Organization{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&org.ID, &org.Name, &org.IsActive, &org.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Organization{}, ErrNoOrganizationWasFound
		}
		log.Err(err).Str("func", "*organizationRepository.findOrganization").Msg("error: scanning error")
		return models.Organization{}, err
	}

	return org, nil
}

// CreateOrganization persists a new tenant record. Used only by the
// bootstrap reconciler.
func (r *organizationRepository) CreateOrganization(ctx context.Context, org models.Organization) (models.Organization, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createOrganization, org.Name, org.IsActive)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*organizationRepository.CreateOrganization").Msg("error: row is nil")
		return models.Organization{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&org.ID, &org.CreatedAt); err != nil {
		log.Err(err).Str("func", "*organizationRepository.CreateOrganization").Msg("error: scanning error")
		return models.Organization{}, err
	}

	return org, nil
}
