// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

// roleRepository is the PostgreSQL-backed implementation of
// [RoleRepository]. Role permissions travel as raw JSONB: this layer
// never interprets the permission document.
type roleRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRoleRepository constructs a [RoleRepository] backed by the provided
// database connection and logger.
func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *roleRepository) FindRoleByName(ctx context.Context, name string) (models.Role, error) {
	return r.findRole(ctx, findRoleByName, name)
}

func (r *roleRepository) FindRoleByID(ctx context.Context, id int64) (models.Role, error) {
	return r.findRole(ctx, findRoleByID, id)
}

func (r *roleRepository) findRole(ctx context.Context, query string, arg any) (models.Role, error) {
	log := logger.FromContext(ctx)

	var role models.Role
	var permissions []byte

	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*roleRepository.findRole").Msg("error: row is nil")
		return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	err := row.Scan(&role.ID, &role.Name, &role.Description, &permissions, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Role{}, ErrNoRoleWasFound
		}
		log.Err(err).Str("func", "*roleRepository.findRole").Msg("error: scanning error")
		return models.Role{}, err
	}

	role.Permissions = json.RawMessage(permissions)
	return role, nil
}

// CreateRole persists a new role. Role creation happens only during
// seeding and bootstrap, so a duplicate name is surfaced as a wrapped
// driver error rather than a user-facing sentinel.
func (r *roleRepository) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createRole, role.Name, role.Description, []byte(role.Permissions))
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*roleRepository.CreateRole").Msg("error: row is nil")
		return models.Role{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := row.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.Role{}, fmt.Errorf("role %q already exists: %w", role.Name, err)
		}
		log.Err(err).Str("func", "*roleRepository.CreateRole").Msg("error: scanning error")
		return models.Role{}, err
	}

	return role, nil
}

// UpdateRolePermissions replaces the permission document of the role
// with the given ID. Zero affected rows maps to [ErrNoRoleWasFound].
func (r *roleRepository) UpdateRolePermissions(ctx context.Context, id int64, permissions json.RawMessage) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateRolePermissions, id, []byte(permissions))
	if err != nil {
		log.Err(err).Str("func", "*roleRepository.UpdateRolePermissions").Msg("error: executing update")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoRoleWasFound
	}

	return nil
}
