// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/models"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup, and partial updates against the
// "users" table, eagerly joining roles and organizations on lookups.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (ID, CreatedAt, UpdatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrEmailAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser,
		user.Email, user.PasswordHash, user.FullName, user.Phone,
		user.IsActive, user.RoleID, user.OrganizationID)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrEmailAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrEmailAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// FindUserByEmail retrieves the user whose email matches, with the role
// and organization records joined in.
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByEmail, email)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByEmail").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// FindUserByID retrieves the user with the given ID, with the role and
// organization records joined in. Error handling mirrors FindUserByEmail.
func (r *userRepository) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findUserByID, id)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user, err := scanUserRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByID").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// UpdateUser applies a partial update to the user with the given ID.
//
// Error handling:
//   - empty update → [ErrBuildingSQLQuery].
//   - zero affected rows → [ErrUserNotUpdated].
func (r *userRepository) UpdateUser(ctx context.Context, id int64, update UserUpdate) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUserUpdateQuery(id, update)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error: building update query")
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateUser").Msg("error: executing update")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotUpdated
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanUserRow.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUserRow scans one userSelect row, folding the nullable joined
// role and organization columns into the eager-loaded sub-structs.
func scanUserRow(row rowScanner) (models.User, error) {
	var (
		user models.User

		roleID          sql.NullInt64
		roleName        sql.NullString
		roleDescription sql.NullString
		rolePermissions []byte
		roleCreatedAt   sql.NullTime
		roleUpdatedAt   sql.NullTime

		orgID        sql.NullInt64
		orgName      sql.NullString
		orgIsActive  sql.NullBool
		orgCreatedAt sql.NullTime
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Phone,
		&user.IsActive, &user.RoleID, &user.OrganizationID, &user.CreatedAt, &user.UpdatedAt,
		&roleID, &roleName, &roleDescription, &rolePermissions, &roleCreatedAt, &roleUpdatedAt,
		&orgID, &orgName, &orgIsActive, &orgCreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	if roleID.Valid {
		user.Role = &models.Role{
			ID:          roleID.Int64,
			Name:        roleName.String,
			Description: roleDescription.String,
			Permissions: json.RawMessage(rolePermissions),
			CreatedAt:   timeOrZero(roleCreatedAt),
			UpdatedAt:   timeOrZero(roleUpdatedAt),
		}
	}
	if orgID.Valid {
		user.Organization = &models.Organization{
			ID:        orgID.Int64,
			Name:      orgName.String,
			IsActive:  orgIsActive.Bool,
			CreatedAt: timeOrZero(orgCreatedAt),
		}
	}

	return user, nil
}

func timeOrZero(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}
