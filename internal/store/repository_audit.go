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

// auditRepository is the PostgreSQL-backed implementation of
// [AuditRepository]. Inserts happen off the request path, so failures
// are logged and returned but never break the operation being audited.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the
// provided database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// InsertAuditLog persists one audit record.
func (r *auditRepository) InsertAuditLog(ctx context.Context, entry models.AuditLog) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, insertAuditLog,
		entry.ID, entry.UserID, entry.Action, entry.Module,
		entry.EntityID, entry.EntityType,
		nullableJSON(entry.PreviousValue), nullableJSON(entry.NewValue),
		entry.IPAddress, entry.UserAgent, nullableJSON(entry.DeviceInfo),
		entry.Criticality, entry.CreatedAt,
	)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.InsertAuditLog").Msg("error: inserting audit log")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// FindLastLoginEvent returns the most recent successful login record for
// the given user, or [ErrNoAuditLogWasFound] when the user has never
// logged in.
func (r *auditRepository) FindLastLoginEvent(ctx context.Context, userID int64) (models.AuditLog, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, findLastLoginEvent, userID)
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*auditRepository.FindLastLoginEvent").Msg("error: row is nil")
		return models.AuditLog{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	entry, err := scanAuditRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AuditLog{}, ErrNoAuditLogWasFound
		}
		log.Err(err).Str("func", "*auditRepository.FindLastLoginEvent").Msg("error: scanning error")
		return models.AuditLog{}, err
	}

	return entry, nil
}

// ListAuditLogs returns one page of audit records matching the filter,
// newest first, together with the total number of matching records.
func (r *auditRepository) ListAuditLogs(ctx context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error) {
	log := logger.FromContext(ctx)

	countQuery, countArgs, err := buildAuditCountQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var total int64
	if err = r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Err(err).Str("func", "*auditRepository.ListAuditLogs").Msg("error: counting audit logs")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	listQuery, listArgs, err := buildAuditListQuery(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.ListAuditLogs").Msg("error: querying audit logs")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.AuditLog, 0, filter.Limit)
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			log.Err(err).Str("func", "*auditRepository.ListAuditLogs").Msg("error: scanning audit log row")
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, total, nil
}

// scanAuditRow scans one audit_logs row. Column order must match
// findLastLoginEvent and buildAuditListQuery.
func scanAuditRow(row rowScanner) (models.AuditLog, error) {
	var (
		entry         models.AuditLog
		entityID      sql.NullString
		entityType    sql.NullString
		previousValue []byte
		newValue      []byte
		deviceInfo    []byte
	)

	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Action, &entry.Module,
		&entityID, &entityType, &previousValue, &newValue,
		&entry.IPAddress, &entry.UserAgent, &deviceInfo,
		&entry.Criticality, &entry.CreatedAt,
	)
	if err != nil {
		return models.AuditLog{}, err
	}

	entry.EntityID = entityID.String
	entry.EntityType = entityType.String
	entry.PreviousValue = previousValue
	entry.NewValue = newValue
	entry.DeviceInfo = deviceInfo
	return entry, nil
}

// nullableJSON maps an empty JSON document to SQL NULL so JSONB columns
// never receive the empty string.
func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return data
}
