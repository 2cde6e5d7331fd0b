// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/pmdworks/pmd-backend/models"
)

const (
	createUser = `INSERT INTO users (email, password_hash, full_name, phone, is_active, role_id, organization_id)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id, created_at, updated_at;`

	// userSelect hydrates the user together with its role and
	// organization in a single round trip. Column order must match
	// scanUserRow.
	userSelect = `SELECT u.id, u.email, u.password_hash, u.full_name, u.phone, u.is_active,
           u.role_id, u.organization_id, u.created_at, u.updated_at,
           r.id, r.name, r.description, r.permissions, r.created_at, r.updated_at,
           o.id, o.name, o.is_active, o.created_at
    FROM users u
    LEFT JOIN roles r ON r.id = u.role_id
    LEFT JOIN organizations o ON o.id = u.organization_id`

	findUserByEmail = userSelect + `
    WHERE u.email = $1;`

	findUserByID = userSelect + `
    WHERE u.id = $1;`

	findRoleByName = `SELECT id, name, description, permissions, created_at, updated_at
    FROM roles
    WHERE name = $1;`

	findRoleByID = `SELECT id, name, description, permissions, created_at, updated_at
    FROM roles
    WHERE id = $1;`

	createRole = `INSERT INTO roles (name, description, permissions)
    VALUES ($1, $2, $3)
    RETURNING id, created_at, updated_at;`

	updateRolePermissions = `UPDATE roles
    SET permissions = $2, updated_at = NOW()
    WHERE id = $1;`

	findOrganizationByID = `SELECT id, name, is_active, created_at
    FROM organizations
    WHERE id = $1;`

	findOrganizationByName = `SELECT id, name, is_active, created_at
    FROM organizations
    WHERE name = $1;`

	createOrganization = `INSERT INTO organizations (name, is_active)
    VALUES ($1, $2)
    RETURNING id, created_at;`

	insertAuditLog = `INSERT INTO audit_logs (
        id, user_id, action, module, entity_id, entity_type,
        previous_value, new_value, ip_address, user_agent, device_info,
        criticality, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

	// findLastLoginEvent feeds the device-change detector: the most
	// recent successful login before the one being recorded.
	findLastLoginEvent = `SELECT id, user_id, action, module, entity_id, entity_type,
        previous_value, new_value, ip_address, user_agent, device_info,
        criticality, created_at
    FROM audit_logs
    WHERE user_id = $1 AND action = 'login'
    ORDER BY created_at DESC
    LIMIT 1;`
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildUserUpdateQuery assembles a partial UPDATE for the users table.
// Returns ErrBuildingSQLQuery when the update carries no fields.
func buildUserUpdateQuery(id int64, update UserUpdate) (string, []any, error) {
	builder := psql.Update("users").Set("updated_at", sq.Expr("NOW()"))

	touched := false
	if update.PasswordHash != nil {
		builder = builder.Set("password_hash", *update.PasswordHash)
		touched = true
	}
	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
		touched = true
	}
	if update.Phone != nil {
		builder = builder.Set("phone", *update.Phone)
		touched = true
	}
	if update.IsActive != nil {
		builder = builder.Set("is_active", *update.IsActive)
		touched = true
	}
	if update.RoleID != nil {
		builder = builder.Set("role_id", *update.RoleID)
		touched = true
	}
	if !touched {
		return "", nil, ErrBuildingSQLQuery
	}

	return builder.Where(sq.Eq{"id": id}).ToSql()
}

// auditListConditions translates the filter into squirrel predicates
// shared by the listing and count queries.
func auditListConditions(filter models.AuditListFilter) []sq.Sqlizer {
	var conds []sq.Sqlizer
	if filter.Module != "" {
		conds = append(conds, sq.Eq{"module": filter.Module})
	}
	if filter.Action != "" {
		conds = append(conds, sq.Eq{"action": filter.Action})
	}
	if filter.UserID != nil {
		conds = append(conds, sq.Eq{"user_id": *filter.UserID})
	}
	if filter.IPAddress != "" {
		conds = append(conds, sq.Eq{"ip_address": filter.IPAddress})
	}
	return conds
}

// buildAuditListQuery assembles the paginated, filtered audit listing.
func buildAuditListQuery(filter models.AuditListFilter) (string, []any, error) {
	page := max(filter.Page, 1)
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}

	builder := psql.Select(
		"id", "user_id", "action", "module", "entity_id", "entity_type",
		"previous_value", "new_value", "ip_address", "user_agent", "device_info",
		"criticality", "created_at",
	).From("audit_logs")

	for _, cond := range auditListConditions(filter) {
		builder = builder.Where(cond)
	}

	return builder.
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
}

// buildAuditCountQuery assembles the matching-total query for the same
// filter.
func buildAuditCountQuery(filter models.AuditListFilter) (string, []any, error) {
	builder := psql.Select("COUNT(*)").From("audit_logs")
	for _, cond := range auditListConditions(filter) {
		builder = builder.Where(cond)
	}
	return builder.ToSql()
}
