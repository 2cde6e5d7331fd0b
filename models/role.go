// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import (
	"encoding/json"
	"time"
)

// Enumerated role names. Role.Name is constrained to one of these four
// values; uniqueness is enforced on the name column.
const (
	RoleAdministration = "administration"
	RoleDirection      = "direction"
	RoleSupervisor     = "supervisor"
	RoleOperator       = "operator"
)

// Role groups permissions for a class of users.
//
// Permissions is stored as JSONB and intentionally kept as a raw message:
// three historical encodings coexist in production data (grouped
// map-of-arrays, flat boolean map, nested boolean map) and the
// permissions package is the single place that interprets them.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Permissions is the raw permission document for this role.
	// Interpret only via permissions.Normalize.
	Permissions json.RawMessage `json:"permissions,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the name of the database table
// associated with the Role model.
func (r Role) TableName() string {
	return "roles"
}

// KnownRoleNames lists the enumerated role names in seed order.
func KnownRoleNames() []string {
	return []string{RoleAdministration, RoleDirection, RoleSupervisor, RoleOperator}
}
