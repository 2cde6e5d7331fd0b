// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import "time"

// Organization represents a tenant: a construction company whose users,
// works, and accounting records are isolated from other tenants.
type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the name of the database table
// associated with the Organization model.
func (o Organization) TableName() string {
	return "organizations"
}
