// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data, and references to the
// user's role and organization.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// ID is the internal unique identifier of the user.
	ID int64 `json:"id"`

	// Email is the unique login identifier. Stored lowercased and trimmed.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to JSON.
	PasswordHash string `json:"-"`

	// FullName is the display name of the user.
	FullName string `json:"fullName"`

	// Phone is an optional contact phone number.
	Phone string `json:"phone,omitempty"`

	// IsActive marks whether the account may authenticate. Inactive
	// accounts are treated as absent by the login flow.
	IsActive bool `json:"isActive"`

	// RoleID references the user's role. Nullable: a user may exist
	// without a role until an administrator assigns one.
	RoleID *int64 `json:"roleId"`

	// OrganizationID references the tenant the user belongs to. Nullable.
	OrganizationID *int64 `json:"organizationId"`

	// Role is the eagerly loaded role record, populated by repository
	// lookups that join the roles table.
	Role *Role `json:"role,omitempty"`

	// Organization is the eagerly loaded organization record.
	Organization *Organization `json:"organization,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
