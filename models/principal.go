// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

// Principal is the authenticated identity attached to a request after
// token validation, and the "user" payload of login/refresh/me responses.
//
// Role.Permissions always holds the normalized, security-filtered
// permission set re-derived from the database, never a value cached
// inside the JWT.
type Principal struct {
	ID             int64          `json:"id"`
	Email          string         `json:"email"`
	FullName       string         `json:"fullName"`
	Role           *PrincipalRole `json:"role"`
	OrganizationID *int64         `json:"organizationId"`
	Organization   *Organization  `json:"organization,omitempty"`
}

// PrincipalRole is the role view embedded in a Principal: the raw
// permission document replaced by the flat normalized list.
type PrincipalRole struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether the principal carries the given
// "module.action" permission.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil || p.Role == nil {
		return false
	}
	for _, have := range p.Role.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}
