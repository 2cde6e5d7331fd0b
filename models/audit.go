// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package models

import (
	"encoding/json"
	"time"
)

// Criticality tiers classify audit events and drive whether an event is
// persisted at all (low-tier reads are skipped) and how it is triaged.
const (
	CriticalityLow    = "low"
	CriticalityMedium = "medium"
	CriticalityHigh   = "high"
)

// Well-known audit actions produced by the authentication flow. Generic
// HTTP mutations use the lowercased request method as the action instead.
const (
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"
	AuditActionLogout      = "logout"
)

// AuditLog is a persisted record of a state-changing request or an
// authentication event. Previous/new values are sanitized snapshots;
// credential material is stripped before the record is written.
type AuditLog struct {
	// ID is a UUID assigned at record creation.
	ID string `json:"id"`

	// UserID references the acting user. Nullable: anonymous requests
	// (e.g. failed logins for unknown emails) carry no user reference.
	UserID *int64 `json:"userId"`

	// Action is what happened: "login", "logout", "login_failed", or the
	// lowercased HTTP method for generic mutations.
	Action string `json:"action"`

	// Module is the first path segment of the request, e.g. "works".
	Module string `json:"module"`

	// EntityID and EntityType identify the touched record when derivable
	// from the route or body.
	EntityID   string `json:"entityId,omitempty"`
	EntityType string `json:"entityType,omitempty"`

	// PreviousValue and NewValue are sanitized JSON snapshots whose exact
	// meaning depends on the HTTP method (see the audit interceptor).
	PreviousValue json.RawMessage `json:"previousValue,omitempty"`
	NewValue      json.RawMessage `json:"newValue,omitempty"`

	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`

	// DeviceInfo is the best-effort parsed user-agent snapshot, plus the
	// device-change annotation for login events.
	DeviceInfo json.RawMessage `json:"deviceInfo,omitempty"`

	Criticality string    `json:"criticality"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName returns the name of the database table
// associated with the AuditLog model.
func (a AuditLog) TableName() string {
	return "audit_logs"
}

// AuditListFilter narrows an audit listing query. Zero values mean
// "no filter". Page is 1-based.
type AuditListFilter struct {
	Module    string
	Action    string
	UserID    *int64
	IPAddress string
	Page      int
	Limit     int
}
