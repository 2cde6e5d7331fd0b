// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/useragent"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
)

// sanitizedKeys are the JSON keys stripped from audit snapshots at any
// nesting depth before persistence.
var sanitizedKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"refreshToken":  {},
	"access_token":  {},
	"refresh_token": {},
}

// auditService is the concrete implementation of AuditService.
//
// Login events for the same user are sequenced through a per-user mutex
// so that the read-compare-insert of device-change detection does not
// race against a concurrent login from another device.
type auditService struct {
	auditRepository store.AuditRepository
	parser          useragent.Parser
	ids             *utils.UUIDGenerator
	logger          *logger.Logger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex

	now func() time.Time
}

// NewAuditService constructs an AuditService backed by the given
// repository and user-agent parser.
func NewAuditService(audit store.AuditRepository, parser useragent.Parser, logger *logger.Logger) AuditService {
	return &auditService{
		auditRepository: audit,
		parser:          parser,
		ids:             utils.NewUUIDGenerator(),
		logger:          logger,
		userLocks:       make(map[int64]*sync.Mutex),
		now:             time.Now,
	}
}

// Record sanitizes the value snapshots, fills in server-assigned fields,
// and persists the entry. Persistence failures are logged and swallowed.
func (s *auditService) Record(ctx context.Context, entry models.AuditLog) {
	log := logger.FromContext(ctx)

	entry.PreviousValue = SanitizeJSON(entry.PreviousValue)
	entry.NewValue = SanitizeJSON(entry.NewValue)
	if entry.ID == "" {
		entry.ID = s.ids.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.Criticality == "" {
		entry.Criticality = models.CriticalityMedium
	}

	if err := s.auditRepository.InsertAuditLog(ctx, entry); err != nil {
		log.Err(err).Str("func", "*auditService.Record").
			Str("action", entry.Action).Str("module", entry.Module).
			Msg("audit record was not persisted")
	}
}

// RecordAuthEvent persists one authentication event. All auth events are
// high criticality. Successful logins additionally run device-change
// detection against the user's previous login record.
func (s *auditService) RecordAuthEvent(ctx context.Context, event AuthEvent) {
	log := logger.FromContext(ctx)

	device := s.parser.Parse(event.Meta.UserAgent)

	entry := models.AuditLog{
		ID:          s.ids.Generate(),
		UserID:      event.UserID,
		Action:      event.Action,
		Module:      "auth",
		IPAddress:   event.Meta.IPAddress,
		UserAgent:   event.Meta.UserAgent,
		Criticality: models.CriticalityHigh,
		CreatedAt:   s.now(),
	}

	if event.Action == models.AuditActionLogin && event.UserID != nil {
		unlock := s.lockUser(*event.UserID)
		defer unlock()
		entry.DeviceInfo = s.deviceInfoWithChange(ctx, *event.UserID, device, event.Meta)
	} else {
		entry.DeviceInfo = marshalDeviceInfo(deviceSnapshot{DeviceInfo: device})
	}

	if event.Reason != "" {
		entry.NewValue, _ = json.Marshal(map[string]string{
			"email":  event.Email,
			"reason": event.Reason,
		})
	}

	if err := s.auditRepository.InsertAuditLog(ctx, entry); err != nil {
		log.Err(err).Str("func", "*auditService.RecordAuthEvent").
			Str("action", event.Action).
			Msg("auth audit record was not persisted")
	}
}

// ListAuditLogs delegates to the repository.
func (s *auditService) ListAuditLogs(ctx context.Context, filter models.AuditListFilter) ([]models.AuditLog, int64, error) {
	return s.auditRepository.ListAuditLogs(ctx, filter)
}

// deviceSnapshot is the device_info JSON document persisted with auth
// events.
type deviceSnapshot struct {
	useragent.DeviceInfo
	IPAddress    string        `json:"ipAddress,omitempty"`
	DeviceChange *deviceChange `json:"deviceChange,omitempty"`
}

// deviceChange annotates a login arriving from a different device or
// address than the previous one.
type deviceChange struct {
	PreviousKey string `json:"previousKey"`
	CurrentKey  string `json:"currentKey"`
	PreviousIP  string `json:"previousIp"`
	CurrentIP   string `json:"currentIp"`
}

// deviceInfoWithChange compares this login's device key and IP against
// the user's previous successful login. The first login ever recorded is
// never flagged as a change.
func (s *auditService) deviceInfoWithChange(ctx context.Context, userID int64, device useragent.DeviceInfo, meta RequestMeta) json.RawMessage {
	snapshot := deviceSnapshot{DeviceInfo: device, IPAddress: meta.IPAddress}

	last, err := s.auditRepository.FindLastLoginEvent(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNoAuditLogWasFound) {
			logger.FromContext(ctx).Err(err).Str("func", "*auditService.deviceInfoWithChange").
				Msg("previous login lookup failed, skipping device-change detection")
		}
		return marshalDeviceInfo(snapshot)
	}

	var previous deviceSnapshot
	if len(last.DeviceInfo) > 0 {
		_ = json.Unmarshal(last.DeviceInfo, &previous)
	}

	previousKey := previous.CompositeKey()
	currentKey := device.CompositeKey()
	if previousKey != currentKey || previous.IPAddress != meta.IPAddress {
		snapshot.DeviceChange = &deviceChange{
			PreviousKey: previousKey,
			CurrentKey:  currentKey,
			PreviousIP:  previous.IPAddress,
			CurrentIP:   meta.IPAddress,
		}
	}

	return marshalDeviceInfo(snapshot)
}

func marshalDeviceInfo(snapshot deviceSnapshot) json.RawMessage {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	return data
}

// lockUser acquires the per-user sequencing mutex and returns its
// unlock function.
func (s *auditService) lockUser(userID int64) func() {
	s.mu.Lock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// SanitizeJSON strips credential-bearing keys from a JSON document at
// any nesting depth, including inside arrays. Invalid JSON is passed
// through untouched: a malformed snapshot is still worth keeping.
func SanitizeJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}

	cleaned := sanitizeValue(doc)
	data, err := json.Marshal(cleaned)
	if err != nil {
		return raw
	}
	return data
}

func sanitizeValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for key, nested := range value {
			if _, denied := sanitizedKeys[key]; denied {
				delete(value, key)
				continue
			}
			value[key] = sanitizeValue(nested)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = sanitizeValue(item)
		}
		return value
	default:
		return v
	}
}
