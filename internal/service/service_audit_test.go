// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/store/mocks"
	"github.com/pmdworks/pmd-backend/internal/useragent"
	"github.com/pmdworks/pmd-backend/models"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newAuditServiceFixture(t *testing.T) (AuditService, *mocks.MockAuditRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(repo, useragent.NewHeuristicParser(), logger.Nop())
	return svc, repo
}

func TestRecord_SanitizesNestedCredentials(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)

	var persisted models.AuditLog
	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AuditLog) error {
			persisted = entry
			return nil
		})

	svc.Record(context.Background(), models.AuditLog{
		Action: "post",
		Module: "users",
		NewValue: json.RawMessage(`{
			"email": "mason@example.com",
			"password": "hunter2",
			"profile": {"token": "jwt-here", "phone": "+15550100"},
			"sessions": [{"refresh_token": "rt", "device": "laptop"}]
		}`),
	})

	var doc map[string]any
	require.NoError(t, json.Unmarshal(persisted.NewValue, &doc))

	assert.Equal(t, "mason@example.com", doc["email"])
	assert.NotContains(t, doc, "password")

	profile := doc["profile"].(map[string]any)
	assert.NotContains(t, profile, "token")
	assert.Equal(t, "+15550100", profile["phone"])

	session := doc["sessions"].([]any)[0].(map[string]any)
	assert.NotContains(t, session, "refresh_token")
	assert.Equal(t, "laptop", session["device"])

	assert.NotEmpty(t, persisted.ID)
	assert.False(t, persisted.CreatedAt.IsZero())
	assert.Equal(t, models.CriticalityMedium, persisted.Criticality)
}

func TestRecord_SwallowsPersistenceFailure(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)

	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		Return(errors.New("db is down"))

	// must not panic and has no error to return
	svc.Record(context.Background(), models.AuditLog{Action: "post", Module: "works"})
}

func TestRecordAuthEvent_FirstLoginIsNotADeviceChange(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)
	userID := int64(1)

	repo.EXPECT().
		FindLastLoginEvent(gomock.Any(), userID).
		Return(models.AuditLog{}, store.ErrNoAuditLogWasFound)

	var persisted models.AuditLog
	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AuditLog) error {
			persisted = entry
			return nil
		})

	svc.RecordAuthEvent(context.Background(), AuthEvent{
		Action: models.AuditActionLogin,
		UserID: &userID,
		Meta:   RequestMeta{IPAddress: "203.0.113.9", UserAgent: chromeOnWindows},
	})

	assert.Equal(t, "auth", persisted.Module)
	assert.Equal(t, models.CriticalityHigh, persisted.Criticality)

	var device map[string]any
	require.NoError(t, json.Unmarshal(persisted.DeviceInfo, &device))
	assert.Equal(t, "Chrome", device["browser"])
	assert.NotContains(t, device, "deviceChange")
}

func TestRecordAuthEvent_DeviceChangeDetected(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)
	userID := int64(1)

	previous, err := json.Marshal(map[string]any{
		"browser": "Firefox", "os": "Linux", "deviceType": "desktop",
		"ipAddress": "198.51.100.7",
	})
	require.NoError(t, err)

	repo.EXPECT().
		FindLastLoginEvent(gomock.Any(), userID).
		Return(models.AuditLog{DeviceInfo: previous}, nil)

	var persisted models.AuditLog
	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AuditLog) error {
			persisted = entry
			return nil
		})

	svc.RecordAuthEvent(context.Background(), AuthEvent{
		Action: models.AuditActionLogin,
		UserID: &userID,
		Meta:   RequestMeta{IPAddress: "203.0.113.9", UserAgent: chromeOnWindows},
	})

	var device map[string]any
	require.NoError(t, json.Unmarshal(persisted.DeviceInfo, &device))
	change := device["deviceChange"].(map[string]any)
	assert.Equal(t, "Firefox/Linux/desktop", change["previousKey"])
	assert.Equal(t, "Chrome/Windows/desktop", change["currentKey"])
	assert.Equal(t, "198.51.100.7", change["previousIp"])
	assert.Equal(t, "203.0.113.9", change["currentIp"])
}

func TestRecordAuthEvent_SameDeviceSameAddressNotFlagged(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)
	userID := int64(1)

	previous, err := json.Marshal(map[string]any{
		"browser": "Chrome", "os": "Windows", "deviceType": "desktop",
		"ipAddress": "203.0.113.9",
	})
	require.NoError(t, err)

	repo.EXPECT().
		FindLastLoginEvent(gomock.Any(), userID).
		Return(models.AuditLog{DeviceInfo: previous}, nil)

	var persisted models.AuditLog
	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AuditLog) error {
			persisted = entry
			return nil
		})

	svc.RecordAuthEvent(context.Background(), AuthEvent{
		Action: models.AuditActionLogin,
		UserID: &userID,
		Meta:   RequestMeta{IPAddress: "203.0.113.9", UserAgent: chromeOnWindows},
	})

	var device map[string]any
	require.NoError(t, json.Unmarshal(persisted.DeviceInfo, &device))
	assert.NotContains(t, device, "deviceChange")
}

func TestRecordAuthEvent_FailedLoginSkipsDeviceChangeLookup(t *testing.T) {
	svc, repo := newAuditServiceFixture(t)

	var persisted models.AuditLog
	repo.EXPECT().
		InsertAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry models.AuditLog) error {
			persisted = entry
			return nil
		})

	svc.RecordAuthEvent(context.Background(), AuthEvent{
		Action: models.AuditActionLoginFailed,
		Email:  "nobody@example.com",
		Reason: models.ReasonUserNotFound,
		Meta:   RequestMeta{IPAddress: "203.0.113.9", UserAgent: "curl/8.4.0"},
	})

	assert.Equal(t, models.AuditActionLoginFailed, persisted.Action)
	assert.Nil(t, persisted.UserID)

	var value map[string]string
	require.NoError(t, json.Unmarshal(persisted.NewValue, &value))
	assert.Equal(t, models.ReasonUserNotFound, value["reason"])
	assert.Equal(t, "nobody@example.com", value["email"])
}

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "top level keys",
			in:   `{"password":"x","token":"y","ok":"keep"}`,
			want: `{"ok":"keep"}`,
		},
		{
			name: "snake case token keys",
			in:   `{"access_token":"a","refresh_token":"b","refreshToken":"c"}`,
			want: `{}`,
		},
		{
			name: "scalar document untouched",
			in:   `"just a string"`,
			want: `"just a string"`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.JSONEq(t, tc.want, string(SanitizeJSON(json.RawMessage(tc.in))))
		})
	}
}

func TestSanitizeJSON_InvalidJSONPassesThrough(t *testing.T) {
	raw := json.RawMessage(`{not json`)
	assert.Equal(t, raw, SanitizeJSON(raw))
}
