// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
)

// auditBodyLimit caps how much of a request or response body is captured
// into an audit record.
const auditBodyLimit = 64 << 10

// highCriticalityModules are the modules whose mutations are always
// recorded as high criticality regardless of method.
var highCriticalityModules = map[string]struct{}{
	"users":      {},
	"roles":      {},
	"accounting": {},
	"cashboxes":  {},
	"contracts":  {},
}

// withAudit records every mutating request as an audit event.
//
// GET requests are low criticality and never persisted. Authentication
// routes are excluded here; the service layer records those events with
// reason codes and device-change detection the transport cannot see.
//
// The snapshot captured depends on the method. POST stores the response
// body as the new value, so server-assigned fields (ids, timestamps)
// are recorded. PUT/PATCH store the request body as the previous value
// (the submitted update, possibly partial) and the response as the new
// value. DELETE stores the response as the previous value plus a
// synthetic deletion marker as the new value. Persistence is
// fire-and-forget on a detached context so a slow audit sink never
// stalls the response, and sanitization inside the audit service strips
// credential material before the record is written.
func (h *Handler) withAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mutatingMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		module := firstPathSegment(r.URL.Path)
		if module == "auth" || module == "" {
			next.ServeHTTP(w, r)
			return
		}

		// The body is consumed for the snapshot and restored for the
		// handler.
		var requestBody []byte
		if r.Body != nil {
			requestBody, _ = io.ReadAll(io.LimitReader(r.Body, auditBodyLimit))
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		aw := &responseWriter{ResponseWriter: w, captureBody: true}
		next.ServeHTTP(aw, r)

		if aw.status >= http.StatusBadRequest {
			return
		}

		entry := models.AuditLog{
			Action:      strings.ToLower(r.Method),
			Module:      module,
			EntityType:  module,
			EntityID:    entityID(r, requestBody),
			IPAddress:   clientIP(r),
			UserAgent:   r.UserAgent(),
			Criticality: mutationCriticality(r.Method, module),
		}
		if principal, ok := utils.GetPrincipalFromContext(r.Context()); ok {
			entry.UserID = &principal.ID
		}

		responseBody := aw.body.Bytes()
		switch r.Method {
		case http.MethodDelete:
			entry.PreviousValue = jsonSnapshot(responseBody)
			entry.NewValue = deletionMarker()
		case http.MethodPost:
			entry.NewValue = jsonSnapshot(responseBody)
		default: // PUT, PATCH
			// the request body may be a partial update
			entry.PreviousValue = jsonSnapshot(requestBody)
			entry.NewValue = jsonSnapshot(responseBody)
		}

		go h.recordAudit(context.WithoutCancel(r.Context()), entry)
	})
}

func (h *Handler) recordAudit(ctx context.Context, entry models.AuditLog) {
	h.services.AuditService.Record(ctx, entry)
}

// mutationCriticality classifies a persisted mutation: deletes and
// mutations of sensitive modules are high, everything else medium.
func mutationCriticality(method, module string) string {
	if method == http.MethodDelete {
		return models.CriticalityHigh
	}
	if _, sensitive := highCriticalityModules[module]; sensitive {
		return models.CriticalityHigh
	}
	return models.CriticalityMedium
}

// firstPathSegment returns the first path segment, skipping the /api
// prefix: "/api/works/5" and "/works/5" both yield "works".
func firstPathSegment(path string) string {
	path = strings.TrimPrefix(path, "/api")
	path = strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(path, "/")
	return segment
}

// entityID resolves the touched entity: the chi "id" URL parameter when
// the route carries one, otherwise a top-level "id" field of the body.
func entityID(r *http.Request, body []byte) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	if len(body) == 0 {
		return ""
	}
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || len(probe.ID) == 0 {
		return ""
	}
	return strings.Trim(string(probe.ID), `"`)
}

// jsonSnapshot returns body as a raw JSON value when it is valid JSON,
// nil otherwise. Non-JSON payloads are not worth persisting.
func jsonSnapshot(body []byte) json.RawMessage {
	if !json.Valid(body) {
		return nil
	}
	return json.RawMessage(body)
}

// deletionMarker is the new-value snapshot of a DELETE: the entity no
// longer exists, so a synthetic tombstone records when it went away.
func deletionMarker() json.RawMessage {
	marker, _ := json.Marshal(struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{Status: "deleted", Timestamp: time.Now().UTC()})
	return marker
}
