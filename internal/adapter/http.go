// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
)

type httpOperatorAdapter struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewHTTPOperatorAdapter constructs an HTTP/REST implementation of
// [OperatorAdapter]. It normalises and validates the base URL from address
// and configures the underlying HTTP client with the resolved base URL and
// request timeout.
//
// Returns an error if address is empty or cannot be parsed as a valid URL.
func NewHTTPOperatorAdapter(address string, timeout time.Duration, logger *logger.Logger) (OperatorAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(address)
	if err != nil {
		return nil, fmt.Errorf("invalid operator address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &httpOperatorAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [OperatorAdapter]. It stores token
// (whitespace-trimmed) for use in the Authorization header of all subsequent
// authenticated requests.
func (h *httpOperatorAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [OperatorAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpOperatorAdapter) Token() string {
	return h.token
}

// Login implements [OperatorAdapter]. It POSTs the credentials to
// POST /api/auth/login. On success the access token from the response body
// is stored via SetToken. Returns an error if the request fails or the
// server returns a non-2xx status.
func (h *httpOperatorAdapter) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	var loginResp models.LoginResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&loginResp).
		Post("/api/auth/login")
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginResponse{}, err
	}

	h.SetToken(loginResp.AccessToken)
	return loginResp, nil
}

// BruteForceStatus implements [OperatorAdapter]. It GETs
// GET /api/auth/brute-force-status with the identifier as a query parameter.
// Requires a valid bearer token.
func (h *httpOperatorAdapter) BruteForceStatus(ctx context.Context, identifier string) (models.BruteForceStatus, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("identifier", identifier).
		Get("/api/auth/brute-force-status")
	if err != nil {
		return models.BruteForceStatus{}, fmt.Errorf("brute-force status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.BruteForceStatus{}, err
	}

	var status models.BruteForceStatus
	if err = json.Unmarshal(resp.Body(), &status); err != nil {
		return models.BruteForceStatus{}, fmt.Errorf("decode brute-force status response: %w", err)
	}

	return status, nil
}

// BruteForceList implements [OperatorAdapter]. It GETs
// GET /api/auth/brute-force-list and decodes the tracked identifier records.
// Requires a valid bearer token.
func (h *httpOperatorAdapter) BruteForceList(ctx context.Context) ([]models.BruteForceStatus, error) {
	resp, err := h.authedRequest(ctx).Get("/api/auth/brute-force-list")
	if err != nil {
		return nil, fmt.Errorf("brute-force list request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var records []models.BruteForceStatus
	if err = json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, fmt.Errorf("decode brute-force list response: %w", err)
	}

	return records, nil
}

// BruteForceReset implements [OperatorAdapter]. It POSTs the identifier to
// POST /api/auth/brute-force-reset. Requires a valid bearer token.
func (h *httpOperatorAdapter) BruteForceReset(ctx context.Context, identifier string) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"identifier": identifier}).
		Post("/api/auth/brute-force-reset")
	if err != nil {
		return fmt.Errorf("brute-force reset request: %w", err)
	}

	return mapHTTPError(resp)
}

// BruteForceResetAll implements [OperatorAdapter]. It POSTs to
// POST /api/auth/brute-force-reset-all. Requires a valid bearer token.
func (h *httpOperatorAdapter) BruteForceResetAll(ctx context.Context) error {
	resp, err := h.authedRequest(ctx).Post("/api/auth/brute-force-reset-all")
	if err != nil {
		return fmt.Errorf("brute-force reset-all request: %w", err)
	}

	return mapHTTPError(resp)
}

// AuditLogs implements [OperatorAdapter]. It GETs GET /api/audit with the
// query filters and decodes the paginated listing. Requires a bearer token
// whose subject holds the audit read permission.
func (h *httpOperatorAdapter) AuditLogs(ctx context.Context, query AuditQuery) (models.AuditListResponse, error) {
	req := h.authedRequest(ctx)
	if query.Module != "" {
		req.SetQueryParam("module", query.Module)
	}
	if query.Action != "" {
		req.SetQueryParam("action", query.Action)
	}
	if query.IPAddress != "" {
		req.SetQueryParam("ip", query.IPAddress)
	}
	if query.UserID != 0 {
		req.SetQueryParam("user_id", strconv.FormatInt(query.UserID, 10))
	}
	if query.Page != 0 {
		req.SetQueryParam("page", strconv.Itoa(query.Page))
	}
	if query.Limit != 0 {
		req.SetQueryParam("limit", strconv.Itoa(query.Limit))
	}

	resp, err := req.Get("/api/audit")
	if err != nil {
		return models.AuditListResponse{}, fmt.Errorf("audit list request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuditListResponse{}, err
	}

	var listing models.AuditListResponse
	if err = json.Unmarshal(resp.Body(), &listing); err != nil {
		return models.AuditListResponse{}, fmt.Errorf("decode audit list response: %w", err)
	}

	return listing, nil
}

func (h *httpOperatorAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
