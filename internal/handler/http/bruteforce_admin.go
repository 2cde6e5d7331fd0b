// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/utils"
)

// identifierRequest is the body of the brute-force reset and status
// endpoints. Identifiers are client IP addresses, the key the guard
// tracks.
type identifierRequest struct {
	Identifier string `json:"identifier"`
}

// bruteForceStatus reports one identifier's attempt record. The
// identifier comes from the "identifier" query parameter.
func (h *Handler) bruteForceStatus(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	if identifier == "" {
		http.Error(w, "identifier is required", http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, h.guard.Status(identifier), http.StatusOK)
}

// bruteForceList returns every currently tracked identifier.
func (h *Handler) bruteForceList(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, h.guard.Snapshot(), http.StatusOK)
}

// bruteForceReset clears one identifier's record, lifting any block.
func (h *Handler) bruteForceReset(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req identifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		http.Error(w, "identifier is required", http.StatusBadRequest)
		return
	}

	h.guard.ResetBlock(identifier)
	log.Info().Str("identifier", identifier).Msg("brute-force record reset")
	utils.WriteJSON(w, map[string]string{"message": "reset"}, http.StatusOK)
}

// bruteForceResetAll drops every tracked identifier.
func (h *Handler) bruteForceResetAll(w http.ResponseWriter, r *http.Request) {
	h.guard.ResetAllBlocks()
	logger.FromRequest(r).Info().Msg("all brute-force records reset")
	utils.WriteJSON(w, map[string]string{"message": "reset"}, http.StatusOK)
}
