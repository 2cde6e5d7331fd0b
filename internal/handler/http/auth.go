// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/metrics"
	"github.com/pmdworks/pmd-backend/internal/service"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// the guard tracks the originating client address, so rotating
	// emails from one source still counts against the same record
	identifier := clientIP(r)
	if h.guard.IsBlocked(identifier) {
		metrics.CountLogin(metrics.LoginOutcomeBlocked)
		metrics.CountBruteForceBlock()
		h.writeBlocked(w, r, identifier)
		return
	}

	principal, pair, err := h.services.AuthService.Login(ctx, req.Email, req.Password, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			utils.WriteJSON(w, models.ErrorResponse{Error: "invalid data provided"}, http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidPassword):
			h.guard.RecordFailedAttempt(identifier)
			reason := service.ReasonForError(err)
			metrics.CountLogin(loginFailureOutcome(reason))
			log.Warn().Str("reason", reason).Msg("login rejected")
			utils.WriteJSON(w, models.ErrorResponse{
				Error:  "invalid credentials",
				Reason: reason,
			}, http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	h.guard.RecordSuccessfulAttempt(identifier)
	metrics.CountLogin(metrics.LoginOutcomeSuccess)
	h.setTokenCookie(w, pair.AccessToken)

	utils.WriteJSON(w, models.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         principal,
	}, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	principal, pair, err := h.services.AuthService.Register(ctx, req, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid data provided")
			utils.WriteJSON(w, models.ErrorResponse{Error: "invalid data provided"}, http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrEmailAlreadyTaken):
			log.Warn().Msg("email already taken")
			utils.WriteJSON(w, models.ErrorResponse{Error: "email already taken"}, http.StatusConflict)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during registration")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	h.setTokenCookie(w, pair.AccessToken)

	utils.WriteJSON(w, models.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         principal,
	}, http.StatusCreated)
}

// refresh exchanges a still-valid token for a fresh pair. The snake_case
// token keys of the response body are part of the published contract.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	tokenString, err := tokenFromRequest(r)
	if err != nil {
		log.Err(err).Send()
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	principal, pair, err := h.services.AuthService.Refresh(ctx, tokenString)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenIsExpiredOrInvalid), errors.Is(err, service.ErrUserNotFound):
			log.Warn().Err(err).Msg("refresh rejected")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during token refresh")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	h.setTokenCookie(w, pair.AccessToken)

	utils.WriteJSON(w, models.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         principal,
	}, http.StatusOK)
}

// me returns the authenticated principal with its freshly re-derived
// permission set.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, principal, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.GetPrincipalFromContext(r.Context())
	h.services.AuthService.Logout(r.Context(), principal, requestMeta(r))

	h.clearTokenCookie(w)
	utils.WriteJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// csrfToken hands the browser surface a fresh anti-forgery token bound
// to its current session.
func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, models.CSRFTokenResponse{
		CSRFToken: h.csrf.GenerateToken(csrfSessionID(r)),
	}, http.StatusOK)
}

// writeBlocked emits the 429 body for a brute-force blocked identifier.
func (h *Handler) writeBlocked(w http.ResponseWriter, r *http.Request, identifier string) {
	remaining := h.guard.RemainingBlockTime(identifier)
	minutes := int(math.Ceil(remaining.Minutes()))

	logger.FromRequest(r).Warn().
		Str("ip", clientIP(r)).
		Dur("remaining", remaining).
		Msg("login rejected: identifier is blocked")

	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(remaining.Seconds()))))
	utils.WriteJSON(w, models.BlockedResponse{
		Error:            "too many failed login attempts",
		RemainingTime:    remaining.Milliseconds(),
		RemainingMinutes: minutes,
		RetryAfter:       time.Now().Add(remaining),
	}, http.StatusTooManyRequests)
}

func loginFailureOutcome(reason string) string {
	if reason == models.ReasonInvalidPassword {
		return metrics.LoginOutcomeInvalidPassword
	}
	return metrics.LoginOutcomeUserNotFound
}
