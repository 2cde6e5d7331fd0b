// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/service"
	"github.com/pmdworks/pmd-backend/internal/utils"
)

// auth is the JWT authentication middleware.
//
// It extracts the bearer token (falling back to the token cookie for the
// browser surface), verifies the signature and claims, and then
// re-derives the principal from storage: user, role, and the normalized
// permission set are loaded fresh on every request, so a revoked role or
// deactivated account takes effect immediately regardless of what the
// token was issued with. On success the principal is stored in the
// request context under [utils.PrincipalCtxKey].
//
// Requests are rejected with 401 when the token is absent, malformed,
// expired, invalid, or when the subject no longer resolves to an active
// user.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		tokenString, err := tokenFromRequest(r)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		_, userID, err := h.services.AuthService.ParseToken(tokenString)
		if err != nil {
			log.Err(err).Msg("token verification failed")
			http.Error(w, service.ErrTokenIsExpiredOrInvalid.Error(), http.StatusUnauthorized)
			return
		}

		principal, err := h.services.AuthService.LoadPrincipal(ctx, userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				log.Warn().Int64("user_id", userID).Msg("token subject is missing or deactivated")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			log.Err(err).Msg("principal re-derivation failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.SetPrincipalInContext(ctx, principal)))
	})
}

// requirePermission gates a route on one "module.action" permission of
// the already-authenticated principal.
func (h *Handler) requirePermission(perm string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := utils.GetPrincipalFromContext(r.Context())
		if !ok || !principal.HasPermission(perm) {
			logger.FromRequest(r).Warn().Str("permission", perm).Msg("permission denied")
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// tokenFromRequest extracts the access token: the "Authorization" header
// takes precedence, the token cookie is the browser fallback.
func tokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if cookie, err := r.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
		return "", ErrEmptyAuthorizationHeader
	}
	return getTokenFromAuthHeader(authHeader)
}

// getTokenFromAuthHeader extracts the bearer token string from a raw
// "Authorization" HTTP header value of the form "<scheme> <token>".
func getTokenFromAuthHeader(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString := parts[1]
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
