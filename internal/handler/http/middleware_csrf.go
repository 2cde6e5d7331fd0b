// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import (
	"net/http"
	"strings"

	"github.com/pmdworks/pmd-backend/internal/logger"
)

const csrfTokenHeader = "X-CSRF-Token"

// csrfSkipPaths are exempt from anti-forgery verification: the endpoints
// that bootstrap a session cannot yet hold a token.
var csrfSkipPaths = map[string]struct{}{
	"/auth/login":      {},
	"/auth/register":   {},
	"/auth/csrf-token": {},
	"/health":          {},
}

// withCSRF verifies the anti-forgery token on state-changing requests of
// the browser-facing surface. The /api prefix is token-authenticated and
// exempt; cookies are not the credential there, so cross-site forgery
// does not apply.
func (h *Handler) withCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mutatingMethod(r.Method) || strings.HasPrefix(r.URL.Path, "/api") {
			next.ServeHTTP(w, r)
			return
		}
		if _, skip := csrfSkipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(csrfTokenHeader)
		if token == "" || !h.csrf.ValidateToken(token, csrfSessionID(r)) {
			logger.FromRequest(r).Warn().
				Str("uri", r.RequestURI).
				Str("method", r.Method).
				Msg("csrf token missing or invalid")
			http.Error(w, "invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func mutatingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// csrfSessionID derives the session identity a token is bound to: the
// token cookie value when present, anonymous otherwise.
func csrfSessionID(r *http.Request) string {
	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
