// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package http

import "net/http"

const (
	tokenCookieName   = "token"
	tokenCookieMaxAge = 604800 // seven days, matching the refresh token lifetime
)

// setTokenCookie attaches the access token as an HttpOnly cookie for the
// browser surface. Production uses SameSite=None with Secure so the SPA
// can live on a different origin; elsewhere Lax keeps plain-HTTP
// development working.
func (h *Handler) setTokenCookie(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   tokenCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cfg.IsProduction() {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}

// clearTokenCookie expires the token cookie.
func (h *Handler) clearTokenCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cfg.IsProduction() {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}
	http.SetCookie(w, cookie)
}
