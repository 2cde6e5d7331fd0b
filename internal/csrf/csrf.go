// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

// Package csrf issues and validates HMAC-signed anti-forgery tokens.
//
// Tokens are stateless: a token is "salt-timestamp-signature" where
// signature = HMAC-SHA256(secret, "session-timestamp-salt"). Validity is
// recomputed from the token's own components, so nothing is stored
// server-side. Unless the secret is pinned by configuration it is
// generated at construction, meaning tokens do not survive a process
// restart.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxAge bounds token lifetime when the caller does not
	// override it.
	DefaultMaxAge = time.Hour

	// anonymousSession is the session identity used when no caller
	// identity is supplied.
	anonymousSession = "anonymous"

	saltBytes  = 16
	secretSize = 32
)

// TokenService generates and validates anti-forgery tokens. Construct
// once per process and inject; the service holds no mutable state and is
// safe for concurrent use.
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// New constructs a TokenService. An empty secret is replaced with a
// random 32-byte key bound to the process lifetime; a non-positive
// maxAge falls back to DefaultMaxAge.
func New(secret string, maxAge time.Duration) *TokenService {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, secretSize)
		// rand.Read on a crypto/rand source never fails on supported
		// platforms; a short read would panic in hex below anyway.
		_, _ = rand.Read(key)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &TokenService{
		secret: key,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GenerateToken returns a fresh token bound to sessionID. An empty
// sessionID produces an anonymous token.
func (s *TokenService) GenerateToken(sessionID string) string {
	salt := make([]byte, saltBytes)
	_, _ = rand.Read(salt)

	saltHex := hex.EncodeToString(salt)
	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	signature := s.sign(sessionID, timestamp, saltHex)

	return saltHex + "-" + timestamp + "-" + signature
}

// ValidateToken checks a token against the given session identity using
// the service's configured max age. It fails closed: malformed tokens,
// expired timestamps, and signature mismatches all return false, never
// an error or a panic.
func (s *TokenService) ValidateToken(token, sessionID string) bool {
	return s.ValidateTokenWithin(token, sessionID, s.maxAge)
}

// ValidateTokenWithin is ValidateToken with an explicit max age.
func (s *TokenService) ValidateTokenWithin(token, sessionID string, maxAge time.Duration) bool {
	parts := strings.Split(token, "-")
	if len(parts) != 3 {
		return false
	}
	saltHex, timestamp, signature := parts[0], parts[1], parts[2]

	issuedMilli, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if s.now().UnixMilli()-issuedMilli > maxAge.Milliseconds() {
		return false
	}

	expected := s.sign(sessionID, timestamp, saltHex)

	// hmac.Equal is constant-time; a short-circuiting string compare
	// would leak signature prefixes through timing.
	return hmac.Equal([]byte(signature), []byte(expected))
}

func (s *TokenService) sign(sessionID, timestamp, salt string) string {
	if sessionID == "" {
		sessionID = anonymousSession
	}
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s-%s-%s", sessionID, timestamp, salt)
	return hex.EncodeToString(mac.Sum(nil))
}
