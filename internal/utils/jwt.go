// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pmdworks/pmd-backend/models"
)

// TokenParams bundles the inputs for issuing one JWT.
type TokenParams struct {
	Issuer         string
	UserID         int64
	Email          string
	Role           string
	OrganizationID *int64
	TokenType      string
	Duration       time.Duration
	SignKey        string
}

// GenerateJWTToken creates a signed HMAC-SHA256 JWT with the given
// parameters.
//
// The token includes the following standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the user ID encoded as a string
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus params.Duration
//
// plus the application claims email, role, organizationId and tokenType.
// Permissions are never embedded: the auth middleware re-derives them
// from storage on every request.
func GenerateJWTToken(params TokenParams) (string, error) {
	if params.Issuer == "" || params.Duration == 0 || params.SignKey == "" || params.TokenType == "" {
		return "", errors.New("invalid params for generating JWT token")
	}

	now := time.Now()
	claims := &models.Claims{
		Email:          params.Email,
		Role:           params.Role,
		OrganizationID: params.OrganizationID,
		TokenType:      params.TokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    params.Issuer,
			Subject:   strconv.FormatInt(params.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(params.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(params.SignKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return tokenString, nil
}

// ValidateAndParseJWTToken verifies the given JWT string and extracts
// its claims.
//
// Validation includes:
//   - signature verification with tokenSignKey (HMAC methods only)
//   - issuer (iss) claim check against tokenIssuer
//   - expiration (exp) claim check
//   - subject (sub) claim presence and conversion to an int64 user ID
//
// Returns the parsed claims and the user ID taken from the subject.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (*models.Claims, int64, error) {
	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, 0, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	userIDStr, err := claims.GetSubject()
	if err != nil {
		return nil, 0, fmt.Errorf("error occurred during getting subject from token: %w", err)
	}
	if userIDStr == "" {
		return nil, 0, errors.New("empty subject error")
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("error occurred during converting subject to user ID: %w", err)
	}

	return claims, userID, nil
}

// ParseBearerToken extracts the credential part from an
// "Authorization: Bearer <token>" header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
