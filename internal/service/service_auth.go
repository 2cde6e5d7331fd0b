// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmdworks/pmd-backend/internal/config"
	"github.com/pmdworks/pmd-backend/internal/logger"
	"github.com/pmdworks/pmd-backend/internal/permissions"
	"github.com/pmdworks/pmd-backend/internal/store"
	"github.com/pmdworks/pmd-backend/internal/utils"
	"github.com/pmdworks/pmd-backend/models"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// authService is the concrete implementation of AuthService.
// It handles credential verification, registration, and the JWT token
// lifecycle, using bcrypt for password hashing and the permissions
// package for per-request permission re-derivation.
type authService struct {
	userRepository store.UserRepository
	roleRepository store.RoleRepository
	auditService   AuditService

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	tokenIssuer string

	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given
// repositories and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is
// read-only after construction.
func NewAuthService(users store.UserRepository, roles store.RoleRepository, audit AuditService, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository:       users,
		roleRepository:       roles,
		auditService:         audit,
		tokenSignKey:         cfg.TokenSignKey,
		tokenIssuer:          cfg.TokenIssuer,
		accessTokenDuration:  cfg.AccessTokenDuration,
		refreshTokenDuration: cfg.RefreshTokenDuration,
		logger:               logger,
	}
}

// Login authenticates a user by email and password.
//
// The lookup treats inactive accounts exactly like absent ones: both
// yield ErrUserNotFound, and the two cases are distinguishable only in
// the audit trail. A wrong password yields ErrInvalidPassword. Every
// outcome, success or failure, produces an audit event.
func (a *authService) Login(ctx context.Context, email, password string, meta RequestMeta) (*models.Principal, models.TokenPair, error) {
	log := logger.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.TokenPair{}, ErrInvalidDataProvided
	}

	// An empty stored hash means the account cannot authenticate; treat
	// it like a missing account.
	user, err := a.userRepository.FindUserByEmail(ctx, email)
	if err != nil || !user.IsActive || user.PasswordHash == "" {
		if err != nil && !errors.Is(err, store.ErrNoUserWasFound) {
			log.Err(err).Str("func", "*authService.Login").Msg("user search by email failed")
			return nil, models.TokenPair{}, fmt.Errorf("user search by email failed: %w", err)
		}

		a.auditService.RecordAuthEvent(ctx, AuthEvent{
			Action: models.AuditActionLoginFailed,
			Email:  email,
			Reason: models.ReasonUserNotFound,
			Meta:   meta,
		})
		return nil, models.TokenPair{}, ErrUserNotFound
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.auditService.RecordAuthEvent(ctx, AuthEvent{
			Action: models.AuditActionLoginFailed,
			UserID: &user.ID,
			Email:  email,
			Reason: models.ReasonInvalidPassword,
			Meta:   meta,
		})
		return nil, models.TokenPair{}, ErrInvalidPassword
	}

	principal := buildPrincipal(user)
	pair, err := a.issueTokenPair(principal)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("token issuance failed")
		return nil, models.TokenPair{}, err
	}

	a.auditService.RecordAuthEvent(ctx, AuthEvent{
		Action: models.AuditActionLogin,
		UserID: &user.ID,
		Email:  email,
		Meta:   meta,
	})

	return principal, pair, nil
}

// Register creates a new active account and logs it straight in.
//
// The display name defaults to the email local-part. When the request
// carries no role, the new user gets the administration role, creating
// it with the canonical grant if it does not exist yet. A taken email
// maps to ErrEmailAlreadyTaken.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest, meta RequestMeta) (*models.Principal, models.TokenPair, error) {
	log := logger.FromContext(ctx)

	email := normalizeEmail(req.Email)
	if email == "" || len(req.Password) < minPasswordLength {
		return nil, models.TokenPair{}, ErrInvalidDataProvided
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	roleID := req.RoleID
	if roleID == nil {
		role, err := findOrCreateAdministrationRole(ctx, a.roleRepository)
		if err != nil {
			log.Err(err).Str("func", "*authService.Register").Msg("default role lookup failed")
			return nil, models.TokenPair{}, fmt.Errorf("default role lookup failed: %w", err)
		}
		roleID = &role.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.TokenPair{}, fmt.Errorf("password hashing failed: %w", err)
	}

	created, err := a.userRepository.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Phone:        req.Phone,
		IsActive:     true,
		RoleID:       roleID,
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return nil, models.TokenPair{}, ErrEmailAlreadyTaken
		}
		log.Err(err).Str("func", "*authService.Register").Msg("user creation ended with error")
		return nil, models.TokenPair{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	// Re-read to hydrate the joined role and organization records.
	user, err := a.userRepository.FindUserByID(ctx, created.ID)
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("reloading created user failed")
		return nil, models.TokenPair{}, fmt.Errorf("reloading created user failed: %w", err)
	}

	principal := buildPrincipal(user)
	pair, err := a.issueTokenPair(principal)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	a.auditService.RecordAuthEvent(ctx, AuthEvent{
		Action: models.AuditActionLogin,
		UserID: &user.ID,
		Email:  email,
		Meta:   meta,
	})

	return principal, pair, nil
}

// Refresh exchanges a valid token for a fresh pair. The principal is
// re-derived from storage, so a user deactivated since issuance is
// rejected even if the token itself is still valid.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (*models.Principal, models.TokenPair, error) {
	_, userID, err := a.ParseToken(refreshToken)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	principal, err := a.LoadPrincipal(ctx, userID)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	pair, err := a.issueTokenPair(principal)
	if err != nil {
		return nil, models.TokenPair{}, err
	}

	return principal, pair, nil
}

// LoadPrincipal implements the per-request re-derivation: the user, its
// role, and the normalized permission set are loaded fresh from storage.
func (a *authService) LoadPrincipal(ctx context.Context, userID int64) (*models.Principal, error) {
	log := logger.FromContext(ctx)

	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return nil, ErrUserNotFound
		}
		log.Err(err).Str("func", "*authService.LoadPrincipal").Msg("user search by id failed")
		return nil, fmt.Errorf("user search by id failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	return buildPrincipal(user), nil
}

// Logout records the audit event. It deliberately has no error return:
// the client's session ends regardless of what happens here.
func (a *authService) Logout(ctx context.Context, principal *models.Principal, meta RequestMeta) {
	event := AuthEvent{
		Action: models.AuditActionLogout,
		Meta:   meta,
	}
	if principal != nil {
		event.UserID = &principal.ID
		event.Email = principal.Email
	}

	a.auditService.RecordAuthEvent(ctx, event)
}

// ParseToken verifies the signature, issuer, and expiry of a JWT and
// returns its claims and subject. All failures map to
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(tokenString string) (*models.Claims, int64, error) {
	claims, userID, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrTokenIsExpiredOrInvalid, err)
	}
	return claims, userID, nil
}

// issueTokenPair signs one access and one refresh token for the
// principal.
func (a *authService) issueTokenPair(principal *models.Principal) (models.TokenPair, error) {
	params := utils.TokenParams{
		Issuer:         a.tokenIssuer,
		UserID:         principal.ID,
		Email:          principal.Email,
		OrganizationID: principal.OrganizationID,
		SignKey:        a.tokenSignKey,
	}
	if principal.Role != nil {
		params.Role = principal.Role.Name
	}

	params.TokenType = models.TokenTypeAccess
	params.Duration = a.accessTokenDuration
	access, err := utils.GenerateJWTToken(params)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("access token issuance failed: %w", err)
	}

	params.TokenType = models.TokenTypeRefresh
	params.Duration = a.refreshTokenDuration
	refresh, err := utils.GenerateJWTToken(params)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh token issuance failed: %w", err)
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// buildPrincipal projects a hydrated user record onto the response
// shape, replacing the raw permission document with the normalized,
// security-filtered list.
func buildPrincipal(user models.User) *models.Principal {
	principal := &models.Principal{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		OrganizationID: user.OrganizationID,
		Organization:   user.Organization,
	}
	if user.Role != nil {
		principal.Role = &models.PrincipalRole{
			ID:          user.Role.ID,
			Name:        user.Role.Name,
			Permissions: permissions.Normalize(user.Role.Permissions, user.Role.Name),
		}
	}
	return principal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
