// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import (
	"fmt"
	"time"
)

// Fallbacks applied to fields no source set.
const (
	defaultHTTPAddress          = "localhost:8080"
	defaultEnvironment          = EnvDevelopment
	defaultTokenIssuer          = "pmd-backend"
	defaultAccessTokenDuration  = 24 * time.Hour
	defaultRefreshTokenDuration = 168 * time.Hour
	defaultCSRFTokenMaxAge      = time.Hour
	defaultRequestTimeout       = 30 * time.Second
	defaultRateLimitRPS         = 20.0
	defaultRateLimitBurst       = 40
	defaultSweepInterval        = 5 * time.Minute
)

// Bootstrap credentials applied outside production so a fresh database
// always yields a working admin login. Production deployments must set
// APP_ADMIN_EMAIL / APP_ADMIN_PASSWORD explicitly.
const (
	defaultAdminEmail    = "admin@pmd.com"
	defaultAdminPassword = "1102Pequ"
)

// applyDefaults fills fields left zero by every source. Brute-force
// parameters are deliberately left untouched: the bruteforce package
// applies its own defaults so the two never disagree.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = defaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = defaultRateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = defaultEnvironment
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = defaultTokenIssuer
	}
	if cfg.App.AccessTokenDuration == 0 {
		cfg.App.AccessTokenDuration = defaultAccessTokenDuration
	}
	if cfg.App.RefreshTokenDuration == 0 {
		cfg.App.RefreshTokenDuration = defaultRefreshTokenDuration
	}
	if cfg.App.CSRFTokenMaxAge == 0 {
		cfg.App.CSRFTokenMaxAge = defaultCSRFTokenMaxAge
	}
	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = defaultSweepInterval
	}
	if cfg.App.Environment != EnvProduction {
		if cfg.App.AdminEmail == "" {
			cfg.App.AdminEmail = defaultAdminEmail
		}
		if cfg.App.AdminPassword == "" {
			cfg.App.AdminPassword = defaultAdminPassword
		}
	}
}

// validate checks cross-field constraints on the merged configuration.
func (cfg *StructuredConfig) validate() error {
	switch cfg.App.Environment {
	case EnvProduction, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidConfig, cfg.App.Environment)
	}
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidConfig)
	}
	if cfg.App.RefreshTokenDuration <= cfg.App.AccessTokenDuration {
		return fmt.Errorf("%w: refresh token duration must exceed access token duration", ErrInvalidConfig)
	}
	if cfg.BruteForce.MaxAttempts < 0 {
		return fmt.Errorf("%w: brute force max attempts must not be negative", ErrInvalidConfig)
	}
	return nil
}
