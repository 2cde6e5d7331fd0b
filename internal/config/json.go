// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import (
	"encoding/json"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON config files can use readable
// values like "24h" or "15m" instead of nanosecond integers.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts either a duration string ("30s") or a number of
// nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return ErrInvalidDuration
	}
}

// MarshalJSON emits the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// structuredJSONConfig mirrors StructuredConfig with Duration wrappers
// so file-based configs stay human-readable.
type structuredJSONConfig struct {
	App struct {
		TokenSignKey         string   `json:"token_sign_key"`
		TokenIssuer          string   `json:"token_issuer"`
		AccessTokenDuration  Duration `json:"access_token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration"`
		CSRFSecret           string   `json:"csrf_secret"`
		CSRFTokenMaxAge      Duration `json:"csrf_token_max_age"`
		Environment          string   `json:"environment"`
		AdminEmail           string   `json:"admin_email"`
		AdminPassword        string   `json:"admin_password"`
	} `json:"app"`
	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		RateLimitRPS   float64  `json:"rate_limit_rps"`
		RateLimitBurst int      `json:"rate_limit_burst"`
	} `json:"server"`
	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db"`
	} `json:"storage"`
	BruteForce struct {
		MaxAttempts    int      `json:"max_attempts"`
		WindowDuration Duration `json:"window_duration"`
		BlockDuration  Duration `json:"block_duration"`
	} `json:"brute_force"`
	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers"`
}

// getConfigFromJSONFile reads and parses the JSON configuration file at
// path into a StructuredConfig.
func getConfigFromJSONFile(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fileCfg structuredJSONConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}

	cfg := &StructuredConfig{}
	cfg.App.TokenSignKey = fileCfg.App.TokenSignKey
	cfg.App.TokenIssuer = fileCfg.App.TokenIssuer
	cfg.App.AccessTokenDuration = fileCfg.App.AccessTokenDuration.Duration
	cfg.App.RefreshTokenDuration = fileCfg.App.RefreshTokenDuration.Duration
	cfg.App.CSRFSecret = fileCfg.App.CSRFSecret
	cfg.App.CSRFTokenMaxAge = fileCfg.App.CSRFTokenMaxAge.Duration
	cfg.App.Environment = fileCfg.App.Environment
	cfg.App.AdminEmail = fileCfg.App.AdminEmail
	cfg.App.AdminPassword = fileCfg.App.AdminPassword
	cfg.Server.HTTPAddress = fileCfg.Server.HTTPAddress
	cfg.Server.RequestTimeout = fileCfg.Server.RequestTimeout.Duration
	cfg.Server.RateLimitRPS = fileCfg.Server.RateLimitRPS
	cfg.Server.RateLimitBurst = fileCfg.Server.RateLimitBurst
	cfg.Storage.DB.DSN = fileCfg.Storage.DB.DSN
	cfg.BruteForce.MaxAttempts = fileCfg.BruteForce.MaxAttempts
	cfg.BruteForce.WindowDuration = fileCfg.BruteForce.WindowDuration.Duration
	cfg.BruteForce.BlockDuration = fileCfg.BruteForce.BlockDuration.Duration
	cfg.Workers.SweepInterval = fileCfg.Workers.SweepInterval.Duration
	return cfg, nil
}
