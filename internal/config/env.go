// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import (
	"github.com/caarlos0/env/v11"
)

// getConfigFromEnv parses configuration from environment variables
// according to the env struct tags on StructuredConfig.
func getConfigFromEnv() (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
