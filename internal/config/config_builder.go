// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import (
	"fmt"

	"dario.cat/mergo"
)

// configBuilder accumulates configuration from multiple sources and
// merges them with mergo. Call order defines priority: the first source
// to set a field wins, later sources only fill gaps.
type configBuilder struct {
	config *StructuredConfig
	errors []error
}

// newConfigBuilder returns an empty builder.
func newConfigBuilder() *configBuilder {
	return &configBuilder{config: &StructuredConfig{}}
}

// withEnv merges configuration from environment variables.
func (b *configBuilder) withEnv() *configBuilder {
	envConfig, err := getConfigFromEnv()
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("%w: %w", ErrEnvConfigLoad, err))
		return b
	}
	b.merge(envConfig)
	return b
}

// withFlags merges configuration from command-line flags.
func (b *configBuilder) withFlags() *configBuilder {
	flagConfig, err := getConfigFromFlags()
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("%w: %w", ErrFlagConfigLoad, err))
		return b
	}
	b.merge(flagConfig)
	return b
}

// withJSON merges configuration from the JSON file whose path was
// resolved by the earlier sources. A missing path is not an error: the
// JSON file is optional.
func (b *configBuilder) withJSON() *configBuilder {
	if b.config.JSONFilePath == "" {
		return b
	}
	jsonConfig, err := getConfigFromJSONFile(b.config.JSONFilePath)
	if err != nil {
		b.errors = append(b.errors, fmt.Errorf("%w: %w", ErrJSONConfigLoad, err))
		return b
	}
	b.merge(jsonConfig)
	return b
}

func (b *configBuilder) merge(src *StructuredConfig) {
	if err := mergo.Merge(b.config, src); err != nil {
		b.errors = append(b.errors, fmt.Errorf("%w: %w", ErrConfigMerge, err))
	}
}

// build applies defaults, validates the merged configuration, and
// returns it together with any accumulated source errors.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration loading failed: %v", b.errors)
	}
	b.config.applyDefaults()
	if err := b.config.validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}
