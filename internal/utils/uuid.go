// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package utils

import "github.com/google/uuid"

// UUIDGenerator issues time-ordered identifiers for audit records.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string, falling back to v4 if the monotonic
// source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
