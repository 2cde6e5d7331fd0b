// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient instance
// with a default-configured underlying resty.Client.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}
