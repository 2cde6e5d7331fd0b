// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PMD Works

package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// NetAddress is a flag.Value for "host:port" listen addresses with
// port-range validation.
type NetAddress struct {
	Host string
	Port int
}

// String implements flag.Value.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set implements flag.Value. Accepts "host:port" and ":port".
func (a *NetAddress) Set(value string) error {
	host, portStr, err := net.SplitHostPort(value)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalidAddress, portStr)
	}
	a.Host = host
	a.Port = port
	return nil
}

// getConfigFromFlags parses configuration from command-line flags.
// Unknown flags are tolerated so the binary can receive flags intended
// for other components (e.g. go test flags).
func getConfigFromFlags() (*StructuredConfig, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	addr := &NetAddress{}

	fs := flag.NewFlagSet("pmd-backend", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(addr, "a", "HTTP server address host:port")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "PostgreSQL DSN")
	fs.StringVar(&cfg.JSONFilePath, "c", "", "path to JSON configuration file")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "path to JSON configuration file (same as -c)")
	fs.StringVar(&cfg.App.Environment, "e", "", "environment: production, development or test")

	if err := fs.Parse(sanitizeArgs(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, nil
		}
		return nil, err
	}
	cfg.Server.HTTPAddress = addr.String()
	return cfg, nil
}

// sanitizeArgs drops flags this package does not own, such as the
// -test.* flags injected when the package runs under go test.
func sanitizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "-test.") || strings.HasPrefix(arg, "--test.") {
			continue
		}
		out = append(out, arg)
	}
	return out
}
