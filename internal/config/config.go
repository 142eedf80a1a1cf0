// Copyright 2026 The OASMCP Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the typed configuration model for the server:
// transport selection, resource limits, transport-auth settings, and the
// two-level frozen-parameter map. Flags take precedence
// over environment variables, which take precedence over defaults.
package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

// Transport selects the MCP wire framing.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportSSE   Transport = "sse"
)

// Defaults mirror spec.md §6's flag defaults.
const (
	DefaultPort          = 8080
	DefaultTimeout       = 30 * time.Second
	DefaultMemoryLimitMB = 64
	DefaultMaxAPICalls   = 100
)

// Auth holds transport-authentication settings. Auth is
// disabled when Authority is empty.
type Auth struct {
	Authority string
	Audience  string
	JWKSURI   string // JWKS endpoint, used as given; not discovered from Authority
}

// Enabled reports whether transport auth should be enforced.
func (a Auth) Enabled() bool {
	return a.Authority != ""
}

// FrozenParams is the two-level merge map described in spec.md §4.2 and
// §9: a global map plus a per-API override map. Per-API wins on conflict.
type FrozenParams struct {
	Global map[string]string            `yaml:"global" json:"global" mapstructure:"global"`
	PerAPI map[string]map[string]string `yaml:"per_api" json:"per_api" mapstructure:"per_api"`
}

// Merged returns the effective frozen-parameter map for the given API
// slug: the global map overlaid by that API's overrides.
func (f FrozenParams) Merged(apiSlug string) map[string]string {
	out := make(map[string]string, len(f.Global))
	for k, v := range f.Global {
		out[k] = v
	}
	for k, v := range f.PerAPI[apiSlug] {
		out[k] = v
	}
	return out
}

// Config is the full, immutable server configuration. It is constructed
// once at startup and shared read-only thereafter, the same way the
// manifest is.
type Config struct {
	Specs  []string
	OutDir string

	Transport Transport
	Port      int

	Timeout       time.Duration
	MemoryLimitMB int64
	MaxAPICalls   int

	Auth Auth

	Frozen FrozenParams
}

// New returns a Config seeded with defaults, then overlaid with any
// recognized environment variables. Flag values are applied afterward by
// the CLI layer, which always wins over both.
func New() *Config {
	c := &Config{
		Transport:     TransportStdio,
		Port:          DefaultPort,
		Timeout:       DefaultTimeout,
		MemoryLimitMB: DefaultMemoryLimitMB,
		MaxAPICalls:   DefaultMaxAPICalls,
	}
	c.applyEnv()
	return c
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MCP_AUTH_AUTHORITY"); v != "" {
		c.Auth.Authority = v
	}
	if v := os.Getenv("MCP_AUTH_AUDIENCE"); v != "" {
		c.Auth.Audience = v
	}
	if v := os.Getenv("MCP_AUTH_JWKS_URI"); v != "" {
		c.Auth.JWKSURI = v
	}
}

// MemoryLimitBytes returns the configured VM memory quota in bytes.
func (c *Config) MemoryLimitBytes() int64 {
	return c.MemoryLimitMB * 1024 * 1024
}

// ParseMemoryMB coerces an arbitrary flag/env value (int, string, float)
// into a whole number of megabytes using github.com/spf13/cast, the same
// coercion library the teacher's config package uses for environment
// overlays.
func ParseMemoryMB(v any) (int64, error) {
	return cast.ToInt64E(v)
}
