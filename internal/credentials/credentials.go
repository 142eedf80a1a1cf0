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

// Package credentials resolves per-upstream-API credentials from
// environment variables, with an out-of-band per-request override channel
//. Credential material is never logged and never surfaced in an
// error's Message or Details.
package credentials

import (
	"fmt"
	"strings"
)

// Credential holds the material for one upstream API's auth scheme. Only
// the fields relevant to the API's configured scheme are populated.
type Credential struct {
	Scheme    string
	Token     string // bearer
	APIKey    string // api_key
	User      string // basic
	Pass      string // basic
}

// IsZero reports whether no credential material was resolved at all.
func (c Credential) IsZero() bool {
	return c.Token == "" && c.APIKey == "" && c.User == "" && c.Pass == ""
}

// Map is an immutable, per-execution set of resolved credentials keyed by
// API name. Never mutated in place; Merge returns a new Map.
type Map map[string]Credential

// EnvLookup matches os.LookupEnv's signature, injected for testability.
type EnvLookup func(key string) (string, bool)

// Resolve builds a Map from environment variables for each named API,
// following the precedence in §4.8: <API>_BEARER_TOKEN, then
// <API>_API_KEY, then <API>_BASIC_USER/<API>_BASIC_PASS. apiName is
// upper-cased and non-alphanumeric runs become underscores to form the
// env var prefix.
func Resolve(apiNames []string, lookup EnvLookup) Map {
	out := make(Map, len(apiNames))
	for _, name := range apiNames {
		prefix := envPrefix(name)

		var c Credential
		if v, ok := lookup(prefix + "_BEARER_TOKEN"); ok && v != "" {
			c = Credential{Scheme: "bearer", Token: v}
		} else if v, ok := lookup(prefix + "_API_KEY"); ok && v != "" {
			c = Credential{Scheme: "api_key", APIKey: v}
		} else if user, ok := lookup(prefix + "_BASIC_USER"); ok && user != "" {
			pass, _ := lookup(prefix + "_BASIC_PASS")
			c = Credential{Scheme: "basic", User: user, Pass: pass}
		}
		out[name] = c
	}
	return out
}

// envPrefix upper-cases name and replaces every non-alphanumeric run with
// a single underscore, e.g. "petstore-v2" -> "PETSTORE_V2".
func envPrefix(name string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// Merge returns a new Map with overrides applied on top of m, leaving m
// untouched. Used to layer a request's out-of-band _meta.auth overrides
// over the environment-resolved defaults for the lifetime of
// one execution only.
func (m Map) Merge(overrides Map) Map {
	out := make(Map, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Get returns the credential for an API, or a zero Credential if unknown.
func (m Map) Get(apiName string) Credential {
	return m[apiName]
}

// String never includes credential material, only the scheme present (or
// absence), so Map is safe to include in %v formatting during debugging.
func (c Credential) String() string {
	if c.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("<%s>", c.Scheme)
}
