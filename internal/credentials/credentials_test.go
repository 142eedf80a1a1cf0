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

package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolve_BearerTakesPriority(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"PETSTORE_BEARER_TOKEN": "tok",
		"PETSTORE_API_KEY":      "key",
	}

	m := Resolve([]string{"petstore"}, lookupFrom(env))

	got := m.Get("petstore")
	assert.Equal(t, "bearer", got.Scheme)
	assert.Equal(t, "tok", got.Token)
}

func TestResolve_APIKeyWhenNoBearer(t *testing.T) {
	t.Parallel()

	env := map[string]string{"PETSTORE_API_KEY": "key"}
	m := Resolve([]string{"petstore"}, lookupFrom(env))

	got := m.Get("petstore")
	assert.Equal(t, "api_key", got.Scheme)
	assert.Equal(t, "key", got.APIKey)
}

func TestResolve_BasicWhenNoBearerOrKey(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"PETSTORE_BASIC_USER": "alice",
		"PETSTORE_BASIC_PASS": "secret",
	}
	m := Resolve([]string{"petstore"}, lookupFrom(env))

	got := m.Get("petstore")
	assert.Equal(t, "basic", got.Scheme)
	assert.Equal(t, "alice", got.User)
	assert.Equal(t, "secret", got.Pass)
}

func TestResolve_NoEnvSetYieldsZeroCredential(t *testing.T) {
	t.Parallel()

	m := Resolve([]string{"petstore"}, lookupFrom(nil))
	assert.True(t, m.Get("petstore").IsZero())
	assert.True(t, m.Get("unknown_api").IsZero())
}

func TestResolve_EmptyBearerFallsThroughToAPIKey(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"PETSTORE_BEARER_TOKEN": "",
		"PETSTORE_API_KEY":      "key",
	}
	m := Resolve([]string{"petstore"}, lookupFrom(env))
	assert.Equal(t, "api_key", m.Get("petstore").Scheme)
}

func TestEnvPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"petstore", "PETSTORE"},
		{"petstore-v2", "PETSTORE_V2"},
		{"pet.store v2", "PET_STORE_V2"},
		{"__weird__", "WEIRD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envPrefix(tt.name), "envPrefix(%q)", tt.name)
	}
}

func TestMapMerge_OverridesWinWithoutMutatingOriginal(t *testing.T) {
	t.Parallel()

	base := Map{"petstore": {Scheme: "bearer", Token: "env-token"}}
	overrides := Map{"petstore": {Scheme: "bearer", Token: "request-token"}}

	merged := base.Merge(overrides)

	assert.Equal(t, "request-token", merged.Get("petstore").Token)
	assert.Equal(t, "env-token", base.Get("petstore").Token, "Merge must not mutate the receiver")
}

func TestMapMerge_KeepsUnoverriddenEntries(t *testing.T) {
	t.Parallel()

	base := Map{
		"petstore": {Scheme: "bearer", Token: "t"},
		"weather":  {Scheme: "api_key", APIKey: "k"},
	}
	merged := base.Merge(Map{"petstore": {Scheme: "bearer", Token: "override"}})

	assert.Equal(t, "override", merged.Get("petstore").Token)
	assert.Equal(t, "k", merged.Get("weather").APIKey)
}

func TestCredentialStringNeverLeaksMaterial(t *testing.T) {
	t.Parallel()

	c := Credential{Scheme: "bearer", Token: "super-secret-token"}
	s := c.String()

	assert.NotContains(t, s, "super-secret-token")
	assert.Equal(t, "<bearer>", s)
}

func TestCredentialStringZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<none>", Credential{}.String())
}
