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

// Package transportauth provides HTTP Bearer JWT authentication
// middleware for the streamable-HTTP transport. Only the
// transport layer is authenticated here; it has nothing to do with the
// per-upstream-API credentials the dispatcher injects into outbound
// requests (see internal/credentials).
//
// # Basic Usage
//
//	verifier := transportauth.NewVerifier(authority, audience, jwksURI, httpClient)
//	mux.Handle("/mcp", verifier.Middleware(mcpHandler))
//	mux.HandleFunc("/.well-known/oauth-protected-resource", verifier.WellKnownHandler)
//
// A request without the expected scheme and signature is rejected with
// 401 and a WWW-Authenticate challenge header before it ever reaches the
// MCP handler. The well-known resource-metadata endpoint is served
// unauthenticated, as OAuth 2.0 Protected Resource Metadata requires.
package transportauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// Verifier validates bearer JWTs against a JWKS-published key set.
type Verifier struct {
	authority string
	audience  string
	jwks      *jwksCache
}

// NewVerifier builds a Verifier that fetches signing keys from jwksURI as
// given; the authority's discovery document is not consulted.
func NewVerifier(authority, audience, jwksURI string, client *http.Client) *Verifier {
	return &Verifier{
		authority: authority,
		audience:  audience,
		jwks:      newJWKSCache(jwksURI, client),
	}
}

// Middleware wraps next, rejecting any request that does not carry a
// valid bearer token for this verifier's authority and audience.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.authenticate(r); err != nil {
			v.writeChallenge(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (v *Verifier) authenticate(r *http.Request) error {
	header := r.Header.Get("Authorization")
	if header == "" {
		return errorsx.New(errorsx.KindMissingHeader, "missing Authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return errorsx.New(errorsx.KindInvalidHeader, "Authorization header must use the Bearer scheme")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, v.keyfunc,
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.authority),
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		return errorsx.Wrap(errorsx.KindInvalidToken, err, "token validation failed")
	}
	return nil
}

func (v *Verifier) keyfunc(t *jwt.Token) (any, error) {
	kid, ok := t.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errorsx.New(errorsx.KindInvalidToken, "token is missing a key id")
	}
	return v.jwks.key(kid)
}

// writeChallenge sends a 401 with a WWW-Authenticate challenge and a JSON
// problem body describing err. The challenge carries a resource_metadata
// parameter (RFC 9728 §7.1) pointing at this server's own
// oauth-protected-resource document, so a client that fails
// authentication can discover how to obtain a usable token.
func (v *Verifier) writeChallenge(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(
		`Bearer realm="oasmcp", error="invalid_token", resource_metadata=%q`,
		v.resourceMetadataURL(),
	))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(errorsx.ProblemJSON(err, ""))
}

// resourceMetadataURL is this server's well-known oauth-protected-resource
// document, resolved against its own audience - the resource identifier a
// compliant client already treats as this server's base URL.
func (v *Verifier) resourceMetadataURL() string {
	return strings.TrimSuffix(v.audience, "/") + "/.well-known/oauth-protected-resource"
}

// WellKnownHandler serves the unauthenticated OAuth 2.0 Protected Resource
// Metadata document (RFC 9728) describing this server's authorization
// server and audience, so MCP clients can discover how to obtain a token.
func (v *Verifier) WellKnownHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"resource":              v.audience,
		"authorization_servers": []string{v.authority},
	})
}
