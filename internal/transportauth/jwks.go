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

package transportauth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// jwksCache fetches and caches RSA public keys from a JWKS endpoint, keyed
// by "kid", with lazy refresh when an unknown kid is presented
//.
type jwksCache struct {
	uri    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newJWKSCache(uri string, client *http.Client) *jwksCache {
	return &jwksCache{uri: uri, client: client, keys: map[string]*rsa.PublicKey{}}
}

// key returns the public key for kid, refreshing the JWKS document once if
// kid is not already cached.
func (c *jwksCache) key(kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	k, ok := c.keys[kid]
	c.mu.RUnlock()
	if ok {
		return k, nil
	}

	if err := c.refresh(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok = c.keys[kid]
	if !ok {
		return nil, errorsx.Newf(errorsx.KindInvalidToken, "unknown signing key %q", kid).WithDetail("kid", kid)
	}
	return k, nil
}

func (c *jwksCache) refresh() error {
	req, err := http.NewRequest(http.MethodGet, c.uri, nil)
	if err != nil {
		return errorsx.Wrap(errorsx.KindJwksFetch, err, "failed to build JWKS request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return errorsx.Wrap(errorsx.KindJwksFetch, err, "failed to fetch JWKS")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errorsx.Newf(errorsx.KindJwksFetch, "JWKS endpoint returned status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return errorsx.Wrap(errorsx.KindJwksFetch, err, "failed to decode JWKS")
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKeyFromJWK(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

func rsaPublicKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
