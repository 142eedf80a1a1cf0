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

// Package oasdoc loads and normalizes OpenAPI 3.x documents into a form
// the manifest builder can consume without further indirection.
package oasdoc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// fetchTimeout bounds network fetches of remote spec sources.
const fetchTimeout = 15 * time.Second

// Document is one parsed-but-unnormalized OpenAPI document, indexed by its
// own root so $ref resolution has something to walk.
type Document struct {
	Source string
	Root   map[string]any
}

// sharedClient is reused across loads; a spec-loading client is a
// low-traffic, one-shot concern so a dedicated pool isn't warranted, but
// reuse still avoids re-dialing on multi-source loads.
var sharedClient = &http.Client{Timeout: fetchTimeout}

// Load reads and parses each source (a local file path or an http(s) URL)
// in order, auto-detecting YAML vs JSON from content.
func Load(ctx context.Context, sources []string) ([]*Document, error) {
	docs := make([]*Document, 0, len(sources))
	for _, src := range sources {
		raw, err := read(ctx, src)
		if err != nil {
			return nil, err
		}
		root, err := parse(raw)
		if err != nil {
			return nil, errorsx.Wrap(errorsx.KindBadSpec, err, "parsing spec document").
				WithDetail("source", src)
		}
		docs = append(docs, &Document{Source: src, Root: root})
	}
	return docs, nil
}

func read(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch(ctx, src)
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindBadSpec, err, "reading spec file").
			WithDetail("source", src)
	}
	return raw, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindSpecFetch, err, "building spec fetch request").
			WithDetail("url", url)
	}
	resp, err := sharedClient.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindSpecFetch, err, "fetching spec").
			WithDetail("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, errorsx.Newf(errorsx.KindSpecFetch, "fetching spec %s: status %d", url, resp.StatusCode).
			WithDetail("url", url).WithDetail("status", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parse auto-detects JSON vs YAML: a document whose first non-whitespace
// byte is '{' or '[' is parsed as JSON, otherwise as YAML (which is a
// superset of JSON but yaml.v3 preserves richer error locators for the
// common YAML-authored case).
func parse(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	var out map[string]any
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
