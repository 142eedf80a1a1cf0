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

// Package dispatch sends the HTTP requests an executing script's SDK
// calls translate into: one pooled client shared by every
// execution, credential injection by scheme, and a per-request timeout
// bound to the script's remaining deadline.
package dispatch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/oasmcp/oasmcp/internal/credentials"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
)

// maxResponseBody bounds how much of an upstream response is read into
// memory; it feeds the script's own memory quota rather than replacing
// it, so it is set generously.
const maxResponseBody = 16 << 20 // 16 MiB

// Client is the single outbound HTTP client shared by every execution and
// every upstream API. Safe for concurrent use.
type Client struct {
	http *http.Client
}

// New builds a pooled client, sized for many short-lived script
// executions issuing a handful of requests each.
func New() *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{http: &http.Client{Transport: transport}}
}

// Underlying exposes the pooled *http.Client so other components that
// need to make their own outbound calls (the transport-auth JWKS
// fetcher) share the same connection pool instead of creating another.
func (c *Client) Underlying() *http.Client {
	return c.http
}

// Request is one outbound call, already fully resolved: URL built,
// parameters substituted, body encoded.
type Request struct {
	API         *manifest.Api
	Method      string
	URL         string
	Headers     map[string]string
	Body        []byte
	Credential  credentials.Credential
	Timeout     time.Duration
}

// Response is the upstream's reply, decoded only as far as headers and a
// raw body; §4.7 hands 4xx/5xx straight through to the script rather than
// treating them as dispatcher-level errors.
type Response struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
}

// Do sends req, injecting credentials per req.API.Auth's scheme and
// applying req.Headers after auth so explicit per-call headers win ties.
// Network failures (DNS, connection refused, TLS, context deadline) are
// returned as *errorsx.Error with KindNetwork; HTTP-level error statuses
// are not treated as Go errors at all.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout == 0 {
			timeout = remaining
		}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindNetwork, err, "failed to construct request")
	}
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	injectAuth(httpReq, req.API, req.Credential)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindNetwork, err, "request to "+req.API.Name+" failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindNetwork, err, "failed to read response body")
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// injectAuth applies cred to req according to api's configured scheme.
// An api with no auth configured, or an empty credential, leaves the
// request unmodified.
func injectAuth(req *http.Request, api *manifest.Api, cred credentials.Credential) {
	switch api.Auth.Kind {
	case "bearer":
		if cred.Token != "" {
			req.Header.Set("Authorization", "Bearer "+cred.Token)
		}
	case "api_key":
		if cred.APIKey == "" {
			return
		}
		switch api.Auth.KeyLocation {
		case "query":
			q := req.URL.Query()
			q.Set(api.Auth.KeyName, cred.APIKey)
			req.URL.RawQuery = q.Encode()
		default: // "header" and any unrecognized location default to header
			name := api.Auth.KeyName
			if name == "" {
				name = "X-API-Key"
			}
			req.Header.Set(name, cred.APIKey)
		}
	case "basic":
		if cred.User != "" {
			req.SetBasicAuth(cred.User, cred.Pass)
		}
	}
}
