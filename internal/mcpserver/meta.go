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

package mcpserver

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oasmcp/oasmcp/internal/credentials"
	"github.com/oasmcp/oasmcp/internal/errorsx"
)

var errMissingScript = errorsx.New(errorsx.KindBadParam, "execute_script requires a non-empty \"script\" argument")

// perAPICredential is the wire shape of one entry under _meta.auth, e.g.
// {"type": "bearer", "token": "T"}.
type perAPICredential struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	APIKey string `json:"api_key"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
}

// extractAuthOverrides pulls the request's out-of-band per-call
// credential overrides from its MCP request metadata: a
// "_meta.auth" object keyed by API name. This is read generically, by
// round-tripping request.Params through JSON, rather than against a
// fixed struct field, since _meta is free-form protocol metadata rather
// than part of the tool's declared input schema.
func extractAuthOverrides(request mcp.CallToolRequest) credentials.Map {
	overrides := credentials.Map{}

	raw, err := json.Marshal(request.Params)
	if err != nil {
		return overrides
	}

	var parsed struct {
		Meta struct {
			Auth map[string]perAPICredential `json:"auth"`
		} `json:"_meta"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return overrides
	}

	for api, c := range parsed.Meta.Auth {
		overrides[api] = credentials.Credential{
			Scheme: c.Type,
			Token:  c.Token,
			APIKey: c.APIKey,
			User:   c.User,
			Pass:   c.Pass,
		}
	}
	return overrides
}
