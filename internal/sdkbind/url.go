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

package sdkbind

import (
	"net/url"
	"strings"

	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
)

var reservedHeaderNames = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
}

// buildURL substitutes path parameters into op's path template, appends
// query parameters, and joins the result to api's base URL.
func buildURL(api *manifest.Api, op *manifest.Operation, params []resolvedParam) (string, error) {
	path := op.PathTemplate
	query := url.Values{}

	for _, p := range params {
		switch p.Location {
		case manifest.LocationPath:
			placeholder := "{" + p.Name + "}"
			if !strings.Contains(path, placeholder) {
				return "", errorsx.Newf(errorsx.KindBadParam, "path parameter %q has no matching placeholder", p.Name)
			}
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(p.Value))
		case manifest.LocationQuery:
			query.Set(p.Name, p.Value)
		}
	}

	base := strings.TrimRight(api.BaseURL, "/")
	full := base + path
	if encoded := query.Encode(); encoded != "" {
		full += "?" + encoded
	}
	return full, nil
}

// collectHeaders gathers header-location parameters into a header map,
// refusing any that collide with the reserved Authorization/X-API-Key
// headers the oasdoc normalizer already rejected at load time.
func collectHeaders(params []resolvedParam) map[string]string {
	headers := map[string]string{}
	for _, p := range params {
		if p.Location != manifest.LocationHeader {
			continue
		}
		if reservedHeaderNames[strings.ToLower(p.Name)] {
			continue
		}
		headers[p.Name] = p.Value
	}
	return headers
}
