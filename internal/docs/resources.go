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

package docs

import (
	"fmt"
	"strings"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// Resource is one browsable node in the sdk://{api}/... hierarchy:
// per-API overview, per-API function list, per-API schema list,
// individual function, individual schema.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// ListResources enumerates every browsable resource URI for the current
// manifest, used to answer MCP's resources/list method.
func (s *Service) ListResources() []Resource {
	var out []Resource
	for _, api := range s.ListApis() {
		out = append(out,
			Resource{
				URI:         fmt.Sprintf("sdk://%s", api.Name),
				Name:        api.Name + " overview",
				Description: api.Description,
				MimeType:    "text/markdown",
			},
			Resource{
				URI:         fmt.Sprintf("sdk://%s/functions", api.Name),
				Name:        api.Name + " functions",
				Description: "Function list for " + api.Name,
				MimeType:    "text/plain",
			},
			Resource{
				URI:         fmt.Sprintf("sdk://%s/schemas", api.Name),
				Name:        api.Name + " schemas",
				Description: "Schema list for " + api.Name,
				MimeType:    "text/plain",
			},
		)
		for _, fn := range s.ListFunctions(api.Name, "") {
			out = append(out, Resource{
				URI:      fmt.Sprintf("sdk://%s/functions/%s", api.Name, fn),
				Name:     fn,
				MimeType: "text/plain",
			})
		}
	}
	for i := range s.m.Schemas {
		name := s.m.Schemas[i].Name
		out = append(out, Resource{
			URI:      fmt.Sprintf("sdk://schemas/%s", name),
			Name:     name,
			MimeType: "text/plain",
		})
	}
	return out
}

// ReadResource renders the content for a single sdk:// URI.
func (s *Service) ReadResource(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "sdk://")
	if !ok {
		return "", errorsx.Newf(errorsx.KindBadParam, "not an sdk:// resource: %s", uri)
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 2 && parts[0] == "schemas":
		return s.GetSchema(parts[1])

	case len(parts) == 1:
		return s.renderAPIOverview(parts[0])

	case len(parts) == 2 && parts[1] == "functions":
		return strings.Join(s.ListFunctions(parts[0], ""), "\n"), nil

	case len(parts) == 2 && parts[1] == "schemas":
		return s.renderAPISchemaList(parts[0])

	case len(parts) == 3 && parts[1] == "functions":
		return s.GetFunctionDocs(parts[2])

	default:
		return "", errorsx.Newf(errorsx.KindBadParam, "unrecognized sdk:// resource: %s", uri)
	}
}

func (s *Service) renderAPIOverview(apiName string) (string, error) {
	api, ok := s.m.API(apiName)
	if !ok {
		return "", errorsx.Newf(errorsx.KindBadParam, "unknown api %q", apiName).WithDetail("name", apiName)
	}
	ops := s.m.OperationsForAPI(apiName)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\nbase url: %s\n\n%d operations\n", api.Title, api.Description, api.BaseURL, len(ops))
	return b.String(), nil
}

func (s *Service) renderAPISchemaList(apiName string) (string, error) {
	if _, ok := s.m.API(apiName); !ok {
		return "", errorsx.Newf(errorsx.KindBadParam, "unknown api %q", apiName).WithDetail("name", apiName)
	}
	seen := map[string]bool{}
	var names []string
	for _, op := range s.m.OperationsForAPI(apiName) {
		for _, name := range (func() []string {
			var refs []string
			if op.Body != nil && op.Body.SchemaRef != "" {
				refs = append(refs, op.Body.SchemaRef)
			}
			if op.ResponseSchemaRef != "" {
				refs = append(refs, op.ResponseSchemaRef)
			}
			return refs
		})() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return strings.Join(names, "\n"), nil
}
