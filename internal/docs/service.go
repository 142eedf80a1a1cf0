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
	"sort"
	"strings"

	"github.com/oasmcp/oasmcp/internal/annotate"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
)

// ApiSummary is one row of ListApis' result.
type ApiSummary struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	BaseURL         string `json:"base_url"`
	OperationCount  int    `json:"operation_count"`
}

// Service serves agent introspection requests. Every method is pure over
// the immutable manifest — no side effects.
type Service struct {
	m     *manifest.Manifest
	index *searchIndex
}

// New builds a Service, constructing its search index once.
func New(m *manifest.Manifest) *Service {
	return &Service{m: m, index: buildIndex(m)}
}

// ListApis returns every API's name, description, base URL, and operation
// count.
func (s *Service) ListApis() []ApiSummary {
	out := make([]ApiSummary, 0, len(s.m.Apis))
	for i := range s.m.Apis {
		a := &s.m.Apis[i]
		out = append(out, ApiSummary{
			Name:           a.Name,
			Description:    a.Description,
			BaseURL:        a.BaseURL,
			OperationCount: len(s.m.OperationsForAPI(a.Name)),
		})
	}
	return out
}

// ListFunctions returns function names filtered by API and/or tag; either
// filter may be empty to mean "no filter".
func (s *Service) ListFunctions(api, tag string) []string {
	var out []string
	for i := range s.m.Operations {
		op := &s.m.Operations[i]
		if api != "" && op.APIRef != api {
			continue
		}
		if tag != "" && op.Tag != tag {
			continue
		}
		out = append(out, op.ID)
	}
	sort.Strings(out)
	return out
}

// GetFunctionDocs returns the annotation string for the named operation
// and every schema it transitively references, by name.
func (s *Service) GetFunctionDocs(name string) (string, error) {
	op, ok := s.m.Operation(name)
	if !ok {
		return "", errorsx.Newf(errorsx.KindBadParam, "unknown function %q", name).WithDetail("name", name)
	}

	var b strings.Builder
	b.WriteString(annotate.Operation(op))

	for _, schemaName := range annotate.ReferencedSchemas(op, s.m) {
		if sch, ok := s.m.Schema(schemaName); ok {
			b.WriteString("\n")
			b.WriteString(annotate.Schema(sch))
		}
	}
	return b.String(), nil
}

// GetSchema returns the annotation for a single schema.
func (s *Service) GetSchema(name string) (string, error) {
	sch, ok := s.m.Schema(name)
	if !ok {
		return "", errorsx.Newf(errorsx.KindBadParam, "unknown schema %q", name).WithDetail("name", name)
	}
	return annotate.Schema(sch), nil
}

// SearchDocs returns ranked matches across operation names, summaries,
// descriptions, and schema/field names/descriptions.
func (s *Service) SearchDocs(query string) []SearchResult {
	return s.index.search(query)
}

// Manifest exposes the underlying manifest for components (the MCP
// resource tree, the SDK binding layer) that need direct access.
func (s *Service) Manifest() *manifest.Manifest {
	return s.m
}
