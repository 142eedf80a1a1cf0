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

// Package manifest defines the normalized, language-neutral IR produced from one or more OpenAPI documents, and the
// builder that derives it. A Manifest is immutable after construction and
// shared read-only across every execution in the server's lifetime.
package manifest

// AuthScheme describes how an API's upstream credential is applied.
type AuthScheme struct {
	Kind string `json:"kind"` // "bearer" | "api_key" | "basic" | "none"

	// For api_key: where the key is injected.
	KeyLocation string `json:"key_location,omitempty"` // "header" | "query"
	KeyName     string `json:"key_name,omitempty"`
}

// Api is a single OpenAPI document normalized into the manifest.
type Api struct {
	Name        string     `json:"name"` // slug, unique across the manifest
	Title       string     `json:"title"`
	BaseURL     string     `json:"base_url"`
	Description string     `json:"description,omitempty"`
	Auth        AuthScheme `json:"auth"`
}

// ParamLocation is where an operation parameter is carried on the wire.
type ParamLocation string

const (
	LocationPath   ParamLocation = "path"
	LocationQuery  ParamLocation = "query"
	LocationHeader ParamLocation = "header"
)

// PrimitiveType is a parameter's scalar type (parameters, unlike schema
// fields, are never arrays/objects/maps in this manifest).
type PrimitiveType string

const (
	TypeString  PrimitiveType = "string"
	TypeInteger PrimitiveType = "integer"
	TypeNumber  PrimitiveType = "number"
	TypeBoolean PrimitiveType = "boolean"
)

// Parameter is a single operation parameter.
type Parameter struct {
	Name     string        `json:"name"`
	Location ParamLocation `json:"location"`
	Type     PrimitiveType `json:"type"`
	Required bool          `json:"required"`
	Default  *string       `json:"default,omitempty"`
	Enum     []string      `json:"enum,omitempty"`

	// FrozenValue, when non-nil, fixes this parameter's value at
	// configuration time. A frozen parameter is never part of the
	// agent-visible signature but is still injected
	// at dispatch time.
	FrozenValue *string `json:"frozen_value,omitempty"`
}

// Visible reports whether the parameter should appear in the agent-facing
// signature and the execute_script-surfaced input schema.
func (p Parameter) Visible() bool {
	return p.FrozenValue == nil
}

// RequestBody describes an operation's JSON request body.
type RequestBody struct {
	Required bool   `json:"required"`
	SchemaRef string `json:"schema_ref,omitempty"` // empty => untyped object
}

// Operation is a single callable bound to one HTTP method+path of one API.
type Operation struct {
	ID          string      `json:"id"` // snake_case slug, unique within manifest
	APIRef      string      `json:"api_ref"`
	Method      string      `json:"method"`
	PathTemplate string     `json:"path_template"`
	Tag         string      `json:"tag,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Parameters  []Parameter `json:"parameters"`
	Body        *RequestBody `json:"body,omitempty"`

	// ResponseSchemaRef names the Schema describing the first matching
	// 2xx (or default) JSON response, or "" if none.
	ResponseSchemaRef string `json:"response_schema_ref,omitempty"`
	// ResponseIsArray reports whether the 2xx response is a JSON array of
	// ResponseSchemaRef elements rather than a single object.
	ResponseIsArray bool `json:"response_is_array,omitempty"`
}

// VisibleParameters returns the operation's non-frozen parameters, in
// declared order.
func (o Operation) VisibleParameters() []Parameter {
	out := make([]Parameter, 0, len(o.Parameters))
	for _, p := range o.Parameters {
		if p.Visible() {
			out = append(out, p)
		}
	}
	return out
}

// FieldType is the type of a Schema Field. Exactly one of the Elem/Ref
// fields is meaningful, selected by Kind.
type FieldType struct {
	Kind string `json:"kind"` // "string"|"integer"|"number"|"boolean"|"array"|"object"|"map"|"unknown"

	// Elem is the element type for Kind == "array" or the value type for
	// Kind == "map".
	Elem *FieldType `json:"elem,omitempty"`
	// Ref names a Schema for Kind == "object".
	Ref string `json:"ref,omitempty"`
}

// Field is a single member of a Schema.
type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Nullable    bool      `json:"nullable"`
	Format      string    `json:"format,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema is a named record type referenced by operations and by other
// schemas' object/array fields.
type Schema struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Manifest is the complete, immutable IR for one or more normalized
// OpenAPI documents. Construct with a Builder; never mutate after Build
// returns.
type Manifest struct {
	Apis       []Api                 `json:"apis"`
	Operations []Operation           `json:"operations"`
	Schemas    []Schema              `json:"schemas"`

	apiIndex       map[string]*Api
	operationIndex map[string]*Operation
	schemaIndex    map[string]*Schema
	opsByAPI       map[string][]*Operation
}

// Freeze builds the manifest's internal lookup indexes. Call once after
// construction; safe to call only from a single goroutine before the
// Manifest is published to readers.
func (m *Manifest) Freeze() {
	m.apiIndex = make(map[string]*Api, len(m.Apis))
	for i := range m.Apis {
		m.apiIndex[m.Apis[i].Name] = &m.Apis[i]
	}
	m.operationIndex = make(map[string]*Operation, len(m.Operations))
	m.opsByAPI = make(map[string][]*Operation, len(m.Apis))
	for i := range m.Operations {
		op := &m.Operations[i]
		m.operationIndex[op.ID] = op
		m.opsByAPI[op.APIRef] = append(m.opsByAPI[op.APIRef], op)
	}
	m.schemaIndex = make(map[string]*Schema, len(m.Schemas))
	for i := range m.Schemas {
		m.schemaIndex[m.Schemas[i].Name] = &m.Schemas[i]
	}
}

// API looks up an Api by slug.
func (m *Manifest) API(name string) (*Api, bool) {
	a, ok := m.apiIndex[name]
	return a, ok
}

// Operation looks up an Operation by id.
func (m *Manifest) Operation(id string) (*Operation, bool) {
	op, ok := m.operationIndex[id]
	return op, ok
}

// Schema looks up a Schema by name.
func (m *Manifest) Schema(name string) (*Schema, bool) {
	s, ok := m.schemaIndex[name]
	return s, ok
}

// OperationsForAPI returns the operations belonging to the given API, in
// manifest order.
func (m *Manifest) OperationsForAPI(apiName string) []*Operation {
	return m.opsByAPI[apiName]
}
