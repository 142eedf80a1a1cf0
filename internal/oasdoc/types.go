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

package oasdoc

// ParamLocation mirrors manifest.ParamLocation; kept as a distinct type
// here so this package has no dependency on manifest (the manifest
// builder depends on oasdoc, not the other way around). The manifest
// builder converts between the two.
type ParamLocation string

const (
	LocationPath   ParamLocation = "path"
	LocationQuery  ParamLocation = "query"
	LocationHeader ParamLocation = "header"
)

// PrimitiveType mirrors manifest.PrimitiveType.
type PrimitiveType string

const (
	TypeString  PrimitiveType = "string"
	TypeInteger PrimitiveType = "integer"
	TypeNumber  PrimitiveType = "number"
	TypeBoolean PrimitiveType = "boolean"
)

// AuthScheme mirrors manifest.AuthScheme.
type AuthScheme struct {
	Kind        string
	KeyLocation string
	KeyName     string
}

// FieldType mirrors manifest.FieldType.
type FieldType struct {
	Kind string
	Elem *FieldType
	Ref  string
}

// NormalizedParam is an operation parameter after path/operation-level
// merge and type resolution, still carrying its raw OpenAPI name (the
// manifest builder applies slugging and the frozen-parameter merge).
type NormalizedParam struct {
	Name     string
	Location ParamLocation
	Type     PrimitiveType
	Required bool
	Default  *string
	Enum     []string
}

// NormalizedField is a Schema field after allOf flattening and type
// resolution.
type NormalizedField struct {
	Name        string
	Type        FieldType
	Required    bool
	Nullable    bool
	Format      string
	Enum        []string
	Description string
}

// NormalizedSchema is a named record type, including anonymous nested
// objects synthesized during normalization so every object-typed field can
// carry a Ref.
type NormalizedSchema struct {
	Name        string
	Description string
	Fields      []NormalizedField
}

// NormalizedOperation is one HTTP method+path entry, merged and resolved
// but not yet assigned a manifest-wide unique id.
type NormalizedOperation struct {
	OperationID string // raw operationId, "" if absent
	Method      string
	Path        string
	Tag         string
	Summary     string
	Description string
	Parameters  []NormalizedParam

	HasBody       bool
	BodyRequired  bool
	BodySchemaRef string // "" => untyped JSON body

	ResponseSchemaRef string
	ResponseIsArray   bool
}

// NormalizedDocument is one OpenAPI document, fully normalized: $refs
// resolved, allOf flattened, ready for the manifest builder to assign
// slugs and merge frozen parameters.
type NormalizedDocument struct {
	Source      string
	Title       string
	Description string
	BaseURL     string
	Auth        AuthScheme

	Operations []NormalizedOperation
	Schemas    []NormalizedSchema
}
