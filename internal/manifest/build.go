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

package manifest

import (
	"github.com/oasmcp/oasmcp/internal/config"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/oasdoc"
)

// Builder accumulates normalized documents and produces an immutable
// Manifest.
type Builder struct {
	frozen config.FrozenParams

	usedAPISlugs map[string]bool
	schemaNames  map[string]bool

	apis       []Api
	operations []Operation
	schemas    []Schema
}

// NewBuilder returns a Builder that applies the given frozen-parameter
// configuration to every document added.
func NewBuilder(frozen config.FrozenParams) *Builder {
	return &Builder{
		frozen:       frozen,
		usedAPISlugs: map[string]bool{},
		schemaNames:  map[string]bool{},
	}
}

// AddDocument folds one normalized OpenAPI document into the
// in-construction manifest.
func (b *Builder) AddDocument(doc *oasdoc.NormalizedDocument) error {
	slug := dedupeAPISlug(slugifyAPI(doc.Title), b.usedAPISlugs)
	b.usedAPISlugs[slug] = true

	b.apis = append(b.apis, Api{
		Name:        slug,
		Title:       doc.Title,
		BaseURL:     doc.BaseURL,
		Description: doc.Description,
		Auth:        convertAuthScheme(doc.Auth),
	})

	merged := b.frozen.Merged(slug)

	usedOpIDs := map[string]bool{}
	for _, existing := range b.operations {
		usedOpIDs[existing.ID] = true
	}
	for _, op := range doc.Operations {
		id := op.OperationID
		if id != "" {
			id = snakeCase(id)
		} else {
			id = synthesizeOperationName(op.Method, op.Path)
		}
		id = dedupeOperationID(id, usedOpIDs)
		usedOpIDs[id] = true

		params, err := applyFrozenParams(op.Parameters, merged)
		if err != nil {
			return err
		}

		var body *RequestBody
		if op.HasBody {
			body = &RequestBody{Required: op.BodyRequired, SchemaRef: op.BodySchemaRef}
		}

		b.operations = append(b.operations, Operation{
			ID:                id,
			APIRef:            slug,
			Method:            op.Method,
			PathTemplate:      op.Path,
			Tag:               op.Tag,
			Summary:           op.Summary,
			Description:       op.Description,
			Parameters:        params,
			Body:              body,
			ResponseSchemaRef: op.ResponseSchemaRef,
			ResponseIsArray:   op.ResponseIsArray,
		})
	}

	for _, s := range doc.Schemas {
		name := s.Name
		if b.schemaNames[name] {
			return errorsx.Newf(errorsx.KindDuplicateName, "schema name %q already used in manifest", name).
				WithDetail("name", name)
		}
		b.schemaNames[name] = true

		fields := make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = Field{
				Name:        f.Name,
				Type:        convertFieldType(f.Type),
				Required:    f.Required,
				Nullable:    f.Nullable,
				Format:      f.Format,
				Enum:        f.Enum,
				Description: f.Description,
			}
		}
		b.schemas = append(b.schemas, Schema{Name: name, Description: s.Description, Fields: fields})
	}

	return nil
}

// Build finalizes the accumulated documents into a frozen Manifest.
func (b *Builder) Build() *Manifest {
	m := &Manifest{Apis: b.apis, Operations: b.operations, Schemas: b.schemas}
	m.Freeze()
	return m
}

// applyFrozenParams sets FrozenValue on each parameter matching a key in
// merged. All other metadata is retained unchanged; unmatched frozen
// keys are silently ignored. Freezing only ever assigns a concrete
// value, so a required path parameter can never end up frozen-absent.
func applyFrozenParams(params []oasdoc.NormalizedParam, merged map[string]string) ([]Parameter, error) {
	out := make([]Parameter, len(params))
	for i, p := range params {
		mp := Parameter{
			Name:     p.Name,
			Location: ParamLocation(p.Location),
			Type:     PrimitiveType(p.Type),
			Required: p.Required,
			Default:  p.Default,
			Enum:     p.Enum,
		}
		if val, ok := merged[p.Name]; ok {
			v := val
			mp.FrozenValue = &v
		}
		out[i] = mp
	}
	return out, nil
}

// convertAuthScheme adapts an oasdoc.AuthScheme (oasdoc has no dependency
// on this package, so it carries its own copy of the shape) into the
// manifest's AuthScheme.
func convertAuthScheme(a oasdoc.AuthScheme) AuthScheme {
	return AuthScheme{Kind: a.Kind, KeyLocation: a.KeyLocation, KeyName: a.KeyName}
}

// convertFieldType adapts an oasdoc.FieldType into the manifest's
// FieldType, recursing through Elem for array/map element types.
func convertFieldType(ft oasdoc.FieldType) FieldType {
	out := FieldType{Kind: ft.Kind, Ref: ft.Ref}
	if ft.Elem != nil {
		elem := convertFieldType(*ft.Elem)
		out.Elem = &elem
	}
	return out
}
