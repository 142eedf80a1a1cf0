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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasmcp/oasmcp/internal/config"
	"github.com/oasmcp/oasmcp/internal/oasdoc"
)

func petstoreDoc() *oasdoc.NormalizedDocument {
	return &oasdoc.NormalizedDocument{
		Title:   "Test API",
		BaseURL: "https://api.example.com",
		Auth:    oasdoc.AuthScheme{Kind: "bearer"},
		Operations: []oasdoc.NormalizedOperation{
			{
				OperationID: "listPets",
				Method:      "GET",
				Path:        "/pets",
				Parameters: []oasdoc.NormalizedParam{
					{Name: "limit", Location: oasdoc.LocationQuery, Type: oasdoc.TypeInteger},
					{Name: "status", Location: oasdoc.LocationQuery, Type: oasdoc.TypeString},
				},
				ResponseSchemaRef: "Pet",
				ResponseIsArray:   true,
			},
			{
				OperationID: "getPet",
				Method:      "GET",
				Path:        "/pets/{pet_id}",
				Parameters: []oasdoc.NormalizedParam{
					{Name: "pet_id", Location: oasdoc.LocationPath, Type: oasdoc.TypeInteger, Required: true},
				},
				ResponseSchemaRef: "Pet",
			},
		},
		Schemas: []oasdoc.NormalizedSchema{
			{
				Name: "Pet",
				Fields: []oasdoc.NormalizedField{
					{Name: "id", Type: oasdoc.FieldType{Kind: "integer"}, Required: true},
					{Name: "name", Type: oasdoc.FieldType{Kind: "string"}, Required: true},
				},
			},
		},
	}
}

func TestBuilder_AddDocumentAndBuild(t *testing.T) {
	t.Parallel()

	b := NewBuilder(config.FrozenParams{})
	require.NoError(t, b.AddDocument(petstoreDoc()))
	m := b.Build()

	api, ok := m.API("test_api")
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com", api.BaseURL)
	assert.Equal(t, "bearer", api.Auth.Kind)

	op, ok := m.Operation("list_pets")
	require.True(t, ok)
	assert.Equal(t, "test_api", op.APIRef)
	assert.Equal(t, "GET", op.Method)

	_, ok = m.Operation("get_pet")
	require.True(t, ok)

	schema, ok := m.Schema("Pet")
	require.True(t, ok)
	assert.Len(t, schema.Fields, 2)

	assert.Len(t, m.OperationsForAPI("test_api"), 2)
}

func TestBuilder_DuplicateSchemaNameErrors(t *testing.T) {
	t.Parallel()

	b := NewBuilder(config.FrozenParams{})
	doc := petstoreDoc()
	doc.Schemas = append(doc.Schemas, oasdoc.NormalizedSchema{Name: "Pet"})

	err := b.AddDocument(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pet")
}

func TestBuilder_MultipleDocumentsDedupeAPISlugs(t *testing.T) {
	t.Parallel()

	b := NewBuilder(config.FrozenParams{})
	require.NoError(t, b.AddDocument(petstoreDoc()))

	second := petstoreDoc()
	second.Schemas = nil // avoid duplicate schema name across documents
	require.NoError(t, b.AddDocument(second))

	m := b.Build()
	_, ok := m.API("test_api")
	assert.True(t, ok)
	_, ok = m.API("test_api_2")
	assert.True(t, ok)
}

func TestBuilder_GlobalFrozenParamHidesFromVisibleSignature(t *testing.T) {
	t.Parallel()

	frozen := config.FrozenParams{Global: map[string]string{"status": "active"}}

	b := NewBuilder(frozen)
	require.NoError(t, b.AddDocument(petstoreDoc()))
	m := b.Build()

	op, ok := m.Operation("list_pets")
	require.True(t, ok)

	visible := op.VisibleParameters()
	for _, p := range visible {
		assert.NotEqual(t, "status", p.Name, "frozen parameter must not appear in the visible signature")
	}

	var found bool
	for _, p := range op.Parameters {
		if p.Name == "status" {
			found = true
			require.NotNil(t, p.FrozenValue)
			assert.Equal(t, "active", *p.FrozenValue)
		}
	}
	assert.True(t, found, "frozen parameter metadata must still be retained on the operation")
}

func TestBuilder_PerAPIFrozenParamWinsOverGlobal(t *testing.T) {
	t.Parallel()

	frozen := config.FrozenParams{
		Global: map[string]string{"status": "active"},
		PerAPI: map[string]map[string]string{
			"test_api": {"status": "pending"},
		},
	}

	b := NewBuilder(frozen)
	require.NoError(t, b.AddDocument(petstoreDoc()))
	m := b.Build()

	op, _ := m.Operation("list_pets")
	for _, p := range op.Parameters {
		if p.Name == "status" {
			require.NotNil(t, p.FrozenValue)
			assert.Equal(t, "pending", *p.FrozenValue)
		}
	}
}

func TestBuilder_UnmatchedFrozenParamsAreSilentlyIgnored(t *testing.T) {
	t.Parallel()

	frozen := config.FrozenParams{Global: map[string]string{"nonexistent_param": "x"}}

	b := NewBuilder(frozen)
	require.NoError(t, b.AddDocument(petstoreDoc()))
	m := b.Build()

	op, _ := m.Operation("list_pets")
	assert.Len(t, op.VisibleParameters(), 2)
}

func TestOperation_VisibleParametersExcludesFrozen(t *testing.T) {
	t.Parallel()

	v := "x"
	op := Operation{
		Parameters: []Parameter{
			{Name: "a"},
			{Name: "b", FrozenValue: &v},
			{Name: "c"},
		},
	}

	visible := op.VisibleParameters()
	require.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].Name)
	assert.Equal(t, "c", visible[1].Name)
}
