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
)

func TestSlugifyAPI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Test API", "test_api"},
		{"Pet Store!!", "pet_store"},
		{"  leading/trailing  ", "leading_trailing"},
		{"123 Numbers", "api_123_numbers"},
		{"", "api_"},
		{"___", "api_"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugifyAPI(tt.title), "slugifyAPI(%q)", tt.title)
	}
}

func TestDedupeAPISlug(t *testing.T) {
	t.Parallel()

	used := map[string]bool{}
	first := dedupeAPISlug("petstore", used)
	used[first] = true
	second := dedupeAPISlug("petstore", used)
	used[second] = true
	third := dedupeAPISlug("petstore", used)

	assert.Equal(t, "petstore", first)
	assert.Equal(t, "petstore_2", second)
	assert.Equal(t, "petstore_3", third)
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"listPets", "list_pets"},
		{"GetPetByID", "get_pet_by_id"},
		{"createPet", "create_pet"},
		{"already_snake", "already_snake"},
		{"With-Dashes.And.Dots", "with_dashes_and_dots"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, snakeCase(tt.in), "snakeCase(%q)", tt.in)
	}
}

func TestSynthesizeOperationName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/pets/{id}", "get_pet"},
		{"GET", "/pets", "get_pets"},
		{"POST", "/pets", "post_pets"},
		{"GET", "/categories/{id}", "get_category"},
		{"GET", "/boxes/{id}", "get_box"},
	}

	for _, tt := range tests {
		got := synthesizeOperationName(tt.method, tt.path)
		assert.Equal(t, tt.want, got, "synthesizeOperationName(%q, %q)", tt.method, tt.path)
	}
}

func TestSingularize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"pets", "pet"},
		{"categories", "category"},
		{"boxes", "box"},
		{"status", "statu"},
		{"data", "data"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, singularize(tt.in), "singularize(%q)", tt.in)
	}
}

func TestDedupeOperationID(t *testing.T) {
	t.Parallel()

	used := map[string]bool{}
	first := dedupeOperationID("get_pet", used)
	used[first] = true
	second := dedupeOperationID("get_pet", used)

	assert.Equal(t, "get_pet", first)
	assert.Equal(t, "get_pet_2", second)
}
