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

package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// petstorePet mirrors the seeded fixture data used across the scenarios in
// the project's design document: 1:Fido active dog owner=1, 2:Whiskers
// adopted cat owner=1, 3:Buddy active dog owner=2, 4:Luna pending cat with
// no owner.
type petstorePet struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Tag     string `json:"tag"`
	OwnerID *int   `json:"owner_id,omitempty"`
}

func intPtr(n int) *int { return &n }

// newPetstoreUpstream starts an httptest.Server backing a minimal pets API:
// GET /pets (list, filterable by status/limit), GET /pets/{id}, and
// POST /pets (requires a bearer token).
func newPetstoreUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	pets := []petstorePet{
		{ID: 1, Name: "Fido", Status: "active", Tag: "dog", OwnerID: intPtr(1)},
		{ID: 2, Name: "Whiskers", Status: "adopted", Tag: "cat", OwnerID: intPtr(1)},
		{ID: 3, Name: "Buddy", Status: "active", Tag: "dog", OwnerID: intPtr(2)},
		{ID: 4, Name: "Luna", Status: "pending", Tag: "cat"},
	}
	nextID := 5

	mux := http.NewServeMux()
	mux.HandleFunc("/pets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			status := r.URL.Query().Get("status")
			limit := -1
			if l := r.URL.Query().Get("limit"); l != "" {
				n, err := strconv.Atoi(l)
				require.NoError(t, err)
				limit = n
			}
			var matched []petstorePet
			for _, p := range pets {
				if status != "" && p.Status != status {
					continue
				}
				matched = append(matched, p)
				if limit >= 0 && len(matched) >= limit {
					break
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": matched, "total": len(pets)})
		case http.MethodPost:
			if r.Header.Get("Authorization") == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing credentials"})
				return
			}
			var body struct {
				Name   string `json:"name"`
				Status string `json:"status"`
				Tag    string `json:"tag"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			p := petstorePet{ID: nextID, Name: body.Name, Status: body.Status, Tag: body.Tag}
			nextID++
			pets = append(pets, p)
			writeJSON(w, http.StatusCreated, p)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/pets/", func(w http.ResponseWriter, r *http.Request) {
		idStr := r.URL.Path[len("/pets/"):]
		id, err := strconv.Atoi(idStr)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		for _, p := range pets {
			if p.ID == id {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// petstoreSpecYAML returns the "Test API" OpenAPI document (spec.md §8)
// pointed at the given upstream base URL.
const petstoreSpecYAML = `
openapi: "3.0.3"
info:
  title: Test API
  description: A tiny pets fixture API.
  version: "1.0.0"
servers:
  - url: %s
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
  schemas:
    Pet:
      type: object
      description: A single pet.
      properties:
        id:
          type: integer
        name:
          type: string
        status:
          type: string
          enum: [active, adopted, pending]
        tag:
          type: string
        owner_id:
          type: integer
          nullable: true
      required: [id, name, status]
    PetCreate:
      type: object
      properties:
        name:
          type: string
        status:
          type: string
        tag:
          type: string
      required: [name]
    PetList:
      type: object
      properties:
        items:
          type: array
          items:
            $ref: "#/components/schemas/Pet"
        total:
          type: integer
      required: [items, total]
security:
  - bearerAuth: []
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
        - name: status
          in: query
          schema:
            type: string
            enum: [active, adopted, pending]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/PetList"
    post:
      operationId: createPet
      summary: Create a pet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/PetCreate"
      responses:
        "201":
          description: Created
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
  /pets/{pet_id}:
    get:
      operationId: getPet
      summary: Get a pet by id
      parameters:
        - name: pet_id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
`

// writePetstoreSpec renders the fixture document against upstream's URL and
// writes it to a temp file, returning its path.
func writePetstoreSpec(t *testing.T, upstream *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "petstore.yaml")
	doc := fmt.Sprintf(petstoreSpecYAML, upstream.URL)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}
