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

//go:build integration

package oasdoc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/oasmcp/oasmcp/internal/oasdoc"
)

func TestOasdocIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "oasdoc Integration Suite")
}

func loadAndNormalize(doc string) (*oasdoc.NormalizedDocument, error) {
	dir, err := os.MkdirTemp("", "oasdoc-spec-*")
	Expect(err).NotTo(HaveOccurred())
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "spec.yaml")
	Expect(os.WriteFile(path, []byte(doc), 0o644)).To(Succeed())

	docs, err := oasdoc.Load(context.Background(), []string{path})
	if err != nil {
		return nil, err
	}
	return oasdoc.Normalize(docs[0])
}

var _ = Describe("OpenAPI spec loading and normalization", Label("integration"), func() {
	Describe("$ref resolution", func() {
		It("resolves a component schema $ref used as a response schema", func() {
			norm, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: Ref API
paths:
  /pets/{id}:
    get:
      operationId: getPet
      parameters:
        - name: id
          in: path
          required: true
          schema: { type: integer }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      properties:
        id: { type: integer }
        name: { type: string }
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(norm.Operations).To(HaveLen(1))
			Expect(norm.Operations[0].ResponseSchemaRef).To(Equal("Pet"))
			Expect(norm.Schemas).To(HaveLen(1))
			Expect(norm.Schemas[0].Name).To(Equal("Pet"))
		})

		It("rejects an external $ref as UnsupportedRef", func() {
			_, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: External Ref API
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "other-file.yaml#/Pet"
`)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("allOf composition", func() {
		It("merges properties in listed order, later overriding earlier, and unions required", func() {
			norm, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: AllOf API
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Dog"
components:
  schemas:
    Named:
      type: object
      required: [name]
      properties:
        name: { type: string }
    Dog:
      allOf:
        - $ref: "#/components/schemas/Named"
        - type: object
          required: [breed]
          properties:
            name: { type: string, description: "dog-specific override" }
            breed: { type: string }
`)
			Expect(err).NotTo(HaveOccurred())

			var dog *oasdoc.NormalizedSchema
			for i := range norm.Schemas {
				if norm.Schemas[i].Name == "Dog" {
					dog = &norm.Schemas[i]
				}
			}
			Expect(dog).NotTo(BeNil())

			byName := map[string]oasdoc.NormalizedField{}
			for _, f := range dog.Fields {
				byName[f.Name] = f
			}
			Expect(byName).To(HaveKey("name"))
			Expect(byName).To(HaveKey("breed"))
			Expect(byName["name"].Description).To(Equal("dog-specific override"), "later allOf member overrides earlier on property collision")
			Expect(byName["name"].Required).To(BeTrue())
			Expect(byName["breed"].Required).To(BeTrue())
		})
	})

	Describe("oneOf/anyOf in response schemas", func() {
		It("treats the field as untyped when oneOf is used", func() {
			norm, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: OneOf API
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      properties:
        value:
          oneOf:
            - type: string
            - type: integer
`)
			Expect(err).NotTo(HaveOccurred())
			var pet *oasdoc.NormalizedSchema
			for i := range norm.Schemas {
				if norm.Schemas[i].Name == "Pet" {
					pet = &norm.Schemas[i]
				}
			}
			Expect(pet).NotTo(BeNil())
			for _, f := range pet.Fields {
				if f.Name == "value" {
					Expect(f.Type.Kind).To(Equal("unknown"))
				}
			}
		})
	})

	Describe("nullable and additionalProperties", func() {
		It("preserves nullable as a per-field boolean alongside required", func() {
			norm, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: Nullable API
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      required: [owner_id]
      properties:
        owner_id:
          type: integer
          nullable: true
`)
			Expect(err).NotTo(HaveOccurred())
			var field oasdoc.NormalizedField
			for _, s := range norm.Schemas {
				for _, f := range s.Fields {
					if f.Name == "owner_id" {
						field = f
					}
				}
			}
			Expect(field.Required).To(BeTrue())
			Expect(field.Nullable).To(BeTrue())
		})

		It("derives map<string,T> for a property-less nested additionalProperties field", func() {
			norm, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: Map API
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      properties:
        labels:
          type: object
          additionalProperties:
            type: string
`)
			Expect(err).NotTo(HaveOccurred())
			var pet *oasdoc.NormalizedSchema
			for i := range norm.Schemas {
				if norm.Schemas[i].Name == "Pet" {
					pet = &norm.Schemas[i]
				}
			}
			Expect(pet).NotTo(BeNil())

			var found bool
			for _, f := range pet.Fields {
				if f.Name == "labels" {
					found = true
					Expect(f.Type.Kind).To(Equal("map"))
					Expect(f.Type.Elem).NotTo(BeNil())
					Expect(f.Type.Elem.Kind).To(Equal("string"))
				}
			}
			Expect(found).To(BeTrue())
		})
	})

	Describe("reserved header parameters", func() {
		It("rejects a header parameter named Authorization", func() {
			_, err := loadAndNormalize(`
openapi: "3.0.3"
info:
  title: Reserved Header API
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: Authorization
          in: header
          schema: { type: string }
      responses:
        "200":
          description: ok
`)
			Expect(err).To(HaveOccurred())
		})
	})
})
