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

import (
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// validateSchemaNodes compiles each named component schema as its own
// JSON Schema resource, so a malformed node (a "properties" that isn't
// an object, an "enum" that isn't an array, ...) is reported up front
// with a schema name attached, rather than surfacing later as a
// confusing panic or silent "unknown" field deep in flattenObject.
func validateSchemaNodes(named map[string]any) error {
	for name, node := range named {
		compiler := jsonschema.NewCompiler()
		url := "oasmcp://component/" + name
		if err := compiler.AddResource(url, node); err != nil {
			return errorsx.Wrapf(errorsx.KindBadSpec, err, "schema %q is not valid JSON", name).
				WithDetail("schema", name)
		}
		if _, err := compiler.Compile(url); err != nil {
			return errorsx.Wrapf(errorsx.KindBadSpec, err, "schema %q failed JSON Schema validation", name).
				WithDetail("schema", name)
		}
	}
	return nil
}
