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

// Package annotate renders manifest operations and schemas as typed,
// human- and agent-readable documentation strings.
package annotate

import (
	"fmt"
	"strings"

	"github.com/oasmcp/oasmcp/internal/manifest"
)

// TypeExpr renders a FieldType as its annotation-surface type expression:
// primitive -> string|number|boolean, array -> {T}, object-ref -> schema
// name, map -> {[string]: T}.
func TypeExpr(t manifest.FieldType) string {
	switch t.Kind {
	case "string", "boolean":
		return t.Kind
	case "integer", "number":
		return "number"
	case "array":
		if t.Elem == nil {
			return "{any}"
		}
		return "{" + TypeExpr(*t.Elem) + "}"
	case "object":
		return t.Ref
	case "map":
		if t.Elem == nil {
			return "{[string]: any}"
		}
		return "{[string]: " + TypeExpr(*t.Elem) + "}"
	default:
		return "any"
	}
}

// Schema renders one named record type.
func Schema(s *manifest.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "type %s = {\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&b, "  // %s\n", s.Description)
	}
	for _, f := range s.Fields {
		fieldMarker := ""
		if !f.Required {
			fieldMarker = "?"
		} else if f.Nullable {
			fieldMarker = "?" // present but may be null
		}
		fmt.Fprintf(&b, "  %s%s: %s", f.Name, fieldMarker, TypeExpr(f.Type))

		var trailing []string
		if f.Description != "" {
			trailing = append(trailing, f.Description)
		}
		if f.Format != "" {
			trailing = append(trailing, "("+f.Format+")")
		}
		if len(f.Enum) > 0 {
			trailing = append(trailing, "one of: "+strings.Join(f.Enum, ", "))
		}
		if len(trailing) > 0 {
			fmt.Fprintf(&b, " // %s", strings.Join(trailing, " "))
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// paramsBlockLines renders the operation's visible parameters as a
// "{ name: Type, ... }" inline object type, one line per parameter.
func paramsBlockLines(op *manifest.Operation) []string {
	var lines []string
	for _, p := range op.VisibleParameters() {
		typeName := string(p.Type)
		if typeName == "integer" || typeName == "number" {
			typeName = "number"
		}
		marker := ""
		if !p.Required {
			marker = "?"
		}
		line := fmt.Sprintf("    %s%s: %s", p.Name, marker, typeName)
		if len(p.Enum) > 0 {
			line += " // one of: " + strings.Join(p.Enum, ", ")
		}
		lines = append(lines, line)
	}
	return lines
}

// Operation renders a function signature per the four-case table in §4.3.
func Operation(op *manifest.Operation) string {
	visible := op.VisibleParameters()
	hasParams := len(visible) > 0
	hasBody := op.Body != nil

	var sig strings.Builder
	fmt.Fprintf(&sig, "fn sdk.%s(", op.ID)

	switch {
	case hasParams && !hasBody:
		sig.WriteString("params: {\n")
		sig.WriteString(strings.Join(paramsBlockLines(op), ",\n"))
		sig.WriteString("\n  }")
	case hasParams && hasBody:
		sig.WriteString("params: {\n")
		sig.WriteString(strings.Join(paramsBlockLines(op), ",\n"))
		sig.WriteString("\n  }, body: ")
		sig.WriteString(bodyTypeName(op))
	case !hasParams && hasBody:
		sig.WriteString("body: ")
		sig.WriteString(bodyTypeName(op))
	}
	sig.WriteString(")")

	var b strings.Builder
	if op.Summary != "" {
		fmt.Fprintf(&b, "// %s\n", op.Summary)
	}
	if op.Description != "" {
		fmt.Fprintf(&b, "// %s\n", op.Description)
	}
	b.WriteString(sig.String())
	b.WriteString("\n")
	if op.ResponseSchemaRef != "" {
		ret := op.ResponseSchemaRef
		if op.ResponseIsArray {
			ret = "{" + ret + "}"
		}
		fmt.Fprintf(&b, "  -> %s\n", ret)
	} else {
		b.WriteString("  -> any\n")
	}
	return b.String()
}

func bodyTypeName(op *manifest.Operation) string {
	if op.Body != nil && op.Body.SchemaRef != "" {
		return op.Body.SchemaRef
	}
	return "any"
}

// ReferencedSchemas returns the schema names op's signature and return
// type transitively reference, so documentation tools can render an
// operation alongside every schema it mentions.
func ReferencedSchemas(op *manifest.Operation, m *manifest.Manifest) []string {
	seen := map[string]bool{}
	var order []string

	var visit func(name string)
	visit = func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
		s, ok := m.Schema(name)
		if !ok {
			return
		}
		for _, f := range s.Fields {
			visitType(f.Type, visit)
		}
	}

	for _, p := range op.Parameters {
		_ = p
	}
	if op.Body != nil && op.Body.SchemaRef != "" {
		visit(op.Body.SchemaRef)
	}
	if op.ResponseSchemaRef != "" {
		visit(op.ResponseSchemaRef)
	}
	return order
}

func visitType(t manifest.FieldType, visit func(string)) {
	switch t.Kind {
	case "object":
		visit(t.Ref)
	case "array", "map":
		if t.Elem != nil {
			visitType(*t.Elem, visit)
		}
	}
}
