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
	"strconv"
	"strings"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// resolveRef follows a single "#/a/b/c" JSON pointer within root. Only
// fragment-only refs into the same document are supported; anything else
// (an external file, a bare URL) is UnsupportedRef.
func resolveRef(root map[string]any, ref string) (map[string]any, error) {
	if !strings.HasPrefix(ref, "#/") {
		return nil, errorsx.Newf(errorsx.KindUnsupportedRef, "external $ref not supported: %s", ref).
			WithDetail("ref", ref)
	}
	parts := strings.Split(strings.TrimPrefix(ref, "#/"), "/")
	var cur any = root
	for _, raw := range parts {
		token := unescapeToken(raw)
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, errorsx.Newf(errorsx.KindUnsupportedRef, "unresolvable $ref: %s", ref).
					WithDetail("ref", ref)
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, errorsx.Newf(errorsx.KindUnsupportedRef, "unresolvable $ref: %s", ref).
					WithDetail("ref", ref)
			}
			cur = node[idx]
		default:
			return nil, errorsx.Newf(errorsx.KindUnsupportedRef, "unresolvable $ref: %s", ref).
				WithDetail("ref", ref)
		}
	}
	obj, ok := cur.(map[string]any)
	if !ok {
		return nil, errorsx.Newf(errorsx.KindUnsupportedRef, "$ref does not point to an object: %s", ref).
			WithDetail("ref", ref)
	}
	return obj, nil
}

func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

// schemaNameFromRef extracts the component name from a
// "#/components/schemas/Foo" style ref, or "" if the ref doesn't point
// there.
func schemaNameFromRef(ref string) string {
	const prefix = "#/components/schemas/"
	if strings.HasPrefix(ref, prefix) {
		return strings.TrimPrefix(ref, prefix)
	}
	return ""
}

// checkedSchemaNameFromRef is schemaNameFromRef plus the UnsupportedRef
// check spec.md §4.1 requires: a ref that doesn't point into the same
// document at all (no "#/" prefix) is rejected outright rather than
// silently falling back to an untyped field. A ref that does point
// within the document but not at a named schema (e.g. a shared
// parameter) still yields "" for the caller to treat as untyped.
func checkedSchemaNameFromRef(ref string) (string, error) {
	if !strings.HasPrefix(ref, "#/") {
		return "", errorsx.Newf(errorsx.KindUnsupportedRef, "external $ref not supported: %s", ref).
			WithDetail("ref", ref)
	}
	return schemaNameFromRef(ref), nil
}

// deref follows node's "$ref" key, if present, returning the referenced
// object or resolveRef's error; otherwise returns node unchanged. Callers
// that need the referenced schema's *name* (for response-schema
// selection) should use schemaNameFromRef directly instead.
func deref(root map[string]any, node map[string]any) (map[string]any, error) {
	refVal, ok := node["$ref"]
	if !ok {
		return node, nil
	}
	ref, ok := refVal.(string)
	if !ok {
		return node, nil
	}
	return resolveRef(root, ref)
}
