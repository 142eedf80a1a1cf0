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
	"sort"
	"strings"
)

// schemaNormalizer walks a document's component schemas (and any
// anonymous nested objects it discovers along the way) into a flat list
// of NormalizedSchema, flattening allOf and resolving $refs.
type schemaNormalizer struct {
	root    map[string]any
	schemas []NormalizedSchema
	seen    map[string]bool // component schema names already emitted
}

func newSchemaNormalizer(root map[string]any) *schemaNormalizer {
	return &schemaNormalizer{root: root, seen: map[string]bool{}}
}

// normalizeComponents walks every named schema under components/schemas.
func (n *schemaNormalizer) normalizeComponents() error {
	comps, _ := n.root["components"].(map[string]any)
	named, _ := comps["schemas"].(map[string]any)

	if err := validateSchemaNodes(named); err != nil {
		return err
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node, _ := named[name].(map[string]any)
		if node == nil {
			continue
		}
		if _, err := n.normalizeNamed(name, node); err != nil {
			return err
		}
	}
	return nil
}

// normalizeNamed normalizes a top-level (component) schema under the
// given name, memoizing by name so shared $refs are only processed once.
func (n *schemaNormalizer) normalizeNamed(name string, node map[string]any) (string, error) {
	if n.seen[name] {
		return name, nil
	}
	n.seen[name] = true

	fields, desc, err := n.flattenObject(node, name)
	if err != nil {
		return "", err
	}
	n.schemas = append(n.schemas, NormalizedSchema{Name: name, Description: desc, Fields: fields})
	return name, nil
}

// flattenObject resolves allOf composition and returns the merged field
// list and description for an object-kind schema node.
func (n *schemaNormalizer) flattenObject(node map[string]any, containerName string) ([]NormalizedField, string, error) {
	resolved, err := deref(n.root, node)
	if err != nil {
		return nil, "", err
	}

	desc, _ := resolved["description"].(string)
	byName := map[string]NormalizedField{}
	var order []string
	required := map[string]bool{}

	merge := func(fields []NormalizedField, req []string) {
		for _, f := range fields {
			if _, exists := byName[f.Name]; !exists {
				order = append(order, f.Name)
			}
			byName[f.Name] = f
		}
		for _, r := range req {
			required[r] = true
		}
	}

	if allOfRaw, ok := resolved["allOf"].([]any); ok {
		for _, member := range allOfRaw {
			memberObj, ok := member.(map[string]any)
			if !ok {
				continue
			}
			fields, _, err := n.flattenObject(memberObj, containerName)
			if err != nil {
				return nil, "", err
			}
			req := stringList(memberObj["required"])
			memberResolved, err := deref(n.root, memberObj)
			if err == nil {
				req = append(req, stringList(memberResolved["required"])...)
			}
			merge(fields, req)
		}
	}

	// Sibling properties (and additionalProperties) apply after allOf
	// members, per spec.md §4.1.
	siblingFields, err := n.propertiesOf(resolved, containerName)
	if err != nil {
		return nil, "", err
	}
	merge(siblingFields, stringList(resolved["required"]))

	out := make([]NormalizedField, 0, len(order))
	for _, name := range order {
		f := byName[name]
		f.Required = required[name]
		out = append(out, f)
	}
	return out, desc, nil
}

// propertiesOf returns the fields declared directly on node's
// "properties" map (not via allOf), honoring nullable per spec.md §4.1.
// A node with no properties yields no fields; additionalProperties is not
// read here.
func (n *schemaNormalizer) propertiesOf(resolved map[string]any, containerName string) ([]NormalizedField, error) {
	props, _ := resolved["properties"].(map[string]any)
	if len(props) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NormalizedField, 0, len(names))
	for _, name := range names {
		propNode, _ := props[name].(map[string]any)
		ft, format, enum, err := n.resolveType(propNode, containerName+capitalize(name))
		if err != nil {
			return nil, err
		}
		resolvedProp, _ := deref(n.root, propNode)
		desc, _ := resolvedProp["description"].(string)
		nullable, _ := resolvedProp["nullable"].(bool)
		out = append(out, NormalizedField{
			Name:        name,
			Type:        ft,
			Nullable:    nullable,
			Format:      format,
			Enum:        enum,
			Description: desc,
		})
	}
	return out, nil
}

// resolveType determines a field's FieldType, following spec.md §4.1's
// rules for $ref, arrays, oneOf/anyOf ("unknown"), additionalProperties,
// and anonymous nested objects (synthesized under synthName).
func (n *schemaNormalizer) resolveType(node map[string]any, synthName string) (FieldType, string, []string, error) {
	if node == nil {
		return FieldType{Kind: "unknown"}, "", nil, nil
	}

	if refVal, ok := node["$ref"].(string); ok {
		name, err := checkedSchemaNameFromRef(refVal)
		if err != nil {
			return FieldType{}, "", nil, err
		}
		if name == "" {
			return FieldType{Kind: "unknown"}, "", nil, nil
		}
		target, err := resolveRef(n.root, refVal)
		if err != nil {
			return FieldType{}, "", nil, err
		}
		if _, err := n.normalizeNamed(name, target); err != nil {
			return FieldType{}, "", nil, err
		}
		return FieldType{Kind: "object", Ref: name}, "", nil, nil
	}

	if _, ok := node["oneOf"]; ok {
		return FieldType{Kind: "unknown"}, "", nil, nil
	}
	if _, ok := node["anyOf"]; ok {
		return FieldType{Kind: "unknown"}, "", nil, nil
	}
	if _, ok := node["allOf"]; ok {
		fields, desc, err := n.flattenObject(node, synthName)
		if err != nil {
			return FieldType{}, "", nil, err
		}
		n.schemas = append(n.schemas, NormalizedSchema{Name: synthName, Description: desc, Fields: fields})
		return FieldType{Kind: "object", Ref: synthName}, "", nil, nil
	}

	format, _ := node["format"].(string)
	enum := stringList(node["enum"])

	typ, _ := node["type"].(string)
	switch typ {
	case "string":
		return FieldType{Kind: "string"}, format, enum, nil
	case "integer":
		return FieldType{Kind: "integer"}, format, enum, nil
	case "number":
		return FieldType{Kind: "number"}, format, enum, nil
	case "boolean":
		return FieldType{Kind: "boolean"}, format, enum, nil
	case "array":
		itemsNode, _ := node["items"].(map[string]any)
		elemType, elemFormat, elemEnum, err := n.resolveType(itemsNode, synthName+"Item")
		if err != nil {
			return FieldType{}, "", nil, err
		}
		_ = elemFormat
		_ = elemEnum
		return FieldType{Kind: "array", Elem: &elemType}, format, enum, nil
	case "object", "":
		return n.resolveObjectLike(node, synthName, format, enum)
	default:
		return FieldType{Kind: "unknown"}, format, enum, nil
	}
}

// resolveObjectLike handles a "type: object" (or untyped) node: a map
// form via additionalProperties, or a named synthetic nested schema when
// it declares its own properties/allOf.
func (n *schemaNormalizer) resolveObjectLike(node map[string]any, synthName, format string, enum []string) (FieldType, string, []string, error) {
	props, hasProps := node["properties"].(map[string]any)
	_, hasAllOf := node["allOf"]

	if !hasProps && !hasAllOf {
		if apSchema, ok := node["additionalProperties"].(map[string]any); ok {
			valType, _, _, err := n.resolveType(apSchema, synthName+"Value")
			if err != nil {
				return FieldType{}, "", nil, err
			}
			return FieldType{Kind: "map", Elem: &valType}, format, enum, nil
		}
		if apBool, ok := node["additionalProperties"].(bool); ok {
			if apBool {
				strType := FieldType{Kind: "string"}
				return FieldType{Kind: "map", Elem: &strType}, format, enum, nil
			}
			return FieldType{Kind: "unknown"}, format, enum, nil
		}
		if len(props) == 0 {
			// type: object, no properties, no additionalProperties => opaque.
			return FieldType{Kind: "unknown"}, format, enum, nil
		}
	}

	fields, desc, err := n.flattenObject(node, synthName)
	if err != nil {
		return FieldType{}, "", nil, err
	}
	n.schemas = append(n.schemas, NormalizedSchema{Name: synthName, Description: desc, Fields: fields})
	return FieldType{Kind: "object", Ref: synthName}, format, enum, nil
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
