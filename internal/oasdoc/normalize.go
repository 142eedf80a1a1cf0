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
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

var reservedHeaders = map[string]bool{
	"authorization": true,
	"x-api-key":     true,
}

var pathParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// methodOrder is the set of HTTP methods scanned for path items, in a
// stable iteration order.
var methodOrder = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Normalize resolves doc into a NormalizedDocument: $refs into
// #/components/..., allOf flattening, oneOf/anyOf-as-unknown, nullable
// preservation, additionalProperties-as-map, and format hints.
func Normalize(doc *Document) (*NormalizedDocument, error) {
	root := doc.Root

	info, _ := root["info"].(map[string]any)
	title, _ := info["title"].(string)
	description, _ := info["description"].(string)

	baseURL := ""
	if servers, ok := root["servers"].([]any); ok && len(servers) > 0 {
		if s0, ok := servers[0].(map[string]any); ok {
			baseURL, _ = s0["url"].(string)
		}
	}

	auth := resolveAuthScheme(root)

	sn := newSchemaNormalizer(root)
	if err := sn.normalizeComponents(); err != nil {
		return nil, err
	}

	ops, err := normalizeOperations(root, sn)
	if err != nil {
		return nil, err
	}

	sort.Slice(sn.schemas, func(i, j int) bool { return sn.schemas[i].Name < sn.schemas[j].Name })

	return &NormalizedDocument{
		Source:      doc.Source,
		Title:       title,
		Description: description,
		BaseURL:     baseURL,
		Auth:        auth,
		Operations:  ops,
		Schemas:     sn.schemas,
	}, nil
}

func resolveAuthScheme(root map[string]any) AuthScheme {
	comps, _ := root["components"].(map[string]any)
	schemes, _ := comps["securitySchemes"].(map[string]any)
	if len(schemes) == 0 {
		return AuthScheme{Kind: "none"}
	}

	// Use the first security requirement's scheme if declared, else the
	// first component scheme in name order (deterministic).
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)

	if reqs, ok := root["security"].([]any); ok {
		for _, reqAny := range reqs {
			req, ok := reqAny.(map[string]any)
			if !ok {
				continue
			}
			for name := range req {
				if scheme, ok := schemes[name].(map[string]any); ok {
					return schemeFromNode(scheme)
				}
			}
		}
	}

	scheme, _ := schemes[names[0]].(map[string]any)
	return schemeFromNode(scheme)
}

func schemeFromNode(scheme map[string]any) AuthScheme {
	typ, _ := scheme["type"].(string)
	switch typ {
	case "http":
		httpScheme, _ := scheme["scheme"].(string)
		if strings.EqualFold(httpScheme, "basic") {
			return AuthScheme{Kind: "basic"}
		}
		return AuthScheme{Kind: "bearer"}
	case "apiKey":
		in, _ := scheme["in"].(string)
		name, _ := scheme["name"].(string)
		return AuthScheme{Kind: "api_key", KeyLocation: in, KeyName: name}
	default:
		return AuthScheme{Kind: "none"}
	}
}

func normalizeOperations(root map[string]any, sn *schemaNormalizer) ([]NormalizedOperation, error) {
	paths, _ := root["paths"].(map[string]any)

	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var out []NormalizedOperation
	for _, path := range pathKeys {
		item, _ := paths[path].(map[string]any)
		if item == nil {
			continue
		}

		pathParams, err := parseParameters(root, item["parameters"])
		if err != nil {
			return nil, err
		}

		for _, method := range methodOrder {
			opNode, ok := item[method].(map[string]any)
			if !ok {
				continue
			}

			opParams, err := parseParameters(root, opNode["parameters"])
			if err != nil {
				return nil, err
			}
			merged := mergeParameters(pathParams, opParams)

			if err := validatePathTemplate(path, merged); err != nil {
				return nil, err
			}
			if err := checkReservedHeaders(merged); err != nil {
				return nil, err
			}

			operationID, _ := opNode["operationId"].(string)
			tag := ""
			if tags, ok := opNode["tags"].([]any); ok && len(tags) > 0 {
				tag, _ = tags[0].(string)
			}
			summary, _ := opNode["summary"].(string)
			opDesc, _ := opNode["description"].(string)

			hasBody, bodyRequired, bodyRef, err := parseRequestBody(root, opNode["requestBody"], sn, operationOrSynth(operationID, method, path))
			if err != nil {
				return nil, err
			}

			respRef, respIsArray, err := selectResponseSchema(root, opNode["responses"], sn, operationOrSynth(operationID, method, path))
			if err != nil {
				return nil, err
			}

			out = append(out, NormalizedOperation{
				OperationID:       operationID,
				Method:            strings.ToUpper(method),
				Path:              path,
				Tag:               tag,
				Summary:           summary,
				Description:       opDesc,
				Parameters:        merged,
				HasBody:           hasBody,
				BodyRequired:      bodyRequired,
				BodySchemaRef:     bodyRef,
				ResponseSchemaRef: respRef,
				ResponseIsArray:   respIsArray,
			})
		}
	}
	return out, nil
}

func operationOrSynth(operationID, method, path string) string {
	if operationID != "" {
		return capitalize(operationID)
	}
	return capitalize(method) + sanitizeForName(path)
}

func sanitizeForName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseParameters(root map[string]any, raw any) ([]NormalizedParam, error) {
	arr, _ := raw.([]any)
	out := make([]NormalizedParam, 0, len(arr))
	for _, item := range arr {
		node, ok := item.(map[string]any)
		if !ok {
			continue
		}
		resolved, err := deref(root, node)
		if err != nil {
			return nil, err
		}

		name, _ := resolved["name"].(string)
		in, _ := resolved["in"].(string)
		required, _ := resolved["required"].(bool)

		schemaNode, _ := resolved["schema"].(map[string]any)
		ptype := primitiveTypeOf(root, schemaNode)

		var def *string
		if schemaNode != nil {
			if d, ok := schemaNode["default"]; ok {
				s := stringifyScalar(d)
				def = &s
			}
		}
		enum := stringList(schemaNode["enum"])

		out = append(out, NormalizedParam{
			Name:     name,
			Location: ParamLocation(in),
			Type:     ptype,
			Required: required,
			Default:  def,
			Enum:     enum,
		})
	}
	return out, nil
}

func primitiveTypeOf(root map[string]any, schemaNode map[string]any) PrimitiveType {
	if schemaNode == nil {
		return TypeString
	}
	resolved, err := deref(root, schemaNode)
	if err != nil {
		return TypeString
	}
	switch t, _ := resolved["type"].(string); t {
	case "integer":
		return TypeInteger
	case "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	default:
		return TypeString
	}
}

func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return strconv.FormatFloat(toFloat(v), 'g', -1, 64)
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

// mergeParameters overlays operation-level parameters onto path-level
// ones, keyed by (name, location); operation-level wins on collision.
func mergeParameters(pathParams, opParams []NormalizedParam) []NormalizedParam {
	type key struct {
		name, loc string
	}
	byKey := map[key]NormalizedParam{}
	var order []key

	add := func(p NormalizedParam) {
		k := key{p.Name, string(p.Location)}
		if _, exists := byKey[k]; !exists {
			order = append(order, k)
		}
		byKey[k] = p
	}
	for _, p := range pathParams {
		add(p)
	}
	for _, p := range opParams {
		add(p)
	}

	out := make([]NormalizedParam, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func validatePathTemplate(path string, params []NormalizedParam) error {
	placeholders := pathParamPattern.FindAllStringSubmatch(path, -1)
	pathParamNames := map[string]bool{}
	for _, p := range params {
		if p.Location == LocationPath {
			pathParamNames[p.Name] = true
		}
	}
	for _, m := range placeholders {
		if !pathParamNames[m[1]] {
			return errorsx.Newf(errorsx.KindBadPathTemplate,
				"path %q references {%s} with no matching path parameter", path, m[1]).
				WithDetail("path", path).WithDetail("placeholder", m[1])
		}
	}
	return nil
}

func checkReservedHeaders(params []NormalizedParam) error {
	for _, p := range params {
		if p.Location != LocationHeader {
			continue
		}
		if reservedHeaders[strings.ToLower(p.Name)] {
			return errorsx.Newf(errorsx.KindReservedHeader,
				"header parameter %q collides with an auth header", p.Name).
				WithDetail("header", p.Name)
		}
	}
	return nil
}

func parseRequestBody(root map[string]any, raw any, sn *schemaNormalizer, synthBase string) (hasBody bool, required bool, schemaRef string, err error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return false, false, "", nil
	}
	resolved, err := deref(root, node)
	if err != nil {
		return false, false, "", err
	}
	required, _ = resolved["required"].(bool)

	content, _ := resolved["content"].(map[string]any)
	jsonBody, ok := content["application/json"].(map[string]any)
	if !ok {
		return true, required, "", nil
	}
	schemaNode, _ := jsonBody["schema"].(map[string]any)
	if schemaNode == nil {
		return true, required, "", nil
	}
	if refVal, ok := schemaNode["$ref"].(string); ok {
		name, err := checkedSchemaNameFromRef(refVal)
		if err != nil {
			return false, false, "", err
		}
		if name != "" {
			target, err := resolveRef(root, refVal)
			if err != nil {
				return false, false, "", err
			}
			if _, err := sn.normalizeNamed(name, target); err != nil {
				return false, false, "", err
			}
			return true, required, name, nil
		}
	}
	ft, _, _, err := sn.resolveType(schemaNode, synthBase+"Body")
	if err != nil {
		return false, false, "", err
	}
	if ft.Kind == "object" {
		return true, required, ft.Ref, nil
	}
	return true, required, "", nil
}

// selectResponseSchema scans 2xx responses in ascending status order for
// the first application/json schema reference, falling back to "default"
//.
func selectResponseSchema(root map[string]any, raw any, sn *schemaNormalizer, synthBase string) (ref string, isArray bool, err error) {
	responses, _ := raw.(map[string]any)
	if responses == nil {
		return "", false, nil
	}

	var codes []int
	for k := range responses {
		if code, convErr := strconv.Atoi(k); convErr == nil && code >= 200 && code < 300 {
			codes = append(codes, code)
		}
	}
	sort.Ints(codes)

	for _, code := range codes {
		node, _ := responses[strconv.Itoa(code)].(map[string]any)
		ref, isArray, ok, err := responseJSONSchema(root, node, sn, synthBase)
		if err != nil {
			return "", false, err
		}
		if ok {
			return ref, isArray, nil
		}
	}

	if node, ok := responses["default"].(map[string]any); ok {
		ref, isArray, ok, err := responseJSONSchema(root, node, sn, synthBase)
		if err != nil {
			return "", false, err
		}
		if ok {
			return ref, isArray, nil
		}
	}
	return "", false, nil
}

func responseJSONSchema(root map[string]any, node map[string]any, sn *schemaNormalizer, synthBase string) (ref string, isArray bool, ok bool, err error) {
	resolved, err := deref(root, node)
	if err != nil {
		return "", false, false, err
	}
	content, _ := resolved["content"].(map[string]any)
	jsonBody, hasJSON := content["application/json"].(map[string]any)
	if !hasJSON {
		return "", false, false, nil
	}
	schemaNode, _ := jsonBody["schema"].(map[string]any)
	if schemaNode == nil {
		return "", false, false, nil
	}

	if refVal, ok := schemaNode["$ref"].(string); ok {
		name, err := checkedSchemaNameFromRef(refVal)
		if err != nil {
			return "", false, false, err
		}
		if name == "" {
			return "", false, false, nil
		}
		target, err := resolveRef(root, refVal)
		if err != nil {
			return "", false, false, err
		}
		if _, err := sn.normalizeNamed(name, target); err != nil {
			return "", false, false, err
		}
		return name, false, true, nil
	}

	if typ, _ := schemaNode["type"].(string); typ == "array" {
		items, _ := schemaNode["items"].(map[string]any)
		if refVal, ok := items["$ref"].(string); ok {
			name, err := checkedSchemaNameFromRef(refVal)
			if err != nil {
				return "", false, false, err
			}
			if name == "" {
				return "", false, false, nil
			}
			target, err := resolveRef(root, refVal)
			if err != nil {
				return "", false, false, err
			}
			if _, err := sn.normalizeNamed(name, target); err != nil {
				return "", false, false, err
			}
			return name, true, true, nil
		}
	}
	return "", false, false, nil
}
