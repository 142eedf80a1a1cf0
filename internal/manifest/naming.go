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
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// slugifyAPI derives the API slug from info.title: lowercase, runs of
// non-alphanumerics become "_", trim leading/trailing underscores; if
// empty or digit-led, prefix "api_".
func slugifyAPI(title string) string {
	lower := strings.ToLower(title)
	slug := nonAlnum.ReplaceAllString(lower, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" || unicode.IsDigit(rune(slug[0])) {
		slug = "api_" + slug
	}
	return slug
}

// dedupeAPISlug appends "_2", "_3", ... to resolve collisions across
// multiple documents.
func dedupeAPISlug(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
var nonAlnumOp = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// snakeCase converts an operationId into snake_case: camelCase boundaries
// split, non-alphanumerics replaced by "_", lowercased.
func snakeCase(s string) string {
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	s = nonAlnumOp.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}

// synthesizeOperationName builds an operation id from method+path when
// operationId is absent, e.g. "GET /pets/{id}" => "get_pet".
func synthesizeOperationName(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	var last string
	itemPath := false
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if strings.HasPrefix(seg, "{") {
			itemPath = true
			continue
		}
		last = seg
		break
	}
	if itemPath {
		last = singularize(last)
	}
	name := strings.ToLower(method) + "_" + last
	return snakeCase(name)
}

// singularize applies a minimal plural-to-singular heuristic sufficient
// for typical REST collection names (pets -> pet, categories -> category).
func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case (strings.HasSuffix(s, "ses") || strings.HasSuffix(s, "xes")) && len(s) > 3:
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && len(s) > 1:
		return s[:len(s)-1]
	default:
		return s
	}
}

// dedupeOperationID appends an incrementing integer suffix to resolve
// collisions within the manifest.
func dedupeOperationID(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}
