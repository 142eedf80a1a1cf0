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

// Package diskformat persists a built manifest to disk (the `generate`
// subcommand's output) and reloads it (the `serve` subcommand's input),
// in a stable, byte-for-byte reproducible form: regenerating from the same
// OpenAPI documents and frozen-parameter configuration must produce an
// identical tree.
package diskformat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/oasmcp/oasmcp/internal/annotate"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
)

const (
	manifestFileName      = "manifest.json"
	annotationFileSuffix  = ".annotations.txt"
	dirPerm               = 0o755
	filePerm              = 0o644
)

// Write renders m to dir: one manifest.json plus one annotation file per
// API. dir is created if it does not already exist.
func Write(dir string, m *manifest.Manifest) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errorsx.Wrap(errorsx.KindInternalError, err, "failed to create output directory")
	}
	if err := writeManifestJSON(dir, m); err != nil {
		return err
	}
	return writeAnnotations(dir, m)
}

func writeManifestJSON(dir string, m *manifest.Manifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errorsx.Wrap(errorsx.KindInternalError, err, "failed to marshal manifest")
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(filepath.Join(dir, manifestFileName), raw, filePerm); err != nil {
		return errorsx.Wrap(errorsx.KindInternalError, err, "failed to write manifest.json")
	}
	return nil
}

// writeAnnotations emits one "<api>.annotations.txt" file per API,
// containing every one of its operations' rendered signatures followed by
// every schema it transitively references, in deterministic (sorted)
// order so regeneration is idempotent.
func writeAnnotations(dir string, m *manifest.Manifest) error {
	for i := range m.Apis {
		api := &m.Apis[i]
		ops := append([]*manifest.Operation(nil), m.OperationsForAPI(api.Name)...)
		sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })

		var out []byte
		seenSchemas := map[string]bool{}
		var schemaNames []string

		for _, op := range ops {
			out = append(out, annotate.Operation(op)...)
			out = append(out, '\n')
			for _, name := range annotate.ReferencedSchemas(op, m) {
				if !seenSchemas[name] {
					seenSchemas[name] = true
					schemaNames = append(schemaNames, name)
				}
			}
		}

		sort.Strings(schemaNames)
		for _, name := range schemaNames {
			if sch, ok := m.Schema(name); ok {
				out = append(out, annotate.Schema(sch)...)
				out = append(out, '\n')
			}
		}

		path := filepath.Join(dir, api.Name+annotationFileSuffix)
		if err := os.WriteFile(path, out, filePerm); err != nil {
			return errorsx.Wrapf(errorsx.KindInternalError, err, "failed to write annotations for %s", api.Name)
		}
	}
	return nil
}

// Load reads a manifest.json previously written by Write and freezes its
// lookup indexes.
func Load(dir string) (*manifest.Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, errorsx.Wrap(errorsx.KindInternalError, err, "failed to read manifest.json")
	}
	var m manifest.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errorsx.Wrap(errorsx.KindInternalError, err, "failed to parse manifest.json")
	}
	m.Freeze()
	return &m, nil
}
