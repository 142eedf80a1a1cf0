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

// Package pipeline wires the spec loader, normalizer, and manifest
// builder together into the single "load every source, produce one
// manifest" operation shared by the generate and run subcommands.
package pipeline

import (
	"context"

	"github.com/oasmcp/oasmcp/internal/config"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
	"github.com/oasmcp/oasmcp/internal/oasdoc"
)

// BuildManifest loads every OpenAPI document named by sources (local paths
// or URLs), normalizes each, and folds them into a single frozen manifest.
func BuildManifest(ctx context.Context, sources []string, frozen config.FrozenParams) (*manifest.Manifest, error) {
	docs, err := oasdoc.Load(ctx, sources)
	if err != nil {
		return nil, err
	}

	builder := manifest.NewBuilder(frozen)
	for _, doc := range docs {
		normalized, err := oasdoc.Normalize(doc)
		if err != nil {
			return nil, errorsx.Wrapf(errorsx.KindBadSpec, err, "failed to normalize %s", doc.Source)
		}
		if err := builder.AddDocument(normalized); err != nil {
			return nil, errorsx.Wrapf(errorsx.KindBadSpec, err, "failed to fold %s into the manifest", doc.Source)
		}
	}

	return builder.Build(), nil
}
