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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// LoadFrozenParams reads the two-level frozen-parameter map from a YAML or
// JSON file (auto-detected by extension, defaulting to YAML), the way the
// teacher's config package auto-detects its dumper format.
func LoadFrozenParams(path string) (FrozenParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FrozenParams{}, fmt.Errorf("reading frozen params file %q: %w", path, err)
	}

	var generic map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &generic); err != nil {
			return FrozenParams{}, fmt.Errorf("parsing frozen params JSON %q: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return FrozenParams{}, fmt.Errorf("parsing frozen params YAML %q: %w", path, err)
		}
	}

	var fp FrozenParams
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fp,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return FrozenParams{}, fmt.Errorf("building frozen params decoder: %w", err)
	}
	if err := dec.Decode(generic); err != nil {
		return FrozenParams{}, fmt.Errorf("decoding frozen params %q: %w", path, err)
	}
	if fp.Global == nil {
		fp.Global = map[string]string{}
	}
	if fp.PerAPI == nil {
		fp.PerAPI = map[string]map[string]string{}
	}
	return fp, nil
}
