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

package main

import (
	"github.com/spf13/cobra"

	"github.com/oasmcp/oasmcp/internal/config"
	"github.com/oasmcp/oasmcp/internal/diskformat"
	"github.com/oasmcp/oasmcp/internal/pipeline"
)

func newGenerateCmd() *cobra.Command {
	var outDir string
	var frozenParamsPath string

	cmd := &cobra.Command{
		Use:   "generate <spec> [spec...]",
		Short: "Compile one or more OpenAPI documents into a manifest and annotation files on disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var frozen config.FrozenParams
			if frozenParamsPath != "" {
				var err error
				frozen, err = config.LoadFrozenParams(frozenParamsPath)
				if err != nil {
					return err
				}
			}

			m, err := pipeline.BuildManifest(cmd.Context(), args, frozen)
			if err != nil {
				return err
			}
			return diskformat.Write(outDir, m)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "./oasmcp-out", "output directory for manifest.json and annotation files")
	cmd.Flags().StringVar(&frozenParamsPath, "frozen-params", "", "path to a YAML or JSON frozen-parameters file")
	return cmd
}
