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

	"github.com/oasmcp/oasmcp/internal/logging"
	"github.com/oasmcp/oasmcp/internal/mcpserver"
	"github.com/oasmcp/oasmcp/internal/pipeline"
)

// newRunCmd compiles and serves in one step, skipping the on-disk
// manifest entirely, for quick local iteration.
func newRunCmd() *cobra.Command {
	flags := &commonFlags{}

	cmd := &cobra.Command{
		Use:   "run <spec> [spec...]",
		Short: "Compile one or more OpenAPI documents and serve them immediately",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.toConfig()
			if err != nil {
				return err
			}

			m, err := pipeline.BuildManifest(cmd.Context(), args, cfg.Frozen)
			if err != nil {
				return err
			}

			logger := logging.New(logging.WithService("oasmcp"))
			srv := mcpserver.New(cfg, m, logger)
			return srv.Serve(cmd.Context())
		},
	}

	flags.register(cmd)
	return cmd
}
