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
	"time"

	"github.com/spf13/cobra"

	"github.com/oasmcp/oasmcp/internal/config"
)

// commonFlags holds the flag values shared by serve and run, bound once
// and read into a config.Config before each subcommand runs.
type commonFlags struct {
	transport     string
	port          int
	timeout       time.Duration
	memoryLimitMB int64
	maxAPICalls   int
	authAuthority string
	authAudience  string
	authJWKSURI   string
	frozenParams  string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.transport, "transport", string(config.TransportStdio), "MCP transport: stdio or sse")
	cmd.Flags().IntVar(&f.port, "port", config.DefaultPort, "listen port for the sse transport")
	cmd.Flags().DurationVar(&f.timeout, "timeout", config.DefaultTimeout, "per-execution wall-clock deadline")
	cmd.Flags().Int64Var(&f.memoryLimitMB, "memory-limit", config.DefaultMemoryLimitMB, "per-execution memory quota, in megabytes")
	cmd.Flags().IntVar(&f.maxAPICalls, "max-api-calls", config.DefaultMaxAPICalls, "per-execution upstream API call cap")
	cmd.Flags().StringVar(&f.authAuthority, "auth-authority", "", "OAuth authorization server issuer; empty disables transport auth")
	cmd.Flags().StringVar(&f.authAudience, "auth-audience", "", "expected JWT audience")
	cmd.Flags().StringVar(&f.authJWKSURI, "auth-jwks-uri", "", "JWKS endpoint, used as given; it is not discovered from the authority")
	cmd.Flags().StringVar(&f.frozenParams, "frozen-params", "", "path to a YAML or JSON frozen-parameters file")
}

// toConfig layers flag values over config.New()'s environment-derived
// defaults; flags always win.
func (f *commonFlags) toConfig() (*config.Config, error) {
	cfg := config.New()
	cfg.Transport = config.Transport(f.transport)
	cfg.Port = f.port
	cfg.Timeout = f.timeout
	cfg.MemoryLimitMB = f.memoryLimitMB
	cfg.MaxAPICalls = f.maxAPICalls

	if f.authAuthority != "" {
		cfg.Auth.Authority = f.authAuthority
	}
	if f.authAudience != "" {
		cfg.Auth.Audience = f.authAudience
	}
	if f.authJWKSURI != "" {
		cfg.Auth.JWKSURI = f.authJWKSURI
	}

	if f.frozenParams != "" {
		frozen, err := config.LoadFrozenParams(f.frozenParams)
		if err != nil {
			return nil, err
		}
		cfg.Frozen = frozen
	}

	return cfg, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oasmcp",
		Short: "Compile OpenAPI documents into a scriptable MCP execution server",
	}
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRunCmd())
	return cmd
}
