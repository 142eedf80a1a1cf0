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

// Package mcpserver exposes the manifest's documentation service and
// sandboxed script runtime over the Model Context Protocol: a
// single execute_script tool plus the five read-only documentation tools,
// and the sdk:// resource tree.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"os"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oasmcp/oasmcp/internal/config"
	"github.com/oasmcp/oasmcp/internal/credentials"
	"github.com/oasmcp/oasmcp/internal/dispatch"
	"github.com/oasmcp/oasmcp/internal/docs"
	"github.com/oasmcp/oasmcp/internal/logging"
	"github.com/oasmcp/oasmcp/internal/manifest"
	"github.com/oasmcp/oasmcp/internal/transportauth"
)

// Server wires the manifest, documentation service, dispatcher, and
// credential set into an MCP server instance.
type Server struct {
	mcp    *server.MCPServer
	m      *manifest.Manifest
	docs   *docs.Service
	client *dispatch.Client
	creds  credentials.Map
	cfg    *config.Config
	logger *logging.Logger
}

// New builds a Server and registers every tool and resource.
func New(cfg *config.Config, m *manifest.Manifest, logger *logging.Logger) *Server {
	docsSvc := docs.New(m)

	apiNames := make([]string, 0, len(m.Apis))
	for i := range m.Apis {
		apiNames = append(apiNames, m.Apis[i].Name)
	}

	s := &Server{
		mcp: server.NewMCPServer(
			"oasmcp", "1.0.0",
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(true, false),
		),
		m:      m,
		docs:   docsSvc,
		client: dispatch.New(),
		creds:  credentials.Resolve(apiNames, os.LookupEnv),
		cfg:    cfg,
		logger: logger,
	}

	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the server to completion on the configured transport.
func (s *Server) Serve(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		return server.ServeStdio(s.mcp)
	case config.TransportSSE:
		return s.serveHTTP()
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Transport)
	}
}

// serveHTTP runs the streamable-HTTP transport behind a mux that exposes
// the OAuth protected-resource metadata document unauthenticated and
// guards every other path with bearer-JWT validation when transport auth
// is configured.
func (s *Server) serveHTTP() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	mcpHandler := server.NewStreamableHTTPServer(s.mcp)

	mux := http.NewServeMux()
	if s.cfg.Auth.Enabled() {
		verifier := transportauth.NewVerifier(s.cfg.Auth.Authority, s.cfg.Auth.Audience, s.cfg.Auth.JWKSURI, s.client.Underlying())
		mux.HandleFunc("/.well-known/oauth-protected-resource", verifier.WellKnownHandler)
		mux.Handle("/", verifier.Middleware(mcpHandler))
	} else {
		mux.Handle("/", mcpHandler)
	}

	s.logger.Info("listening", "transport", "http", "addr", addr, "auth_enabled", s.cfg.Auth.Enabled())
	return http.ListenAndServe(addr, mux)
}

// toolError renders err as an MCP tool error result rather than a
// protocol-level error, so the agent sees a catchable failure.
func toolError(err error) *mcpsdk.CallToolResult {
	return mcpsdk.NewToolResultError(err.Error())
}
