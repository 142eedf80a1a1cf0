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

package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools installs the six MCP tools named in §2 and §4.9:
// execute_script plus the five read-only documentation tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("execute_script",
			mcp.WithDescription("Run a Lua script against the generated SDK for the configured OpenAPI APIs, subject to a timeout, memory quota, and API-call cap."),
			mcp.WithString("script", mcp.Required(), mcp.Description("The Lua source to execute.")),
			mcp.WithNumber("timeout_ms", mcp.Description("Override the configured wall-clock deadline for this execution, in milliseconds.")),
		),
		s.handleExecuteScript,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_apis",
			mcp.WithDescription("List every configured upstream API with its description, base URL, and operation count."),
		),
		s.handleListApis,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_functions",
			mcp.WithDescription("List callable sdk.* function names, optionally filtered by API or tag."),
			mcp.WithString("api", mcp.Description("Restrict the listing to this API's slug.")),
			mcp.WithString("tag", mcp.Description("Restrict the listing to operations carrying this tag.")),
		),
		s.handleListFunctions,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_function_docs",
			mcp.WithDescription("Return the typed signature and referenced schemas for one sdk.* function."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The function name, e.g. \"list_pets\".")),
		),
		s.handleGetFunctionDocs,
	)

	s.mcp.AddTool(
		mcp.NewTool("search_docs",
			mcp.WithDescription("Full-text search across function and schema names, summaries, descriptions, and field names."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search terms.")),
		),
		s.handleSearchDocs,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_schema",
			mcp.WithDescription("Return the typed definition of one named schema."),
			mcp.WithString("name", mcp.Required(), mcp.Description("The schema name.")),
		),
		s.handleGetSchema,
	)
}

func (s *Server) registerResources() {
	for _, r := range s.docs.ListResources() {
		resource := mcp.NewResource(r.URI, r.Name, mcp.WithResourceDescription(r.Description), mcp.WithMIMEType(r.MimeType))
		s.mcp.AddResource(resource, s.handleReadResource)
	}
}

func (s *Server) handleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := s.docs.ReadResource(request.Params.URI)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "text/plain", Text: text},
	}, nil
}

func (s *Server) handleListApis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(s.docs.ListApis())
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleListFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	api := request.GetString("api", "")
	tag := request.GetString("tag", "")
	names := s.docs.ListFunctions(api, tag)
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) handleGetFunctionDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	text, err := s.docs.GetFunctionDocs(name)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	results := s.docs.SearchDocs(query)
	raw, err := json.Marshal(results)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	text, err := s.docs.GetSchema(name)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(text), nil
}
