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
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oasmcp/oasmcp/internal/sandbox"
	"github.com/oasmcp/oasmcp/internal/sdkbind"
)

// executionState names the states of the execute_script lifecycle:
// Created -> Parsed -> Running -> Completed | Failed.
type executionState string

const (
	stateCreated   executionState = "created"
	stateParsed    executionState = "parsed"
	stateRunning   executionState = "running"
	stateCompleted executionState = "completed"
	stateFailed    executionState = "failed"
)

// executionStats reports the resource accounting for one execution, per
// the execute_script wire contract in spec.md §4.9.
type executionStats struct {
	APICalls   int   `json:"api_calls"`
	DurationMS int64 `json:"duration_ms"`
}

// executionReport is the JSON payload handed back to the agent, whether
// the script completed or failed: {result, logs, stats}, plus the
// execution id and failure details when the run did not complete.
type executionReport struct {
	ExecutionID string         `json:"execution_id"`
	Status      executionState `json:"status"`
	Result      any            `json:"result,omitempty"`
	Kind        string         `json:"failure_kind,omitempty"`
	Message     string         `json:"failure_message,omitempty"`
	Logs        []string       `json:"logs"`
	Stats       executionStats `json:"stats"`
}

func (s *Server) handleExecuteScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := stateCreated
	executionID := uuid.NewString()
	logger := s.logger.With("execution_id", executionID)

	script := request.GetString("script", "")
	if script == "" {
		return toolError(errMissingScript), nil
	}
	state = stateParsed

	overrides := extractAuthOverrides(request)
	creds := s.creds.Merge(overrides)

	timeout := s.cfg.Timeout
	if ms := request.GetInt("timeout_ms", 0); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}

	exec := sandbox.New(sandbox.Config{
		Timeout:     timeout,
		MemoryLimit: s.cfg.MemoryLimitBytes(),
		MaxAPICalls: s.cfg.MaxAPICalls,
	})
	defer exec.Close()

	binder := sdkbind.New(s.m, s.client, creds)
	binder.Install(exec)

	state = stateRunning
	logger.Debug("execute_script starting", "state", state)

	result := exec.Run(script)

	report := executionReport{
		ExecutionID: executionID,
		Logs:        result.Logs,
		Stats: executionStats{
			APICalls:   result.APICalls,
			DurationMS: result.DurationMS,
		},
	}
	if result.Kind == "" {
		state = stateCompleted
		report.Status = state
		report.Result = result.Value
	} else {
		state = stateFailed
		report.Status = state
		report.Kind = string(result.Kind)
		if result.Err != nil {
			report.Message = result.Err.Error()
		}
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
