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

package errorsx

import goerrors "errors"

// ToolErrorBody renders err as the body of a tool-error result: a simple
// {"error", "code", "details"} object. Never includes a stack trace.
func ToolErrorBody(err error) map[string]any {
	body := map[string]any{"error": err.Error()}

	var e *Error
	if goerrors.As(err, &e) {
		body["code"] = e.Code()
		if d := e.Details(); len(d) > 0 {
			body["details"] = d
		}
		return body
	}
	body["code"] = string(KindInternalError)
	return body
}

// ProblemJSON renders err as an RFC 9457 problem+json body for the
// transport-auth 401 path, mirroring the teacher errors package's
// RFC9457 formatter.
func ProblemJSON(err error, instance string) map[string]any {
	status := 500
	title := "Internal Server Error"
	var e *Error
	if goerrors.As(err, &e) {
		status = e.Kind.HTTPStatus()
		title = string(e.Kind)
	}
	return map[string]any{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"detail":   err.Error(),
		"instance": instance,
	}
}
