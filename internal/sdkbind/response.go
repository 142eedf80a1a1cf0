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

package sdkbind

import (
	"encoding/json"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/dispatch"
	"github.com/oasmcp/oasmcp/internal/sandbox"
)

// responseToLua converts a dispatcher response into the value a script
// receives from sdk.<operation>(...). A 2xx response with a JSON body
// decodes straight to that value, so `sdk.get_pet({...})` returns
// `{id=1, name="Fido", ...}` and `sdk.list_pets()` returns `{...}` with
// the items directly indexable, matching what annotate.Operation
// documents as the function's return type. Anything else - a non-2xx
// status, or a body that isn't JSON - is wrapped as
// {status, headers, body|body_text} so the script can inspect why the
// call didn't decode to the documented shape.
func responseToLua(L *lua.LState, resp *dispatch.Response) lua.LValue {
	is2xx := resp.StatusCode >= 200 && resp.StatusCode < 300
	if is2xx && isJSON(resp.ContentType) && len(resp.Body) > 0 {
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err == nil {
			return sandbox.FromGo(L, decoded)
		}
	}

	out := L.NewTable()
	L.SetField(out, "status", lua.LNumber(resp.StatusCode))

	headers := L.NewTable()
	for k, v := range resp.Headers {
		if len(v) > 0 {
			L.SetField(headers, strings.ToLower(k), lua.LString(v[0]))
		}
	}
	L.SetField(out, "headers", headers)

	if isJSON(resp.ContentType) && len(resp.Body) > 0 {
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err == nil {
			L.SetField(out, "body", sandbox.FromGo(L, decoded))
			return out
		}
	}

	L.SetField(out, "body_text", lua.LString(resp.Body))
	return out
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
