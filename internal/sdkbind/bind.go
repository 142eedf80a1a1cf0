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

// Package sdkbind binds each manifest operation into a callable installed
// on a script VM's global "sdk" table, translating Lua arguments into an
// HTTP request and the response back into a Lua value.
package sdkbind

import (
	"context"
	"encoding/json"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/credentials"
	"github.com/oasmcp/oasmcp/internal/dispatch"
	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
	"github.com/oasmcp/oasmcp/internal/sandbox"
)

// Binder builds the sdk table for one execution from the shared manifest,
// dispatcher, and resolved credentials.
type Binder struct {
	m      *manifest.Manifest
	client *dispatch.Client
	creds  credentials.Map
}

// New constructs a Binder. creds is the credential set for this single
// execution, already layered with any out-of-band per-request overrides
//.
func New(m *manifest.Manifest, client *dispatch.Client, creds credentials.Map) *Binder {
	return &Binder{m: m, client: client, creds: creds}
}

// Install populates exec's "sdk" global with one function per manifest
// operation and makes the table read-only.
func (b *Binder) Install(exec *sandbox.Execution) {
	L := exec.L
	sdkTbl := L.NewTable()

	for i := range b.m.Operations {
		op := &b.m.Operations[i]
		api, ok := b.m.API(op.APIRef)
		if !ok {
			continue
		}
		L.SetField(sdkTbl, op.ID, L.NewFunction(b.bindOperation(exec, api, op)))
	}

	mt := L.NewTable()
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("attempt to modify the sdk table")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LFalse)
	L.SetMetatable(sdkTbl, mt)

	L.SetGlobal("sdk", sdkTbl)
}

// bindOperation returns the LGFunction that implements sdk.<op.ID>.
func (b *Binder) bindOperation(exec *sandbox.Execution, api *manifest.Api, op *manifest.Operation) lua.LGFunction {
	hasParams := len(op.VisibleParameters()) > 0
	hasBody := op.Body != nil

	return func(L *lua.LState) int {
		if !exec.CheckAPICallLimit() {
			L.RaiseError("sdk.%s: api call limit exceeded", op.ID)
			return 0
		}

		argIdx := 1
		var paramsTbl *lua.LTable
		if hasParams {
			v := L.Get(argIdx)
			tbl, ok := v.(*lua.LTable)
			if !ok {
				L.RaiseError("sdk.%s: argument %d must be a params table", op.ID, argIdx)
				return 0
			}
			paramsTbl = tbl
			argIdx++
		}
		var bodyVal lua.LValue = lua.LNil
		if hasBody {
			bodyVal = L.Get(argIdx)
		}

		resolved, err := resolveParameters(op, paramsTbl)
		if err != nil {
			L.RaiseError("sdk.%s: %v", op.ID, err)
			return 0
		}

		reqURL, err := buildURL(api, op, resolved)
		if err != nil {
			L.RaiseError("sdk.%s: %v", op.ID, err)
			return 0
		}
		headers := collectHeaders(resolved)

		var bodyBytes []byte
		if hasBody && bodyVal != lua.LNil {
			goVal, err := sandbox.ToGo(bodyVal)
			if err != nil {
				L.RaiseError("sdk.%s: body: %v", op.ID, err)
				return 0
			}
			raw, err := json.Marshal(goVal)
			if err != nil {
				L.RaiseError("sdk.%s: body: %v", op.ID, err)
				return 0
			}
			bodyBytes = raw
		}

		ctx, cancel := context.WithDeadline(context.Background(), exec.Deadline())
		defer cancel()

		resp, err := b.client.Do(ctx, dispatch.Request{
			API:        api,
			Method:     strings.ToUpper(op.Method),
			URL:        reqURL,
			Headers:    headers,
			Body:       bodyBytes,
			Credential: b.creds.Get(api.Name),
			Timeout:    exec.RemainingDeadline(),
		})
		if err != nil {
			e := errorsx.Wrap(errorsx.KindNetwork, err, "sdk."+op.ID+" failed")
			L.RaiseError("%v", e)
			return 0
		}

		exec.RecordAlloc(int64(len(resp.Body)))

		L.Push(responseToLua(L, resp))
		return 1
	}
}
