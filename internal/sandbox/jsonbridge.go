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

package sandbox

import (
	"encoding/json"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// installJSON installs the json.encode/json.decode bridge.
// Both directions charge the execution's memory accounting, since this is
// where an agent script's heap actually grows.
func installJSON(L *lua.LState, e *Execution) {
	jsonTbl := L.NewTable()

	L.SetField(jsonTbl, "encode", L.NewFunction(func(L *lua.LState) int {
		v := L.CheckAny(1)
		goVal, err := ToGo(v)
		if err != nil {
			L.RaiseError("json.encode: %v", err)
			return 0
		}
		raw, err := json.Marshal(goVal)
		if err != nil {
			L.RaiseError("json.encode: %v", err)
			return 0
		}
		e.RecordAlloc(int64(len(raw)))
		L.Push(lua.LString(raw))
		return 1
	}))

	L.SetField(jsonTbl, "decode", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		e.RecordAlloc(int64(len(text)))
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			L.RaiseError("json.decode: %v", err)
			return 0
		}
		L.Push(FromGo(L, v))
		return 1
	}))

	protectTable2(L, jsonTbl)
	L.SetGlobal("json", jsonTbl)
}

// ToGo converts a Lua value into a plain Go value (nil, bool, float64,
// string, []any, or map[string]any) suitable for encoding/json.Marshal.
func ToGo(v lua.LValue) (any, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(val), nil
	case lua.LNumber:
		return float64(val), nil
	case lua.LString:
		return string(val), nil
	case *lua.LTable:
		return tableToGo(val)
	default:
		return nil, errorsx.Newf(errorsx.KindScriptError, "value of type %s is not JSON-representable", v.Type().String())
	}
}

func tableToGo(tbl *lua.LTable) (any, error) {
	n := tbl.Len()
	if n > 0 {
		isArray := true
		count := 0
		tbl.ForEach(func(k, _ lua.LValue) {
			if _, ok := k.(lua.LNumber); !ok {
				isArray = false
			}
			count++
		})
		if isArray && count == n {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				elem, err := ToGo(tbl.RawGetInt(i))
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			return arr, nil
		}
	}

	obj := map[string]any{}
	var outerErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if outerErr != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			outerErr = errorsx.New(errorsx.KindScriptError, "json.encode: table has a non-string key")
			return
		}
		val, err := ToGo(v)
		if err != nil {
			outerErr = err
			return
		}
		obj[string(key)] = val
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return obj, nil
}

// FromGo converts a decoded Go value (as produced by encoding/json, or
// assembled by the SDK binding layer from an HTTP response body) into a
// Lua value.
func FromGo(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case json.Number:
		f, _ := val.Float64()
		return lua.LNumber(f)
	case string:
		return lua.LString(val)
	case []any:
		tbl := L.NewTable()
		for i, elem := range val {
			tbl.RawSetInt(i+1, FromGo(L, elem))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, elem := range val {
			tbl.RawSetString(k, FromGo(L, elem))
		}
		return tbl
	default:
		return lua.LNil
	}
}
