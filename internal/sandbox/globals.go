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
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// installGlobals wires up exactly the globals policy described in §4.5:
// base, string, table, math are opened; package, io, os (beyond clock),
// and debug never are. print is overridden to write into e's log buffer
// instead of stdout, and a json table is installed for encode/decode.
func installGlobals(L *lua.LState, e *Execution) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Dynamic code loading and bytecode execution are never available,
	// regardless of how thin the sandbox's other restrictions are.
	// OpenBase also registers require/module, so they are cleared here too.
	for _, name := range []string{"load", "loadstring", "loadfile", "dofile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	protectTable(L, "string")
	protectTable(L, "table")
	protectTable(L, "math")

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = luaToStringArg(L.Get(i))
		}
		e.appendLog(strings.Join(parts, "\t"))
		return 0
	}))

	osTable := L.NewTable()
	L.SetField(osTable, "clock", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.Elapsed().Seconds()))
		return 1
	}))
	protectTable2(L, osTable)
	L.SetGlobal("os", osTable)

	installJSON(L, e)
}

// luaToStringArg mirrors Lua's tostring() for the scalar types print
// actually receives in practice; tables print as "table" rather than a
// pointer address, since addresses would leak host memory layout.
func luaToStringArg(v lua.LValue) string {
	switch v.Type() {
	case lua.LTNil:
		return "nil"
	case lua.LTTable:
		return "table"
	case lua.LTFunction:
		return "function"
	default:
		return v.String()
	}
}

// protectTable fetches a global table and installs a metatable that
// rejects writes and hides itself, approximating Lua's read-only tables
//.
func protectTable(L *lua.LState, globalName string) {
	v := L.GetGlobal(globalName)
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return
	}
	protectTable2(L, tbl)
}

func protectTable2(L *lua.LState, tbl *lua.LTable) {
	mt := L.NewTable()
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("attempt to modify a read-only table")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LFalse)
	L.SetMetatable(tbl, mt)
}
