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
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/errorsx"
	"github.com/oasmcp/oasmcp/internal/manifest"
)

// resolvedParam is a parameter's wire-ready string value, located for URL
// or header assembly.
type resolvedParam struct {
	Location manifest.ParamLocation
	Name     string
	Value    string
}

// resolveParameters merges a script's supplied params table with the
// operation's frozen and default values, validates required/enum
// constraints, and coerces every value to its wire string form
//.
func resolveParameters(op *manifest.Operation, params *lua.LTable) ([]resolvedParam, error) {
	out := make([]resolvedParam, 0, len(op.Parameters))

	for _, p := range op.Parameters {
		if p.FrozenValue != nil {
			out = append(out, resolvedParam{p.Location, p.Name, *p.FrozenValue})
			continue
		}

		var raw lua.LValue = lua.LNil
		if params != nil {
			raw = params.RawGetString(p.Name)
		}

		if raw == lua.LNil {
			if p.Default != nil {
				out = append(out, resolvedParam{p.Location, p.Name, *p.Default})
				continue
			}
			if p.Required {
				return nil, errorsx.Newf(errorsx.KindMissingParam, "missing required parameter %q", p.Name).
					WithDetail("parameter", p.Name)
			}
			continue
		}

		value, err := coerce(p, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, resolvedParam{p.Location, p.Name, value})
	}
	return out, nil
}

// coerce converts a Lua value into the wire string form for parameter p,
// validating its declared type and enum.
func coerce(p manifest.Parameter, v lua.LValue) (string, error) {
	switch p.Type {
	case manifest.TypeString:
		s, ok := v.(lua.LString)
		if !ok {
			return "", errorsx.Newf(errorsx.KindBadParam, "parameter %q must be a string", p.Name).WithDetail("parameter", p.Name)
		}
		if err := checkEnum(p, string(s)); err != nil {
			return "", err
		}
		return string(s), nil

	case manifest.TypeInteger:
		n, ok := v.(lua.LNumber)
		if !ok {
			return "", errorsx.Newf(errorsx.KindBadParam, "parameter %q must be a number", p.Name).WithDetail("parameter", p.Name)
		}
		value := strconv.FormatInt(int64(n), 10)
		if err := checkEnum(p, value); err != nil {
			return "", err
		}
		return value, nil

	case manifest.TypeNumber:
		n, ok := v.(lua.LNumber)
		if !ok {
			return "", errorsx.Newf(errorsx.KindBadParam, "parameter %q must be a number", p.Name).WithDetail("parameter", p.Name)
		}
		return strconv.FormatFloat(float64(n), 'f', -1, 64), nil

	case manifest.TypeBoolean:
		b, ok := v.(lua.LBool)
		if !ok {
			return "", errorsx.Newf(errorsx.KindBadParam, "parameter %q must be a boolean", p.Name).WithDetail("parameter", p.Name)
		}
		return strconv.FormatBool(bool(b)), nil

	default:
		return "", errorsx.Newf(errorsx.KindBadParam, "parameter %q has an unsupported type %q", p.Name, p.Type)
	}
}

func checkEnum(p manifest.Parameter, value string) error {
	if len(p.Enum) == 0 {
		return nil
	}
	for _, allowed := range p.Enum {
		if allowed == value {
			return nil
		}
	}
	return errorsx.Newf(errorsx.KindEnumViolation, "parameter %q value %q is not one of %v", p.Name, value, p.Enum).
		WithDetail("parameter", p.Name).WithDetail("value", value).WithDetail("allowed", p.Enum)
}
