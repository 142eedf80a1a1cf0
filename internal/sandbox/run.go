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
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// Result is the outcome of running a script to completion, success or
// failure, mirroring the Completed/Failed states of the execution state
// machine.
type Result struct {
	Value      any
	Logs       []string
	APICalls   int
	DurationMS int64

	// Kind is empty on success. Otherwise it names the terminal failure:
	// one of the VM kinds (timeout, memory, api_call_limit_exceeded,
	// script_error) or internal_error for anything unexpected.
	Kind errorsx.Kind
	Err  error
}

// Run compiles and executes script to completion (or to whichever
// resource bound fires first) and returns its terminal Result. The
// execution's own halted-kind flag is authoritative over whatever the
// script itself returned or caught: once timeout, memory, or the API call
// limit has fired, the outcome is Failed with that kind regardless of
// whether the script wrapped the call in pcall.
func (e *Execution) Run(script string) (result *Result) {
	result = &Result{}

	defer func() {
		result.Logs = e.Logs()
		result.APICalls = e.APICalls()
		result.DurationMS = e.Elapsed().Milliseconds()

		if r := recover(); r != nil {
			result.Kind = errorsx.KindInternalError
			if err, ok := r.(error); ok {
				result.Err = err
			} else {
				result.Err = errorsx.Newf(errorsx.KindInternalError, "panic: %v", r)
			}
		}

		if halted := e.halted(); halted != "" {
			result.Kind = halted
			if result.Err == nil {
				result.Err = errorsx.New(halted, string(halted)+" during script execution")
			}
		}
	}()

	fn, err := e.L.LoadString(script)
	if err != nil {
		return &Result{Kind: errorsx.KindScriptError, Err: errorsx.Wrap(errorsx.KindScriptError, err, "script failed to parse")}
	}
	e.L.Push(fn)

	if err := e.L.PCall(0, 1, nil); err != nil {
		if halted := e.halted(); halted != "" {
			return &Result{Kind: halted, Err: errorsx.Wrap(halted, err, string(halted))}
		}
		return &Result{Kind: errorsx.KindScriptError, Err: errorsx.Wrap(errorsx.KindScriptError, err, "script raised an uncaught error")}
	}

	ret := e.L.Get(-1)
	e.L.Pop(1)
	val, convErr := ToGo(ret)
	if convErr != nil {
		val = nil
	}

	if halted := e.halted(); halted != "" {
		return &Result{Kind: halted, Err: errorsx.New(halted, string(halted))}
	}

	result.Value = val
	return result
}

// RemainingDeadline returns the time left before the execution's
// wall-clock budget is exhausted, floored at zero.
func (e *Execution) RemainingDeadline() time.Duration {
	remaining := time.Until(e.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
