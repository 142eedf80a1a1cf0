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

// Package sandbox implements the per-execution script runtime: a
// fresh Lua VM per execution, a curated globals policy, and cooperative
// enforcement of a wall-clock deadline, a memory quota, and an upstream
// API-call cap. No state persists across executions.
package sandbox

import (
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

// instructionCheckInterval is how often (in VM instructions) the
// cooperative interrupt hook re-checks the deadline and memory quota.
// gopher-lua has no sub-millisecond timer hook, so an instruction count
// is used as a proxy for "at least every few milliseconds".
const instructionCheckInterval = 2000

// Config bounds one execution's resources.
type Config struct {
	Timeout       time.Duration
	MemoryLimit   int64 // bytes
	MaxAPICalls   int
}

// Execution owns one script's VM, log buffer, counters, and deadline.
// Exclusively owned by the goroutine running the script; never shared.
type Execution struct {
	L *lua.LState

	start    time.Time
	deadline time.Time
	cfg      Config

	logs     []string
	apiCalls int32

	memoryUsed  int64
	haltedKind  atomic.Value // errorsx.Kind, empty until halted
}

// New constructs a fresh VM with exactly the globals policy in §4.5:
// string/table/math (read-only forms), os.clock only, print routed to the
// log buffer, json.encode/decode, and no file I/O, process execution,
// module loading, bytecode load/dump, or debug introspection.
func New(cfg Config) *Execution {
	L := lua.NewState(lua.Options{SkipOpenLibs: true, IncludeGoStackTrace: false})

	e := &Execution{
		L:    L,
		cfg:  cfg,
		logs: make([]string, 0, 16),
	}
	e.start = time.Now()
	e.deadline = e.start.Add(cfg.Timeout)
	e.haltedKind.Store(errorsx.Kind(""))

	installGlobals(L, e)
	L.SetHook(e.hook, lua.MaskCount, instructionCheckInterval)

	return e
}

// Close releases the VM. Safe to call once, after Run returns.
func (e *Execution) Close() {
	e.L.Close()
}

// Logs returns the ordered log lines captured via print().
func (e *Execution) Logs() []string {
	return e.logs
}

// APICalls returns the number of dispatch attempts made so far.
func (e *Execution) APICalls() int {
	return int(atomic.LoadInt32(&e.apiCalls))
}

// appendLog appends a line to the log buffer. Called only from the
// goroutine running the script, so no synchronization is required.
func (e *Execution) appendLog(line string) {
	e.logs = append(e.logs, line)
}

// halted reports the kind of uncatchable cancellation that has fired, if
// any.
func (e *Execution) halted() errorsx.Kind {
	return e.haltedKind.Load().(errorsx.Kind)
}

// setHalted records kind as the terminating cancellation, first writer
// wins.
func (e *Execution) setHalted(kind errorsx.Kind) {
	e.haltedKind.CompareAndSwap(errorsx.Kind(""), kind)
}

// RecordAlloc adds n bytes to the execution's memory accounting
//. If the running total now exceeds
// the configured quota, the VM is halted immediately rather than waiting
// for the next hook tick.
func (e *Execution) RecordAlloc(n int64) {
	total := atomic.AddInt64(&e.memoryUsed, n)
	if e.cfg.MemoryLimit > 0 && total > e.cfg.MemoryLimit {
		e.setHalted(errorsx.KindMemory)
		e.L.RaiseError("memory quota exceeded")
	}
}

// CheckAPICallLimit reports whether another API call may proceed and, if
// so, counts it. The check happens before the increment: an attempt made
// once the cap is already reached halts the execution without being
// counted, so a run configured for N calls reports exactly N in its
// stats, never N+1.
// It raises no error itself: when it returns false, the caller raises the
// Lua error that unwinds the current call.
func (e *Execution) CheckAPICallLimit() bool {
	if e.cfg.MaxAPICalls > 0 && int(atomic.LoadInt32(&e.apiCalls)) >= e.cfg.MaxAPICalls {
		e.setHalted(errorsx.KindAPICallLimitExceeded)
		return false
	}
	atomic.AddInt32(&e.apiCalls, 1)
	return true
}

// hook is gopher-lua's periodic debug hook; it is the cooperative
// interrupt point for the wall-clock deadline and, redundantly, the
// memory quota.
func (e *Execution) hook(L *lua.LState) {
	if e.halted() != "" {
		L.RaiseError("execution terminated")
		return
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		e.setHalted(errorsx.KindTimeout)
		L.RaiseError("script exceeded its wall-clock deadline")
		return
	}
	if e.cfg.MemoryLimit > 0 && atomic.LoadInt64(&e.memoryUsed) > e.cfg.MemoryLimit {
		e.setHalted(errorsx.KindMemory)
		L.RaiseError("script exceeded its memory quota")
	}
}

// Elapsed returns wall-clock duration since the execution began.
func (e *Execution) Elapsed() time.Duration {
	return time.Since(e.start)
}

// Deadline returns the absolute deadline for the execution's upstream
// HTTP calls.
func (e *Execution) Deadline() time.Time {
	return e.deadline
}
