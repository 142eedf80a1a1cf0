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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oasmcp/oasmcp/internal/errorsx"
)

func TestNew_DisablesUnsafeGlobals(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	for _, name := range []string{"load", "loadstring", "loadfile", "dofile", "require", "io", "debug", "package"} {
		v := e.L.GetGlobal(name)
		assert.Equal(t, "nil", v.Type().String(), "global %q must not be reachable from scripts", name)
	}
}

func TestNew_OsTableOnlyExposesClock(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	result := e.Run(`
		local has_clock = type(os.clock) == "function"
		local has_time = os.time ~= nil
		local has_date = os.date ~= nil
		local has_execute = os.execute ~= nil
		return has_clock and not has_time and not has_date and not has_execute
	`)
	require.Empty(t, result.Kind, "%v", result.Err)
	assert.Equal(t, true, result.Value)
}

func TestNew_StringTableRejectsNewFields(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	// __newindex only fires for keys absent from the raw table, so this
	// targets a field that was never part of the string library rather
	// than overwriting a builtin like string.upper.
	result := e.Run(`string.totally_new_field = 1`)
	assert.Equal(t, errorsx.KindScriptError, result.Kind)
}

func TestNew_JSONTableRejectsNewFields(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	result := e.Run(`json.totally_new_field = 1`)
	assert.Equal(t, errorsx.KindScriptError, result.Kind)
}

func TestRecordAlloc_HaltsOnceMemoryLimitExceeded(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second, MemoryLimit: 10})
	defer e.Close()

	e.RecordAlloc(5)
	assert.Empty(t, e.halted())

	assert.Panics(t, func() { e.RecordAlloc(100) })
	assert.Equal(t, errorsx.KindMemory, e.halted())
}

func TestCheckAPICallLimit_RejectsOnceOverMax(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second, MaxAPICalls: 2})
	defer e.Close()

	assert.True(t, e.CheckAPICallLimit())
	assert.True(t, e.CheckAPICallLimit())
	assert.False(t, e.CheckAPICallLimit())
	assert.Equal(t, errorsx.KindAPICallLimitExceeded, e.halted())
	assert.Equal(t, 2, e.APICalls(), "the rejected attempt itself must not be counted")
}

func TestCheckAPICallLimit_ZeroMeansUnbounded(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second, MaxAPICalls: 0})
	defer e.Close()

	for i := 0; i < 50; i++ {
		assert.True(t, e.CheckAPICallLimit())
	}
	assert.Empty(t, e.halted())
}

func TestSetHalted_FirstWriterWins(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	e.setHalted(errorsx.KindTimeout)
	e.setHalted(errorsx.KindMemory)
	assert.Equal(t, errorsx.KindTimeout, e.halted())
}

func TestRemainingDeadline_FloorsAtZero(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: -time.Second})
	defer e.Close()

	assert.Equal(t, time.Duration(0), e.RemainingDeadline())
}

func TestAPICalls_ReflectsCheckAPICallLimitCalls(t *testing.T) {
	t.Parallel()

	e := New(Config{Timeout: time.Second})
	defer e.Close()

	e.CheckAPICallLimit()
	e.CheckAPICallLimit()
	assert.Equal(t, 2, e.APICalls())
}
