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

// Package errorsx defines the kind-tagged error taxonomy shared across the
// spec loader, manifest builder, sandbox, dispatcher, and transport-auth
// layers. Every kind in this package corresponds to a row of the error
// table in the project's design document.
package errorsx

import "fmt"

// Kind identifies the originating subsystem and failure class of an Error.
type Kind string

const (
	// Spec load errors (fatal at startup).
	KindBadSpec        Kind = "bad_spec"
	KindSpecFetch      Kind = "spec_fetch"
	KindUnsupportedRef Kind = "unsupported_ref"
	KindReservedHeader Kind = "reserved_header"

	// Manifest build errors (fatal at startup).
	KindDuplicateName   Kind = "duplicate_name"
	KindBadPathTemplate Kind = "bad_path_template"

	// SDK binding errors (script-catchable).
	KindMissingParam   Kind = "missing_param"
	KindBadParam       Kind = "bad_param"
	KindEnumViolation  Kind = "enum_violation"

	// Dispatcher errors.
	KindAPICallLimitExceeded Kind = "api_call_limit_exceeded"
	KindNetwork              Kind = "network"
	KindDecoding             Kind = "decoding"

	// VM errors. Timeout and memory are uncatchable and terminate the
	// execution; script_error is an error the script raised and left uncaught.
	KindTimeout     Kind = "timeout"
	KindMemory      Kind = "memory"
	KindScriptError Kind = "script_error"

	// Transport auth errors.
	KindMissingHeader Kind = "missing_header"
	KindInvalidHeader Kind = "invalid_header"
	KindInvalidToken  Kind = "invalid_token"
	KindJwksFetch     Kind = "jwks_fetch"

	// Catch-all.
	KindInternalError Kind = "internal_error"
)

// Error is the common error type returned by every subsystem in this
// repository. It never carries credential material in Message or Details.
type Error struct {
	Kind    Kind
	Message string
	details map[string]any

	// cause is the wrapped underlying error, if any. Never surfaced in
	// Details — callers use errors.Unwrap for that.
	cause error
}

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Wrapf constructs an Error of the given kind that wraps cause, with a
// formatted message.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithDetail attaches a detail key/value pair and returns the receiver for
// chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.details == nil {
		e.details = make(map[string]any, 4)
	}
	e.details[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the stable string code used in tool-error and HTTP bodies.
func (e *Error) Code() string {
	return string(e.Kind)
}

// ErrorDetails is implemented by errors (such as *Error) that carry a
// structured detail map, mirrored after the teacher errors package's
// ErrorDetails interface.
type ErrorDetails interface {
	Details() map[string]any
}

// Details implements ErrorDetails.
func (e *Error) Details() map[string]any { return e.details }

// HTTPStatus maps a Kind to the HTTP status used when the error crosses the
// HTTP transport (transport-auth rejections, and the tool-error path when
// served over streamable HTTP).
func (k Kind) HTTPStatus() int {
	switch k {
	case KindMissingHeader, KindInvalidHeader, KindInvalidToken:
		return 401
	case KindBadSpec, KindUnsupportedRef, KindReservedHeader, KindDuplicateName,
		KindBadPathTemplate, KindMissingParam, KindBadParam, KindEnumViolation:
		return 400
	case KindAPICallLimitExceeded:
		return 429
	case KindTimeout:
		return 504
	case KindSpecFetch, KindNetwork, KindJwksFetch:
		return 502
	default:
		return 500
	}
}

// Uncatchable reports whether the kind corresponds to a VM-level
// cancellation that a script cannot catch.
func (k Kind) Uncatchable() bool {
	switch k {
	case KindTimeout, KindMemory, KindAPICallLimitExceeded:
		return true
	default:
		return false
	}
}
