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

// Package logging provides the structured logger used across the server:
// startup/shutdown, spec-load failures, dispatcher warnings, and
// per-execution summary lines. It never logs credential material.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// HandlerType selects the slog.Handler backing a Logger.
type HandlerType string

const (
	// JSONHandler emits structured JSON logs (the default for "serve"/"run").
	JSONHandler HandlerType = "json"
	// TextHandler emits key=value text logs.
	TextHandler HandlerType = "text"
)

// Logger wraps an *slog.Logger with the small surface the rest of the
// server depends on, so call sites don't import log/slog directly.
type Logger struct {
	inner *slog.Logger
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	handler  HandlerType
	level    slog.Level
	out      io.Writer
	service  string
}

// WithHandler selects the output encoding.
func WithHandler(h HandlerType) Option {
	return func(o *options) { o.handler = h }
}

// WithLevel sets the minimum enabled level.
func WithLevel(l slog.Level) Option {
	return func(o *options) { o.level = l }
}

// WithOutput overrides the destination writer (default os.Stderr — stdout
// is reserved for the stdio transport's framed messages).
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithService attaches a "service" attribute to every record.
func WithService(name string) Option {
	return func(o *options) { o.service = name }
}

// New builds a Logger from the given options.
func New(opts ...Option) *Logger {
	o := &options{handler: JSONHandler, level: slog.LevelInfo, out: os.Stderr}
	for _, apply := range opts {
		apply(o)
	}

	var handler slog.Handler
	hopts := &slog.HandlerOptions{Level: o.level}
	switch o.handler {
	case TextHandler:
		handler = slog.NewTextHandler(o.out, hopts)
	default:
		handler = slog.NewJSONHandler(o.out, hopts)
	}

	inner := slog.New(handler)
	if o.service != "" {
		inner = inner.With("service", o.service)
	}
	return &Logger{inner: inner}
}

// NoOp returns a Logger that discards everything, used as the default in
// tests and library call sites that don't configure logging.
func NoOp() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// With returns a child Logger with the given attributes attached to every
// subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// WithContext returns a child Logger carrying fields pulled from ctx (the
// request-scoped subject bound by transport auth, if any).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if subj, ok := SubjectFromContext(ctx); ok {
		return l.With("subject", subj)
	}
	return l
}

type subjectKey struct{}

// WithSubject returns a context carrying the authenticated subject
// identifier bound by transport auth.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext retrieves the subject bound by WithSubject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey{}).(string)
	return v, ok
}
