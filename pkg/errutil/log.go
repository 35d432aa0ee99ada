// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

// Package errutil bridges coded oops errors into structured slog output and
// provides test assertions over error codes.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error severity with its structured context.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, errAttrs(err)...)
}

// LogWarn logs err at warning severity with its structured context.
// Used for expected, routine failures such as credential rejections.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, errAttrs(err)...)
}

// errAttrs extracts message, code, and context from an oops error.
// Plain errors yield just the error string.
func errAttrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
