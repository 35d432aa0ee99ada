// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ConnRealm Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/alphapenguin/connrealm/internal/logging"
)

func parseRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestSetup_ServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{
		Service: "connrealm",
		Version: "1.2.3",
		Writer:  &buf,
	})

	logger.Info("hello")

	record := parseRecord(t, &buf)
	assert.Equal(t, "connrealm", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
	assert.Equal(t, "hello", record["msg"])
}

func TestSetup_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{Service: "connrealm", Writer: &buf})

	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.InfoContext(ctx, "traced")

	record := parseRecord(t, &buf)
	assert.Equal(t, traceID.String(), record["trace_id"])
	assert.Equal(t, spanID.String(), record["span_id"])
}

func TestSetup_NoTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{Service: "connrealm", Writer: &buf})

	logger.Info("untraced")

	record := parseRecord(t, &buf)
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "span_id")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{
		Service: "connrealm",
		Level:   slog.LevelWarn,
		Writer:  &buf,
	})

	logger.Info("suppressed")
	assert.Zero(t, buf.Len())

	logger.Warn("emitted")
	assert.NotZero(t, buf.Len())
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{
		Service: "connrealm",
		Format:  "text",
		Writer:  &buf,
	})

	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "service=connrealm")
}

func TestSetup_WithAttrsPreservesWrapping(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup(logging.Options{Service: "connrealm", Writer: &buf})

	logger.With("attempt_id", "01ABC").Info("scoped")

	record := parseRecord(t, &buf)
	assert.Equal(t, "01ABC", record["attempt_id"])
	assert.Equal(t, "connrealm", record["service"])
}
