package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	initializeTo(&buf, "info", "json")
	t.Cleanup(func() { defaultLogger = nil })

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Info("handled", "status", 201)
	Debug("dropped below info")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "handled", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.EqualValues(t, 201, line["status"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	initializeTo(&buf, "debug", "text")
	t.Cleanup(func() { defaultLogger = nil })

	FromContext(context.Background()).Debug("no request")
	WithService("nats").Warn("disconnected")

	out := buf.String()
	assert.Contains(t, out, "msg=\"no request\"")
	assert.Contains(t, out, "service=nats")
}
