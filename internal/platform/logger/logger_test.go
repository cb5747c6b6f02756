package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter_LevelFiltering(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn", LogFormat: "json"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	l.Warn("shown", slog.String("k", "v"))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "v", entries[0]["k"])
	assert.Same(t, l, slog.Default())
}

func TestSetupWithWriter_TextFormat(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "debug", LogFormat: "text"}, buf)
	require.NoError(t, err)

	l.Debug("plain line")

	assert.Contains(t, buf.String(), "msg=\"plain line\"")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		level, ok := logger.ParseLevel(tt.in)
		assert.Equal(t, tt.level, level, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))
	scoped := slog.New(slog.NewJSONHandler(&logger.TestLogBuffer{}, nil))

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))

	ctx := logger.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, scoped, logger.FromContext(ctx))
}

func TestRequestRecordAttrs(t *testing.T) {
	t.Parallel()

	full := logger.RequestRecord{
		RequestID:  "req-1",
		Path:       "/api/v1/tasks",
		Method:     "GET",
		StatusCode: 200,
		DurationMs: 12,
	}
	keys := make([]string, 0)
	for _, a := range full.Attrs() {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"request_id", "method", "path", "status_code", "duration_ms"}, keys)

	partial := logger.RequestRecord{RequestID: "req-2", Method: "POST"}
	assert.Len(t, partial.Attrs(), 2)
	assert.Len(t, partial.Args(), 2)
}
