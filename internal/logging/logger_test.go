package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestFolioLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("json output carries fields and component", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

		logger.WithComponent("contact").Info(ctx, "Submission started", "field_count", 3)

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "Submission started", entries[0]["msg"])
		assert.Equal(t, "contact", entries[0]["component"])
		assert.EqualValues(t, 3, entries[0]["field_count"])
	})

	t.Run("errors are attached under error key", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

		logger.Error(ctx, errors.New("boom"), "Send failed")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "boom", entries[0]["error"])
	})

	t.Run("level filters lower severities", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "json", Output: &buf})

		logger.Debug(ctx, "hidden")
		logger.Info(ctx, "hidden")
		logger.Warn(ctx, nil, "shown")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "shown", entries[0]["msg"])
	})

	t.Run("with keeps persistent fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

		child := logger.With("session_id", "abc", "dangling")
		child.Info(ctx, "hello", "elapsed", 2*time.Second)

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "abc", entries[0]["session_id"])
		assert.NotContains(t, entries[0], "dangling")
		assert.Contains(t, entries[0], "elapsed")
	})

	t.Run("nop logger is silent", func(t *testing.T) {
		logger := NewNop()
		assert.NotPanics(t, func() {
			logger.Error(ctx, errors.New("x"), "ignored")
			logger.WithComponent("c").With("k", "v").Info(ctx, "ignored")
		})
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "j***@x.co", RedactEmail("jo@x.co"))
	assert.Equal(t, "[REDACTED]", RedactEmail("not-an-email"))
	assert.Equal(t, "[REDACTED]", RedactEmail("@x.co"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
