package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"fatal", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromString(tt.in), "level %q", tt.in)
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "text", &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("key", "my_tech_notes"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "key=my_tech_notes")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("debug", "json", &buf)

	logger.Debug("note refined", slog.String("mode", "email"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "note refined", rec["msg"])
	assert.Equal(t, "email", rec["mode"])
	assert.Equal(t, "DEBUG", rec["level"])
}
