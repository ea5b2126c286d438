package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supinic/supi-core-sub000/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"}, "1.2.3")

	logger.Debug("hidden")
	logger.Info("query executed", "sql", "SELECT 1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "query executed", entry["msg"])
	assert.Equal(t, "supicore", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "SELECT 1", entry["sql"])
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "text"}, "dev")

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "service=supicore")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNew_Output(t *testing.T) {
	tests := []struct {
		output     string
		wantStdout bool
	}{
		{"stdout", true},
		{"STDOUT", true},
		{"stderr", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			logger := New(config.LoggingConfig{Output: tt.output}, "dev", &stdout, &stderr)
			logger.Info("hello")

			if tt.wantStdout {
				assert.Contains(t, stdout.String(), "msg=hello")
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), "msg=hello")
				assert.Empty(t, stdout.String())
			}
		})
	}
}
