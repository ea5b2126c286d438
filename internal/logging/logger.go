// Package logging builds the slog logger shared by the store and the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/Supinic/supi-core-sub000/internal/config"
)

// New creates a logger from the logging section of the configuration,
// writing to stdout or stderr as cfg.Output selects (stderr by default).
// Every record carries service and version attributes.
func New(cfg config.LoggingConfig, version string, stdout, stderr io.Writer) *slog.Logger {
	output := stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		output = stdout
	}
	return NewWithWriter(output, cfg, version)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "supicore"),
		slog.String("version", version),
	})
	return slog.New(handler)
}

// parseLevel defaults to info for unrecognised levels.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
