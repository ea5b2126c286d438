package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// SQLRecorder is a slog.Handler that keeps the "sql" attribute of every
// record, so tests can assert which statements a store executed.
type SQLRecorder struct {
	mu         sync.Mutex
	statements []string
}

// NewSQLRecorder returns a recorder and a debug-level logger writing to it.
func NewSQLRecorder() (*SQLRecorder, *slog.Logger) {
	r := &SQLRecorder{}
	return r, slog.New(r)
}

// Enabled implements slog.Handler.
func (r *SQLRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *SQLRecorder) Handle(_ context.Context, rec slog.Record) error {
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "sql" {
			r.mu.Lock()
			r.statements = append(r.statements, a.Value.String())
			r.mu.Unlock()
			return false
		}
		return true
	})
	return nil
}

// WithAttrs implements slog.Handler. Attributes added with With are
// dropped; only per-record "sql" attributes are kept.
func (r *SQLRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

// WithGroup implements slog.Handler.
func (r *SQLRecorder) WithGroup(string) slog.Handler { return r }

// Statements returns the recorded SQL in execution order.
func (r *SQLRecorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}

// Reset forgets recorded statements.
func (r *SQLRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
}
