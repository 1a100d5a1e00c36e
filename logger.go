package galileo

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the default logger handed to maps created without an
// explicit WithLogger option. Accessed atomically so SetLogger can be
// called concurrently with map construction.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the default logger for the package. By default
// the engine produces no log output.
//
// A Map snapshots the default logger when it is created; pass WithLogger
// to give one map its own. Pass nil to restore the silent default.
//
// Log levels used by the engine:
//   - [slog.LevelDebug]: per-tile pipeline events (queued, cached, retries)
//   - [slog.LevelInfo]: lifecycle events (layer added, style reloaded)
//   - [slog.LevelWarn]: non-fatal issues (failed tiles, partial tessellation)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
