package gvr

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gvr/atlas"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gvr and its sub-packages.
// By default, gvr produces no log output. Pass nil to restore silence.
//
// Renderers created without WithLogger, and the backends they were
// created over, follow later SetLogger calls.
//
// Log levels used by gvr:
//   - [slog.LevelDebug]: buffer regrowth, atlas resets, draw run counts
//   - [slog.LevelInfo]: backend setup
//   - [slog.LevelWarn]: skipped draws (atlas exhaustion, deleted images)
//
// Example:
//
//	gvr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	atlas.SetLogger(l)
}

// Logger returns the current logger used by gvr.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// followHandler forwards to the handler of the current package logger,
// so loggers built on it track SetLogger.
type followHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h followHandler) handler() slog.Handler {
	l := Logger().Handler()
	if h.wrap != nil {
		return h.wrap(l)
	}
	return l
}

func (h followHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler().Enabled(ctx, level)
}

func (h followHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h followHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.then(func(l slog.Handler) slog.Handler { return l.WithAttrs(attrs) })
}

func (h followHandler) WithGroup(name string) slog.Handler {
	return h.then(func(l slog.Handler) slog.Handler { return l.WithGroup(name) })
}

func (h followHandler) then(next func(slog.Handler) slog.Handler) followHandler {
	prev := h.wrap
	return followHandler{wrap: func(l slog.Handler) slog.Handler {
		if prev != nil {
			l = prev(l)
		}
		return next(l)
	}}
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a backend if it implements
// loggerSetter.
func propagateLogger(b any, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
