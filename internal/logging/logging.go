// Package logging holds the process logger shared by every runtime package.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l as the runtime logger. Nil restores the silent default.
//
// Levels in use:
//   - Debug: per-frame render and queue diagnostics
//   - Info: lifecycle (platform start, suite loaded, settings changed)
//   - Warn: recovered handler faults, missing resources
//   - Error: startup failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current runtime logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps a flag value to a slog level. Unknown names mean Info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
