// Package logging is sockd's slog setup: a console format with the process
// name and pid, component-scoped loggers and an optional syslog sink.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"grimm.is/sockd/internal/errors"
)

// Level is a log severity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Logger is a slog.Logger that can be scoped to a component.
type Logger struct {
	*slog.Logger
}

// Config selects the level, destination and format.
type Config struct {
	Level  Level
	Output io.Writer // stderr when nil
	JSON   bool
}

// New creates a Logger.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		h = NewConsoleHandler(cfg.Output, opts)
	}
	return &Logger{Logger: slog.New(h)}
}

// ParseLevel maps log_level to a Level. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, errors.Errorf(errors.KindInvalid, "unknown log level %q", s)
}

// Default returns the process logger. Until SetDefault is called it logs
// at info level to stderr.
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(Config{Level: LevelInfo})
	}
	return defaultLogger
}

// SetDefault replaces the process logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// WithComponent returns a logger whose records carry component=name. The
// console handler prints it in the line header.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// WithComponent scopes the process logger.
func WithComponent(name string) *Logger {
	return Default().WithComponent(name)
}
