// Package corelog provides the core's leveled logger, a thin wrapper
// over log/slog: a WithField/WithComponent chain, a process-wide
// default instance reachable without plumbing a logger through every
// call, and a no-op default so library code never forces a logging
// backend on its callers.
package corelog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Logger wraps an *slog.Logger with the WithComponent idiom the
// teacher's hand-rolled logger used before slog existed in the
// standard library.
type Logger struct {
	inner *slog.Logger
}

// Config configures a new Logger.
type Config struct {
	// Level is the minimum level that will be emitted.
	Level slog.Level
	// Output is where log lines are written. Defaults to os.Stderr.
	Output io.Writer
	// AddSource additionally logs file:line and function name, for
	// debug builds.
	AddSource bool
}

// New returns a Logger writing text-formatted lines per cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	handler := slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	})
	return &Logger{inner: slog.New(handler)}
}

// Discard returns a Logger that drops every record, for callers that
// want the Logger interface without configuring a backend.
func Discard() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithComponent returns a Logger that tags every record with the given
// component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{inner: l.inner.With("component", component)}
}

// WithFields returns a Logger that tags every record with the given
// key/value pairs.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Enabled reports whether a record at level would be emitted.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.inner.Enabled(context.Background(), level)
}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
	defaultLoggerMu   sync.RWMutex
)

// Default returns the process-wide logger, creating a stderr-backed
// info-level logger on first use if none was set via SetDefault.
func Default() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New(Config{Level: slog.LevelInfo})
		}
		defaultLoggerMu.Unlock()
	})
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger. Should be called early
// in program startup, before other packages call Default().
func SetDefault(l *Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = l
}
