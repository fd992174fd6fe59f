// Package hostops implements the native operations script code may invoke
// through the prelude: leveled logging, relative-path computation, and
// schema validation (C4). No other capability is reachable from script.
package hostops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Level is a logging severity, ordered from most to least verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses a --loglevel value. It defaults to LevelInfo for an
// empty string.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "", "info":
		return LevelInfo, nil
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger emits leveled log lines on standard error, dropping anything
// below its configured threshold.
type Logger struct {
	threshold Level
	slog      *slog.Logger
}

// NewLogger builds a Logger at threshold that writes to stderr.
func NewLogger(threshold Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: threshold.slogLevel(),
	})
	return &Logger{threshold: threshold, slog: slog.New(handler)}
}

// Log emits message at level, already formatted by the caller, tagged
// with the entrypoint it originated from.
func (l *Logger) Log(level Level, entrypoint, message string) {
	if level < l.threshold {
		return
	}
	l.slog.Log(context.Background(), level.slogLevel(), message, "entrypoint", entrypoint)
}

func (l *Logger) Trace(entrypoint, message string) { l.Log(LevelTrace, entrypoint, message) }
func (l *Logger) Debug(entrypoint, message string) { l.Log(LevelDebug, entrypoint, message) }
func (l *Logger) Info(entrypoint, message string)  { l.Log(LevelInfo, entrypoint, message) }
func (l *Logger) Warn(entrypoint, message string)  { l.Log(LevelWarn, entrypoint, message) }
func (l *Logger) Error(entrypoint, message string) { l.Log(LevelError, entrypoint, message) }
