package dekoi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarning:
		return "warning"
	case LogLevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLogLevel accepts the names printed by LogLevel.String.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarning, nil
	case "error":
		return LogLevelError, nil
	}
	return LogLevelInfo, withStatus(errors.Newf("unknown log level %q", s), StatusInvalidValue)
}

// SlogLevel maps l onto the matching slog level.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Logger receives the renderer's diagnostics together with the source
// location that emitted them. Implementations must be safe to call from
// the thread driving the renderer; the renderer never logs concurrently.
type Logger interface {
	Log(level LogLevel, file string, line int, format string, args ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger writing text records at or above level to w.
func NewLogger(w io.Writer, level LogLevel) Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	})))
}

// NewSlogLogger adapts an existing slog.Logger.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &slogLogger{logger: logger}
}

// DiscardLogger drops every record.
func DiscardLogger() Logger {
	return NewSlogLogger(nil)
}

func (l *slogLogger) Log(level LogLevel, file string, line int, format string, args ...any) {
	ctx := context.Background()
	lvl := level.SlogLevel()
	if !l.logger.Enabled(ctx, lvl) {
		return
	}
	l.logger.Log(ctx, lvl, fmt.Sprintf(format, args...),
		slog.String("file", file),
		slog.Int("line", line))
}

func defaultLogger() Logger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// logf forwards to logger with the caller's location.
func logf(logger Logger, level LogLevel, format string, args ...any) {
	file, line := "???", 0
	if _, f, l, ok := runtime.Caller(1); ok {
		file, line = filepath.Base(f), l
	}
	logger.Log(level, file, line, format, args...)
}
