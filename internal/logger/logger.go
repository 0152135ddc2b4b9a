// Package logger provides structured logging and metrics for solea-events.
//
// Logs are JSON lines by default (console format is available for local runs)
// written through zerolog. Every entry carries a timestamp and optional
// structured fields; request handlers attach a request ID through the context.
//
// Example usage:
//
//	logger.Info("events extracted", logger.Fields{
//	    "url":   "https://isbitelecom.com/evenements",
//	    "count": 4,
//	})
//
//	logger.Error("fetch failed", logger.Fields{"url": u}, err)
//
//	logger.C(ctx).Debug("enrichment page skipped", logger.Fields{"url": u})
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the output encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger provides structured logging
type Logger struct {
	zl zerolog.Logger
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New(LevelInfo, os.Stdout))
}

// New creates a JSON logger with the specified minimum level and destination.
// Messages below the minimum level are discarded.
func New(level Level, output io.Writer) *Logger {
	return NewWithFormat(level, output, FormatJSON)
}

// NewWithFormat creates a logger that writes JSON or human-readable console lines.
func NewWithFormat(level Level, output io.Writer, format Format) *Logger {
	if output == nil {
		output = os.Stdout
	}
	if format == FormatConsole {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339, NoColor: true}
	}

	zl := zerolog.New(output).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// ParseLevel maps config strings ("debug", "warning", ...) to a Level. Unknown values yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "fatal":
		return LevelError
	default:
		return LevelInfo
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDefault sets the package-level logger used by Debug, Info, Warn and Error.
func SetDefault(logger *Logger) {
	if logger != nil {
		defaultLogger.Store(logger)
	}
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{zl: l.zl.With().Fields(map[string]interface{}(fields)).Logger()}
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	var evt *zerolog.Event
	switch level {
	case LevelDebug:
		evt = l.zl.Debug()
	case LevelWarn:
		evt = l.zl.Warn()
	case LevelError:
		evt = l.zl.Error()
	default:
		evt = l.zl.Info()
	}
	if evt == nil {
		return
	}

	if len(fields) > 0 {
		evt = evt.Fields(map[string]interface{}(fields))
	}
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg(message)
}

// Debug logs detailed diagnostic information.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs general operational information.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a potential issue that does not prevent operation.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs a failure together with the error that caused it.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	Default().Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}

type ctxKey struct{}

// WithRequestID annotates ctx with the request ID used by C.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// C returns the default logger enriched with the request ID found in ctx.
func C(ctx context.Context) *Logger {
	if id := RequestID(ctx); id != "" {
		return Default().With(Fields{"req_id": id})
	}
	return Default()
}
