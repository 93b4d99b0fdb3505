package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Fields map[string]any

// Logger writes one structured record per event. Event names are dotted,
// e.g. "booking.create.conflict".
type Logger interface {
	Debug(event string, fields Fields)
	Info(event string, fields Fields)
	Warn(event string, fields Fields)
	Error(event string, fields Fields)
	With(fields Fields) Logger
	WithModule(module string) Logger
}

type slogLogger struct {
	base   *slog.Logger
	module string
}

func New(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level string) Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &slogLogger{base: slog.New(h), module: "main"}
}

// Nop discards everything.
func Nop() Logger {
	return &slogLogger{base: slog.New(slog.NewJSONHandler(io.Discard, nil)), module: "nop"}
}

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

func (l *slogLogger) With(fields Fields) Logger {
	return &slogLogger{base: l.base.With(attrs(fields)...), module: l.module}
}

func (l *slogLogger) WithModule(module string) Logger {
	return &slogLogger{base: l.base, module: module}
}

func (l *slogLogger) Debug(event string, fields Fields) { l.log(slog.LevelDebug, event, fields) }
func (l *slogLogger) Info(event string, fields Fields)  { l.log(slog.LevelInfo, event, fields) }
func (l *slogLogger) Warn(event string, fields Fields)  { l.log(slog.LevelWarn, event, fields) }
func (l *slogLogger) Error(event string, fields Fields) { l.log(slog.LevelError, event, fields) }

func (l *slogLogger) log(level slog.Level, event string, fields Fields) {
	args := append([]any{slog.String("module", l.module)}, attrs(fields)...)
	l.base.Log(context.Background(), level, event, args...)
}

func attrs(fields Fields) []any {
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out = append(out, slog.Any(k, v))
	}
	return out
}
