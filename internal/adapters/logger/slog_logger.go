package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// SlogLogger writes JSON lines and tags each record with the X-Ray trace id
// of the request when one is on the context.
type SlogLogger struct {
	logger *slog.Logger
}

func New(service string, level slog.Leveler) *SlogLogger {
	return NewWithWriter(os.Stdout, level).With("service", service)
}

func NewWithWriter(w io.Writer, level slog.Leveler) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{logger: slog.New(h)}
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

func (l *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func traceArgs(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	seg := xray.GetSegment(ctx)
	if seg == nil || seg.TraceID == "" {
		return args
	}
	return append(args, "trace_id", seg.TraceID)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, traceArgs(ctx, args)...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, traceArgs(ctx, args)...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, traceArgs(ctx, args)...)
}

func (l *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, traceArgs(ctx, args)...)
}
