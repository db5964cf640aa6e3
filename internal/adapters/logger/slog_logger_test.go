package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/stretchr/testify/assert"
)

func TestSlogLogger_WritesJSONWithoutTrace(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, slog.LevelDebug).With("service", "aid-portal")

	l.Info(context.Background(), "application submitted", "tracker_id", "TRK-1")

	out := buf.String()
	assert.Contains(t, out, `"msg":"application submitted"`)
	assert.Contains(t, out, `"tracker_id":"TRK-1"`)
	assert.Contains(t, out, `"service":"aid-portal"`)
	assert.NotContains(t, out, "trace_id")
}

func TestSlogLogger_AddsTraceIDFromSegment(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, slog.LevelDebug)

	ctx, seg := xray.BeginSegment(context.Background(), "test-segment")
	defer seg.Close(nil)

	l.Warn(ctx, "workflow update refused")

	assert.Contains(t, buf.String(), "trace_id")
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewWithWriter(buf, ParseLevel("warn"))

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden too")
	l.Error(context.Background(), "shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.Contains(t, out, "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
