package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "request", "path", "/rest/v1/devices")
	log.Info(ctx, "loaded", "count", 4)
	log.Warn(ctx, "fallback", "op", "update_status")
	log.Error(ctx, "failed", "status", 500)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "path=/rest/v1/devices",
		"level=INFO", "count=4",
		"level=WARN", "op=update_status",
		"level=ERROR", "status=500",
	} {
		require.Contains(t, out, want)
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("entity", "spare_parts").Info(context.Background(), "quantity updated", "part_id", "sp-001")

	out := buf.String()
	for _, s := range []string{"msg=\"quantity updated\"", "entity=spare_parts", "part_id=sp-001"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestParseSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseSlogLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseSlogLevel("warn"))
	require.Equal(t, slog.LevelError, parseSlogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseSlogLevel("bogus"))
}
