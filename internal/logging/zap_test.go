package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", "two")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	entries := logs.All()
	require.Len(t, entries, 4)
	require.Equal(t, "dbg", entries[0].Message)
	require.EqualValues(t, 1, entries[0].ContextMap()["a"])
	require.Equal(t, "two", entries[1].ContextMap()["b"])
	require.Equal(t, zap.WarnLevel, entries[2].Level)
	require.Equal(t, zap.ErrorLevel, entries[3].Level)
}

func TestZapLogger_With(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := NewZapLoggerFrom(zap.New(core)).With("entity", "devices")

	log.Info(context.Background(), "loaded", "count", 4)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "devices", fields["entity"])
	require.EqualValues(t, 4, fields["count"])
}

func TestNew_SelectsBackend(t *testing.T) {
	l, err := New("zap", "debug")
	require.NoError(t, err)
	require.IsType(t, &ZapLogger{}, l)

	l, err = New("json", "info")
	require.NoError(t, err)
	require.IsType(t, &SlogLogger{}, l)
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop().With("k", "v")
	l.Info(context.Background(), "ignored")
}
