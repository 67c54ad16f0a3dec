package backend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/maintkeeper/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestEffort_RunsAndCountsFailures(t *testing.T) {
	m := metrics.New()
	b := NewBestEffort(2, nil, m)
	defer b.Close()

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		b.Go(context.Background(), "ok", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	b.Go(context.Background(), "part_history", func(context.Context) error {
		return errors.New("HTTP 500")
	})
	b.Go(context.Background(), "part_history", func(context.Context) error {
		panic("boom")
	})
	b.Flush()

	assert.Equal(t, int32(5), ran.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SecondaryWriteFailures.WithLabelValues("part_history")))
}

func TestBestEffort_IgnoresCallerCancellation(t *testing.T) {
	b := NewBestEffort(1, nil, nil)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ctxErr error
	b.Go(ctx, "touch", func(ctx context.Context) error {
		ctxErr = ctx.Err()
		return nil
	})
	b.Flush()
	require.NoError(t, ctxErr)
}

func TestBestEffort_CloseDrainsAndRejectsLateWrites(t *testing.T) {
	m := metrics.New()
	b := NewBestEffort(1, nil, m)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		b.Go(context.Background(), "x", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	b.Close()
	b.Close()
	assert.Equal(t, int32(10), ran.Load())

	b.Go(context.Background(), "late", func(context.Context) error {
		t.Fatal("must not run after close")
		return nil
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecondaryWriteFailures.WithLabelValues("late")))
}
