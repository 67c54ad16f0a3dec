package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Request("devices", "load", OutcomeOK)
	m.Request("devices", "load", OutcomeOK)
	m.Fallback("parts", "update_quantity")
	m.SecondaryWriteFailed("part_history")

	require.Equal(t, 2.0, testutil.ToFloat64(m.RemoteRequests.WithLabelValues("devices", "load", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Fallbacks.WithLabelValues("parts", "update_quantity")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SecondaryWriteFailures.WithLabelValues("part_history")))

	n, err := testutil.GatherAndCount(m.Registry)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Request("devices", "load", OutcomeOK)
	m.Fallback("devices", "load")
	m.SecondaryWriteFailed("x")
}
