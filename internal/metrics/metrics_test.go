package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncUpdate("telegram")
	m.IncUpdate("telegram")
	m.ObserveCommand("log_water", time.Now().Add(-time.Millisecond))
	m.IncError("persistence")

	require.Equal(t, 2.0, testutil.ToFloat64(m.UpdatesTotal.WithLabelValues("telegram")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("log_water")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("persistence")))
	require.Equal(t, 1, testutil.CollectAndCount(m.CommandDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 4)

	require.Panics(t, func() { New(reg) }, "duplicate registration must fail")
}

func TestMetrics_NilRegisterer(t *testing.T) {
	m := New(nil)
	m.IncError("x")
	require.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("x")))
}
