package metrics_test

import (
	"testing"

	"geo-attendance/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	m.CheckIns.WithLabelValues("accepted").Inc()
	m.CheckIns.WithLabelValues("accepted").Inc()
	m.CheckIns.WithLabelValues("outside_geofence").Inc()

	assert.InDelta(t, 2, testutil.ToFloat64(m.CheckIns.WithLabelValues("accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CheckIns.WithLabelValues("outside_geofence")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = metrics.NewMetrics(reg)

	assert.Panics(t, func() { metrics.NewMetrics(reg) })
}
