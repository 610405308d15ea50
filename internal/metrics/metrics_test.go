package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHunt("upwork", "completed", time.Second)
	m.AddFound("upwork", 3)
	m.ScoringError("upwork", "pay")
	m.Query("upwork", false)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHunt("indeed", "failed", 2*time.Second)
	m.AddFound("indeed", 4)
	m.AddMatched("indeed", 1)
	m.ScoringError("indeed", "salary")
	m.ScoringError("indeed", "salary")
	m.Query("indeed", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hunts.WithLabelValues("indeed", "failed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Found.WithLabelValues("indeed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScoringErrors.WithLabelValues("indeed", "salary")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}
