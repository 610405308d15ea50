// Package metrics exposes the pipeline counters. A nil *Metrics is valid and
// records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gighunter"

type Metrics struct {
	Hunts         *prometheus.CounterVec
	HuntDuration  *prometheus.HistogramVec
	Found         *prometheus.CounterVec
	Matched       *prometheus.CounterVec
	ScoringErrors *prometheus.CounterVec
	Queries       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hunts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hunts_total",
			Help:      "Adapter runs by final status.",
		}, []string{"platform", "status"}),
		HuntDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hunt_duration_seconds",
			Help:      "Wall time of one adapter run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"platform"}),
		Found: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_found_total",
			Help:      "Listings returned by scans after dedup.",
		}, []string{"platform"}),
		Matched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_matched_total",
			Help:      "Listings at or above the match threshold.",
		}, []string{"platform"}),
		ScoringErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_errors_total",
			Help:      "Sub-scores that failed and defaulted to zero.",
		}, []string{"platform", "part"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_queries_total",
			Help:      "Search queries issued to sources by outcome.",
		}, []string{"platform", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.Hunts, m.HuntDuration, m.Found, m.Matched, m.ScoringErrors, m.Queries)
	}
	return m
}

func (m *Metrics) ObserveHunt(platform, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Hunts.WithLabelValues(platform, status).Inc()
	m.HuntDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
}

func (m *Metrics) AddFound(platform string, n int) {
	if m == nil {
		return
	}
	m.Found.WithLabelValues(platform).Add(float64(n))
}

func (m *Metrics) AddMatched(platform string, n int) {
	if m == nil {
		return
	}
	m.Matched.WithLabelValues(platform).Add(float64(n))
}

func (m *Metrics) ScoringError(platform, part string) {
	if m == nil {
		return
	}
	m.ScoringErrors.WithLabelValues(platform, part).Inc()
}

func (m *Metrics) Query(platform string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.Queries.WithLabelValues(platform, outcome).Inc()
}
