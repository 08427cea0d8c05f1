// Package metrics exposes fetch and coverage figures to Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"AdapterScout/internal/coverage"
	"AdapterScout/internal/dashboard"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	fetchDuration  *prometheus.HistogramVec
	fetchFailures  *prometheus.CounterVec
	cycles         *prometheus.CounterVec
	protocols      prometheus.Gauge
	covered        prometheus.Gauge
	uniqueProjects prometheus.Gauge
	poolsTVL       prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adapterscout",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of dataset fetches by source.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"source"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adapterscout",
			Name:      "fetch_failures_total",
			Help:      "Failed dataset fetches by source.",
		}, []string{"source"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adapterscout",
			Name:      "cycles_total",
			Help:      "Fetch cycles by outcome.",
		}, []string{"outcome"}),
		protocols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adapterscout",
			Name:      "protocols",
			Help:      "Protocols in the latest snapshot after category exclusion.",
		}),
		covered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adapterscout",
			Name:      "protocols_covered",
			Help:      "Protocols flagged as having a yield adapter.",
		}),
		uniqueProjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adapterscout",
			Name:      "pool_projects",
			Help:      "Distinct pool projects matching a listed protocol.",
		}),
		poolsTVL: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adapterscout",
			Name:      "pools_tvl_usd",
			Help:      "Sum of TVL over pools of listed protocols.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adapterscout",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last committed cycle.",
		}),
	}
	reg.MustRegister(m.fetchDuration, m.fetchFailures, m.cycles,
		m.protocols, m.covered, m.uniqueProjects, m.poolsTVL, m.lastSuccess)
	return m
}

// ObserveFetch implements collector.Observer.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil && !errors.Is(err, context.Canceled) {
		m.fetchFailures.WithLabelValues(source).Inc()
	}
}

// ObserveCycle counts a cycle outcome by label.
func (m *Metrics) ObserveCycle(err error) {
	switch {
	case err == nil:
		m.cycles.WithLabelValues("committed").Inc()
	case errors.Is(err, dashboard.ErrSuperseded):
		m.cycles.WithLabelValues("superseded").Inc()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.cycles.WithLabelValues("cancelled").Inc()
	default:
		m.cycles.WithLabelValues("failed").Inc()
	}
}

// Hook updates the coverage gauges from a committed snapshot.
func (m *Metrics) Hook(_ context.Context, snap *dashboard.Snapshot) {
	stats := coverage.Aggregate(snap.Enriched, snap.Pools)
	m.protocols.Set(float64(stats.Total))
	m.covered.Set(float64(stats.Covered))
	m.uniqueProjects.Set(float64(stats.UniqueProjects))
	m.poolsTVL.Set(stats.PoolsTVL)
	m.lastSuccess.Set(float64(snap.FetchedAt.Unix()))
}
