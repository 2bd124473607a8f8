// Package metrics provides Prometheus metrics for the name lookup cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the lookup client's cache and fetch metrics.
type Metrics struct {
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Lookup errors by stage (fetch, parse)
	LookupErrorsTotal *prometheus.CounterVec

	FetchDurationSeconds prometheus.Histogram

	CacheEntries prometheus.Gauge
}

// New registers all metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CacheHitsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "hi_cache_hits_total",
			Help: "Total number of lookups served from the local cache",
		}),

		CacheMissesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "hi_cache_misses_total",
			Help: "Total number of lookups that required a remote fetch",
		}),

		LookupErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hi_lookup_errors_total",
			Help: "Total number of failed lookups by stage",
		}, []string{"stage"}),

		FetchDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hi_fetch_duration_seconds",
			Help:    "Duration of remote lookup requests",
			Buckets: prometheus.DefBuckets,
		}),

		CacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "hi_cache_entries",
			Help: "Current number of cached lookup results",
		}),
	}
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordError records a failed lookup for the given stage.
func (m *Metrics) RecordError(stage string) {
	if m == nil {
		return
	}
	m.LookupErrorsTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}
