package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordError("fetch")
	m.ObserveFetch(20 * time.Millisecond)
	m.SetCacheEntries(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupErrorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LookupErrorsTotal.WithLabelValues("parse")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.CacheEntries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDurationSeconds))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordError("parse")
		m.ObserveFetch(time.Second)
		m.SetCacheEntries(1)
	})
}
