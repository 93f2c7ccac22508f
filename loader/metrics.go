package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records loader activity. A nil *Metrics records nothing.
type Metrics struct {
	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	cache    *prometheus.CounterVec
}

// NewMetrics creates the loader collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablero_loads_total",
			Help: "Table loads by source kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tablero_load_duration_seconds",
			Help:    "Time spent loading a table.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablero_cache_requests_total",
			Help: "Load cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.loads, m.duration, m.cache)
	}
	return m
}

// Outcomes of a load.
const (
	OutcomeOK = "ok"
)

func (m *Metrics) observeLoad(kind SourceKind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheEvict = "evict"
)

func (m *Metrics) observeCache(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}

// LoadsTotal returns the counter for kind and outcome, for tests and
// diagnostics.
func (m *Metrics) LoadsTotal(kind SourceKind, outcome string) prometheus.Counter {
	return m.loads.WithLabelValues(string(kind), outcome)
}

// CacheRequests returns the cache counter for result.
func (m *Metrics) CacheRequests(result string) prometheus.Counter {
	return m.cache.WithLabelValues(result)
}
