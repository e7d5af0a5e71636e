package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports cache counters to Prometheus. A nil *Metrics is a no-op.
type Metrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	keys      *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups answered from memory.",
		}, []string{"cache"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found no live entry.",
		}, []string{"cache"}),
		evictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrx",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Expired entries removed by the janitor.",
		}, []string{"cache"}),
		keys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hrx",
			Subsystem: "cache",
			Name:      "keys",
			Help:      "Entries currently held, including not yet evicted expired ones.",
		}, []string{"cache"}),
	}
}

func (m *Metrics) hit(name string) {
	if m != nil {
		m.hits.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) miss(name string) {
	if m != nil {
		m.misses.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) evict(name string, n int) {
	if m != nil && n > 0 {
		m.evictions.WithLabelValues(name).Add(float64(n))
	}
}

func (m *Metrics) setKeys(name string, n int) {
	if m != nil {
		m.keys.WithLabelValues(name).Set(float64(n))
	}
}
