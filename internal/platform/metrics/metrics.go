package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Mutations           *prometheus.CounterVec
	AuditAppendFailures prometheus.Counter
	SnapshotCacheHits   prometheus.Counter
	SnapshotCacheMisses prometheus.Counter
}

// New creates and registers all Prometheus metrics. Call once per process;
// promauto registers against the default registry.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cartlog_mutations_total",
			Help: "Successful list mutations by action kind",
		}, []string{"action"}),
		AuditAppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cartlog_audit_append_failures_total",
			Help: "Audit appends that failed and rolled back their mutation",
		}),
		SnapshotCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cartlog_snapshot_cache_hits_total",
			Help: "List snapshots served from the cache",
		}),
		SnapshotCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cartlog_snapshot_cache_misses_total",
			Help: "List snapshots read from the store",
		}),
	}
}

// IncrementMutation records one successful mutation of the given action kind.
// Nil-safe so services can run without metrics in tests.
func (m *Metrics) IncrementMutation(action string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(action).Inc()
}

// IncrementAuditAppendFailure records a failed audit append.
func (m *Metrics) IncrementAuditAppendFailure() {
	if m == nil {
		return
	}
	m.AuditAppendFailures.Inc()
}

// IncrementCacheHit records a snapshot served from cache.
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.SnapshotCacheHits.Inc()
}

// IncrementCacheMiss records a snapshot read from the store.
func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.SnapshotCacheMisses.Inc()
}
