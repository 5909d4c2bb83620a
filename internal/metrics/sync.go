package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rickgao/tablesync/internal/writer"
)

// SyncMetrics counts table syncs by table and mode.
type SyncMetrics struct {
	syncs         *prometheus.CounterVec
	failures      *prometheus.CounterVec
	rows          *prometheus.CounterVec
	schemaChanges *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewSyncMetrics creates SyncMetrics and registers its collectors on reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	labels := []string{"table", "mode"}
	m := &SyncMetrics{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "total",
			Help: "Completed table syncs.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "failures_total",
			Help: "Table syncs that returned an error.",
		}, []string{"table"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "rows_total",
			Help: "Rows written.",
		}, labels),
		schemaChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sync", Name: "schema_changes_total",
			Help: "Columns added or dropped.",
		}, []string{"table", "change"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sync", Name: "duration_seconds",
			Help:    "Wall time of a table sync.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, labels),
	}
	if reg != nil {
		reg.MustRegister(m.syncs, m.failures, m.rows, m.schemaChanges, m.duration)
	}
	return m
}

// Observe records the outcome of one sync.
func (m *SyncMetrics) Observe(res writer.Result, err error) {
	table := res.Table.String()
	if err != nil {
		m.failures.WithLabelValues(table).Inc()
		return
	}
	mode := string(res.Mode)
	m.syncs.WithLabelValues(table, mode).Inc()
	m.rows.WithLabelValues(table, mode).Add(float64(res.Rows))
	m.duration.WithLabelValues(table, mode).Observe(res.Duration.Seconds())
	if n := len(res.Added); n > 0 {
		m.schemaChanges.WithLabelValues(table, "add").Add(float64(n))
	}
	if n := len(res.Dropped); n > 0 {
		m.schemaChanges.WithLabelValues(table, "drop").Add(float64(n))
	}
}

// WriteTextfile writes everything g gathers to path in the node_exporter
// textfile format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
