package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tablesync"

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type ctxkey string

var queryStart = ctxkey("queryStart")

// Tracer records every statement sent through a pgx connection.
// It implements pgx.QueryTracer.
type Tracer struct {
	statements *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewTracer creates a Tracer and registers its collectors on reg.
func NewTracer(reg prometheus.Registerer) *Tracer {
	t := &Tracer{
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "statements_total",
			Help:      "Statements executed, by leading keyword.",
		}, []string{"verb"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "statement_errors_total",
			Help:      "Statements that returned an error, by leading keyword.",
		}, []string{"verb"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "statement_duration_seconds",
			Help:      "Statement round-trip time.",
			Buckets:   latencyBuckets,
		}, []string{"verb"}),
	}
	if reg != nil {
		reg.MustRegister(t.statements, t.errors, t.latency)
	}
	return t
}

func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStart, time.Now())
}

func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	verb := statementVerb(data.CommandTag.String())
	t.statements.WithLabelValues(verb).Inc()
	if start, ok := ctx.Value(queryStart).(time.Time); ok {
		t.latency.WithLabelValues(verb).Observe(time.Since(start).Seconds())
	}
	if data.Err != nil {
		t.errors.WithLabelValues(verb).Inc()
	}
}

// statementVerb returns the lower-cased first word of a command tag such as
// "INSERT 0 5", or "other" when the tag is empty (failed statements).
func statementVerb(tag string) string {
	fields := strings.Fields(tag)
	if len(fields) == 0 {
		return "other"
	}
	return strings.ToLower(fields[0])
}
