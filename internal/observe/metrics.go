// Package observe provides application-wide observability primitives for the
// alignment core: OpenTelemetry metrics and distributed tracing.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all sentalign metrics.
const meterName = "github.com/sentalign/sentalign"

// Metrics holds all OpenTelemetry metric instruments for the alignment core.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// SpanSearchDuration tracks how long the Local Aligner's search (one
	// strict or fallback pass) takes per sentence.
	SpanSearchDuration metric.Float64Histogram

	// LLMRequestDuration tracks per-sentence LLM oracle request latency.
	LLMRequestDuration metric.Float64Histogram

	// BuildDuration tracks the wall-clock time of a whole alignment build.
	BuildDuration metric.Float64Histogram

	// --- Counters ---

	// SentencesByStatus counts resolved sentences. Use with attribute:
	//   attribute.String("status", ...) — ok/warning/fallback/not_aligned/manual
	SentencesByStatus metric.Int64Counter

	// SentencesByMethod counts resolved sentences by producing method. Use
	// with attribute: attribute.String("method", ...) — local/llm/manual
	SentencesByMethod metric.Int64Counter

	// LLMRetries counts LLM oracle retry attempts (attempt > 0).
	LLMRetries metric.Int64Counter

	// --- Error counters ---

	// LLMFailures counts LLM oracle requests that failed after exhausting
	// their retry budget. Use with attribute: attribute.String("reason", ...)
	LLMFailures metric.Int64Counter

	// --- Gauges ---

	// CircuitBreakerState tracks the Hybrid Coordinator's LLM oracle circuit
	// breaker state as 0 (closed), 1 (half-open), 2 (open).
	CircuitBreakerState metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// per-sentence search/request latencies rather than sub-millisecond work.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SpanSearchDuration, err = m.Float64Histogram("sentalign.span_search.duration",
		metric.WithDescription("Latency of one Local Aligner search pass per sentence."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMRequestDuration, err = m.Float64Histogram("sentalign.llm.request.duration",
		metric.WithDescription("Latency of a per-sentence LLM oracle request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BuildDuration, err = m.Float64Histogram("sentalign.build.duration",
		metric.WithDescription("Wall-clock time of a full alignment build."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if met.SentencesByStatus, err = m.Int64Counter("sentalign.sentences.by_status",
		metric.WithDescription("Total resolved sentences by status."),
	); err != nil {
		return nil, err
	}
	if met.SentencesByMethod, err = m.Int64Counter("sentalign.sentences.by_method",
		metric.WithDescription("Total resolved sentences by producing method."),
	); err != nil {
		return nil, err
	}
	if met.LLMRetries, err = m.Int64Counter("sentalign.llm.retries",
		metric.WithDescription("Total LLM oracle retry attempts."),
	); err != nil {
		return nil, err
	}

	if met.LLMFailures, err = m.Int64Counter("sentalign.llm.failures",
		metric.WithDescription("Total LLM oracle requests that failed after exhausting retries."),
	); err != nil {
		return nil, err
	}

	if met.CircuitBreakerState, err = m.Int64UpDownCounter("sentalign.llm.circuit_breaker.state",
		metric.WithDescription("LLM oracle circuit breaker state: 0=closed, 1=half-open, 2=open."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSentence is a convenience method that records a resolved sentence's
// status and method counters together.
func (m *Metrics) RecordSentence(ctx context.Context, status, method string) {
	m.SentencesByStatus.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.SentencesByMethod.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordLLMFailure is a convenience method that records an LLM oracle
// failure counter increment with the standard attribute set.
func (m *Metrics) RecordLLMFailure(ctx context.Context, reason string) {
	m.LLMFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
