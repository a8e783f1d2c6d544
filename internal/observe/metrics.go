// Package observe provides application-wide observability primitives for
// Rattil: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
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

// meterName is the instrumentation scope name used for all Rattil metrics.
const meterName = "github.com/mkhalidi/rattil"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// AdvanceDuration tracks incremental alignment latency per chunk.
	AdvanceDuration metric.Float64Histogram

	// CompareDuration tracks end-of-session comparison latency.
	CompareDuration metric.Float64Histogram

	// QuranFetchDuration tracks reference text retrieval latency.
	QuranFetchDuration metric.Float64Histogram

	// AdvisorDuration tracks suggestion generation latency.
	AdvisorDuration metric.Float64Histogram

	// --- Counters ---

	// ChunksProcessed counts transcript chunks pushed into sessions.
	ChunksProcessed metric.Int64Counter

	// ErrorEvents counts alignment error events. Use with attribute:
	//   attribute.String("kind", ...)
	ErrorEvents metric.Int64Counter

	// AdvisorRequests counts advisor invocations. Use with attributes:
	//   attribute.String("advisor", ...), attribute.String("status", ...)
	AdvisorRequests metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live recitation sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for alignment and retrieval latencies.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AdvanceDuration, err = m.Float64Histogram("rattil.align.advance.duration",
		metric.WithDescription("Latency of incremental chunk alignment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CompareDuration, err = m.Float64Histogram("rattil.align.compare.duration",
		metric.WithDescription("Latency of end-of-session comparison."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.QuranFetchDuration, err = m.Float64Histogram("rattil.quran.fetch.duration",
		metric.WithDescription("Latency of reference text retrieval."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AdvisorDuration, err = m.Float64Histogram("rattil.advisor.duration",
		metric.WithDescription("Latency of suggestion generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ChunksProcessed, err = m.Int64Counter("rattil.session.chunks",
		metric.WithDescription("Total transcript chunks pushed into sessions."),
	); err != nil {
		return nil, err
	}
	if met.ErrorEvents, err = m.Int64Counter("rattil.align.error_events",
		metric.WithDescription("Total alignment error events by kind."),
	); err != nil {
		return nil, err
	}
	if met.AdvisorRequests, err = m.Int64Counter("rattil.advisor.requests",
		metric.WithDescription("Total advisor invocations by advisor and status."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("rattil.active_sessions",
		metric.WithDescription("Number of live recitation sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("rattil.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// RecordErrorEvents records n alignment error events of the given kind.
func (m *Metrics) RecordErrorEvents(ctx context.Context, kind string, n int64) {
	if n == 0 {
		return
	}
	m.ErrorEvents.Add(ctx, n,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordAdvisorRequest records one advisor invocation with its outcome.
func (m *Metrics) RecordAdvisorRequest(ctx context.Context, advisor, status string) {
	m.AdvisorRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("advisor", advisor),
			attribute.String("status", status),
		),
	)
}
