package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records listener chain metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordDispatch records one fan-out of an event to its listeners.
	RecordDispatch(ctx context.Context, kind string, listeners int, duration time.Duration)

	// RecordAttach records a listener attachment.
	RecordAttach(ctx context.Context, listenerType string)

	// RecordRetry records a retry decision. exhausted is true when the
	// invocation had no budget left.
	RecordRetry(ctx context.Context, granted, exhausted bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	dispatchEvents  metric.Int64Counter
	dispatchLatency metric.Float64Histogram
	listenerFanout  metric.Int64Histogram
	attached        metric.Int64Counter
	retryDecisions  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("testchain")

	dispatchEvents, err := meter.Int64Counter("testchain.dispatch.events",
		metric.WithDescription("Number of events dispatched to listeners"),
	)
	if err != nil {
		return nil, err
	}

	dispatchLatency, err := meter.Float64Histogram("testchain.dispatch.latency_ms",
		metric.WithDescription("Time spent fanning an event out to listeners"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerFanout, err := meter.Int64Histogram("testchain.dispatch.listeners",
		metric.WithDescription("Listeners notified per dispatched event"),
	)
	if err != nil {
		return nil, err
	}

	attached, err := meter.Int64Counter("testchain.listener.attached",
		metric.WithDescription("Number of listeners attached"),
	)
	if err != nil {
		return nil, err
	}

	retryDecisions, err := meter.Int64Counter("testchain.retry.decisions",
		metric.WithDescription("Retry decisions for failed invocations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		dispatchEvents:  dispatchEvents,
		dispatchLatency: dispatchLatency,
		listenerFanout:  listenerFanout,
		attached:        attached,
		retryDecisions:  retryDecisions,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordDispatch records one event fan-out.
func (m *otelMetrics) RecordDispatch(ctx context.Context, kind string, listeners int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.dispatchEvents.Add(ctx, 1, attrs)
	m.dispatchLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.listenerFanout.Record(ctx, int64(listeners), attrs)
}

// RecordAttach records a listener attachment.
func (m *otelMetrics) RecordAttach(ctx context.Context, listenerType string) {
	m.attached.Add(ctx, 1, metric.WithAttributes(attribute.String("listener", listenerType)))
}

// RecordRetry records a retry decision.
func (m *otelMetrics) RecordRetry(ctx context.Context, granted, exhausted bool) {
	m.retryDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("granted", granted),
		attribute.Bool("exhausted", exhausted),
	))
}
