package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// MetricsRecorder records engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEventActivated counts an event admitted to the registry.
	RecordEventActivated(ctx context.Context, t model.EventType, sev model.Severity, source string)

	// RecordEventResolved counts an event moved to history.
	RecordEventResolved(ctx context.Context, t model.EventType, res model.Resolution)

	// RecordAdmissionRejected counts a candidate discarded by admission control.
	RecordAdmissionRejected(ctx context.Context, t model.EventType)

	// RecordTaskRun records one periodic task run with its duration and error status.
	RecordTaskRun(ctx context.Context, task string, duration time.Duration, err error)

	// RecordNotificationDropped counts a notification evicted from a full subscriber buffer.
	RecordNotificationDropped(ctx context.Context, kind string)

	// RecordForecast records a forecast with its prediction and degraded-provider counts.
	RecordForecast(ctx context.Context, predictions, degraded int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsActivated   metric.Int64Counter
	eventsResolved    metric.Int64Counter
	admissionRejected metric.Int64Counter
	taskRuns          metric.Int64Counter
	taskErrors        metric.Int64Counter
	taskLatency       metric.Float64Histogram
	notifyDropped     metric.Int64Counter
	forecasts         metric.Int64Counter
	forecastLatency   metric.Float64Histogram
	predictions       metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("worldevents")
	m := &otelMetrics{}
	var err error

	if m.eventsActivated, err = meter.Int64Counter("worldevents.events.activated",
		metric.WithDescription("Number of events admitted to the active registry"),
	); err != nil {
		return nil, err
	}
	if m.eventsResolved, err = meter.Int64Counter("worldevents.events.resolved",
		metric.WithDescription("Number of events moved to history"),
	); err != nil {
		return nil, err
	}
	if m.admissionRejected, err = meter.Int64Counter("worldevents.admission.rejected",
		metric.WithDescription("Number of candidate events rejected by admission control"),
	); err != nil {
		return nil, err
	}
	if m.taskRuns, err = meter.Int64Counter("worldevents.task.runs",
		metric.WithDescription("Number of periodic task runs"),
	); err != nil {
		return nil, err
	}
	if m.taskErrors, err = meter.Int64Counter("worldevents.task.errors",
		metric.WithDescription("Number of failed periodic task runs"),
	); err != nil {
		return nil, err
	}
	if m.taskLatency, err = meter.Float64Histogram("worldevents.task.latency_ms",
		metric.WithDescription("Periodic task latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.notifyDropped, err = meter.Int64Counter("worldevents.notify.dropped",
		metric.WithDescription("Number of notifications dropped from full subscriber buffers"),
	); err != nil {
		return nil, err
	}
	if m.forecasts, err = meter.Int64Counter("worldevents.forecast.runs",
		metric.WithDescription("Number of forecasts generated"),
	); err != nil {
		return nil, err
	}
	if m.forecastLatency, err = meter.Float64Histogram("worldevents.forecast.latency_ms",
		metric.WithDescription("Forecast latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.predictions, err = meter.Int64Histogram("worldevents.forecast.predictions",
		metric.WithDescription("Predictions per forecast"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordEventActivated(ctx context.Context, t model.EventType, sev model.Severity, source string) {
	m.eventsActivated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", t.String()),
		attribute.String("severity", sev.String()),
		attribute.String("source", source),
	))
}

func (m *otelMetrics) RecordEventResolved(ctx context.Context, t model.EventType, res model.Resolution) {
	m.eventsResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", t.String()),
		attribute.String("resolution", res.String()),
	))
}

func (m *otelMetrics) RecordAdmissionRejected(ctx context.Context, t model.EventType) {
	m.admissionRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("type", t.String())))
}

func (m *otelMetrics) RecordTaskRun(ctx context.Context, task string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("task", task))
	m.taskRuns.Add(ctx, 1, attrs)
	m.taskLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.taskErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordNotificationDropped(ctx context.Context, kind string) {
	m.notifyDropped.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *otelMetrics) RecordForecast(ctx context.Context, predictions, degraded int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("degraded", degraded > 0))
	m.forecasts.Add(ctx, 1, attrs)
	m.forecastLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.predictions.Record(ctx, int64(predictions), attrs)
}
