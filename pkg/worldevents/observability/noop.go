package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// NoopMetrics is the engine's MetricsRecorder until WithMetrics is given.
type NoopMetrics struct{}

func (NoopMetrics) RecordEventActivated(context.Context, model.EventType, model.Severity, string) {}
func (NoopMetrics) RecordEventResolved(context.Context, model.EventType, model.Resolution)        {}
func (NoopMetrics) RecordAdmissionRejected(context.Context, model.EventType)                      {}
func (NoopMetrics) RecordTaskRun(context.Context, string, time.Duration, error)                   {}
func (NoopMetrics) RecordNotificationDropped(context.Context, string)                             {}
func (NoopMetrics) RecordForecast(context.Context, int, int, time.Duration)                       {}

// NoopSpanManager hands out non-recording spans and leaves ctx as is.
type NoopSpanManager struct{}

func (NoopSpanManager) StartTaskSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) StartForecastSpan(ctx context.Context, _ int) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) StartProviderSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

var (
	_ MetricsRecorder = NoopMetrics{}
	_ SpanManager     = NoopSpanManager{}
)
