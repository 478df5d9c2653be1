package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

const instrumentationName = "github.com/randalmurphal/worldevents"

// SpanManager opens the spans the engine records: one per scheduled task
// run, one per forecast and one per forecast provider call.
type SpanManager interface {
	StartTaskSpan(ctx context.Context, task string) (context.Context, trace.Span)
	StartForecastSpan(ctx context.Context, days int) (context.Context, trace.Span)
	// StartProviderSpan is normally called under the forecast span.
	StartProviderSpan(ctx context.Context, provider string) (context.Context, trace.Span)
	EndSpanWithError(span trace.Span, err error)
}

// SpanOption configures NewSpanManager.
type SpanOption func(*otelSpanManager)

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) SpanOption {
	return func(m *otelSpanManager) { m.tracer = tp.Tracer(instrumentationName) }
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns an OpenTelemetry SpanManager. Without
// WithTracerProvider it uses the global provider as set when it is called.
func NewSpanManager(opts ...SpanOption) SpanManager {
	m := &otelSpanManager{tracer: otel.Tracer(instrumentationName)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *otelSpanManager) StartTaskSpan(ctx context.Context, task string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "worldevents.task."+task,
		trace.WithAttributes(attribute.String("task.name", task)),
	)
}

func (m *otelSpanManager) StartForecastSpan(ctx context.Context, days int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "worldevents.forecast",
		trace.WithAttributes(attribute.Int("forecast.days", days)),
	)
}

func (m *otelSpanManager) StartProviderSpan(ctx context.Context, provider string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "worldevents.forecast.provider."+provider,
		trace.WithAttributes(attribute.String("provider.name", provider)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// EndSpanWithError sets the span status from err and ends it. A nil span
// is ignored.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddEventSpanEvent annotates the span in ctx, if it is recording, with a
// lifecycle change of ev.
func AddEventSpanEvent(ctx context.Context, name string, ev model.WorldEvent) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(
		attribute.String("event.id", ev.ID),
		attribute.String("event.type", ev.Type.String()),
		attribute.String("event.severity", ev.Severity.String()),
		attribute.String("event.scope", ev.Scope.Kind.String()),
	))
}
