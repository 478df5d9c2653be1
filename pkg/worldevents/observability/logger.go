// Package observability provides structured logging helpers, OpenTelemetry
// metrics and OpenTelemetry tracing for the disruption engine.
//
// All features are opt-in and have no-op implementations when disabled.
// Every log helper accepts a nil logger and does nothing with it.
package observability

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// EnrichLogger tags a logger with the component emitting through it.
//
// Example:
//
//	log := EnrichLogger(logger, "scheduler")
//	log.Info("task started") // includes component=scheduler
func EnrichLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}

func eventAttrs(ev model.WorldEvent) []any {
	return []any{
		slog.String("event_id", ev.ID),
		slog.String("type", ev.Type.String()),
		slog.String("severity", ev.Severity.String()),
		slog.String("scope", ev.Scope.Kind.String()),
	}
}

// LogEventActivated logs an event entering the active registry.
func LogEventActivated(logger *slog.Logger, ev model.WorldEvent, source string) {
	if logger == nil {
		return
	}
	logger.Info("event activated",
		append(eventAttrs(ev),
			slog.String("title", ev.Title),
			slog.String("source", source),
		)...,
	)
}

// LogEventUpdated logs a severity or status change.
func LogEventUpdated(logger *slog.Logger, ev model.WorldEvent, previous model.Severity) {
	if logger == nil {
		return
	}
	logger.Info("event updated",
		append(eventAttrs(ev),
			slog.String("previous_severity", previous.String()),
			slog.String("status", ev.Status.String()),
		)...,
	)
}

// LogEventResolved logs an event moving to history.
func LogEventResolved(logger *slog.Logger, ev model.WorldEvent) {
	if logger == nil {
		return
	}
	attrs := append(eventAttrs(ev), slog.String("resolution", ev.Resolution.String()))
	if ev.EndTime != nil {
		attrs = append(attrs, slog.Float64("duration_hours", ev.EndTime.Sub(ev.StartTime).Hours()))
	}
	logger.Info("event resolved", attrs...)
}

// LogAdmissionRejected logs a candidate discarded by admission control.
func LogAdmissionRejected(logger *slog.Logger, t model.EventType, sev model.Severity, source string) {
	if logger == nil {
		return
	}
	logger.Debug("event rejected by admission control",
		slog.String("type", t.String()),
		slog.String("severity", sev.String()),
		slog.String("source", source),
	)
}

// LogTaskError logs a failed periodic task run (non-fatal; the task retries).
func LogTaskError(logger *slog.Logger, task string, err error, failures int, retryIn time.Duration) {
	if logger == nil {
		return
	}
	logger.Error("task failed",
		slog.String("task", task),
		slog.String("error", err.Error()),
		slog.Int("consecutive_failures", failures),
		slog.Duration("retry_in", retryIn),
	)
}

// LogForecastDegraded logs a provider dropped from a forecast.
func LogForecastDegraded(logger *slog.Logger, provider string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("forecast provider failed",
		slog.String("provider", provider),
		slog.String("error", err.Error()),
	)
}

// LogArchiveError logs a failed export of a resolved event (non-fatal).
func LogArchiveError(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("archive failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
