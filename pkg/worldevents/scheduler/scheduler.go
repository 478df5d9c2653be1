// Package scheduler runs named periodic tasks, each in its own goroutine,
// with error isolation and shortened retry delays after failures.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	weerrors "github.com/randalmurphal/worldevents/pkg/worldevents/errors"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
)

// ErrRunning is returned by Start when the scheduler is already running.
var ErrRunning = errors.New("scheduler already running")

// Task is one periodic job.
type Task struct {
	// Name identifies the task in logs, metrics and spans.
	Name string

	// Interval is the wait between successful runs.
	Interval time.Duration

	// RetryDelay is the wait after the first consecutive failure. Further
	// failures double it, up to Interval.
	RetryDelay time.Duration

	// Immediate runs the first pass right after Start instead of after
	// Interval.
	Immediate bool

	// Run performs one pass. A returned error or a panic is logged and
	// followed by a retry; it never stops the loop.
	Run func(ctx context.Context) error
}

func (t Task) retry() weerrors.RetryConfig {
	return weerrors.RetryConfig{
		InitialBackoff: t.RetryDelay,
		MaxBackoff:     t.Interval,
		BackoffFactor:  2,
	}
}

// Scheduler owns the task goroutines.
type Scheduler struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for task failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpans sets the span manager.
func WithSpans(sm observability.SpanManager) Option {
	return func(s *Scheduler) {
		if sm != nil {
			s.spans = sm
		}
	}
}

// New creates an idle scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = observability.EnrichLogger(s.logger, "scheduler")
	return s
}

// Start launches one goroutine per task. Each waits Interval before its
// first run unless the task is Immediate. The goroutines stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context, tasks ...Task) error {
	for _, t := range tasks {
		if t.Run == nil || t.Interval <= 0 {
			return weerrors.Invalid("task", "%q needs a Run func and a positive interval", t.Name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, t := range tasks {
		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()
			s.loop(ctx, t)
		}(t)
	}
	return nil
}

// Stop cancels every task and waits for in-flight runs to return.
// Calling Stop on an idle scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// Running reports whether Start has been called without a matching Stop.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	retry := t.retry()
	failures := 0
	delay := t.Interval
	if t.Immediate {
		delay = 0
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.RunOnce(ctx, t); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			delay = retry.Backoff(failures)
			if delay <= 0 {
				delay = t.Interval
			}
			observability.LogTaskError(s.logger, t.Name, err, failures, delay)
		} else {
			failures = 0
			delay = t.Interval
		}
		timer.Reset(delay)
	}
}

// RunOnce executes a single pass of t with panic recovery, metrics and a
// span. It is what the loop calls on every tick.
func (s *Scheduler) RunOnce(ctx context.Context, t Task) (err error) {
	ctx, span := s.spans.StartTaskSpan(ctx, t.Name)
	done := observability.TimedOperation()

	defer func() {
		if r := recover(); r != nil {
			err = &weerrors.PanicError{Operation: t.Name, Value: r}
		}
		s.metrics.RecordTaskRun(ctx, t.Name, done(), err)
		s.spans.EndSpanWithError(span, err)
	}()

	if err := t.Run(ctx); err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	return nil
}
