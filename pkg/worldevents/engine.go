package worldevents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/worldevents/pkg/worldevents/admission"
	"github.com/randalmurphal/worldevents/pkg/worldevents/archive"
	"github.com/randalmurphal/worldevents/pkg/worldevents/forecast"
	"github.com/randalmurphal/worldevents/pkg/worldevents/generator"
	"github.com/randalmurphal/worldevents/pkg/worldevents/impact"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
	"github.com/randalmurphal/worldevents/pkg/worldevents/registry"
	"github.com/randalmurphal/worldevents/pkg/worldevents/risk"
	"github.com/randalmurphal/worldevents/pkg/worldevents/scheduler"
)

// Notification sources.
const (
	SourceEngine    = "engine"
	SourceGenerator = "generator"
	SourceManual    = "manual"
)

// Engine owns the active event registry and history, runs the lifecycle
// tasks and answers impact, risk and forecast queries.
//
// All mutations and the notifications describing them happen under one
// commit lock, so subscribers observe changes in the order they were made.
// Queries read registry snapshots and never take that lock.
type Engine struct {
	catalog  model.Catalog
	cfg      engineConfig
	logger   *slog.Logger
	source   generator.Source
	newID    func() string
	gen      *generator.Generator
	admit    *admission.Controller
	resolver *impact.Resolver
	assessor *risk.Assessor
	forecast *forecast.Forecaster
	bus      *notify.Bus
	sched    *scheduler.Scheduler
	archive  archive.Sink

	active  *registry.Registry[string, model.WorldEvent]
	history *registry.Log[model.WorldEvent]

	commit sync.Mutex

	life      sync.Mutex
	running   bool
	stopped   bool
	cancel    context.CancelFunc
	detectors sync.WaitGroup
}

// New creates an engine over catalog. The engine is idle until Start; ticks
// and the control API work without starting it.
func New(catalog model.Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	e := &Engine{
		catalog:  catalog,
		cfg:      cfg,
		logger:   observability.EnrichLogger(cfg.logger, "engine"),
		newID:    cfg.newID,
		admit:    cfg.admission,
		resolver: impact.NewResolver(catalog),
		assessor: risk.NewAssessor(),
		archive:  cfg.archive,
		active:   registry.New[string, model.WorldEvent](),
		history:  registry.NewLog[model.WorldEvent](),
	}

	switch {
	case cfg.source != nil:
		e.source = cfg.source
	case cfg.seed != nil:
		e.source = generator.NewSource(*cfg.seed)
	default:
		e.source = generator.NewTimeSource()
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.admit == nil {
		e.admit = admission.New()
	}

	e.gen = generator.New(catalog, e.source,
		generator.WithProbabilities(cfg.probabilities),
		generator.WithIDFunc(e.newID),
	)

	forecastOpts := []forecast.Option{
		forecast.WithClock(cfg.now),
		forecast.WithLogger(cfg.logger),
		forecast.WithMetrics(cfg.metrics),
		forecast.WithSpans(cfg.spans),
	}
	if cfg.forecastTimeout > 0 {
		forecastOpts = append(forecastOpts, forecast.WithTimeout(cfg.forecastTimeout))
	}
	e.forecast = forecast.New(cfg.providers, forecastOpts...)

	busCfg := cfg.busConfig
	userDrop := busCfg.OnDrop
	busCfg.OnDrop = func(n notify.Notification, subscriberID string) {
		cfg.metrics.RecordNotificationDropped(context.Background(), string(n.Kind))
		e.logger.Debug("notification dropped",
			slog.String("kind", string(n.Kind)),
			slog.Uint64("sequence", n.Sequence),
			slog.String("subscriber", subscriberID),
		)
		if userDrop != nil {
			userDrop(n, subscriberID)
		}
	}
	e.bus = notify.NewBus(busCfg)

	e.sched = scheduler.New(
		scheduler.WithLogger(cfg.logger),
		scheduler.WithMetrics(cfg.metrics),
		scheduler.WithSpans(cfg.spans),
	)
	return e, nil
}

// Catalog returns the catalog the engine resolves scopes against.
func (e *Engine) Catalog() model.Catalog { return e.catalog }

// Start publishes system.started and launches the periodic tasks and
// detectors. Tasks stop when ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	e.life.Lock()
	defer e.life.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.commit.Lock()
	e.publish(notify.Notification{Kind: notify.KindSystemStarted, Source: SourceEngine})
	e.commit.Unlock()

	if err := e.sched.Start(runCtx, e.tasks()...); err != nil {
		cancel()
		return err
	}
	for _, d := range e.cfg.detectors {
		e.detectors.Add(1)
		go e.runDetector(runCtx, d)
	}

	e.cancel = cancel
	e.running = true
	e.logger.Info("engine started",
		slog.Int("ports", len(e.catalog.Ports())),
		slog.Int("routes", len(e.catalog.Routes())),
		slog.Int("detectors", len(e.cfg.detectors)),
	)
	return nil
}

// Stop cancels the tasks and detectors, waits for them to return, publishes
// system.stopped as the final notification and closes the bus and archive.
// Calling Stop again is a no-op.
func (e *Engine) Stop() error {
	e.life.Lock()
	defer e.life.Unlock()

	if e.stopped {
		return nil
	}
	if !e.running {
		return ErrNotRunning
	}

	e.cancel()
	e.sched.Stop()
	e.detectors.Wait()

	e.commit.Lock()
	e.publish(notify.Notification{Kind: notify.KindSystemStopped, Source: SourceEngine})
	e.commit.Unlock()

	if err := e.bus.Close(); err != nil {
		e.logger.Warn("close bus", slog.String("error", err.Error()))
	}
	if e.archive != nil {
		if err := e.archive.Close(); err != nil {
			e.logger.Warn("close archive", slog.String("error", err.Error()))
		}
	}

	e.running = false
	e.stopped = true
	e.logger.Info("engine stopped",
		slog.Int("active_events", e.active.Len()),
		slog.Int("history", e.history.Len()),
		slog.Uint64("notifications_dropped", e.bus.Dropped()),
	)
	return nil
}

// Running reports whether Start has been called without a matching Stop.
func (e *Engine) Running() bool {
	e.life.Lock()
	defer e.life.Unlock()
	return e.running
}

// publish stamps and sends n. Callers hold e.commit.
func (e *Engine) publish(n notify.Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = e.cfg.now()
	}
	if _, err := e.bus.Publish(n); err != nil && !errors.Is(err, notify.ErrClosed) {
		e.logger.Warn("publish failed", slog.String("kind", string(n.Kind)), slog.String("error", err.Error()))
	}
}

func eventNotification(kind notify.Kind, ev model.WorldEvent, source string) notify.Notification {
	c := ev.Clone()
	return notify.Notification{Kind: kind, Source: source, Event: &c}
}

// Subscribe registers handler for the given kinds; no kinds means all.
func (e *Engine) Subscribe(kinds []notify.Kind, handler notify.Handler) *notify.Subscription {
	return e.bus.Subscribe(kinds, handler)
}

// SubscribeAll registers handler for every notification.
func (e *Engine) SubscribeAll(handler notify.Handler) *notify.Subscription {
	return e.bus.SubscribeAll(handler)
}

// Stream returns a channel of notifications of the given kinds that closes
// when ctx is cancelled or the engine stops.
func (e *Engine) Stream(ctx context.Context, kinds ...notify.Kind) <-chan notify.Notification {
	return e.bus.Stream(ctx, kinds)
}

// Bus exposes the notification bus, e.g. for attaching a Kafka forwarder.
func (e *Engine) Bus() *notify.Bus { return e.bus }

func (e *Engine) runDetector(ctx context.Context, d notify.Detector) {
	defer e.detectors.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("detector panicked", slog.Any("panic", r))
		}
	}()

	err := d.Run(ctx, func(det notify.Detection) { e.handleDetection(ctx, det) })
	if err != nil && ctx.Err() == nil {
		e.logger.Error("detector exited", slog.String("error", err.Error()))
	}
}

func (e *Engine) handleDetection(ctx context.Context, det notify.Detection) {
	if det.DetectedAt.IsZero() {
		det.DetectedAt = e.cfg.now()
	}
	e.commit.Lock()
	d := det
	e.publish(notify.Notification{Kind: notify.KindDetection, Source: det.Source, Detection: &d})
	e.commit.Unlock()

	if det.Template == nil {
		return
	}
	if _, err := e.trigger(ctx, *det.Template, det.Source); err != nil && !errors.Is(err, ErrAdmissionRejected) {
		e.logger.Warn("detection template rejected",
			slog.String("source", det.Source),
			slog.String("error", err.Error()),
		)
	}
}

// activate inserts ev if admission control allows it, atomically with the
// admission check, and publishes event.activated.
func (e *Engine) activate(ctx context.Context, ev model.WorldEvent, source string) bool {
	e.commit.Lock()
	ok := e.active.RegisterIf(ev.ID, ev, func(existing []model.WorldEvent) bool {
		return e.admit.CanAdmit(ev, existing)
	})
	if ok {
		e.publish(eventNotification(notify.KindEventActivated, ev, source))
	}
	e.commit.Unlock()

	if !ok {
		observability.LogAdmissionRejected(e.logger, ev.Type, ev.Severity, source)
		observability.AddEventSpanEvent(ctx, "event.rejected", ev)
		e.cfg.metrics.RecordAdmissionRejected(ctx, ev.Type)
		return false
	}
	observability.LogEventActivated(e.logger, ev, source)
	observability.AddEventSpanEvent(ctx, "event.activated", ev)
	e.cfg.metrics.RecordEventActivated(ctx, ev.Type, ev.Severity, source)
	return true
}

// resolve moves id from the registry to history. The archive export runs
// after the commit lock is released and cannot fail the resolution.
func (e *Engine) resolve(ctx context.Context, id string, res model.Resolution) (model.WorldEvent, bool) {
	e.commit.Lock()
	ev, ok := e.active.Take(id)
	if !ok {
		e.commit.Unlock()
		return model.WorldEvent{}, false
	}
	now := e.cfg.now()
	ev.Status = model.StatusResolved
	ev.EndTime = &now
	ev.Resolution = res
	e.history.Append(ev.Clone())
	e.publish(eventNotification(notify.KindEventResolved, ev, SourceEngine))
	e.commit.Unlock()

	observability.LogEventResolved(e.logger, ev)
	observability.AddEventSpanEvent(ctx, "event.resolved", ev)
	e.cfg.metrics.RecordEventResolved(ctx, ev.Type, res)

	if e.archive != nil {
		if err := e.archive.Archive(ctx, ev); err != nil {
			observability.LogArchiveError(e.logger, ev.ID, err)
		}
	}
	return ev, true
}

// TriggerEvent validates tpl, builds an Active event from it and inserts it
// through admission control. An invalid template returns a ValidationError
// and a capped type returns ErrAdmissionRejected; neither touches state.
func (e *Engine) TriggerEvent(ctx context.Context, tpl model.Template) (model.WorldEvent, error) {
	return e.trigger(ctx, tpl, SourceManual)
}

func (e *Engine) trigger(ctx context.Context, tpl model.Template, source string) (model.WorldEvent, error) {
	if err := tpl.Validate(); err != nil {
		return model.WorldEvent{}, err
	}

	now := e.cfg.now()
	ev := model.WorldEvent{
		ID:          e.newID(),
		Type:        tpl.Type,
		Title:       tpl.Title,
		Description: tpl.Description,
		Severity:    tpl.Severity,
		Scope:       tpl.Scope,
		Status:      model.StatusActive,
		StartTime:   now,
		Impacts:     append([]model.Impact(nil), tpl.Impacts...),
		Tags:        model.NormalizeTags(append([]string{tpl.Type.String(), tpl.Severity.String(), source}, tpl.Tags...)),
	}
	if tpl.Duration > 0 {
		end := now.Add(tpl.Duration)
		ev.EstimatedEndTime = &end
	}

	if !e.activate(ctx, ev, source) {
		return model.WorldEvent{}, fmt.Errorf("%w: %s events at %s severity are at their cap of %d",
			ErrAdmissionRejected, ev.Type, ev.Severity, e.admit.Cap(ev.Type))
	}
	return ev.Clone(), nil
}

// ResolveEvent resolves an active event. It returns false, without error,
// when id is not active; resolving twice is therefore a no-op. An unset or
// unknown resolution is recorded as Manual.
func (e *Engine) ResolveEvent(ctx context.Context, id string, res model.Resolution) bool {
	if res == model.ResolutionNone || !res.Valid() {
		res = model.ResolutionManual
	}
	_, ok := e.resolve(ctx, id, res)
	return ok
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time { return e.cfg.now() }
