package worldevents

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
	"github.com/randalmurphal/worldevents/pkg/worldevents/observability"
	"github.com/randalmurphal/worldevents/pkg/worldevents/scheduler"
)

// Task names as they appear in logs, metrics and spans.
const (
	TaskGenerate = "generate"
	TaskUpdate   = "update"
	TaskCleanup  = "cleanup"
)

func (e *Engine) tasks() []scheduler.Task {
	return []scheduler.Task{
		{Name: TaskGenerate, Interval: e.cfg.generateInterval, RetryDelay: e.cfg.generateRetry, Run: e.GenerateTick},
		{Name: TaskUpdate, Interval: e.cfg.updateInterval, RetryDelay: e.cfg.updateRetry, Run: e.UpdateTick},
		{Name: TaskCleanup, Interval: e.cfg.cleanupInterval, RetryDelay: e.cfg.cleanupRetry, Run: e.CleanupTick},
	}
}

// GenerateTick runs one generation pass: one probability draw per event
// type, each passing candidate going through admission control.
func (e *Engine) GenerateTick(ctx context.Context) error {
	now := e.cfg.now()
	for _, t := range model.EventTypes {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, ok := e.gen.Generate(t, now)
		if !ok {
			continue
		}
		e.activate(ctx, ev, SourceGenerator)
	}
	return nil
}

// UpdateTick ages every active event: expired events resolve with
// AutomaticExpiry, old weather events weaken and old pandemics may
// escalate.
func (e *Engine) UpdateTick(ctx context.Context) error {
	now := e.cfg.now()
	for _, ev := range e.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ev.Expired(now) {
			e.resolve(ctx, ev.ID, model.ResolutionAutomaticExpiry)
			continue
		}
		e.evolve(ev.ID, now)
	}
	return nil
}

// CleanupTick resolves events past their estimated end or older than the
// maximum event age.
func (e *Engine) CleanupTick(ctx context.Context) error {
	now := e.cfg.now()
	for _, ev := range e.snapshot() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ev.Expired(now) || ev.Age(now) > e.cfg.maxEventAge {
			e.resolve(ctx, ev.ID, model.ResolutionAutomaticExpiry)
		}
	}
	return nil
}

// evolve applies one lifecycle step to id under the commit lock and
// publishes event.updated when the severity changed.
func (e *Engine) evolve(id string, now time.Time) {
	e.commit.Lock()
	defer e.commit.Unlock()

	var prev model.Severity
	var next model.WorldEvent
	changed := e.active.Update(id, func(ev model.WorldEvent) (model.WorldEvent, bool) {
		prev = ev.Severity
		age := ev.Age(now)
		switch {
		case ev.Type == model.Weather && age >= WeatherDecayAge && ev.Severity > model.Low:
			ev.Severity = ev.Severity.Down()
			ev.Status = model.StatusDeEscalating
		case ev.Type == model.Pandemic && age >= PandemicEscalationAge && ev.Severity < model.Critical &&
			e.source.Float64() < PandemicEscalationChance:
			ev.Severity = ev.Severity.Up()
			ev.Status = model.StatusEscalating
		default:
			return ev, false
		}
		next = ev
		return ev, true
	})
	if !changed {
		return
	}

	n := eventNotification(notify.KindEventUpdated, next, SourceEngine)
	n.Previous = &prev
	e.publish(n)
	observability.LogEventUpdated(e.logger, next, prev)
}

// snapshot returns the active events ordered by start time, then ID.
func (e *Engine) snapshot() []model.WorldEvent {
	events := e.active.Snapshot()
	slices.SortFunc(events, func(a, b model.WorldEvent) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return events
}
