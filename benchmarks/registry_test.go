package benchmarks

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/worldevents/pkg/worldevents/admission"
	"github.com/randalmurphal/worldevents/pkg/worldevents/archive"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
	"github.com/randalmurphal/worldevents/pkg/worldevents/registry"
)

// BenchmarkRegisterIf measures an admission-checked insert into a registry
// that is kept at 100 events.
func BenchmarkRegisterIf(b *testing.B) {
	reg := registry.New[string, model.WorldEvent]()
	ctrl := admission.New(admission.WithDefaultCap(1 << 30))
	events := generatedEvents(100)
	for _, ev := range events {
		reg.RegisterIf(ev.ID, ev, func([]model.WorldEvent) bool { return true })
	}
	candidate := events[0]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		candidate.ID = fmt.Sprintf("bench-%d", i)
		reg.RegisterIf(candidate.ID, candidate, func(active []model.WorldEvent) bool {
			return ctrl.CanAdmit(candidate, active)
		})
		reg.Take(candidate.ID)
	}
}

// BenchmarkBusPublish measures publishing to four subscribers.
func BenchmarkBusPublish(b *testing.B) {
	bus := notify.NewBus(notify.BusConfig{BufferSize: 1024})
	defer bus.Close()
	for i := 0; i < 4; i++ {
		bus.SubscribeAll(func(notify.Notification) {})
	}
	ev := generatedEvents(1)[0]
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bus.Publish(notify.Notification{Kind: notify.KindEventUpdated, Event: &ev})
	}
}

// BenchmarkMemoryStore_Archive measures in-memory archiving.
func BenchmarkMemoryStore_Archive(b *testing.B) {
	store := archive.NewMemoryStore()
	ev := generatedEvents(1)[0]
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.ID = fmt.Sprintf("ev-%d", i)
		_ = store.Archive(ctx, ev)
	}
}

// BenchmarkSQLiteStore_Archive measures SQLite archiving.
func BenchmarkSQLiteStore_Archive(b *testing.B) {
	store, err := archive.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	ev := generatedEvents(1)[0]
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ev.ID = fmt.Sprintf("ev-%d", i%1000)
		_ = store.Archive(ctx, ev)
	}
}
