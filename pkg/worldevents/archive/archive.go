// Package archive exports resolved events to durable storage. Archives are
// write-only from the engine's point of view: nothing here is ever loaded
// back into a running engine.
package archive

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

// ErrClosed is returned when archiving to a closed sink.
var ErrClosed = errors.New("archive is closed")

// Sink receives resolved events.
type Sink interface {
	Archive(ctx context.Context, ev model.WorldEvent) error
	Close() error
}

// resolvedAt is the time used to file an event: its end time, or its start
// time for events without one.
func resolvedAt(ev model.WorldEvent) time.Time {
	if ev.EndTime != nil {
		return ev.EndTime.UTC()
	}
	return ev.StartTime.UTC()
}

// MemoryStore keeps archived events in memory, mainly for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	events []model.WorldEvent
	closed bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Archive implements Sink.
func (m *MemoryStore) Archive(_ context.Context, ev model.WorldEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.events = append(m.events, ev.Clone())
	return nil
}

// List returns archived events in archive order.
func (m *MemoryStore) List() []model.WorldEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.WorldEvent, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Clone()
	}
	return out
}

// Close implements Sink.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
