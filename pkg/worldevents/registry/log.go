package registry

import (
	"slices"
	"sync"
)

// Log is an append-only, insertion-ordered sequence safe for concurrent use.
type Log[V any] struct {
	mu    sync.RWMutex
	items []V
}

// NewLog creates an empty log.
func NewLog[V any]() *Log[V] {
	return &Log[V]{}
}

// Append adds v to the end of the log.
func (l *Log[V]) Append(v V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, v)
}

// Snapshot returns a copy of every entry, oldest first.
func (l *Log[V]) Snapshot() []V {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Last returns up to n of the most recent entries, oldest first.
func (l *Log[V]) Last(n int) []V {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(l.items) {
		n = len(l.items)
	}
	return slices.Clone(l.items[len(l.items)-n:])
}

// Len returns the number of entries.
func (l *Log[V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
