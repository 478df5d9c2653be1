// Package registry holds engine state: a keyed set of active events whose
// inserts go through an admission check, and an append-only log of
// resolved events.
package registry

import (
	"maps"
	"slices"
	"sync"
)

// Registry is a concurrent map. Reads take a shared lock; every mutation
// runs its callback under the exclusive lock so check-and-set is atomic.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// RegisterIf stores value under a new key when admit, given every value
// currently stored, returns true. A nil admit always accepts. An existing
// key is never overwritten.
func (r *Registry[K, V]) RegisterIf(key K, value V, admit func(existing []V) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.entries[key]; dup {
		return false
	}
	if admit != nil && !admit(slices.Collect(maps.Values(r.entries))) {
		return false
	}
	r.entries[key] = value
	return true
}

func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Update passes the value under key to fn and stores the result if fn
// reports a change. It returns false for a missing key or no change.
func (r *Registry[K, V]) Update(key K, fn func(V) (V, bool)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.entries[key]
	if !ok {
		return false
	}
	next, changed := fn(cur)
	if changed {
		r.entries[key] = next
	}
	return changed
}

// Take removes key. Of several concurrent Takes on one key exactly one
// gets the value.
func (r *Registry[K, V]) Take(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	delete(r.entries, key)
	return v, ok
}

// Snapshot copies out every value in no particular order.
func (r *Registry[K, V]) Snapshot() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Values(r.entries))
}

func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
