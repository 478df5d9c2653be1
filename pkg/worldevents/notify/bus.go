package notify

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notification bus is closed")

// Handler receives notifications for one subscription. Handlers run on the
// subscription's own goroutine, one notification at a time.
type Handler func(Notification)

// BusConfig configures bus behavior.
type BusConfig struct {
	// BufferSize is the per-subscription buffer.
	// Default: 256
	BufferSize int

	// OnDrop is called when a full buffer discards its oldest notification.
	// It runs on the publishing goroutine and must not block.
	OnDrop func(n Notification, subscriberID string)

	// DrainTimeout bounds how long Close waits for Stream consumers to take
	// what is still queued. Notifications a consumer has not read by then
	// are discarded.
	// Default: 1s
	DrainTimeout time.Duration
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	BufferSize:   256,
	DrainTimeout: time.Second,
}

// Bus is an in-memory fan-out notification bus.
type Bus struct {
	config BusConfig

	mu   sync.RWMutex
	subs map[string]*Subscription

	seq     atomic.Uint64
	nextID  atomic.Int64
	dropped atomic.Uint64
	closed  atomic.Bool
	wg      sync.WaitGroup

	// expired is closed once DrainTimeout has passed after Close.
	expired    chan struct{}
	expireOnce sync.Once
}

// NewBus creates a bus.
func NewBus(config BusConfig) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBusConfig.BufferSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = DefaultBusConfig.DrainTimeout
	}
	return &Bus{
		config:  config,
		subs:    make(map[string]*Subscription),
		expired: make(chan struct{}),
	}
}

// Subscription is an active registration on the bus.
type Subscription struct {
	id      string
	kinds   []Kind // empty = all kinds
	handler Handler
	onExit  func()
	bus     *Bus

	mu     sync.Mutex
	queue  []Notification
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// ID identifies the subscription in drop callbacks.
func (s *Subscription) ID() string { return s.id }

// Publish stamps n with an ID, the next sequence number and, when unset, a
// timestamp, then queues it for every matching subscriber. It never blocks
// on slow subscribers.
func (b *Bus) Publish(n Notification) (Notification, error) {
	if b.closed.Load() {
		return n, ErrClosed
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.Sequence = b.seq.Add(1)

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(n.Kind) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		if old, ok := s.enqueue(n, b.config.BufferSize); ok {
			b.dropped.Add(1)
			if b.config.OnDrop != nil {
				b.config.OnDrop(old, s.id)
			}
		}
	}
	return n, nil
}

// Subscribe registers handler for the given kinds. No kinds means all.
// Returns nil if the bus is closed.
func (b *Bus) Subscribe(kinds []Kind, handler Handler) *Subscription {
	return b.subscribe(kinds, handler, nil)
}

// SubscribeAll registers handler for every kind.
func (b *Bus) SubscribeAll(handler Handler) *Subscription {
	return b.subscribe(nil, handler, nil)
}

// Stream delivers matching notifications on a channel until ctx is
// cancelled or the bus closes; the channel is closed afterwards. A consumer
// that stops reading without cancelling ctx holds up Close for at most
// DrainTimeout.
func (b *Bus) Stream(ctx context.Context, kinds []Kind) <-chan Notification {
	out := make(chan Notification)
	sub := b.subscribe(kinds, func(n Notification) {
		select {
		case out <- n:
		case <-ctx.Done():
		case <-b.expired:
		}
	}, func() { close(out) })
	if sub == nil {
		close(out)
		return out
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		}
	}()
	return out
}

func (b *Bus) subscribe(kinds []Kind, handler Handler, onExit func()) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Load() {
		return nil
	}

	s := &Subscription{
		id:      "sub-" + strconv.FormatInt(b.nextID.Add(1), 10),
		kinds:   slices.Clone(kinds),
		handler: handler,
		onExit:  onExit,
		bus:     b,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	b.subs[s.id] = s
	b.wg.Add(1)
	go s.process()
	return s
}

// Dropped returns the total number of notifications dropped across all
// subscribers.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close stops accepting notifications, lets every subscription drain what
// it has buffered and waits for the handlers to return. Stream deliveries
// still pending after DrainTimeout are dropped.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = make(map[string]*Subscription)
	b.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
	timer := time.AfterFunc(b.config.DrainTimeout, b.expire)
	defer timer.Stop()
	b.wg.Wait()
	return nil
}

func (b *Bus) expire() {
	b.expireOnce.Do(func() { close(b.expired) })
}

func (s *Subscription) matches(k Kind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, k)
}

// enqueue appends n, discarding the oldest entry when the buffer is full.
func (s *Subscription) enqueue(n Notification, limit int) (dropped Notification, ok bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Notification{}, false
	}
	if len(s.queue) >= limit {
		dropped, ok = s.queue[0], true
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, n)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return dropped, ok
}

func (s *Subscription) next() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Notification{}, false
	}
	n := s.queue[0]
	s.queue[0] = Notification{}
	s.queue = s.queue[1:]
	return n, true
}

func (s *Subscription) process() {
	defer s.bus.wg.Done()
	defer func() {
		if s.onExit != nil {
			s.onExit()
		}
	}()
	for {
		for {
			n, ok := s.next()
			if !ok {
				break
			}
			s.handler(n)
		}
		select {
		case <-s.wake:
		case <-s.done:
			// Drain anything queued before the stop.
			for {
				n, ok := s.next()
				if !ok {
					return
				}
				s.handler(n)
			}
		}
	}
}

func (s *Subscription) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Unsubscribe removes the subscription. Notifications already buffered are
// still delivered.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.stop()
}
