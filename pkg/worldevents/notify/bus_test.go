package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
)

type collector struct {
	mu  sync.Mutex
	got []Notification
}

func (c *collector) handle(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, n)
}

func (c *collector) snapshot() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.got...)
}

func TestBus_PublishStampsAndDelivers(t *testing.T) {
	bus := NewBus(DefaultBusConfig)
	defer bus.Close()

	var c collector
	bus.SubscribeAll(c.handle)

	ev := model.WorldEvent{ID: "ev-1"}
	first, err := bus.Publish(Notification{Kind: KindEventActivated, Event: &ev})
	require.NoError(t, err)
	second, err := bus.Publish(Notification{Kind: KindEventResolved, Event: &ev})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(2), second.Sequence)
	assert.Equal(t, "ev-1", first.Key())

	assert.Eventually(t, func() bool { return len(c.snapshot()) == 2 }, time.Second, time.Millisecond)
	got := c.snapshot()
	assert.Equal(t, KindEventActivated, got[0].Kind)
	assert.Equal(t, KindEventResolved, got[1].Kind)
}

func TestBus_KindFiltering(t *testing.T) {
	bus := NewBus(DefaultBusConfig)

	var resolved, all collector
	bus.Subscribe([]Kind{KindEventResolved}, resolved.handle)
	bus.SubscribeAll(all.handle)

	for _, k := range Kinds {
		_, err := bus.Publish(Notification{Kind: k})
		require.NoError(t, err)
	}
	require.NoError(t, bus.Close())

	assert.Len(t, resolved.snapshot(), 1)
	assert.Len(t, all.snapshot(), len(Kinds))
}

func TestBus_OrderPreservedPerSubscriber(t *testing.T) {
	bus := NewBus(BusConfig{BufferSize: 1024})

	var c collector
	bus.SubscribeAll(c.handle)
	for i := 0; i < 500; i++ {
		_, err := bus.Publish(Notification{Kind: KindEventUpdated})
		require.NoError(t, err)
	}
	require.NoError(t, bus.Close())

	got := c.snapshot()
	require.Len(t, got, 500)
	for i, n := range got {
		assert.Equal(t, uint64(i+1), n.Sequence)
	}
}

func TestBus_SlowSubscriberDropsOldest(t *testing.T) {
	var drops atomic.Int32
	bus := NewBus(BusConfig{
		BufferSize: 2,
		OnDrop:     func(Notification, string) { drops.Add(1) },
	})

	release := make(chan struct{})
	var c collector
	bus.SubscribeAll(func(n Notification) {
		<-release
		c.handle(n)
	})

	// The first notification may already be in the handler; the rest queue
	// behind it in a two-slot buffer.
	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := bus.Publish(Notification{Kind: KindEventUpdated})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "publish must not block")

	close(release)
	require.NoError(t, bus.Close())

	got := c.snapshot()
	assert.GreaterOrEqual(t, len(got), 2)
	assert.LessOrEqual(t, len(got), 3)
	assert.Equal(t, uint64(10), got[len(got)-1].Sequence, "newest is kept")
	assert.Equal(t, uint64(10-len(got)), bus.Dropped())
	assert.Equal(t, int32(bus.Dropped()), drops.Load())
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Sequence, got[i].Sequence)
	}
}

func TestBus_SlowSubscriberDoesNotAffectOthers(t *testing.T) {
	bus := NewBus(BusConfig{BufferSize: 1})

	block := make(chan struct{})
	bus.SubscribeAll(func(Notification) { <-block })

	var fast collector
	bus.SubscribeAll(fast.handle)

	for i := 0; i < 3; i++ {
		_, err := bus.Publish(Notification{Kind: KindEventUpdated})
		require.NoError(t, err)
		assert.Eventually(t, func() bool { return len(fast.snapshot()) == i+1 }, time.Second, time.Millisecond)
	}
	close(block)
	require.NoError(t, bus.Close())
}

func TestBus_CloseDrainsAndRejects(t *testing.T) {
	bus := NewBus(DefaultBusConfig)
	var c collector
	bus.SubscribeAll(c.handle)

	_, err := bus.Publish(Notification{Kind: KindSystemStarted})
	require.NoError(t, err)
	_, err = bus.Publish(Notification{Kind: KindSystemStopped})
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	got := c.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, KindSystemStopped, got[1].Kind)

	_, err = bus.Publish(Notification{Kind: KindEventUpdated})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, bus.SubscribeAll(c.handle))
	assert.NoError(t, bus.Close(), "second close is a no-op")
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(DefaultBusConfig)
	defer bus.Close()

	var c collector
	sub := bus.SubscribeAll(c.handle)
	assert.Equal(t, 1, bus.Subscribers())
	sub.Unsubscribe()
	assert.Equal(t, 0, bus.Subscribers())

	_, err := bus.Publish(Notification{Kind: KindEventUpdated})
	require.NoError(t, err)
	assert.Never(t, func() bool { return len(c.snapshot()) > 0 }, 30*time.Millisecond, 5*time.Millisecond)
}

func TestBus_Stream(t *testing.T) {
	bus := NewBus(DefaultBusConfig)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Stream(ctx, []Kind{KindEventActivated})

	_, err := bus.Publish(Notification{Kind: KindEventUpdated})
	require.NoError(t, err)
	_, err = bus.Publish(Notification{Kind: KindEventActivated})
	require.NoError(t, err)

	select {
	case n := <-ch:
		assert.Equal(t, KindEventActivated, n.Kind)
	case <-time.After(time.Second):
		t.Fatal("no notification streamed")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}
	assert.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, time.Millisecond)
}

func TestBus_CloseWithUnreadStream(t *testing.T) {
	bus := NewBus(BusConfig{BufferSize: 8, DrainTimeout: 50 * time.Millisecond})
	ch := bus.Stream(context.Background(), nil)

	for range 3 {
		_, err := bus.Publish(Notification{Kind: KindEventActivated})
		require.NoError(t, err)
	}

	closed := make(chan struct{})
	go func() {
		_ = bus.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a stream nobody reads")
	}

	// Whatever was not taken before the deadline is gone; the channel ends.
	for range ch {
	}
}

func TestBus_CloseDeliversToReadingStream(t *testing.T) {
	bus := NewBus(BusConfig{DrainTimeout: time.Second})
	ch := bus.Stream(context.Background(), nil)

	_, err := bus.Publish(Notification{Kind: KindSystemStopped})
	require.NoError(t, err)
	go func() { _ = bus.Close() }()

	var kinds []Kind
	for n := range ch {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []Kind{KindSystemStopped}, kinds)
}

func TestDetectorFunc(t *testing.T) {
	var got []Detection
	d := DetectorFunc(func(_ context.Context, emit func(Detection)) error {
		emit(Detection{Source: "ais", Summary: "vessel cluster", Severity: model.Medium})
		return nil
	})
	require.NoError(t, d.Run(context.Background(), func(det Detection) { got = append(got, det) }))
	require.Len(t, got, 1)
	assert.Equal(t, "ais", got[0].Source)
}
