package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	kind     string
	severity int
}

func TestRegisterIfAndGet(t *testing.T) {
	r := New[string, entry]()

	require.True(t, r.RegisterIf("e1", entry{"weather", 1}, nil))

	v, ok := r.Get("e1")
	require.True(t, ok)
	assert.Equal(t, entry{"weather", 1}, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterIf(t *testing.T) {
	r := New[string, entry]()
	atMostTwo := func(existing []entry) bool { return len(existing) < 2 }

	assert.True(t, r.RegisterIf("a", entry{"pandemic", 2}, atMostTwo))
	assert.True(t, r.RegisterIf("b", entry{"pandemic", 2}, atMostTwo))
	assert.False(t, r.RegisterIf("c", entry{"pandemic", 2}, atMostTwo))
	assert.Equal(t, 2, r.Len())

	// Duplicate keys are rejected even when admit would allow them.
	assert.False(t, r.RegisterIf("a", entry{}, nil))
	v, _ := r.Get("a")
	assert.Equal(t, entry{"pandemic", 2}, v)
}

func TestRegisterIfSeesExisting(t *testing.T) {
	r := New[string, entry]()
	require.True(t, r.RegisterIf("a", entry{"weather", 3}, nil))
	require.True(t, r.RegisterIf("b", entry{"cyber", 1}, nil))

	var seen []entry
	r.RegisterIf("c", entry{}, func(existing []entry) bool {
		seen = existing
		return true
	})
	assert.ElementsMatch(t, []entry{{"weather", 3}, {"cyber", 1}}, seen)
}

func TestConcurrentRegisterIf(t *testing.T) {
	r := New[int, entry]()
	const limit = 5
	var wg sync.WaitGroup
	var admitted atomic.Int32

	for i := range 200 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ok := r.RegisterIf(id, entry{"economic", 1}, func(existing []entry) bool {
				return len(existing) < limit
			})
			if ok {
				admitted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(limit), admitted.Load())
	assert.Equal(t, limit, r.Len())
}

func TestUpdate(t *testing.T) {
	r := New[string, entry]()
	require.True(t, r.RegisterIf("e1", entry{"weather", 2}, nil))

	changed := r.Update("e1", func(e entry) (entry, bool) {
		e.severity--
		return e, true
	})
	assert.True(t, changed)
	v, _ := r.Get("e1")
	assert.Equal(t, 1, v.severity)

	changed = r.Update("e1", func(e entry) (entry, bool) { return entry{"x", 9}, false })
	assert.False(t, changed)
	v, _ = r.Get("e1")
	assert.Equal(t, entry{"weather", 1}, v)

	assert.False(t, r.Update("missing", func(e entry) (entry, bool) { return e, true }))
}

func TestTake(t *testing.T) {
	r := New[string, entry]()
	require.True(t, r.RegisterIf("e1", entry{"labor", 0}, nil))

	v, ok := r.Take("e1")
	assert.True(t, ok)
	assert.Equal(t, "labor", v.kind)
	assert.Zero(t, r.Len())

	_, ok = r.Take("e1")
	assert.False(t, ok, "second take finds nothing")
}

func TestConcurrentTakeOnce(t *testing.T) {
	r := New[string, entry]()
	require.True(t, r.RegisterIf("e1", entry{}, nil))

	var wg sync.WaitGroup
	var wins atomic.Int32
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Take("e1"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New[string, int]()
	require.True(t, r.RegisterIf("one", 1, nil))
	require.True(t, r.RegisterIf("three", 3, nil))

	snap := r.Snapshot()
	assert.ElementsMatch(t, []int{1, 3}, snap)
	snap[0] = 99
	assert.ElementsMatch(t, []int{1, 3}, r.Snapshot())
}

func TestLog(t *testing.T) {
	l := NewLog[int]()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Last(3))

	for i := 1; i <= 5; i++ {
		l.Append(i)
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5}, l.Snapshot())
	assert.Equal(t, []int{3, 4, 5}, l.Last(3))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, l.Last(10))
	assert.Nil(t, l.Last(0))

	snap := l.Snapshot()
	snap[0] = 100
	assert.Equal(t, 1, l.Snapshot()[0], "snapshots are copies")
}

func TestLogConcurrentAppend(t *testing.T) {
	l := NewLog[int]()
	var wg sync.WaitGroup
	for i := range 500 {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			l.Append(v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 500, l.Len())
}
