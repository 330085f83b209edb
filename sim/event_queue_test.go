package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopTarget struct{}

func (nopTarget) ProcessName() string { return "nop" }
func (nopTarget) Process(_ *Process)  {}

func TestEventQueue_DequeueOrder(t *testing.T) {
	q := NewEventQueue()
	mk := func(tick int64, pri int, seq int64) *Event {
		return &Event{tick: tick, priority: pri, seq: seq, target: nopTarget{}, index: -1}
	}
	q.Insert(mk(20, 5, 1))
	q.Insert(mk(10, 5, 2))
	q.Insert(mk(10, 1, 3))
	q.Insert(mk(10, 5, 4))

	want := []struct {
		tick int64
		pri  int
	}{{10, 1}, {10, 5}, {10, 5}, {20, 5}}
	for i, w := range want {
		e := q.Next()
		require.NotNil(t, e)
		require.Equal(t, w.tick, e.Tick(), "event %d", i)
		require.Equal(t, w.pri, e.Priority(), "event %d", i)
	}
	require.Nil(t, q.Next())
}

// Property: for any set of scheduled events, dequeue order satisfies
// (tick asc, priority asc, tie-break-consistent).
func TestEventQueue_RandomizedOrderProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewEventQueue()
	const n = 2000
	for seq := int64(1); seq <= n; seq++ {
		q.Insert(&Event{
			tick:     int64(rng.Intn(50)),
			priority: rng.Intn(5),
			seq:      seq,
			target:   nopTarget{},
			index:    -1,
		})
	}

	prev := q.Next()
	for e := q.Next(); e != nil; e = q.Next() {
		if e.tick != prev.tick {
			require.Greater(t, e.tick, prev.tick)
		} else if e.priority != prev.priority {
			require.Greater(t, e.priority, prev.priority)
		} else {
			// equal (tick, priority): FIFO events drain in insertion order
			require.Greater(t, e.seq, prev.seq)
		}
		prev = e
	}
}

func TestEventQueue_RemoveDetachesEvent(t *testing.T) {
	q := NewEventQueue()
	a := &Event{tick: 1, seq: 1, target: nopTarget{}, index: -1}
	b := &Event{tick: 2, seq: 2, target: nopTarget{}, index: -1}
	q.Insert(a)
	q.Insert(b)

	q.Remove(a)
	require.Equal(t, 1, q.Len())
	// removing again is a no-op
	q.Remove(a)
	require.Equal(t, 1, q.Len())
	require.Same(t, b, q.Next())
}
