package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func newTestQueue(t *testing.T) (*Model, *Queue) {
	t.Helper()
	m := NewModel(1)
	return m, NewQueue(m, "q")
}

func addEntity(m *Model, q *Queue, name string, match *int64) *SimEntity {
	e := NewSimEntity(m, name, 0)
	q.AddEntity(0, e, match)
	return e
}

func TestQueue_FIFO(t *testing.T) {
	m, q := newTestQueue(t)
	e1 := addEntity(m, q, "e1", nil)
	e2 := addEntity(m, q, "e2", nil)

	require.Equal(t, 2, q.Len())
	require.Same(t, Entity(e1), q.RemoveFirst())
	require.Same(t, Entity(e2), q.RemoveFirst())
	require.Nil(t, q.RemoveFirst())
}

// RemoveFirstForMatch skips over, but does not reorder, non-matching
// entities. This match-jumping is deliberate; do not "fix" it toward strict
// FIFO.
func TestQueue_RemoveFirstForMatchSkipsWithoutReordering(t *testing.T) {
	m, q := newTestQueue(t)
	a := addEntity(m, q, "a", ptr(1))
	b := addEntity(m, q, "b", ptr(2))
	c := addEntity(m, q, "c", ptr(1))
	d := addEntity(m, q, "d", ptr(2))

	require.Same(t, Entity(b), q.RemoveFirstForMatch(ptr(2)))
	// a, c, d keep their relative order
	require.Same(t, Entity(a), q.RemoveFirst())
	require.Same(t, Entity(c), q.RemoveFirst())
	require.Same(t, Entity(d), q.RemoveFirst())
}

func TestQueue_RemoveFirstForMatchNilTagTakesHead(t *testing.T) {
	m, q := newTestQueue(t)
	a := addEntity(m, q, "a", ptr(7))
	addEntity(m, q, "b", nil)
	require.Same(t, Entity(a), q.RemoveFirstForMatch(nil))
}

func TestQueue_RemoveFirstForMatchNoMatch(t *testing.T) {
	m, q := newTestQueue(t)
	addEntity(m, q, "a", ptr(1))
	addEntity(m, q, "b", nil)
	require.Nil(t, q.RemoveFirstForMatch(ptr(9)))
	require.Equal(t, 2, q.Len())
}

func TestQueue_MatchCount(t *testing.T) {
	m, q := newTestQueue(t)
	addEntity(m, q, "a", ptr(1))
	addEntity(m, q, "b", ptr(2))
	addEntity(m, q, "c", ptr(1))
	addEntity(m, q, "d", nil)

	assert.Equal(t, 2, q.MatchCount(ptr(1)))
	assert.Equal(t, 1, q.MatchCount(ptr(2)))
	assert.Equal(t, 0, q.MatchCount(ptr(3)))
	assert.Equal(t, 4, q.MatchCount(nil))
}

type countingQueueUser struct {
	calls int
	last  int64
}

func (u *countingQueueUser) QueueChanged(simTicks int64) {
	u.calls++
	u.last = simTicks
}

func TestQueue_NotifiesUserOnAdd(t *testing.T) {
	m, q := newTestQueue(t)
	u := &countingQueueUser{}
	q.SetUser(u)
	e := NewSimEntity(m, "e", 0)
	q.AddEntity(42, e, nil)
	require.Equal(t, 1, u.calls)
	require.Equal(t, int64(42), u.last)
}

func TestQueue_Statistics(t *testing.T) {
	m, q := newTestQueue(t)
	addEntity(m, q, "a", nil)
	addEntity(m, q, "b", nil)
	q.RemoveFirst()
	addEntity(m, q, "c", nil)

	assert.Equal(t, int64(3), q.TotalAdded())
	assert.Equal(t, 2, q.MaxLen())
}
