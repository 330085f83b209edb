package sim

// QueueUser is notified when an entity is added to a queue it owns.
type QueueUser interface {
	QueueChanged(simTicks int64)
}

// Matcher is implemented by flow entities that carry a match value for
// selective dequeue.
type Matcher interface {
	MatchValue() *int64
}

type queueItem struct {
	ent   Entity
	match *int64
}

// Queue is an ordered waiting list with an optional integer match tag per
// item: FIFO with match-skip removal. It is mutated only inside process
// turns, so it carries no locking.
type Queue struct {
	BaseEntity

	items []queueItem
	user  QueueUser

	// statistics
	totalAdded int64
	maxLen     int
}

// NewQueue creates and registers a queue.
func NewQueue(m *Model, name string) *Queue {
	q := &Queue{}
	q.initBase(m, name)
	m.register(q, name)
	return q
}

// SetUser designates the component notified on every addition.
func (q *Queue) SetUser(u QueueUser) { q.user = u }

// Len returns the number of waiting entities.
func (q *Queue) Len() int { return len(q.items) }

// TotalAdded returns the cumulative number of additions.
func (q *Queue) TotalAdded() int64 { return q.totalAdded }

// MaxLen returns the largest observed queue length.
func (q *Queue) MaxLen() int { return q.maxLen }

// AddEntity appends e with an optional match tag and notifies the owning
// user.
func (q *Queue) AddEntity(simTicks int64, e Entity, match *int64) {
	q.items = append(q.items, queueItem{ent: e, match: match})
	q.totalAdded++
	if len(q.items) > q.maxLen {
		q.maxLen = len(q.items)
	}
	if q.user != nil {
		q.user.QueueChanged(simTicks)
	}
}

// RemoveFirst pops the head of the queue, or nil when empty.
func (q *Queue) RemoveFirst() Entity {
	if len(q.items) == 0 {
		return nil
	}
	e := q.items[0].ent
	q.items = q.items[1:]
	return e
}

// RemoveFirstForMatch scans from the head and removes the first entity whose
// tag equals match, or the head itself when match is nil. Non-matching
// entities are skipped over but never reordered; entities behind the removed
// one keep their relative positions. This match-jumping is deliberate
// behavior, not a FIFO violation.
func (q *Queue) RemoveFirstForMatch(match *int64) Entity {
	if match == nil {
		return q.RemoveFirst()
	}
	for i, it := range q.items {
		if it.match != nil && *it.match == *match {
			e := it.ent
			q.items = append(q.items[:i], q.items[i+1:]...)
			return e
		}
	}
	return nil
}

// MatchCount counts entities whose tag equals match without removing any;
// a nil match counts everything. Readiness checks use this before committing
// to a removal.
func (q *Queue) MatchCount(match *int64) int {
	if match == nil {
		return len(q.items)
	}
	n := 0
	for _, it := range q.items {
		if it.match != nil && *it.match == *match {
			n++
		}
	}
	return n
}
