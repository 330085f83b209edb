package sim

import "container/heap"

// EventQueue holds pending events ordered by (tick asc, priority asc,
// tie-break). It wraps container/heap the same way as the canonical example:
// https://pkg.go.dev/container/heap#example-package-IntHeap
// Events keep their heap index so a handle can remove them in O(log n).
type EventQueue struct {
	events []*Event
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]*Event, 0)}
}

func (q *EventQueue) Len() int { return len(q.events) }

func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.tick != ej.tick {
		return ei.tick < ej.tick
	}
	if ei.priority != ej.priority {
		return ei.priority < ej.priority
	}
	return ei.seq < ej.seq
}

func (q *EventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
	q.events[i].index = i
	q.events[j].index = j
}

func (q *EventQueue) Push(x any) {
	e := x.(*Event)
	e.index = len(q.events)
	q.events = append(q.events, e)
}

func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	q.events = old[:n-1]
	return e
}

// Insert adds an event to the queue.
func (q *EventQueue) Insert(e *Event) {
	heap.Push(q, e)
}

// Remove detaches a previously inserted event. No-op if the event is not
// queued any more.
func (q *EventQueue) Remove(e *Event) {
	if e.index < 0 {
		return
	}
	heap.Remove(q, e.index)
}

// Peek returns the next event without removing it, or nil when empty.
func (q *EventQueue) Peek() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// Next removes and returns the next event, or nil when empty.
func (q *EventQueue) Next() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return heap.Pop(q).(*Event)
}
