package sim

// Scheduling priorities. Lower values dispatch first among events that share a
// tick. Threshold change notifications are delivered at PriorityNotify so that
// all state updates at an instant land before users re-evaluate.
const (
	PriorityHigh    = 1
	PriorityDefault = 5
	PriorityNotify  = 10
)

// ProcessTarget is the unit of work carried by an event. Its Process method
// runs inside a Process and may suspend by calling the wait primitives.
type ProcessTarget interface {
	// ProcessName identifies the target in logs and traces.
	ProcessName() string
	Process(p *Process)
}

// funcTarget adapts a plain function to ProcessTarget.
type funcTarget struct {
	name string
	fn   func(p *Process)
}

// FuncTarget wraps fn as a ProcessTarget with the given name.
func FuncTarget(name string, fn func(p *Process)) ProcessTarget {
	return &funcTarget{name: name, fn: fn}
}

func (t *funcTarget) ProcessName() string { return t.name }
func (t *funcTarget) Process(p *Process)  { t.fn(p) }

// waitTarget resumes a process suspended in WaitTicks/WaitSeconds. The
// dispatcher recognizes it and hands control back to the captured process
// instead of launching a new one.
type waitTarget struct {
	p *Process
}

func (t *waitTarget) ProcessName() string { return "resume" }
func (t *waitTarget) Process(_ *Process)  {}

// Event is one pending entry in the event queue.
type Event struct {
	tick     int64
	priority int
	// seq is the tie-break key among events with equal (tick, priority).
	// FIFO events carry +n and run in insertion order; LIFO events carry -n,
	// so a later LIFO insertion runs first and every LIFO event runs before
	// the FIFO events of its bucket, matching push-at-front semantics.
	seq    int64
	target ProcessTarget
	handle *EventHandle
	index  int // heap index; -1 when not queued
}

// Tick returns the virtual time at which the event is due.
func (e *Event) Tick() int64 { return e.tick }

// Priority returns the scheduling priority of the event.
func (e *Event) Priority() int { return e.priority }

// Target returns the work the event will dispatch.
func (e *Event) Target() ProcessTarget { return e.target }

// EventHandle is an optional back-reference to a scheduled event or a
// registered conditional wait, enabling cancellation. A handle is bound to at
// most one live event at a time; it unbinds when the event fires, is killed,
// or is interrupted.
type EventHandle struct {
	event  *Event
	waiter *condWaiter
}

// IsScheduled reports whether the handle is bound to a pending event or
// conditional wait.
func (h *EventHandle) IsScheduled() bool {
	return h != nil && (h.event != nil || h.waiter != nil)
}
