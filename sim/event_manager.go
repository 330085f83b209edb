package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// RunState is the global state of an EventManager.
type RunState int32

const (
	RunStateIdle RunState = iota
	RunStateRunning
	RunStatePaused
	RunStateTerminated
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "Idle"
	case RunStateRunning:
		return "Running"
	case RunStatePaused:
		return "Paused"
	case RunStateTerminated:
		return "Terminated"
	}
	return fmt.Sprintf("RunState(%d)", int32(s))
}

// EventManager drives the virtual clock and dispatches events in
// (tick asc, priority asc, tie-break) order. All scheduling primitives must be
// called from dispatcher context, that is from inside an executing event or
// process; Pause and Terminate are the only methods safe to call from another
// goroutine. Virtual time is monotonic non-decreasing: an event at tick T
// never dispatches before all events with a lower tick, or an equal tick and
// lower priority, have dispatched.
type EventManager struct {
	name  string
	ticks atomic.Int64
	state atomic.Int32

	queue       *EventQueue
	seq         int64
	condWaiters []*condWaiter
	current     *Process

	pauseReq atomic.Bool

	// DispatchCount is the number of events executed so far, for reporting.
	DispatchCount int64
}

// NewEventManager returns an idle manager with an empty queue and the clock
// at tick zero.
func NewEventManager(name string) *EventManager {
	return &EventManager{
		name:  name,
		queue: NewEventQueue(),
	}
}

// Now returns the current simulation time in ticks. Safe to call from any
// goroutine; display code reads the clock while the run thread executes.
func (em *EventManager) Now() int64 { return em.ticks.Load() }

// RunState returns the current global run state.
func (em *EventManager) RunState() RunState { return RunState(em.state.Load()) }

func (em *EventManager) setState(s RunState) { em.state.Store(int32(s)) }

// PendingEvents returns the number of events in the queue.
func (em *EventManager) PendingEvents() int { return em.queue.Len() }

// ScheduleTicks enqueues target to execute delay ticks in the future at the
// given priority. fifo selects the tie-break among events sharing tick and
// priority: true appends behind earlier same-key events, false runs before
// them in stack order. A non-nil handle is bound to the new event for later
// cancellation; binding an already-bound handle is a fatal error.
func (em *EventManager) ScheduleTicks(delay int64, priority int, fifo bool, target ProcessTarget, h *EventHandle) {
	if delay < 0 {
		panicf("%s: negative delay %d scheduling %s at tick %d", em.name, delay, target.ProcessName(), em.Now())
	}
	if h.IsScheduled() {
		panicf("%s: handle already bound to a live event, scheduling %s", em.name, target.ProcessName())
	}
	em.seq++
	seq := em.seq
	if !fifo {
		seq = -seq
	}
	e := &Event{
		tick:     em.Now() + delay,
		priority: priority,
		seq:      seq,
		target:   target,
		handle:   h,
		index:    -1,
	}
	if h != nil {
		h.event = e
	}
	em.queue.Insert(e)
}

// ScheduleSeconds is ScheduleTicks with the delay given in seconds.
func (em *EventManager) ScheduleSeconds(seconds float64, priority int, fifo bool, target ProcessTarget, h *EventHandle) {
	em.ScheduleTicks(SecondsToNearestTick(seconds), priority, fifo, target, h)
}

// KillEvent cancels the pending event or conditional wait bound to h. It is
// idempotent: a nil handle, an unbound handle, or a handle whose event already
// fired are all no-ops, never an error. A process suspended in the killed
// wait is abandoned and never resumes.
func (em *EventManager) KillEvent(h *EventHandle) {
	if h == nil {
		return
	}
	if h.event != nil {
		em.queue.Remove(h.event)
		h.event.handle = nil
		h.event = nil
	}
	if h.waiter != nil {
		em.removeCondWaiter(h.waiter)
		h.waiter = nil
	}
}

// InterruptEvent forces the event bound to h to fire now, as if its tick had
// arrived. The clock does not move, so code reading current time sees the
// same instant it was interrupted at. No-op if the handle is not bound.
func (em *EventManager) InterruptEvent(h *EventHandle) {
	if h == nil || h.event == nil {
		return
	}
	e := h.event
	em.queue.Remove(e)
	e.handle = nil
	h.event = nil
	em.execute(e.target)
}

// Run processes events until the queue empties, the next event lies beyond
// stopTick, or an external Pause/Terminate lands. It blocks the caller; on a
// normal stop the clock advances to stopTick and the state becomes Paused, so
// a later Run with a larger stopTick resumes the same run.
func (em *EventManager) Run(stopTick int64) {
	switch em.RunState() {
	case RunStateTerminated, RunStateRunning:
		return
	}
	em.setState(RunStateRunning)
	logrus.Infof("%s: running to tick %d", em.name, stopTick)

	horizonReached := true
	for em.RunState() == RunStateRunning {
		if em.pauseReq.Load() {
			em.pauseReq.Store(false)
			horizonReached = false
			break
		}
		ev := em.queue.Peek()
		if ev == nil || ev.tick > stopTick {
			break
		}
		em.queue.Remove(ev)
		if ev.handle != nil {
			ev.handle.event = nil
			ev.handle = nil
		}
		if ev.tick > em.Now() {
			em.ticks.Store(ev.tick)
		}
		em.DispatchCount++
		logrus.Debugf("[tick %07d] executing %s", ev.tick, ev.target.ProcessName())
		em.execute(ev.target)
		em.evaluateConds()
	}

	if em.RunState() == RunStateRunning {
		if horizonReached && stopTick > em.Now() {
			em.ticks.Store(stopTick)
		}
		em.setState(RunStatePaused)
	}
	logrus.Infof("%s: stopped at tick %d (%s, %d events dispatched)",
		em.name, em.Now(), em.RunState(), em.DispatchCount)
}

// Pause requests that a running dispatch loop stop after the event in flight.
// Safe to call from another goroutine.
func (em *EventManager) Pause() {
	if em.RunState() == RunStateRunning {
		em.pauseReq.Store(true)
	}
}

// Terminate permanently stops the manager. A terminated manager never
// dispatches again. Safe to call from another goroutine.
func (em *EventManager) Terminate() {
	em.setState(RunStateTerminated)
}

// execute dispatches a target. A waitTarget hands control back to its
// suspended process; anything else runs on a fresh process goroutine. execute
// returns once the target has finished or suspended again, preserving the
// single-logical-thread guarantee.
func (em *EventManager) execute(t ProcessTarget) {
	if wt, ok := t.(*waitTarget); ok {
		em.switchTo(wt.p)
		return
	}
	p := newProcess(em)
	go func() {
		<-p.resume
		t.Process(p)
		p.yield <- struct{}{}
	}()
	em.switchTo(p)
}

// switchTo transfers control to p and blocks until p suspends or finishes.
// Nesting is safe: a process that interrupts an event becomes the parent of
// the resumed process and regains control when it yields.
func (em *EventManager) switchTo(p *Process) {
	prev := em.current
	em.current = p
	p.resume <- struct{}{}
	<-p.yield
	em.current = prev
}

// evaluateConds re-evaluates registered conditional waits in stable
// registration order. The first satisfied condition resumes its process; the
// scan restarts until no condition is satisfied.
func (em *EventManager) evaluateConds() {
	for {
		resumed := false
		for i, w := range em.condWaiters {
			if !w.cond() {
				continue
			}
			em.condWaiters = append(em.condWaiters[:i], em.condWaiters[i+1:]...)
			if w.handle != nil {
				w.handle.waiter = nil
			}
			em.switchTo(w.p)
			resumed = true
			break
		}
		if !resumed {
			return
		}
	}
}

func (em *EventManager) removeCondWaiter(w *condWaiter) {
	for i, cw := range em.condWaiters {
		if cw == w {
			em.condWaiters = append(em.condWaiters[:i], em.condWaiters[i+1:]...)
			return
		}
	}
}

func panicf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
