package sim

// Process is the suspended continuation of one entity's behavior. Each process
// runs on its own goroutine but is gated by the dispatcher: control passes
// through the resume/yield channel pair so that exactly one process executes
// application logic at any instant. Behavior code is straight-line Go that
// calls the wait primitives to suspend; it resumes exactly where it left off.
type Process struct {
	em     *EventManager
	resume chan struct{}
	yield  chan struct{}
}

func newProcess(em *EventManager) *Process {
	return &Process{
		em:     em,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
}

// Now returns the current simulation time in ticks.
func (p *Process) Now() int64 { return p.em.Now() }

// EventManager returns the manager driving this process.
func (p *Process) EventManager() *EventManager { return p.em }

// suspend hands control back to whoever resumed this process and blocks until
// the process is resumed again.
func (p *Process) suspend() {
	p.yield <- struct{}{}
	<-p.resume
}

// WaitTicks schedules a resumption event delay ticks in the future and
// suspends the calling process until it fires. The handle, when non-nil, can
// be used to kill or interrupt the wait.
func (p *Process) WaitTicks(delay int64, priority int, fifo bool, h *EventHandle) {
	p.em.ScheduleTicks(delay, priority, fifo, &waitTarget{p: p}, h)
	p.suspend()
}

// WaitSeconds is WaitTicks with the delay given in seconds.
func (p *Process) WaitSeconds(seconds float64, priority int, fifo bool, h *EventHandle) {
	p.WaitTicks(SecondsToNearestTick(seconds), priority, fifo, h)
}

// WaitUntil suspends the calling process until cond returns true. Conditions
// are re-evaluated in stable registration order after every dispatched event;
// the first satisfied condition resumes. A process may wait indefinitely if
// its condition never becomes true; that is correct behavior, not a fault.
func (p *Process) WaitUntil(cond func() bool, h *EventHandle) {
	if h.IsScheduled() {
		panicf("WaitUntil: handle is already bound to a live event")
	}
	w := &condWaiter{cond: cond, p: p, handle: h}
	if h != nil {
		h.waiter = w
	}
	p.em.condWaiters = append(p.em.condWaiters, w)
	p.suspend()
}

// condWaiter is one registered conditional wait.
type condWaiter struct {
	cond   func() bool
	p      *Process
	handle *EventHandle
}
