package sim

// Process-flow states shared by all LinkedService entities.
const (
	StateIdle                 = "Idle"
	StateWorking              = "Working"
	StateStopped              = "Stopped"
	StateClearingWhileStopped = "ClearingWhileStopped"
	StateMaintenance          = "Maintenance"
	StateBreakdown            = "Breakdown"
)

// ServiceOperator is the closed hook set a concrete service plugs into the
// generic worker lifecycle.
type ServiceOperator interface {
	// StartProcessing selects the next unit of work. Returning false means
	// there is nothing to do, for example an empty queue or an unavailable
	// resource; the service returns to Idle with no error.
	StartProcessing(simTicks int64) bool
	// ProcessingTicks returns the duration of the unit selected by the last
	// successful StartProcessing.
	ProcessingTicks(simTicks int64) int64
	// EndProcessing completes the unit, typically passing the entity
	// downstream.
	EndProcessing(simTicks int64)
	// UpdateForStoppage decides what happens to a unit cut short at stopTicks
	// and resumed at resumeTicks: true resumes the same unit with its
	// duration reduced by the elapsed outage, false discards it so a fresh
	// unit starts instead.
	UpdateForStoppage(startTicks, stopTicks, resumeTicks int64) bool
}

// LinkedService is the generic worker lifecycle: pull work, occupy it for a
// duration, release it, repeat. The present state derives from the busy and
// open booleans and any active downtime, with strict precedence; exactly one
// state holds at any tick.
type LinkedService struct {
	StateEntity

	op ServiceOperator

	immediateThresholds []*Threshold
	operatingThresholds []*Threshold

	busy           bool
	processKilled  bool
	forcedPending  bool
	activeDowntime *DowntimeEntity

	endHandle EventHandle
	startWork int64
	stopWork  int64
	// workTicks is the remaining duration of the current unit. StopAction
	// shrinks it by the time already worked so a resumed unit finishes on
	// schedule.
	workTicks int64

	unitsCompleted int64
}

func (s *LinkedService) initService(m *Model, name string, op ServiceOperator) {
	s.initState(m, name, StateIdle)
	s.op = op
	s.addState(StateIdle, false)
	s.addState(StateWorking, true)
	s.addState(StateClearingWhileStopped, true)
	s.addState(StateStopped, false)
	s.addState(StateMaintenance, false)
	s.addState(StateBreakdown, false)
}

// AddImmediateThreshold attaches a threshold whose closure stops work
// synchronously.
func (s *LinkedService) AddImmediateThreshold(th *Threshold) {
	s.immediateThresholds = append(s.immediateThresholds, th)
	th.AddUser(s)
}

// AddOperatingThreshold attaches a threshold whose closure lets the current
// unit finish before the service stops.
func (s *LinkedService) AddOperatingThreshold(th *Threshold) {
	s.operatingThresholds = append(s.operatingThresholds, th)
	th.AddUser(s)
}

// Open reports whether every attached threshold is open.
func (s *LinkedService) Open() bool {
	for _, th := range s.immediateThresholds {
		if !th.IsOpen() {
			return false
		}
	}
	for _, th := range s.operatingThresholds {
		if !th.IsOpen() {
			return false
		}
	}
	return true
}

func (s *LinkedService) immediateClosed() bool {
	for _, th := range s.immediateThresholds {
		if !th.IsOpen() {
			return true
		}
	}
	return false
}

// IsBusy reports whether a unit of work is in progress.
func (s *LinkedService) IsBusy() bool { return s.busy }

// IsUnableToWork reports whether the service is blocked by a closed
// threshold or an active downtime.
func (s *LinkedService) IsUnableToWork() bool {
	return !s.busy && (!s.Open() || s.activeDowntime != nil)
}

// IsIdle reports whether the service is free to start work or downtime.
// IsBusy, IsIdle and IsUnableToWork are mutually exclusive and exhaustive.
func (s *LinkedService) IsIdle() bool {
	return !s.busy && s.Open() && s.activeDowntime == nil
}

// UnitsCompleted returns the number of finished units of work.
func (s *LinkedService) UnitsCompleted() int64 { return s.unitsCompleted }

// setProcessState derives the present state from the busy/open/downtime
// booleans with strict precedence.
func (s *LinkedService) setProcessState(simTicks int64) {
	var state string
	switch {
	case s.busy && s.Open():
		state = StateWorking
	case s.busy && !s.Open():
		state = StateClearingWhileStopped
	case !s.busy && !s.Open():
		state = StateStopped
	case !s.busy && s.activeDowntime != nil && s.activeDowntime.Kind() == KindMaintenance:
		state = StateMaintenance
	case !s.busy && s.activeDowntime != nil:
		state = StateBreakdown
	default:
		state = StateIdle
	}
	s.SetPresentState(simTicks, state)
}

// StartAction attempts to begin the next unit of work. A pending forced
// downtime aborts to StopAction; a closed threshold aborts in place; an
// operator with nothing to do leaves the service Idle with no error.
func (s *LinkedService) StartAction(simTicks int64) {
	if s.busy {
		return
	}
	if s.forcedPending || s.activeDowntime != nil {
		s.StopAction(simTicks)
		return
	}
	if !s.Open() {
		s.setProcessState(simTicks)
		return
	}
	if !s.op.StartProcessing(simTicks) {
		s.setProcessState(simTicks)
		return
	}
	s.busy = true
	s.processKilled = false
	s.startWork = simTicks
	s.workTicks = s.op.ProcessingTicks(simTicks)
	s.setProcessState(simTicks)
	s.scheduleEnd(simTicks)
}

func (s *LinkedService) scheduleEnd(simTicks int64) {
	s.model.Events.ScheduleTicks(s.workTicks, PriorityDefault, true,
		FuncTarget(s.Name()+".endAction", func(p *Process) { s.EndAction(p.Now()) }),
		&s.endHandle)
}

// EndAction completes the current unit and re-invokes StartAction; this loop
// is the server's work cycle.
func (s *LinkedService) EndAction(simTicks int64) {
	s.op.EndProcessing(simTicks)
	s.busy = false
	s.processKilled = false
	s.unitsCompleted++
	s.StartAction(simTicks)
}

// StopAction halts work. If a unit was in flight its completion event is
// cancelled and processKilled is set so the unit can be resumed rather than
// restarted.
func (s *LinkedService) StopAction(simTicks int64) {
	if s.endHandle.IsScheduled() {
		s.model.Events.KillEvent(&s.endHandle)
		s.processKilled = true
		s.stopWork = simTicks
		s.workTicks -= simTicks - s.startWork
		if s.workTicks < 0 {
			s.workTicks = 0
		}
	}
	s.busy = false
	s.setProcessState(simTicks)
}

// RestartAction resumes once obstacles clear. A killed unit is either resumed
// with its remaining duration or discarded, as decided by the operator's
// UpdateForStoppage hook; otherwise a fresh unit starts.
func (s *LinkedService) RestartAction(simTicks int64) {
	if s.busy {
		return
	}
	if !s.Open() || s.activeDowntime != nil || s.forcedPending {
		s.setProcessState(simTicks)
		return
	}
	if s.processKilled {
		s.processKilled = false
		if s.op.UpdateForStoppage(s.startWork, s.stopWork, simTicks) {
			s.busy = true
			s.startWork = simTicks
			s.setProcessState(simTicks)
			s.scheduleEnd(simTicks)
			return
		}
	}
	s.StartAction(simTicks)
}

// QueueChanged starts work when new entities arrive and the service is free.
func (s *LinkedService) QueueChanged(simTicks int64) {
	if s.IsIdle() {
		s.RestartAction(simTicks)
	}
}

// ThresholdChanged reacts to the batched gate notification: an immediate
// threshold's closure stops work synchronously; an operating threshold lets
// the current unit finish. When all gates are open again the service
// restarts.
func (s *LinkedService) ThresholdChanged(simTicks int64) {
	if s.immediateClosed() {
		s.StopAction(simTicks)
		return
	}
	if !s.Open() {
		// Operating threshold closed: the unit in flight keeps running and
		// the completion event stays scheduled.
		s.setProcessState(simTicks)
		return
	}
	s.RestartAction(simTicks)
}

// CanStartDowntime is true only when the service is idle: not busy, open,
// and not already in another downtime. A concurrent downtime skips the
// other-downtime check and may overlap one already in progress.
func (s *LinkedService) CanStartDowntime(d *DowntimeEntity) bool {
	if d.Concurrent() {
		return !s.busy && s.Open()
	}
	return s.IsIdle()
}

// PrepareForDowntime reacts to a downtime becoming pending. Immediate
// severity stops work now; forced severity stops only after the current unit
// completes; opportunistic severity waits for the natural Idle transition.
func (s *LinkedService) PrepareForDowntime(simTicks int64, d *DowntimeEntity) {
	switch d.Severity() {
	case SeverityImmediate:
		s.StopAction(simTicks)
	case SeverityForced:
		s.forcedPending = true
	case SeverityOpportunistic:
		// wait for the service to go idle on its own
	}
}

// StartDowntime marks the service down for d.
func (s *LinkedService) StartDowntime(simTicks int64, d *DowntimeEntity) {
	s.activeDowntime = d
	s.forcedPending = false
	s.setProcessState(simTicks)
}

// EndDowntime clears d and restarts any interrupted unit.
func (s *LinkedService) EndDowntime(simTicks int64, d *DowntimeEntity) {
	if s.activeDowntime == d {
		s.activeDowntime = nil
	}
	s.RestartAction(simTicks)
}

// Kill cancels the pending completion event and detaches the service.
func (s *LinkedService) Kill() {
	s.model.Events.KillEvent(&s.endHandle)
	s.BaseEntity.Kill()
}
