package sim

// StateRecord accumulates time spent in one state.
type StateRecord struct {
	Name string
	// TotalTicks is the cumulative time in this state since statistics were
	// last cleared.
	TotalTicks int64
	// CurrentCycleTicks is the time in this state during the current
	// statistics cycle.
	CurrentCycleTicks int64
	// Working marks states that count toward working time, used by
	// working-time-based downtimes and utilization outputs.
	Working bool
}

// StateListener is notified synchronously, within the same logical turn,
// whenever a watched entity switches state. DowntimeEntity uses this to react
// to watched-entity state changes.
type StateListener interface {
	StateChanged(e *StateEntity, simTicks int64, prev, next string)
}

// StateEntity tracks a single present state out of a per-entity whitelist and
// accounts time per state at tick granularity. Exactly one state is active at
// any instant; transitions are recorded atomically with the switch.
type StateEntity struct {
	BaseEntity

	states     map[string]*StateRecord
	stateOrder []string
	present    string
	stateStart int64
	statsStart int64
	listeners  []StateListener
}

func (e *StateEntity) initState(m *Model, name, initial string) {
	e.initBase(m, name)
	e.states = make(map[string]*StateRecord)
	e.addState(initial, false)
	e.present = initial
}

// addState registers a state name in the whitelist. Registering an existing
// name only upgrades its working flag.
func (e *StateEntity) addState(name string, working bool) {
	if rec, ok := e.states[name]; ok {
		rec.Working = rec.Working || working
		return
	}
	e.states[name] = &StateRecord{Name: name, Working: working}
	e.stateOrder = append(e.stateOrder, name)
}

// HasState reports whether name is in the whitelist.
func (e *StateEntity) HasState(name string) bool {
	_, ok := e.states[name]
	return ok
}

// PresentState returns the active state name.
func (e *StateEntity) PresentState() string { return e.present }

// SetPresentState switches the active state, flushing the elapsed ticks into
// the outgoing state's record and notifying listeners synchronously. The name
// must be in the whitelist; configuration-supplied names are checked at
// Validate time, so an unknown name here is a consistency failure and panics
// with the entity name and tick.
func (e *StateEntity) SetPresentState(simTicks int64, name string) {
	if _, ok := e.states[name]; !ok {
		panicf("%s: unknown state %q at tick %d", e.Name(), name, simTicks)
	}
	if name == e.present {
		return
	}
	prev := e.present
	rec := e.states[prev]
	rec.TotalTicks += simTicks - e.stateStart
	rec.CurrentCycleTicks += simTicks - e.stateStart
	e.present = name
	e.stateStart = simTicks
	for _, l := range e.listeners {
		l.StateChanged(e, simTicks, prev, name)
	}
}

// AddStateListener registers l for synchronous state-change notification.
func (e *StateEntity) AddStateListener(l StateListener) {
	e.listeners = append(e.listeners, l)
}

// TimeInState returns the ticks accumulated in the named state as of
// simTicks, including the open interval if the state is active.
func (e *StateEntity) TimeInState(simTicks int64, name string) int64 {
	rec, ok := e.states[name]
	if !ok {
		return 0
	}
	total := rec.TotalTicks
	if name == e.present {
		total += simTicks - e.stateStart
	}
	return total
}

// States returns the registered state names in registration order.
func (e *StateEntity) States() []string { return e.stateOrder }

// IsWorking reports whether the present state counts as working.
func (e *StateEntity) IsWorking() bool {
	return e.states[e.present].Working
}

// WorkingTicks returns the accumulated working time as of simTicks. A
// working-time-based downtime advances its failure timer against this value.
func (e *StateEntity) WorkingTicks(simTicks int64) int64 {
	var total int64
	for _, name := range e.stateOrder {
		if e.states[name].Working {
			total += e.TimeInState(simTicks, name)
		}
	}
	return total
}

// ClearStatistics zeroes all state records and restarts accounting at
// simTicks. Run setup calls this at the end of initialization so reported
// times cover only the measured interval.
func (e *StateEntity) ClearStatistics(simTicks int64) {
	for _, rec := range e.states {
		rec.TotalTicks = 0
		rec.CurrentCycleTicks = 0
	}
	e.stateStart = simTicks
	e.statsStart = simTicks
}

// ClearCycleStatistics zeroes only the current-cycle counters.
func (e *StateEntity) ClearCycleStatistics() {
	for _, rec := range e.states {
		rec.CurrentCycleTicks = 0
	}
}

// StatsStart returns the tick at which statistics were last cleared.
func (e *StateEntity) StatsStart() int64 { return e.statsStart }
