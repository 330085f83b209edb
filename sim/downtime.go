package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// Severity classifies how a downtime preempts its users.
type Severity int

const (
	// SeverityImmediate stops work the instant the downtime is due.
	SeverityImmediate Severity = iota
	// SeverityForced stops work once the current unit completes.
	SeverityForced
	// SeverityOpportunistic waits for the user's natural Idle transition.
	SeverityOpportunistic
)

func (s Severity) String() string {
	switch s {
	case SeverityImmediate:
		return "Immediate"
	case SeverityForced:
		return "Forced"
	case SeverityOpportunistic:
		return "Opportunistic"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// DowntimeKind distinguishes planned maintenance from breakdowns for state
// reporting on the affected services.
type DowntimeKind int

const (
	KindMaintenance DowntimeKind = iota
	KindBreakdown
)

// DowntimeUser is the listener contract a downtime holds back into its
// affected services.
type DowntimeUser interface {
	CanStartDowntime(d *DowntimeEntity) bool
	PrepareForDowntime(simTicks int64, d *DowntimeEntity)
	StartDowntime(simTicks int64, d *DowntimeEntity)
	EndDowntime(simTicks int64, d *DowntimeEntity)
}

// Own states for reporting downtime availability.
const (
	stateDowntimeInactive = "Inactive"
	stateDowntimeDown     = "Down"
)

// DowntimeEntity generates scheduled unavailability for its users. Failure
// intervals and repair durations are resampled from configured distributions
// at each occurrence. Timing is calendar-based by default; pointing
// FailureBase (or RepairBase) at a watched entity makes the corresponding
// timer advance only while that entity is working.
type DowntimeEntity struct {
	StateEntity

	severity   Severity
	kind       DowntimeKind
	concurrent bool

	iat      dist.Sampler
	duration dist.Sampler

	// failureBase, when non-nil, is the entity whose working time drives the
	// failure timer. repairBase plays the same role for the repair timer and
	// may be a different entity.
	failureBase *StateEntity
	repairBase  *StateEntity

	users []DowntimeUser

	down    bool
	pending int

	failureHandle EventHandle
	repairHandle  EventHandle

	// Failure target: absolute tick in calendar mode, accumulated working
	// ticks of failureBase in working-time mode. Same split for repair.
	nextFailureTick    int64
	failureWorkTarget  int64
	failureTargetValid bool

	nextRepairTick    int64
	repairWorkTarget  int64
	repairTargetValid bool

	downStart int64
	downCount int64
	totalDown int64
}

// NewDowntimeEntity creates and registers a downtime generator.
func NewDowntimeEntity(m *Model, name string, severity Severity, kind DowntimeKind, iat, duration dist.Sampler) *DowntimeEntity {
	d := &DowntimeEntity{
		severity: severity,
		kind:     kind,
		iat:      iat,
		duration: duration,
	}
	d.initState(m, name, stateDowntimeInactive)
	d.addState(stateDowntimeDown, false)
	m.register(d, name)
	return d
}

// Severity returns the preemption class.
func (d *DowntimeEntity) Severity() Severity { return d.severity }

// Kind reports whether this is maintenance or a breakdown.
func (d *DowntimeEntity) Kind() DowntimeKind { return d.kind }

// Concurrent reports whether this downtime may overlap other downtimes on
// the same user.
func (d *DowntimeEntity) Concurrent() bool { return d.concurrent }

// SetConcurrent marks the downtime as able to overlap others.
func (d *DowntimeEntity) SetConcurrent(c bool) { d.concurrent = c }

// Down reports whether a downtime is in progress.
func (d *DowntimeEntity) Down() bool { return d.down }

// Pending returns the number of triggered-but-unstarted downtimes.
func (d *DowntimeEntity) Pending() int { return d.pending }

// DownCount returns how many downtimes have started.
func (d *DowntimeEntity) DownCount() int64 { return d.downCount }

// SetFailureBase makes the failure timer advance only while base is working.
func (d *DowntimeEntity) SetFailureBase(base *StateEntity) {
	d.failureBase = base
	base.AddStateListener(d)
}

// SetRepairBase makes the repair timer advance only while base is working.
func (d *DowntimeEntity) SetRepairBase(base *StateEntity) {
	d.repairBase = base
	base.AddStateListener(d)
}

// AddUser attaches a service affected by this downtime. The user is also
// watched for state changes so the downtime can start as soon as every user
// is ready.
func (d *DowntimeEntity) AddUser(u DowntimeUser) {
	d.users = append(d.users, u)
	if se, ok := u.(interface{ AddStateListener(StateListener) }); ok {
		se.AddStateListener(d)
	}
}

func (d *DowntimeEntity) Validate() error {
	if d.iat == nil {
		return fmt.Errorf("downtime requires an interval distribution")
	}
	if d.duration == nil {
		return fmt.Errorf("downtime requires a duration distribution")
	}
	if len(d.users) == 0 {
		return fmt.Errorf("downtime has no users")
	}
	return nil
}

func (d *DowntimeEntity) rng() *rand.Rand {
	return d.model.RNG().ForSubsystem(SubsystemDowntime + "/" + d.Name())
}

// StartUp samples the first failure interval and starts the reconciliation
// network.
func (d *DowntimeEntity) StartUp(p *Process) {
	d.sampleNextFailure(p.Now())
	d.CheckProcessNetwork(p.Now())
}

// sampleNextFailure draws the next inter-arrival time and fixes the failure
// target in calendar or working time.
func (d *DowntimeEntity) sampleNextFailure(simTicks int64) {
	interval := SecondsToNearestTick(d.iat.Next(d.rng()))
	if d.failureBase != nil {
		d.failureWorkTarget = d.failureBase.WorkingTicks(simTicks) + interval
	} else {
		d.nextFailureTick = simTicks + interval
	}
	d.failureTargetValid = true
}

// StateChanged re-runs the reconciliation whenever a watched entity or user
// switches state.
func (d *DowntimeEntity) StateChanged(_ *StateEntity, simTicks int64, _, _ string) {
	d.CheckProcessNetwork(simTicks)
}

// CheckProcessNetwork is the idempotent, re-entrant reconciliation routine
// invoked whenever a watched entity changes state or a timer fires:
//
//  1. ensure the failure-trigger event is scheduled; in working-time mode it
//     is rescheduled from the watched entity's accumulated working time on
//     every check, so the timer only advances while that entity works;
//  2. while down, keep the repair-completion event scheduled the same way;
//  3. once a downtime is pending, start it only when every registered user
//     reports CanStartDowntime; partial readiness never starts a downtime.
func (d *DowntimeEntity) CheckProcessNetwork(simTicks int64) {
	d.ensureFailureScheduled(simTicks)
	if d.down {
		d.ensureRepairScheduled(simTicks)
		return
	}
	if d.pending > 0 {
		d.tryStartDowntime(simTicks)
	}
}

func (d *DowntimeEntity) ensureFailureScheduled(simTicks int64) {
	if !d.failureTargetValid {
		return
	}
	if d.failureBase == nil {
		if !d.failureHandle.IsScheduled() {
			delay := d.nextFailureTick - simTicks
			if delay < 0 {
				delay = 0
			}
			d.model.Events.ScheduleTicks(delay, PriorityDefault, true,
				FuncTarget(d.Name()+".failure", func(p *Process) { d.processFailure(p.Now()) }),
				&d.failureHandle)
		}
		return
	}
	// Working-time mode: reschedule from the accumulated working time each
	// time this check runs. While the watched entity is not working the
	// timer stays frozen with no event pending.
	d.model.Events.KillEvent(&d.failureHandle)
	if !d.failureBase.IsWorking() {
		return
	}
	remaining := d.failureWorkTarget - d.failureBase.WorkingTicks(simTicks)
	if remaining < 0 {
		remaining = 0
	}
	d.model.Events.ScheduleTicks(remaining, PriorityDefault, true,
		FuncTarget(d.Name()+".failure", func(p *Process) { d.processFailure(p.Now()) }),
		&d.failureHandle)
}

func (d *DowntimeEntity) ensureRepairScheduled(simTicks int64) {
	if !d.repairTargetValid {
		return
	}
	if d.repairBase == nil {
		if !d.repairHandle.IsScheduled() {
			delay := d.nextRepairTick - simTicks
			if delay < 0 {
				delay = 0
			}
			d.model.Events.ScheduleTicks(delay, PriorityDefault, true,
				FuncTarget(d.Name()+".repair", func(p *Process) { d.processRepair(p.Now()) }),
				&d.repairHandle)
		}
		return
	}
	d.model.Events.KillEvent(&d.repairHandle)
	if !d.repairBase.IsWorking() {
		return
	}
	remaining := d.repairWorkTarget - d.repairBase.WorkingTicks(simTicks)
	if remaining < 0 {
		remaining = 0
	}
	d.model.Events.ScheduleTicks(remaining, PriorityDefault, true,
		FuncTarget(d.Name()+".repair", func(p *Process) { d.processRepair(p.Now()) }),
		&d.repairHandle)
}

// processFailure fires when the failure interval elapses. The downtime
// becomes pending, the next interval is resampled, and users prepare
// according to severity.
func (d *DowntimeEntity) processFailure(simTicks int64) {
	d.pending++
	d.failureTargetValid = false
	logrus.Debugf("[tick %07d] %s: downtime due (pending=%d)", simTicks, d.Name(), d.pending)
	d.sampleNextFailure(simTicks)
	for _, u := range d.users {
		u.PrepareForDowntime(simTicks, d)
	}
	d.CheckProcessNetwork(simTicks)
}

// tryStartDowntime polls every registered user; the downtime starts and all
// users are notified only when all of them are ready.
func (d *DowntimeEntity) tryStartDowntime(simTicks int64) {
	for _, u := range d.users {
		if !u.CanStartDowntime(d) {
			return
		}
	}
	d.down = true
	d.pending--
	d.downCount++
	d.downStart = simTicks
	durationTicks := SecondsToNearestTick(d.duration.Next(d.rng()))
	if d.repairBase != nil {
		d.repairWorkTarget = d.repairBase.WorkingTicks(simTicks) + durationTicks
	} else {
		d.nextRepairTick = simTicks + durationTicks
	}
	d.repairTargetValid = true
	d.SetPresentState(simTicks, stateDowntimeDown)
	logrus.Debugf("[tick %07d] %s: downtime started for %d ticks", simTicks, d.Name(), durationTicks)
	for _, u := range d.users {
		u.StartDowntime(simTicks, d)
	}
	d.ensureRepairScheduled(simTicks)
}

// processRepair fires when the repair completes.
func (d *DowntimeEntity) processRepair(simTicks int64) {
	d.down = false
	d.repairTargetValid = false
	d.totalDown += simTicks - d.downStart
	d.SetPresentState(simTicks, stateDowntimeInactive)
	logrus.Debugf("[tick %07d] %s: downtime complete", simTicks, d.Name())
	for _, u := range d.users {
		u.EndDowntime(simTicks, d)
	}
	d.CheckProcessNetwork(simTicks)
}

// TotalDownTicks returns the cumulative down time as of simTicks.
func (d *DowntimeEntity) TotalDownTicks(simTicks int64) int64 {
	total := d.totalDown
	if d.down {
		total += simTicks - d.downStart
	}
	return total
}

// Kill cancels all pending timers and detaches the entity.
func (d *DowntimeEntity) Kill() {
	d.model.Events.KillEvent(&d.failureHandle)
	d.model.Events.KillEvent(&d.repairHandle)
	d.BaseEntity.Kill()
}
