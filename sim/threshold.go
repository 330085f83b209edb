package sim

// ThresholdUser reacts to threshold state changes. Notification is batched:
// when one or more thresholds flip within the same instant, each registered
// user is called exactly once, at the same tick, at PriorityNotify.
type ThresholdUser interface {
	ThresholdChanged(simTicks int64)
}

// Threshold is a boolean gate controlling whether downstream processing may
// proceed. Closing or opening it broadcasts a change notification to every
// registered user through the model's per-tick batch.
type Threshold struct {
	BaseEntity

	open  bool
	users []ThresholdUser

	// statistics
	lastChange     int64
	openTicksTotal int64
}

// NewThreshold creates and registers a threshold, initially open or closed.
func NewThreshold(m *Model, name string, open bool) *Threshold {
	th := &Threshold{open: open}
	th.initBase(m, name)
	m.register(th, name)
	return th
}

// IsOpen reports the gate state.
func (th *Threshold) IsOpen() bool { return th.open }

// AddUser registers u for batched change notification.
func (th *Threshold) AddUser(u ThresholdUser) {
	th.users = append(th.users, u)
}

// SetOpen transitions the gate. On an actual change every registered user is
// queued once, deduplicated, for a single batched notification delivered at
// the same tick with non-work priority; several thresholds flipping in one
// instant still notify each user only once.
func (th *Threshold) SetOpen(simTicks int64, open bool) {
	if th.open == open {
		return
	}
	if th.open {
		th.openTicksTotal += simTicks - th.lastChange
	}
	th.open = open
	th.lastChange = simTicks
	for _, u := range th.users {
		th.model.queueThresholdNotification(u)
	}
}

// OpenTicks returns the cumulative open time as of simTicks.
func (th *Threshold) OpenTicks(simTicks int64) int64 {
	total := th.openTicksTotal
	if th.open {
		total += simTicks - th.lastChange
	}
	return total
}
