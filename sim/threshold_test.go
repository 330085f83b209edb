package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingThresholdUser struct {
	calls []int64
}

func (u *countingThresholdUser) ThresholdChanged(simTicks int64) {
	u.calls = append(u.calls, simTicks)
}

func TestThreshold_BatchedNotificationDeduplicates(t *testing.T) {
	m := NewModel(1)
	a := NewThreshold(m, "a", true)
	b := NewThreshold(m, "b", true)
	u := &countingThresholdUser{}
	a.AddUser(u)
	b.AddUser(u)

	m.Events.ScheduleSeconds(10, PriorityDefault, true, FuncTarget("flip", func(p *Process) {
		a.SetOpen(p.Now(), false)
		b.SetOpen(p.Now(), false)
	}), nil)
	require.NoError(t, m.InitRun())
	m.RunSeconds(20)

	// Both thresholds flipped in the same instant; the user hears about it
	// exactly once, at that tick.
	assert.Equal(t, []int64{secs(10)}, u.calls)
}

func TestThreshold_SeparateInstantsNotifySeparately(t *testing.T) {
	m := NewModel(1)
	a := NewThreshold(m, "a", true)
	u := &countingThresholdUser{}
	a.AddUser(u)

	m.Events.ScheduleSeconds(10, PriorityDefault, true, FuncTarget("close", func(p *Process) {
		a.SetOpen(p.Now(), false)
	}), nil)
	m.Events.ScheduleSeconds(25, PriorityDefault, true, FuncTarget("open", func(p *Process) {
		a.SetOpen(p.Now(), true)
	}), nil)
	require.NoError(t, m.InitRun())
	m.RunSeconds(40)

	assert.Equal(t, []int64{secs(10), secs(25)}, u.calls)
}

func TestThreshold_NoChangeNoNotification(t *testing.T) {
	m := NewModel(1)
	a := NewThreshold(m, "a", true)
	u := &countingThresholdUser{}
	a.AddUser(u)

	m.Events.ScheduleSeconds(5, PriorityDefault, true, FuncTarget("noop", func(p *Process) {
		a.SetOpen(p.Now(), true) // already open
	}), nil)
	require.NoError(t, m.InitRun())
	m.RunSeconds(10)

	assert.Empty(t, u.calls)
}

func TestThreshold_OpenTicksAccounting(t *testing.T) {
	m := NewModel(1)
	a := NewThreshold(m, "a", true)

	m.Events.ScheduleSeconds(10, PriorityDefault, true, FuncTarget("close", func(p *Process) {
		a.SetOpen(p.Now(), false)
	}), nil)
	m.Events.ScheduleSeconds(30, PriorityDefault, true, FuncTarget("open", func(p *Process) {
		a.SetOpen(p.Now(), true)
	}), nil)
	require.NoError(t, m.InitRun())
	m.RunSeconds(50)

	// Open 0-10s and 30-50s, where the second interval is still open.
	assert.Equal(t, secs(30), a.OpenTicks(m.Now()))
	assert.True(t, a.IsOpen())
}
