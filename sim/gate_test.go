package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

func TestGate_HoldsEntitiesWhileClosed(t *testing.T) {
	m := NewModel(1)
	q := NewQueue(m, "gateQ")
	gate := NewEntityGate(m, "gate", q)
	th := NewThreshold(m, "valve", false)
	gate.AddImmediateThreshold(th)
	sink := NewEntitySink(m, "sink")
	gate.SetNext(sink)

	m.Events.ScheduleTicks(0, PriorityDefault, true, FuncTarget("feed", func(p *Process) {
		for i := 0; i < 3; i++ {
			gate.ReceiveEntity(p.Now(), NewSimEntity(m, fmt.Sprintf("part-%d", i), p.Now()))
		}
	}), nil)
	m.Events.ScheduleSeconds(10, PriorityDefault, true, FuncTarget("probe", func(_ *Process) {
		assert.Equal(t, 3, q.Len())
		assert.Equal(t, int64(0), sink.Received())
	}), nil)
	m.Events.ScheduleSeconds(20, PriorityDefault, true, FuncTarget("open", func(p *Process) {
		th.SetOpen(p.Now(), true)
	}), nil)

	require.NoError(t, m.InitRun())
	m.RunSeconds(30)

	// With no passage delay all three drain at the opening instant.
	assert.Equal(t, int64(3), sink.Received())
	assert.Equal(t, 0, q.Len())
}

func TestGate_PassDelaySpacesEntities(t *testing.T) {
	m := NewModel(1)
	q := NewQueue(m, "gateQ")
	gate := NewEntityGate(m, "gate", q)
	gate.SetPassDelay(dist.NewConstant(2))
	var passed []int64
	gate.SetNext(receiverFunc(func(simTicks int64, e Entity) {
		passed = append(passed, simTicks)
		e.Kill()
	}))

	m.Events.ScheduleTicks(0, PriorityDefault, true, FuncTarget("feed", func(p *Process) {
		for i := 0; i < 3; i++ {
			gate.ReceiveEntity(p.Now(), NewSimEntity(m, fmt.Sprintf("part-%d", i), p.Now()))
		}
	}), nil)

	require.NoError(t, m.InitRun())
	m.RunSeconds(30)

	assert.Equal(t, []int64{secs(2), secs(4), secs(6)}, passed)
}
