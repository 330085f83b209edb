package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// seqSampler returns a fixed sequence of values, sticking at the last one.
// Tests use it to place a single failure inside the horizon.
type seqSampler struct {
	vals []float64
	i    int
}

func (s *seqSampler) Next(_ *rand.Rand) float64 {
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

func TestDowntime_ImmediateBreakdownResumesWithRemainingDuration(t *testing.T) {
	l := newServiceLine(t, 12)
	d := NewDowntimeEntity(l.m, "crash", SeverityImmediate, KindBreakdown,
		dist.NewConstant(10), dist.NewConstant(5))
	d.AddUser(&l.server.LinkedService)
	l.feedAt(0, 1)
	l.run(t, 18)

	// The failure fires at exactly 10s regardless of the unit in flight. The
	// unit had 2s left, so it completes at 17s after the 5s repair.
	assert.Equal(t, []string{
		"Idle>Working@0",
		"Working>Idle@10000000",
		"Idle>Breakdown@10000000",
		"Breakdown>Working@15000000",
		"Working>Idle@17000000",
	}, l.rec.transitions)
	assert.Equal(t, int64(1), l.sink.Received())
	assert.Equal(t, int64(1), d.DownCount())
	assert.Equal(t, secs(5), d.TotalDownTicks(l.m.Now()))
	assert.Equal(t, secs(5), l.server.TimeInState(l.m.Now(), StateBreakdown))
}

func TestDowntime_ForcedWaitsForUnitCompletion(t *testing.T) {
	l := newServiceLine(t, 30)
	d := NewDowntimeEntity(l.m, "pm", SeverityForced, KindMaintenance,
		&seqSampler{vals: []float64{10, 1e6}}, dist.NewConstant(5))
	d.AddUser(&l.server.LinkedService)
	l.feedAt(0, 2)
	l.run(t, 70)

	// Due at 10s but the unit in flight runs to completion; the downtime then
	// blocks the second unit until the repair at 35s.
	assert.Equal(t, []string{
		"Idle>Working@0",
		"Working>Idle@30000000",
		"Idle>Maintenance@30000000",
		"Maintenance>Working@35000000",
		"Working>Idle@65000000",
	}, l.rec.transitions)
	assert.Equal(t, int64(2), l.sink.Received())
	assert.Equal(t, int64(1), d.DownCount())
}

func TestDowntime_OpportunisticWaitsForNaturalIdle(t *testing.T) {
	l := newServiceLine(t, 30)
	d := NewDowntimeEntity(l.m, "pm", SeverityOpportunistic, KindMaintenance,
		&seqSampler{vals: []float64{10, 1e6}}, dist.NewConstant(5))
	d.AddUser(&l.server.LinkedService)
	l.feedAt(0, 2)
	l.run(t, 70)

	// Unlike forced severity, an opportunistic downtime does not block the
	// next unit: both run back to back and the downtime starts at 60s.
	assert.Equal(t, []string{
		"Idle>Working@0",
		"Working>Idle@60000000",
		"Idle>Maintenance@60000000",
		"Maintenance>Idle@65000000",
	}, l.rec.transitions)
	assert.Equal(t, int64(2), l.sink.Received())
	assert.Equal(t, int64(1), d.DownCount())
}

func TestDowntime_AllUsersMustBeReady(t *testing.T) {
	m := NewModel(1)
	q1 := NewQueue(m, "q1")
	sv1 := NewServer(m, "sv1", q1, dist.NewConstant(30))
	q2 := NewQueue(m, "q2")
	sv2 := NewServer(m, "sv2", q2, dist.NewConstant(30))
	sink := NewEntitySink(m, "sink")
	sv1.SetNext(sink)
	sv2.SetNext(sink)

	rec2 := &transitionRecorder{}
	sv2.AddStateListener(rec2)

	d := NewDowntimeEntity(m, "pm", SeverityForced, KindMaintenance,
		&seqSampler{vals: []float64{10, 1e6}}, dist.NewConstant(5))
	d.AddUser(&sv1.LinkedService)
	d.AddUser(&sv2.LinkedService)

	m.Events.ScheduleTicks(0, PriorityDefault, true, FuncTarget("feed", func(p *Process) {
		sv1.ReceiveEntity(p.Now(), NewSimEntity(m, "part", p.Now()))
	}), nil)

	assert.NoError(t, m.InitRun())
	m.RunSeconds(40)

	// sv2 is idle from the start but the downtime is due at 10s and cannot
	// begin until sv1 finishes at 30s: partial readiness never starts it.
	assert.Equal(t, []string{
		"Idle>Maintenance@30000000",
		"Maintenance>Idle@35000000",
	}, rec2.transitions)
	assert.Equal(t, int64(1), d.DownCount())
	assert.Equal(t, secs(5), sv1.TimeInState(m.Now(), StateMaintenance))
	assert.Equal(t, secs(5), sv2.TimeInState(m.Now(), StateMaintenance))
}

func TestDowntime_WorkingTimeBaseFreezesWhileIdle(t *testing.T) {
	l := newServiceLine(t, 30)
	d := NewDowntimeEntity(l.m, "wear", SeverityImmediate, KindBreakdown,
		dist.NewConstant(10), dist.NewConstant(5))
	d.AddUser(&l.server.LinkedService)
	d.SetFailureBase(&l.server.StateEntity)
	l.feedAt(5, 1)
	l.run(t, 25)

	// The failure timer counts working time only: the server idles until 5s,
	// so 10 working seconds elapse at 15s, not at 10s.
	assert.Equal(t, []string{
		"Idle>Working@5000000",
		"Working>Idle@15000000",
		"Idle>Breakdown@15000000",
		"Breakdown>Working@20000000",
	}, l.rec.transitions)
	assert.Equal(t, int64(1), d.DownCount())
}
