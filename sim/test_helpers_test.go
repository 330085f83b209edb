package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// secs converts seconds to ticks, for readable expectations.
func secs(s float64) int64 { return SecondsToNearestTick(s) }

// transitionRecorder captures state changes as "prev>next@tick" strings.
type transitionRecorder struct {
	transitions []string
}

func (r *transitionRecorder) StateChanged(_ *StateEntity, simTicks int64, prev, next string) {
	r.transitions = append(r.transitions, fmt.Sprintf("%s>%s@%d", prev, next, simTicks))
}

// serviceLine is a queue -> server -> sink pipeline used by the service and
// downtime tests.
type serviceLine struct {
	m      *Model
	queue  *Queue
	server *Server
	sink   *EntitySink
	rec    *transitionRecorder
}

func newServiceLine(t *testing.T, serviceSeconds float64) *serviceLine {
	t.Helper()
	m := NewModel(1)
	q := NewQueue(m, "q")
	srv := NewServer(m, "srv", q, dist.NewConstant(serviceSeconds))
	sink := NewEntitySink(m, "sink")
	srv.SetNext(sink)
	rec := &transitionRecorder{}
	srv.AddStateListener(rec)
	return &serviceLine{m: m, queue: q, server: srv, sink: sink, rec: rec}
}

// feedAt schedules n entities to arrive at the given time.
func (l *serviceLine) feedAt(seconds float64, n int) {
	l.m.Events.ScheduleSeconds(seconds, PriorityDefault, true,
		FuncTarget("feed", func(p *Process) {
			for i := 0; i < n; i++ {
				e := NewSimEntity(l.m, fmt.Sprintf("part-%d-%d", secs(seconds), i), p.Now())
				l.server.ReceiveEntity(p.Now(), e)
			}
		}), nil)
}

// at schedules fn inside the dispatch loop at the given time.
func (l *serviceLine) at(seconds float64, fn func(p *Process)) {
	l.m.Events.ScheduleSeconds(seconds, PriorityDefault, true, FuncTarget("probe", fn), nil)
}

func (l *serviceLine) run(t *testing.T, horizonSeconds float64) {
	t.Helper()
	require.NoError(t, l.m.InitRun())
	l.m.RunSeconds(horizonSeconds)
}

// requireExactlyOneOf asserts that IsIdle, IsBusy and IsUnableToWork are
// mutually exclusive and exhaustive.
func requireExactlyOneOf(t *testing.T, s *LinkedService) {
	t.Helper()
	n := 0
	for _, v := range []bool{s.IsIdle(), s.IsBusy(), s.IsUnableToWork()} {
		if v {
			n++
		}
	}
	require.Equal(t, 1, n,
		"idle=%v busy=%v unable=%v must be mutually exclusive and exhaustive",
		s.IsIdle(), s.IsBusy(), s.IsUnableToWork())
}
