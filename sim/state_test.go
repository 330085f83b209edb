package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStateEntity(t *testing.T) (*Model, *StateEntity) {
	t.Helper()
	m := NewModel(1)
	e := &StateEntity{}
	e.initState(m, "widget", "Idle")
	e.addState("Working", true)
	e.addState("Stopped", false)
	m.register(e, "widget")
	return m, e
}

func TestStateEntity_SingleActiveState(t *testing.T) {
	_, e := newTestStateEntity(t)
	require.Equal(t, "Idle", e.PresentState())
	e.SetPresentState(100, "Working")
	require.Equal(t, "Working", e.PresentState())
	// re-setting the same state is a no-op
	e.SetPresentState(150, "Working")
	require.Equal(t, "Working", e.PresentState())
}

func TestStateEntity_TimeInStateAccounting(t *testing.T) {
	_, e := newTestStateEntity(t)
	e.SetPresentState(100, "Working")
	e.SetPresentState(250, "Stopped")
	e.SetPresentState(400, "Working")

	assert.Equal(t, int64(100), e.TimeInState(500, "Idle"))
	assert.Equal(t, int64(250), e.TimeInState(500, "Working")) // 150 closed + 100 open
	assert.Equal(t, int64(150), e.TimeInState(500, "Stopped"))
	assert.Equal(t, int64(0), e.TimeInState(500, "NoSuchState"))
}

// The sum of time in all valid states equals elapsed time since the end of
// initialization.
func TestStateEntity_StateTimesSumToElapsed(t *testing.T) {
	_, e := newTestStateEntity(t)
	transitions := []struct {
		tick int64
		name string
	}{
		{10, "Working"}, {25, "Stopped"}, {60, "Idle"}, {90, "Working"}, {130, "Idle"},
	}
	for _, tr := range transitions {
		e.SetPresentState(tr.tick, tr.name)
	}
	const now = int64(200)
	var sum int64
	for _, name := range e.States() {
		sum += e.TimeInState(now, name)
	}
	require.Equal(t, now-e.StatsStart(), sum)
}

func TestStateEntity_WorkingTicks(t *testing.T) {
	_, e := newTestStateEntity(t)
	e.SetPresentState(100, "Working")
	e.SetPresentState(300, "Idle")
	assert.Equal(t, int64(200), e.WorkingTicks(1000))
	assert.False(t, e.IsWorking())
	e.SetPresentState(1000, "Working")
	assert.True(t, e.IsWorking())
	assert.Equal(t, int64(300), e.WorkingTicks(1100))
}

func TestStateEntity_UnknownStatePanicsWithNameAndTick(t *testing.T) {
	_, e := newTestStateEntity(t)
	require.PanicsWithValue(t, `widget: unknown state "Bogus" at tick 42`, func() {
		e.SetPresentState(42, "Bogus")
	})
}

type recordingListener struct {
	changes []string
}

func (l *recordingListener) StateChanged(e *StateEntity, _ int64, prev, next string) {
	l.changes = append(l.changes, prev+">"+next)
}

func TestStateEntity_ListenersNotifiedSynchronously(t *testing.T) {
	_, e := newTestStateEntity(t)
	l := &recordingListener{}
	e.AddStateListener(l)
	e.SetPresentState(10, "Working")
	e.SetPresentState(20, "Idle")
	// same-state set does not notify
	e.SetPresentState(30, "Idle")
	require.Equal(t, []string{"Idle>Working", "Working>Idle"}, l.changes)
}

func TestStateEntity_ClearStatistics(t *testing.T) {
	_, e := newTestStateEntity(t)
	e.SetPresentState(100, "Working")
	e.ClearStatistics(500)
	assert.Equal(t, int64(0), e.TimeInState(500, "Idle"))
	assert.Equal(t, int64(0), e.TimeInState(500, "Working"))
	assert.Equal(t, int64(300), e.TimeInState(800, "Working"))
	assert.Equal(t, int64(500), e.StatsStart())
}
