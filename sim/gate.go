package sim

import (
	"fmt"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// EntityGate passes entities through while its thresholds are open and holds
// them in its wait queue otherwise. An optional passage delay models the time
// to move one entity through the gate; left unset, passage is instantaneous.
type EntityGate struct {
	LinkedService

	waitQueue *Queue
	passDelay dist.Sampler
	next      Receiver

	current Entity
}

// NewEntityGate creates and registers a gate fed by q. Attach the controlling
// threshold with AddImmediateThreshold or AddOperatingThreshold.
func NewEntityGate(m *Model, name string, q *Queue) *EntityGate {
	g := &EntityGate{waitQueue: q}
	g.initService(m, name, g)
	m.register(g, name)
	q.SetUser(g)
	return g
}

// SetNext wires the downstream receiver.
func (g *EntityGate) SetNext(next Receiver) { g.next = next }

// SetPassDelay sets the per-entity passage time distribution.
func (g *EntityGate) SetPassDelay(s dist.Sampler) { g.passDelay = s }

func (g *EntityGate) Validate() error {
	if g.waitQueue == nil {
		return fmt.Errorf("gate requires a wait queue")
	}
	return nil
}

// ReceiveEntity queues an arriving entity; the gate releases it as soon as
// its thresholds allow.
func (g *EntityGate) ReceiveEntity(simTicks int64, e Entity) {
	g.waitQueue.AddEntity(simTicks, e, nil)
}

// StartProcessing takes the next waiting entity. The service lifecycle has
// already verified the thresholds are open.
func (g *EntityGate) StartProcessing(_ int64) bool {
	ent := g.waitQueue.RemoveFirst()
	if ent == nil {
		return false
	}
	g.current = ent
	return true
}

// ProcessingTicks samples the passage delay, zero when unset.
func (g *EntityGate) ProcessingTicks(_ int64) int64 {
	if g.passDelay == nil {
		return 0
	}
	rng := g.model.RNG().ForSubsystem(SubsystemService + "/" + g.Name())
	return SecondsToNearestTick(g.passDelay.Next(rng))
}

// EndProcessing forwards the entity downstream.
func (g *EntityGate) EndProcessing(simTicks int64) {
	ent := g.current
	g.current = nil
	if g.next != nil {
		g.next.ReceiveEntity(simTicks, ent)
	}
}

// UpdateForStoppage resumes an interrupted passage.
func (g *EntityGate) UpdateForStoppage(_, _, _ int64) bool { return true }
