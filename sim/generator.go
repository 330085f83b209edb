package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// Receiver accepts a flow entity handed over by an upstream component.
type Receiver interface {
	ReceiveEntity(simTicks int64, e Entity)
}

// SimEntity is the generic flow entity moving through queues and services.
type SimEntity struct {
	BaseEntity

	created int64
	match   *int64
}

// NewSimEntity creates and registers a flow entity.
func NewSimEntity(m *Model, name string, created int64) *SimEntity {
	e := &SimEntity{created: created}
	e.initBase(m, name)
	m.register(e, name)
	return e
}

// Created returns the tick at which the entity entered the model.
func (e *SimEntity) Created() int64 { return e.created }

// MatchValue returns the entity's match tag for selective dequeue, or nil.
func (e *SimEntity) MatchValue() *int64 { return e.match }

// SetMatchValue assigns the match tag.
func (e *SimEntity) SetMatchValue(v *int64) { e.match = v }

// EntityGenerator creates flow entities at sampled inter-arrival times and
// passes them downstream. Its behavior runs as a single process that loops
// wait-create-send until the creation cap is reached.
type EntityGenerator struct {
	BaseEntity

	iat        dist.Sampler
	next       Receiver
	prefix     string
	maxCreated int64 // 0 = unlimited
	firstDelay dist.Sampler

	generated  int64
	waitHandle EventHandle
}

// NewEntityGenerator creates and registers a generator. prefix names the
// generated entities: prefix-1, prefix-2, ...
func NewEntityGenerator(m *Model, name, prefix string, iat dist.Sampler, maxCreated int64) *EntityGenerator {
	g := &EntityGenerator{iat: iat, prefix: prefix, maxCreated: maxCreated}
	g.initBase(m, name)
	m.register(g, name)
	return g
}

// SetNext wires the downstream receiver.
func (g *EntityGenerator) SetNext(next Receiver) { g.next = next }

// SetFirstArrival overrides the delay before the first entity; the IAT
// distribution applies afterwards.
func (g *EntityGenerator) SetFirstArrival(s dist.Sampler) { g.firstDelay = s }

// Generated returns the number of entities created so far.
func (g *EntityGenerator) Generated() int64 { return g.generated }

func (g *EntityGenerator) Validate() error {
	if g.iat == nil {
		return fmt.Errorf("generator requires an inter-arrival distribution")
	}
	if g.next == nil {
		return fmt.Errorf("generator has no downstream component")
	}
	return nil
}

// StartUp runs the generation loop as a suspendable process.
func (g *EntityGenerator) StartUp(p *Process) {
	rng := g.model.RNG().ForSubsystem(SubsystemArrivals + "/" + g.Name())
	for g.maxCreated == 0 || g.generated < g.maxCreated {
		sampler := g.iat
		if g.generated == 0 && g.firstDelay != nil {
			sampler = g.firstDelay
		}
		p.WaitSeconds(sampler.Next(rng), PriorityDefault, true, &g.waitHandle)
		if g.Dead() {
			return
		}
		g.generated++
		ent := NewSimEntity(g.model, fmt.Sprintf("%s-%d", g.prefix, g.generated), p.Now())
		logrus.Debugf("[tick %07d] %s: created %s", p.Now(), g.Name(), ent.Name())
		g.next.ReceiveEntity(p.Now(), ent)
	}
}

// Kill cancels the pending arrival and detaches the generator; the generation
// process is abandoned at its current suspension point.
func (g *EntityGenerator) Kill() {
	g.model.Events.KillEvent(&g.waitHandle)
	g.BaseEntity.Kill()
}

// EntitySink destroys received entities and counts throughput.
type EntitySink struct {
	BaseEntity

	received int64
}

// NewEntitySink creates and registers a sink.
func NewEntitySink(m *Model, name string) *EntitySink {
	s := &EntitySink{}
	s.initBase(m, name)
	m.register(s, name)
	return s
}

// Received returns the number of entities destroyed.
func (s *EntitySink) Received() int64 { return s.received }

// ReceiveEntity destroys e and counts it.
func (s *EntitySink) ReceiveEntity(simTicks int64, e Entity) {
	s.received++
	logrus.Debugf("[tick %07d] %s: destroyed %s", simTicks, s.Name(), e.Name())
	e.Kill()
}
