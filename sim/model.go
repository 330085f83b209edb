package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Model is the explicit simulation context: the entity registry, the event
// manager, and the partitioned RNG for one run. Multiple independent models
// may exist in one process; nothing in the engine is a package-level
// singleton.
type Model struct {
	// RunID identifies this run in reports and logs.
	RunID string

	Events *EventManager

	rng      *PartitionedRNG
	entities []Entity
	byName   map[string]Entity

	// Batched threshold notification, deduplicated per tick. SetOpen on any
	// threshold queues its users here; one event at PriorityNotify delivers
	// the whole batch at the same tick.
	notifyList   []ThresholdUser
	notifySet    map[ThresholdUser]struct{}
	notifyHandle EventHandle

	initialized bool
}

// NewModel creates an empty model with a deterministic RNG derived from seed.
func NewModel(seed int64) *Model {
	return &Model{
		RunID:     uuid.NewString(),
		Events:    NewEventManager("evt"),
		rng:       NewPartitionedRNG(seed),
		byName:    make(map[string]Entity),
		notifySet: make(map[ThresholdUser]struct{}),
	}
}

// RNG returns the model's partitioned random source.
func (m *Model) RNG() *PartitionedRNG { return m.rng }

// Now returns the current simulation time in ticks.
func (m *Model) Now() int64 { return m.Events.Now() }

// register adds a named entity. Duplicate names are a configuration error
// and abort model construction.
func (m *Model) register(e Entity, name string) {
	if _, ok := m.byName[name]; ok {
		panicf("model: duplicate entity name %q", name)
	}
	m.byName[name] = e
	m.entities = append(m.entities, e)
}

func (m *Model) deregister(name string) {
	e, ok := m.byName[name]
	if !ok {
		return
	}
	delete(m.byName, name)
	for i, ent := range m.entities {
		if ent == e {
			m.entities = append(m.entities[:i], m.entities[i+1:]...)
			break
		}
	}
}

// Entity looks up a registered entity by name, or nil.
func (m *Model) Entity(name string) Entity { return m.byName[name] }

// Entities returns all registered entities in registration order.
func (m *Model) Entities() []Entity { return m.entities }

// Validate checks every entity's configuration. The first failure aborts
// model load, naming the offending entity; configuration errors are fatal and
// never retried.
func (m *Model) Validate() error {
	for _, e := range m.entities {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entity %s: %w", e.Name(), err)
		}
	}
	return nil
}

// InitRun validates the model, then runs EarlyInit for every entity, then
// LateInit for every entity, and schedules each entity's StartUp before tick
// zero in registration order. Configuration must be fully resolved before
// EarlyInit runs.
func (m *Model) InitRun() error {
	if m.initialized {
		return fmt.Errorf("model: already initialized")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	for _, e := range m.entities {
		if err := e.EarlyInit(); err != nil {
			return fmt.Errorf("entity %s: earlyInit: %w", e.Name(), err)
		}
	}
	for _, e := range m.entities {
		if err := e.LateInit(); err != nil {
			return fmt.Errorf("entity %s: lateInit: %w", e.Name(), err)
		}
	}
	for _, e := range m.entities {
		ent := e
		m.Events.ScheduleTicks(0, PriorityHigh, true,
			FuncTarget(ent.Name()+".startUp", ent.StartUp), nil)
	}
	m.initialized = true
	logrus.Infof("model %s: initialized %d entities", m.RunID, len(m.entities))
	return nil
}

// RunSeconds drives the event loop until the given horizon in seconds.
func (m *Model) RunSeconds(horizon float64) {
	m.Events.Run(SecondsToNearestTick(horizon))
}

// UpdateGraphics lets a renderer read display state for every entity. It
// never mutates simulation state and does not depend on real-time ordering.
func (m *Model) UpdateGraphics() {
	now := m.Now()
	for _, e := range m.entities {
		e.UpdateGraphics(now)
	}
}

// queueThresholdNotification enqueues u for the batched threshold change
// notification at the current tick, once per tick no matter how many
// thresholds changed.
func (m *Model) queueThresholdNotification(u ThresholdUser) {
	if _, ok := m.notifySet[u]; ok {
		return
	}
	m.notifySet[u] = struct{}{}
	m.notifyList = append(m.notifyList, u)
	if !m.notifyHandle.IsScheduled() {
		m.Events.ScheduleTicks(0, PriorityNotify, true,
			FuncTarget("threshold-notify", m.deliverThresholdNotifications), &m.notifyHandle)
	}
}

func (m *Model) deliverThresholdNotifications(p *Process) {
	users := m.notifyList
	m.notifyList = nil
	m.notifySet = make(map[ThresholdUser]struct{})
	now := p.Now()
	for _, u := range users {
		u.ThresholdChanged(now)
	}
}
