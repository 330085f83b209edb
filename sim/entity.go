package sim

// Entity is the lifecycle contract shared by everything registered in a
// Model. For every entity the model runs Validate, then EarlyInit for all
// entities, then LateInit for all, then schedules StartUp before tick zero,
// in that global order. UpdateGraphics may be called at arbitrary real-time
// cadence by a display collaborator and must never mutate simulation state.
type Entity interface {
	Name() string
	Validate() error
	EarlyInit() error
	LateInit() error
	StartUp(p *Process)
	UpdateGraphics(simTicks int64)
	// Kill detaches the entity from all collections and cancels any event or
	// handle it owns.
	Kill()
}

// BaseEntity supplies no-op lifecycle defaults and the back-reference to the
// owning model. Concrete entities embed it.
type BaseEntity struct {
	name  string
	model *Model
	dead  bool
}

func (e *BaseEntity) initBase(m *Model, name string) {
	e.name = name
	e.model = m
}

func (e *BaseEntity) Name() string { return e.name }

// Model returns the simulation context the entity belongs to.
func (e *BaseEntity) Model() *Model { return e.model }

// Dead reports whether Kill has run.
func (e *BaseEntity) Dead() bool { return e.dead }

func (e *BaseEntity) Validate() error        { return nil }
func (e *BaseEntity) EarlyInit() error       { return nil }
func (e *BaseEntity) LateInit() error        { return nil }
func (e *BaseEntity) StartUp(_ *Process)     {}
func (e *BaseEntity) UpdateGraphics(_ int64) {}

func (e *BaseEntity) Kill() {
	if e.dead {
		return
	}
	e.dead = true
	e.model.deregister(e.name)
}
