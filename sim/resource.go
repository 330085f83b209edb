package sim

import "fmt"

// Resource is a finite-capacity shared asset seized and released by entities.
// Invariant: 0 <= seized <= capacity, enforced at seize time; check-then-seize
// is race-free because only one process executes between dispatch points.
type Resource struct {
	BaseEntity

	capacity int
	seized   int

	// users are poked when units return so a blocked Seize can retry.
	users []*Seize

	timesSeized int64
}

// NewResource creates and registers a resource with the given capacity.
func NewResource(m *Model, name string, capacity int) *Resource {
	r := &Resource{capacity: capacity}
	r.initBase(m, name)
	m.register(r, name)
	return r
}

func (r *Resource) Validate() error {
	if r.capacity < 0 {
		return fmt.Errorf("resource capacity %d is negative", r.capacity)
	}
	return nil
}

// Capacity returns the total number of units.
func (r *Resource) Capacity() int { return r.capacity }

// Seized returns the number of units currently held.
func (r *Resource) Seized() int { return r.seized }

// Available returns capacity minus seized.
func (r *Resource) Available() int { return r.capacity - r.seized }

// TimesSeized returns the cumulative number of seize operations.
func (r *Resource) TimesSeized() int64 { return r.timesSeized }

func (r *Resource) addUser(s *Seize) { r.users = append(r.users, s) }

// seize takes n units. Callers must have verified availability; overdrawing
// is a consistency failure and panics with the entity name and tick.
func (r *Resource) seize(simTicks int64, n int) {
	if n > r.Available() {
		panicf("%s: seize of %d units exceeds %d available at tick %d",
			r.Name(), n, r.Available(), simTicks)
	}
	r.seized += n
	r.timesSeized++
}

// Release returns n units and pokes every registered Seize so that waiting
// entities can retry. Releasing more than is held is a consistency failure.
func (r *Resource) Release(simTicks int64, n int) {
	if n > r.seized {
		panicf("%s: release of %d units exceeds %d seized at tick %d",
			r.Name(), n, r.seized, simTicks)
	}
	r.seized -= n
	for _, u := range r.users {
		u.QueueChanged(simTicks)
	}
}
