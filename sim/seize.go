package sim

import "fmt"

// ResourceDemand is one line of a seize or release request.
type ResourceDemand struct {
	Resource *Resource
	Amount   int
}

// Seize holds entities in its wait queue until every required resource can
// supply the requested amount, then seizes all of them atomically and passes
// the entity downstream. There is no partial seize: any shortfall fails the
// whole check and the entity stays queued, indefinitely if need be, with no
// error raised.
type Seize struct {
	LinkedService

	waitQueue *Queue
	demands   []ResourceDemand
	next      Receiver

	current Entity
}

// NewSeize creates and registers a seize fed by q.
func NewSeize(m *Model, name string, q *Queue, demands []ResourceDemand) *Seize {
	s := &Seize{waitQueue: q, demands: demands}
	s.initService(m, name, s)
	m.register(s, name)
	q.SetUser(s)
	for _, dem := range demands {
		dem.Resource.addUser(s)
	}
	return s
}

// SetNext wires the downstream receiver.
func (s *Seize) SetNext(next Receiver) { s.next = next }

func (s *Seize) Validate() error {
	if s.waitQueue == nil {
		return fmt.Errorf("seize requires a wait queue")
	}
	if len(s.demands) == 0 {
		return fmt.Errorf("seize requires at least one resource demand")
	}
	for _, dem := range s.demands {
		if dem.Resource == nil {
			return fmt.Errorf("seize has a demand with no resource reference")
		}
		if dem.Amount < 1 {
			return fmt.Errorf("seize demand on %s requests %d units; at least 1 required",
				dem.Resource.Name(), dem.Amount)
		}
	}
	return nil
}

// ReceiveEntity queues an arriving entity.
func (s *Seize) ReceiveEntity(simTicks int64, e Entity) {
	s.waitQueue.AddEntity(simTicks, e, nil)
}

// CheckResources reports whether every required resource can supply its
// requested amount for the entity at the head of the wait queue.
func (s *Seize) CheckResources() bool {
	if s.waitQueue.Len() == 0 {
		return false
	}
	for _, dem := range s.demands {
		if dem.Resource.Available() < dem.Amount {
			return false
		}
	}
	return true
}

// SeizeResources decrements each resource in list order. Only called after a
// successful CheckResources within the same dispatch turn, so no interleaved
// process can invalidate the check.
func (s *Seize) SeizeResources(simTicks int64) {
	for _, dem := range s.demands {
		dem.Resource.seize(simTicks, dem.Amount)
	}
}

// StartProcessing seizes all demanded resources for the queue head, or
// reports nothing to do on any shortfall.
func (s *Seize) StartProcessing(simTicks int64) bool {
	if !s.CheckResources() {
		return false
	}
	s.SeizeResources(simTicks)
	s.current = s.waitQueue.RemoveFirst()
	return true
}

// ProcessingTicks is zero: seizing is instantaneous.
func (s *Seize) ProcessingTicks(_ int64) int64 { return 0 }

// EndProcessing passes the entity, now holding its resources, downstream.
func (s *Seize) EndProcessing(simTicks int64) {
	ent := s.current
	s.current = nil
	if s.next != nil {
		s.next.ReceiveEntity(simTicks, ent)
	}
}

// UpdateForStoppage resumes the interrupted unit.
func (s *Seize) UpdateForStoppage(_, _, _ int64) bool { return true }

// Release returns previously seized units as entities flow through it and
// forwards them downstream. Releasing pokes every Seize registered on the
// resources so blocked entities retry at the same tick.
type Release struct {
	BaseEntity

	demands []ResourceDemand
	next    Receiver
}

// NewRelease creates and registers a release point.
func NewRelease(m *Model, name string, demands []ResourceDemand) *Release {
	r := &Release{demands: demands}
	r.initBase(m, name)
	m.register(r, name)
	return r
}

// SetNext wires the downstream receiver.
func (r *Release) SetNext(next Receiver) { r.next = next }

func (r *Release) Validate() error {
	if len(r.demands) == 0 {
		return fmt.Errorf("release requires at least one resource demand")
	}
	for _, dem := range r.demands {
		if dem.Resource == nil {
			return fmt.Errorf("release has a demand with no resource reference")
		}
	}
	return nil
}

// ReceiveEntity releases the configured units and forwards the entity.
func (r *Release) ReceiveEntity(simTicks int64, e Entity) {
	for _, dem := range r.demands {
		dem.Resource.Release(simTicks, dem.Amount)
	}
	if r.next != nil {
		r.next.ReceiveEntity(simTicks, e)
	}
}
