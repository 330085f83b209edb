package sim

import (
	"fmt"
	"math/rand"

	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// Server is the canonical LinkedService: it pulls the next entity from its
// wait queue, occupies it for a sampled service time, and releases it
// downstream. A stopped unit resumes with its remaining duration.
type Server struct {
	LinkedService

	waitQueue   *Queue
	serviceTime dist.Sampler
	next        Receiver

	// match restricts dequeue to entities carrying this tag; nil serves any.
	match *int64

	current Entity
}

// NewServer creates and registers a server fed by q.
func NewServer(m *Model, name string, q *Queue, serviceTime dist.Sampler) *Server {
	s := &Server{waitQueue: q, serviceTime: serviceTime}
	s.initService(m, name, s)
	m.register(s, name)
	q.SetUser(s)
	return s
}

// SetNext wires the downstream receiver.
func (s *Server) SetNext(next Receiver) { s.next = next }

// SetMatch restricts the server to entities with the given match tag.
func (s *Server) SetMatch(v *int64) { s.match = v }

func (s *Server) Validate() error {
	if s.waitQueue == nil {
		return fmt.Errorf("server requires a wait queue")
	}
	if s.serviceTime == nil {
		return fmt.Errorf("server requires a service time distribution")
	}
	return nil
}

// ReceiveEntity queues an arriving entity with its own match tag; the queue
// notification starts the server if it is idle.
func (s *Server) ReceiveEntity(simTicks int64, e Entity) {
	var match *int64
	if m, ok := e.(Matcher); ok {
		match = m.MatchValue()
	}
	s.waitQueue.AddEntity(simTicks, e, match)
}

func (s *Server) rng() *rand.Rand {
	return s.model.RNG().ForSubsystem(SubsystemService + "/" + s.Name())
}

// StartProcessing takes the next entity from the queue, honoring the match
// tag. An empty queue means nothing to do.
func (s *Server) StartProcessing(_ int64) bool {
	ent := s.waitQueue.RemoveFirstForMatch(s.match)
	if ent == nil {
		return false
	}
	s.current = ent
	return true
}

// ProcessingTicks samples the service time for the unit in progress.
func (s *Server) ProcessingTicks(_ int64) int64 {
	return SecondsToNearestTick(s.serviceTime.Next(s.rng()))
}

// EndProcessing releases the finished entity downstream.
func (s *Server) EndProcessing(simTicks int64) {
	ent := s.current
	s.current = nil
	if s.next != nil {
		s.next.ReceiveEntity(simTicks, ent)
	}
}

// UpdateForStoppage resumes the interrupted unit; the service duration was
// already reduced by the elapsed outage.
func (s *Server) UpdateForStoppage(_, _, _ int64) bool { return true }
