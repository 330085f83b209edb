// Package sim provides the core discrete-event simulation engine for
// procflow-sim, an industrial process-flow simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: Event, EventHandle and ProcessTarget, the unit of scheduled work
//   - event_manager.go: the virtual clock, the dispatch loop, and the
//     schedule/wait/kill/interrupt primitives
//   - process.go: the suspend/resume contract used by entity behavior code
//
// # Architecture
//
// The engine is logically single-threaded: only one process computes at any
// instant, even though many entities appear to run in parallel across virtual
// time. Processes are goroutines gated by the dispatcher through an unbuffered
// channel handshake, so between two suspension points no other process can
// observe a partially updated state. Simulation state therefore needs no
// locking.
//
// On top of the kernel sits the behavioral layer for process-flow entities:
//   - model.go: the simulation context (entity registry, RNG, lifecycle)
//   - state.go: present-state tracking with per-state tick accounting
//   - queue.go: ordered waiting lists with match-based selective removal
//   - service.go: the generic worker lifecycle (LinkedService)
//   - server.go, seize.go, gate.go: concrete service operators
//   - downtime.go: scheduled maintenance and breakdowns
//   - threshold.go: boolean gating with batched change notification
//
// Distribution sampling lives in the sim/dist sub-package; the engine consumes
// samplers as an opaque capability.
package sim
