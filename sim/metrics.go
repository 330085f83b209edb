package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Utilization returns the fraction of time a state entity spent working
// between the end of initialization and simTicks.
func Utilization(e *StateEntity, simTicks int64) float64 {
	elapsed := simTicks - e.StatsStart()
	if elapsed <= 0 {
		return 0
	}
	return float64(e.WorkingTicks(simTicks)) / float64(elapsed)
}

// Availability returns the fraction of time a service was not blocked by
// downtime.
func Availability(s *LinkedService, simTicks int64) float64 {
	elapsed := simTicks - s.StatsStart()
	if elapsed <= 0 {
		return 0
	}
	down := s.TimeInState(simTicks, StateMaintenance) + s.TimeInState(simTicks, StateBreakdown)
	return 1 - float64(down)/float64(elapsed)
}

// Report renders a text summary of a finished (or paused) run: throughput
// counters and the per-entity state-time breakdown. Reading the model here is
// a pure query; nothing is mutated.
func Report(m *Model) string {
	now := m.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n", m.RunID)
	fmt.Fprintf(&sb, "simulated time: %.3fs (%d ticks, %d events)\n",
		TicksToSeconds(now), now, m.Events.DispatchCount)

	// Stable output: entities sorted by name within each section.
	names := make([]string, 0, len(m.Entities()))
	byName := make(map[string]Entity)
	for _, e := range m.Entities() {
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Strings(names)

	for _, name := range names {
		switch e := byName[name].(type) {
		case *EntityGenerator:
			fmt.Fprintf(&sb, "%s: generated=%d\n", name, e.Generated())
		case *EntitySink:
			fmt.Fprintf(&sb, "%s: received=%d\n", name, e.Received())
		case *Queue:
			fmt.Fprintf(&sb, "%s: len=%d max=%d added=%d\n", name, e.Len(), e.MaxLen(), e.TotalAdded())
		case *Resource:
			fmt.Fprintf(&sb, "%s: capacity=%d seized=%d times=%d\n",
				name, e.Capacity(), e.Seized(), e.TimesSeized())
		case *Server:
			writeServiceLine(&sb, name, &e.LinkedService, now)
		case *Seize:
			writeServiceLine(&sb, name, &e.LinkedService, now)
		case *EntityGate:
			writeServiceLine(&sb, name, &e.LinkedService, now)
		case *DowntimeEntity:
			fmt.Fprintf(&sb, "%s: downtimes=%d totalDown=%.3fs\n",
				name, e.DownCount(), TicksToSeconds(e.TotalDownTicks(now)))
		case *Threshold:
			fmt.Fprintf(&sb, "%s: open=%v openTime=%.3fs\n",
				name, e.IsOpen(), TicksToSeconds(e.OpenTicks(now)))
		}
	}
	return sb.String()
}

func writeServiceLine(sb *strings.Builder, name string, s *LinkedService, now int64) {
	fmt.Fprintf(sb, "%s: state=%s units=%d utilization=%.4f availability=%.4f",
		name, s.PresentState(), s.UnitsCompleted(), Utilization(&s.StateEntity, now), Availability(s, now))
	for _, st := range s.States() {
		if t := s.TimeInState(now, st); t > 0 {
			fmt.Fprintf(sb, " %s=%.3fs", st, TicksToSeconds(t))
		}
	}
	sb.WriteString("\n")
}
