package cmd

import "github.com/procflow-sim/procflow-sim/sim/dist"

// DefaultModelConfig returns the built-in demo model used when no --config
// file is given: a single production line with exponential arrivals, one
// server subject to random breakdowns, and a sink.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Seed:           42,
		HorizonSeconds: 3600,
		Queues:         []QueueConfig{{Name: "line-queue"}},
		Sinks:          []SinkConfig{{Name: "shipped"}},
		Servers: []ServerConfig{{
			Name:  "machine",
			Queue: "line-queue",
			Next:  "shipped",
			ServiceTime: dist.Spec{
				Type:   "exponential",
				Params: map[string]float64{"mean": 8},
			},
		}},
		Generators: []GeneratorConfig{{
			Name:   "arrivals",
			Prefix: "part",
			Next:   "machine",
			Interarrival: dist.Spec{
				Type:   "exponential",
				Params: map[string]float64{"mean": 10},
			},
		}},
		Downtimes: []DowntimeConfig{{
			Name:     "machine-breakdowns",
			Severity: "immediate",
			Kind:     "breakdown",
			Users:    []string{"machine"},
			Interval: dist.Spec{
				Type:   "exponential",
				Params: map[string]float64{"mean": 600},
			},
			Duration: dist.Spec{
				Type:   "uniform",
				Params: map[string]float64{"min": 30, "max": 120},
			},
		}},
	}
}
