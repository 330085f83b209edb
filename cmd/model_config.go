package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/procflow-sim/procflow-sim/sim"
	"github.com/procflow-sim/procflow-sim/sim/dist"
)

// ModelConfig is the top-level YAML model definition. All references are by
// entity name and must resolve before the run starts; a dangling reference
// aborts model load naming the offending entity.
type ModelConfig struct {
	Seed           int64   `yaml:"seed"`
	HorizonSeconds float64 `yaml:"horizon_seconds"`

	Thresholds []ThresholdConfig `yaml:"thresholds,omitempty"`
	Resources  []ResourceConfig  `yaml:"resources,omitempty"`
	Queues     []QueueConfig     `yaml:"queues,omitempty"`
	Sinks      []SinkConfig      `yaml:"sinks,omitempty"`
	Releases   []ReleaseConfig   `yaml:"releases,omitempty"`
	Servers    []ServerConfig    `yaml:"servers,omitempty"`
	Seizes     []SeizeConfig     `yaml:"seizes,omitempty"`
	Gates      []GateConfig      `yaml:"gates,omitempty"`
	Generators []GeneratorConfig `yaml:"generators,omitempty"`
	Downtimes  []DowntimeConfig  `yaml:"downtimes,omitempty"`
}

type ThresholdConfig struct {
	Name          string `yaml:"name"`
	InitiallyOpen bool   `yaml:"initially_open"`
}

type ResourceConfig struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

type QueueConfig struct {
	Name string `yaml:"name"`
}

type SinkConfig struct {
	Name string `yaml:"name"`
}

type DemandConfig struct {
	Resource string `yaml:"resource"`
	Amount   int    `yaml:"amount"`
}

type ReleaseConfig struct {
	Name    string         `yaml:"name"`
	Next    string         `yaml:"next"`
	Demands []DemandConfig `yaml:"demands"`
}

type ServerConfig struct {
	Name                string    `yaml:"name"`
	Queue               string    `yaml:"queue"`
	Next                string    `yaml:"next"`
	ServiceTime         dist.Spec `yaml:"service_time"`
	ImmediateThresholds []string  `yaml:"immediate_thresholds,omitempty"`
	OperatingThresholds []string  `yaml:"operating_thresholds,omitempty"`
	Match               *int64    `yaml:"match,omitempty"`
}

type SeizeConfig struct {
	Name    string         `yaml:"name"`
	Queue   string         `yaml:"queue"`
	Next    string         `yaml:"next"`
	Demands []DemandConfig `yaml:"demands"`
}

type GateConfig struct {
	Name                string     `yaml:"name"`
	Queue               string     `yaml:"queue"`
	Next                string     `yaml:"next"`
	PassDelay           *dist.Spec `yaml:"pass_delay,omitempty"`
	ImmediateThresholds []string   `yaml:"immediate_thresholds,omitempty"`
	OperatingThresholds []string   `yaml:"operating_thresholds,omitempty"`
}

type GeneratorConfig struct {
	Name         string     `yaml:"name"`
	Prefix       string     `yaml:"prefix"`
	Next         string     `yaml:"next"`
	Interarrival dist.Spec  `yaml:"interarrival"`
	FirstArrival *dist.Spec `yaml:"first_arrival,omitempty"`
	MaxCreations int64      `yaml:"max_creations"`
}

type DowntimeConfig struct {
	Name        string    `yaml:"name"`
	Severity    string    `yaml:"severity"`
	Kind        string    `yaml:"kind"`
	Concurrent  bool      `yaml:"concurrent"`
	Users       []string  `yaml:"users"`
	Interval    dist.Spec `yaml:"interval"`
	Duration    dist.Spec `yaml:"duration"`
	FailureBase string    `yaml:"failure_base,omitempty"`
	RepairBase  string    `yaml:"repair_base,omitempty"`
}

// LoadModelConfig reads and parses a YAML model file.
func LoadModelConfig(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse model config: %w", err)
	}
	return &cfg, nil
}

// BuildModel resolves a ModelConfig into a runnable sim.Model. Construction
// is two-phase: every entity is created first, then the next-component and
// threshold references are wired, so forward references between sections are
// fine.
func BuildModel(cfg *ModelConfig) (*sim.Model, error) {
	m := sim.NewModel(cfg.Seed)

	thresholds := make(map[string]*sim.Threshold)
	resources := make(map[string]*sim.Resource)
	queues := make(map[string]*sim.Queue)
	receivers := make(map[string]sim.Receiver)
	services := make(map[string]*sim.LinkedService)

	for _, tc := range cfg.Thresholds {
		thresholds[tc.Name] = sim.NewThreshold(m, tc.Name, tc.InitiallyOpen)
	}
	for _, rc := range cfg.Resources {
		resources[rc.Name] = sim.NewResource(m, rc.Name, rc.Capacity)
	}
	for _, qc := range cfg.Queues {
		queues[qc.Name] = sim.NewQueue(m, qc.Name)
	}
	for _, sc := range cfg.Sinks {
		receivers[sc.Name] = sim.NewEntitySink(m, sc.Name)
	}

	resolveDemands := func(owner string, dcs []DemandConfig) ([]sim.ResourceDemand, error) {
		demands := make([]sim.ResourceDemand, 0, len(dcs))
		for _, dc := range dcs {
			r, ok := resources[dc.Resource]
			if !ok {
				return nil, fmt.Errorf("entity %s: unknown resource %q", owner, dc.Resource)
			}
			demands = append(demands, sim.ResourceDemand{Resource: r, Amount: dc.Amount})
		}
		return demands, nil
	}
	resolveQueue := func(owner, name string) (*sim.Queue, error) {
		q, ok := queues[name]
		if !ok {
			return nil, fmt.Errorf("entity %s: unknown queue %q", owner, name)
		}
		return q, nil
	}

	for _, rc := range cfg.Releases {
		demands, err := resolveDemands(rc.Name, rc.Demands)
		if err != nil {
			return nil, err
		}
		receivers[rc.Name] = sim.NewRelease(m, rc.Name, demands)
	}

	for _, sc := range cfg.Servers {
		q, err := resolveQueue(sc.Name, sc.Queue)
		if err != nil {
			return nil, err
		}
		st, err := dist.NewSampler(sc.ServiceTime)
		if err != nil {
			return nil, fmt.Errorf("entity %s: service_time: %w", sc.Name, err)
		}
		srv := sim.NewServer(m, sc.Name, q, st)
		if sc.Match != nil {
			srv.SetMatch(sc.Match)
		}
		if err := attachThresholds(srv, sc.Name, sc.ImmediateThresholds, sc.OperatingThresholds, thresholds); err != nil {
			return nil, err
		}
		receivers[sc.Name] = srv
		services[sc.Name] = &srv.LinkedService
	}

	for _, sc := range cfg.Seizes {
		q, err := resolveQueue(sc.Name, sc.Queue)
		if err != nil {
			return nil, err
		}
		demands, err := resolveDemands(sc.Name, sc.Demands)
		if err != nil {
			return nil, err
		}
		sz := sim.NewSeize(m, sc.Name, q, demands)
		receivers[sc.Name] = sz
		services[sc.Name] = &sz.LinkedService
	}

	for _, gc := range cfg.Gates {
		q, err := resolveQueue(gc.Name, gc.Queue)
		if err != nil {
			return nil, err
		}
		g := sim.NewEntityGate(m, gc.Name, q)
		if gc.PassDelay != nil {
			pd, err := dist.NewSampler(*gc.PassDelay)
			if err != nil {
				return nil, fmt.Errorf("entity %s: pass_delay: %w", gc.Name, err)
			}
			g.SetPassDelay(pd)
		}
		if err := attachThresholds(g, gc.Name, gc.ImmediateThresholds, gc.OperatingThresholds, thresholds); err != nil {
			return nil, err
		}
		receivers[gc.Name] = g
		services[gc.Name] = &g.LinkedService
	}

	for _, gc := range cfg.Generators {
		iat, err := dist.NewSampler(gc.Interarrival)
		if err != nil {
			return nil, fmt.Errorf("entity %s: interarrival: %w", gc.Name, err)
		}
		gen := sim.NewEntityGenerator(m, gc.Name, gc.Prefix, iat, gc.MaxCreations)
		if gc.FirstArrival != nil {
			fa, err := dist.NewSampler(*gc.FirstArrival)
			if err != nil {
				return nil, fmt.Errorf("entity %s: first_arrival: %w", gc.Name, err)
			}
			gen.SetFirstArrival(fa)
		}
		next, ok := receivers[gc.Next]
		if !ok {
			return nil, fmt.Errorf("entity %s: unknown next component %q", gc.Name, gc.Next)
		}
		gen.SetNext(next)
	}

	// Wire downstream references now that every receiver exists.
	wireNext := func(owner, next string, set func(sim.Receiver)) error {
		if next == "" {
			return nil
		}
		r, ok := receivers[next]
		if !ok {
			return fmt.Errorf("entity %s: unknown next component %q", owner, next)
		}
		set(r)
		return nil
	}
	for _, sc := range cfg.Servers {
		if err := wireNext(sc.Name, sc.Next, receivers[sc.Name].(*sim.Server).SetNext); err != nil {
			return nil, err
		}
	}
	for _, sc := range cfg.Seizes {
		if err := wireNext(sc.Name, sc.Next, receivers[sc.Name].(*sim.Seize).SetNext); err != nil {
			return nil, err
		}
	}
	for _, gc := range cfg.Gates {
		if err := wireNext(gc.Name, gc.Next, receivers[gc.Name].(*sim.EntityGate).SetNext); err != nil {
			return nil, err
		}
	}
	for _, rc := range cfg.Releases {
		if err := wireNext(rc.Name, rc.Next, receivers[rc.Name].(*sim.Release).SetNext); err != nil {
			return nil, err
		}
	}

	for _, dc := range cfg.Downtimes {
		severity, err := parseSeverity(dc.Severity)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", dc.Name, err)
		}
		kind, err := parseKind(dc.Kind)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", dc.Name, err)
		}
		iat, err := dist.NewSampler(dc.Interval)
		if err != nil {
			return nil, fmt.Errorf("entity %s: interval: %w", dc.Name, err)
		}
		dur, err := dist.NewSampler(dc.Duration)
		if err != nil {
			return nil, fmt.Errorf("entity %s: duration: %w", dc.Name, err)
		}
		d := sim.NewDowntimeEntity(m, dc.Name, severity, kind, iat, dur)
		d.SetConcurrent(dc.Concurrent)
		for _, uname := range dc.Users {
			svc, ok := services[uname]
			if !ok {
				return nil, fmt.Errorf("entity %s: unknown user %q", dc.Name, uname)
			}
			d.AddUser(svc)
		}
		if dc.FailureBase != "" {
			svc, ok := services[dc.FailureBase]
			if !ok {
				return nil, fmt.Errorf("entity %s: unknown failure_base %q", dc.Name, dc.FailureBase)
			}
			d.SetFailureBase(&svc.StateEntity)
		}
		if dc.RepairBase != "" {
			svc, ok := services[dc.RepairBase]
			if !ok {
				return nil, fmt.Errorf("entity %s: unknown repair_base %q", dc.Name, dc.RepairBase)
			}
			d.SetRepairBase(&svc.StateEntity)
		}
	}

	return m, nil
}

type thresholdAttacher interface {
	AddImmediateThreshold(*sim.Threshold)
	AddOperatingThreshold(*sim.Threshold)
}

func attachThresholds(a thresholdAttacher, owner string, immediate, operating []string, thresholds map[string]*sim.Threshold) error {
	for _, name := range immediate {
		th, ok := thresholds[name]
		if !ok {
			return fmt.Errorf("entity %s: unknown threshold %q", owner, name)
		}
		a.AddImmediateThreshold(th)
	}
	for _, name := range operating {
		th, ok := thresholds[name]
		if !ok {
			return fmt.Errorf("entity %s: unknown threshold %q", owner, name)
		}
		a.AddOperatingThreshold(th)
	}
	return nil
}

func parseSeverity(s string) (sim.Severity, error) {
	switch s {
	case "immediate":
		return sim.SeverityImmediate, nil
	case "forced":
		return sim.SeverityForced, nil
	case "opportunistic":
		return sim.SeverityOpportunistic, nil
	}
	return 0, fmt.Errorf("unknown severity %q (want immediate, forced or opportunistic)", s)
}

func parseKind(s string) (sim.DowntimeKind, error) {
	switch s {
	case "maintenance":
		return sim.KindMaintenance, nil
	case "breakdown", "":
		return sim.KindBreakdown, nil
	}
	return 0, fmt.Errorf("unknown downtime kind %q (want maintenance or breakdown)", s)
}
