// Package dist provides the probability distributions consumed by the
// simulation engine as an opaque sampling capability. All samplers return
// durations in seconds; the engine converts to ticks at the call site.
package dist

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Sampler draws one value per call. Samplers are pure functions of the
// supplied RNG, so partitioned RNG streams keep runs reproducible.
type Sampler interface {
	Next(rng *rand.Rand) float64
}

// Constant always returns the same value.
type Constant struct {
	value float64
}

func (s *Constant) Next(_ *rand.Rand) float64 { return s.value }

// NewConstant returns a sampler fixed at value.
func NewConstant(value float64) *Constant { return &Constant{value: value} }

// Uniform draws from [min, max).
type Uniform struct {
	min, max float64
}

func (s *Uniform) Next(rng *rand.Rand) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

// Exponential draws from an exponential distribution with the given mean.
type Exponential struct {
	mean float64
}

func (s *Exponential) Next(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

// Normal draws from a clamped Gaussian.
type Normal struct {
	mean, stdDev float64
	min, max     float64
}

func (s *Normal) Next(rng *rand.Rand) float64 {
	val := rng.NormFloat64()*s.stdDev + s.mean
	return math.Min(s.max, math.Max(s.min, val))
}

// Erlang draws from an Erlang distribution: the sum of shape independent
// exponentials with mean mean/shape.
type Erlang struct {
	mean  float64
	shape int
}

func (s *Erlang) Next(rng *rand.Rand) float64 {
	var sum float64
	for i := 0; i < s.shape; i++ {
		sum += rng.ExpFloat64()
	}
	return sum * s.mean / float64(s.shape)
}

// Discrete samples from an explicit value/probability table using inverse
// CDF via binary search.
type Discrete struct {
	values []float64
	cdf    []float64
}

// NewDiscrete builds a discrete sampler from a value → probability table.
// Probabilities are normalized if they do not sum to 1.
func NewDiscrete(pdf map[float64]float64) (*Discrete, error) {
	keys := make([]float64, 0, len(pdf))
	total := 0.0
	for k, p := range pdf {
		if p < 0 {
			return nil, fmt.Errorf("discrete distribution has negative probability %v for value %v", p, k)
		}
		if p > 0 {
			keys = append(keys, k)
			total += p
		}
	}
	if len(keys) == 0 || total == 0 {
		return nil, fmt.Errorf("discrete distribution has no positive-probability bins")
	}
	sort.Float64s(keys)

	values := make([]float64, 0, len(keys))
	cdf := make([]float64, 0, len(keys))
	cumulative := 0.0
	for _, k := range keys {
		cumulative += pdf[k] / total
		values = append(values, k)
		cdf = append(cdf, cumulative)
	}
	cdf[len(cdf)-1] = 1.0
	return &Discrete{values: values, cdf: cdf}, nil
}

func (s *Discrete) Next(rng *rand.Rand) float64 {
	if len(s.values) == 1 {
		return s.values[0]
	}
	u := rng.Float64()
	idx := sort.SearchFloat64s(s.cdf, u)
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	}
	return s.values[idx]
}

// Spec parameterizes a distribution in configuration files.
type Spec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewSampler creates a Sampler from a Spec. Negative or inconsistent bounds
// are configuration errors detected here, before the run starts.
func NewSampler(spec Spec) (Sampler, error) {
	switch spec.Type {
	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := spec.Params["value"]
		if v < 0 {
			return nil, fmt.Errorf("constant distribution value %v is negative", v)
		}
		return NewConstant(v), nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo < 0 || hi < lo {
			return nil, fmt.Errorf("uniform distribution bounds [%v, %v] are inconsistent", lo, hi)
		}
		return &Uniform{min: lo, max: hi}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		mean := spec.Params["mean"]
		if mean <= 0 {
			return nil, fmt.Errorf("exponential distribution mean %v must be positive", mean)
		}
		return &Exponential{mean: mean}, nil

	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev", "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo < 0 || hi < lo {
			return nil, fmt.Errorf("normal distribution bounds [%v, %v] are inconsistent", lo, hi)
		}
		return &Normal{
			mean:   spec.Params["mean"],
			stdDev: spec.Params["std_dev"],
			min:    lo,
			max:    hi,
		}, nil

	case "erlang":
		if err := requireParam(spec.Params, "mean", "shape"); err != nil {
			return nil, err
		}
		mean := spec.Params["mean"]
		shape := int(spec.Params["shape"])
		if mean <= 0 || shape < 1 {
			return nil, fmt.Errorf("erlang distribution requires positive mean and shape >= 1, got mean=%v shape=%d", mean, shape)
		}
		return &Erlang{mean: mean, shape: shape}, nil

	case "discrete":
		if len(spec.Params) == 0 {
			return nil, fmt.Errorf("discrete distribution requires inline value/probability params")
		}
		pdf := make(map[float64]float64, len(spec.Params))
		for k, v := range spec.Params {
			var value float64
			if _, err := fmt.Sscanf(k, "%g", &value); err != nil {
				return nil, fmt.Errorf("discrete PDF key %q is not a number: %w", k, err)
			}
			pdf[value] = v
		}
		return NewDiscrete(pdf)

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
