package voting

import (
	"math"
	"time"

	"kairosvote.io/kairos/lib/errors"
)

// DefaultWeightFloor is the minimum fraction of its raw weight a vote
// retains no matter how old it gets.
const DefaultWeightFloor = 0.10

const (
	DecayExponential = "exponential"
	DecayLinear      = "linear"
	DecayStepped     = "stepped"
)

// DecayModel maps a vote's age to a weight multiplier in [Floor(), 1.0].
// The multiplier is pure, deterministic and non-increasing in age; the
// set of models is closed and every model is validated at construction.
type DecayModel interface {
	Name() string
	Floor() float64
	Multiplier(age time.Duration) float64
}

type exponentialDecay struct {
	k     float64 // ln2 / halfLife, in 1/seconds
	floor float64
}

func (d exponentialDecay) Name() string   { return DecayExponential }
func (d exponentialDecay) Floor() float64 { return d.floor }

func (d exponentialDecay) Multiplier(age time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}

	return math.Max(d.floor, math.Exp(-d.k*age.Seconds()))
}

// NewExponentialDecay derives the decay constant from the configured
// half-life: k = ln2 / halfLife, so Multiplier(halfLife) == 0.5.
func NewExponentialDecay(halfLife time.Duration, floor float64) (DecayModel, error) {
	if halfLife <= 0 {
		return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("half_life", halfLife.String())
	}
	if err := validateFloor(floor); err != nil {
		return nil, err
	}

	return exponentialDecay{
		k:     math.Ln2 / halfLife.Seconds(),
		floor: floor,
	}, nil
}

type linearDecay struct {
	span  time.Duration
	floor float64
}

func (d linearDecay) Name() string   { return DecayLinear }
func (d linearDecay) Floor() float64 { return d.floor }

func (d linearDecay) Multiplier(age time.Duration) float64 {
	if age <= 0 {
		return 1.0
	}

	return math.Max(d.floor, 1.0-age.Seconds()/d.span.Seconds())
}

// NewLinearDecay decays linearly from 1.0 at age 0 toward the floor,
// reaching it at `span * (1 - floor)`.
func NewLinearDecay(span time.Duration, floor float64) (DecayModel, error) {
	if span <= 0 {
		return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("span", span.String())
	}
	if err := validateFloor(floor); err != nil {
		return nil, err
	}

	return linearDecay{span: span, floor: floor}, nil
}

// DecayStep holds the multiplier applied once a vote is at least Age old.
type DecayStep struct {
	Age    time.Duration `json:"age" yaml:"age"`
	Factor float64       `json:"factor" yaml:"factor"`
}

type steppedDecay struct {
	steps []DecayStep
	floor float64
}

func (d steppedDecay) Name() string   { return DecayStepped }
func (d steppedDecay) Floor() float64 { return d.floor }

func (d steppedDecay) Multiplier(age time.Duration) float64 {
	multiplier := 1.0
	for _, step := range d.steps {
		if age >= step.Age {
			multiplier = step.Factor
		}
	}

	return math.Max(d.floor, multiplier)
}

// NewSteppedDecay keeps the multiplier constant within age buckets.
// Steps must have strictly increasing ages and non-increasing factors;
// anything else is a configuration error.
func NewSteppedDecay(steps []DecayStep, floor float64) (DecayModel, error) {
	if len(steps) < 1 {
		return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("reason", "no decay steps")
	}
	if err := validateFloor(floor); err != nil {
		return nil, err
	}

	prevAge := time.Duration(0)
	prevFactor := 1.0
	for _, step := range steps {
		if step.Age <= prevAge {
			return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("reason", "step ages must be strictly increasing")
		}
		if step.Factor > prevFactor {
			return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("reason", "step factors must be non-increasing")
		}
		if step.Factor <= 0 || step.Factor > 1.0 {
			return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("factor", step.Factor)
		}
		prevAge = step.Age
		prevFactor = step.Factor
	}

	copied := make([]DecayStep, len(steps))
	copy(copied, steps)

	return steppedDecay{steps: copied, floor: floor}, nil
}

func validateFloor(floor float64) error {
	if floor <= 0 || floor >= 1.0 {
		return errors.ErrorInvalidDecayConfig.Clone().SetData("floor", floor)
	}

	return nil
}
