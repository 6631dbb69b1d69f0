package voting

import (
	"math"
	"time"

	"kairosvote.io/kairos/lib/errors"
)

// DefaultThresholdCeiling is the maximum required acceptance fraction
// any escalation profile may reach.
const DefaultThresholdCeiling = 0.90

const (
	EscalationLinear      = "linear"
	EscalationExponential = "exponential"
	EscalationSigmoid     = "sigmoid"
	EscalationStep        = "step"
)

// EscalationProfile maps a proposal's age to the required acceptance
// fraction. The output is always in [Base(), Ceiling()] and
// non-decreasing in age; profiles are validated at construction.
type EscalationProfile interface {
	Name() string
	Base() float64
	Ceiling() float64
	RequiredFraction(age time.Duration) float64
}

type linearEscalation struct {
	base    float64
	ceiling float64
	rate    float64 // fraction added per second
}

func (p linearEscalation) Name() string     { return EscalationLinear }
func (p linearEscalation) Base() float64    { return p.base }
func (p linearEscalation) Ceiling() float64 { return p.ceiling }

func (p linearEscalation) RequiredFraction(age time.Duration) float64 {
	if age <= 0 {
		return p.base
	}

	return math.Min(p.ceiling, p.base+p.rate*age.Seconds())
}

func NewLinearEscalation(base, ceiling, ratePerSecond float64) (EscalationProfile, error) {
	if err := validateBounds(base, ceiling); err != nil {
		return nil, err
	}
	if ratePerSecond < 0 {
		return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("rate", ratePerSecond)
	}

	return linearEscalation{base: base, ceiling: ceiling, rate: ratePerSecond}, nil
}

type exponentialEscalation struct {
	base    float64
	ceiling float64
	rate    float64 // 1/seconds
}

func (p exponentialEscalation) Name() string     { return EscalationExponential }
func (p exponentialEscalation) Base() float64    { return p.base }
func (p exponentialEscalation) Ceiling() float64 { return p.ceiling }

func (p exponentialEscalation) RequiredFraction(age time.Duration) float64 {
	if age <= 0 {
		return p.base
	}

	return p.base + (p.ceiling-p.base)*(1.0-math.Exp(-p.rate*age.Seconds()))
}

func NewExponentialEscalation(base, ceiling, ratePerSecond float64) (EscalationProfile, error) {
	if err := validateBounds(base, ceiling); err != nil {
		return nil, err
	}
	if ratePerSecond < 0 {
		return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("rate", ratePerSecond)
	}

	return exponentialEscalation{base: base, ceiling: ceiling, rate: ratePerSecond}, nil
}

// sigmoidEscalation is a logistic curve centered at `midpoint`,
// normalized so RequiredFraction(0) == base and the limit is the
// ceiling: early grace, late urgency.
type sigmoidEscalation struct {
	base      float64
	ceiling   float64
	midpoint  time.Duration
	steepness float64 // 1/seconds
	raw0      float64 // logistic value at age 0, used for normalization
}

func (p sigmoidEscalation) Name() string     { return EscalationSigmoid }
func (p sigmoidEscalation) Base() float64    { return p.base }
func (p sigmoidEscalation) Ceiling() float64 { return p.ceiling }

func (p sigmoidEscalation) logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-p.steepness*(x-p.midpoint.Seconds())))
}

func (p sigmoidEscalation) RequiredFraction(age time.Duration) float64 {
	if age <= 0 {
		return p.base
	}

	normalized := (p.logistic(age.Seconds()) - p.raw0) / (1.0 - p.raw0)

	return math.Min(p.ceiling, p.base+normalized*(p.ceiling-p.base))
}

func NewSigmoidEscalation(base, ceiling float64, midpoint time.Duration, steepness float64) (EscalationProfile, error) {
	if err := validateBounds(base, ceiling); err != nil {
		return nil, err
	}
	if midpoint <= 0 {
		return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("midpoint", midpoint.String())
	}
	if steepness <= 0 {
		return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("steepness", steepness)
	}

	p := sigmoidEscalation{
		base:      base,
		ceiling:   ceiling,
		midpoint:  midpoint,
		steepness: steepness,
	}
	p.raw0 = p.logistic(0)

	return p, nil
}

// Breakpoint raises the required fraction to Fraction once the proposal
// is at least Age old.
type Breakpoint struct {
	Age      time.Duration `json:"age" yaml:"age"`
	Fraction float64       `json:"fraction" yaml:"fraction"`
}

type stepEscalation struct {
	base        float64
	ceiling     float64
	breakpoints []Breakpoint
}

func (p stepEscalation) Name() string     { return EscalationStep }
func (p stepEscalation) Base() float64    { return p.base }
func (p stepEscalation) Ceiling() float64 { return p.ceiling }

func (p stepEscalation) RequiredFraction(age time.Duration) float64 {
	required := p.base
	for _, bp := range p.breakpoints {
		if age >= bp.Age {
			required = bp.Fraction
		}
	}

	return required
}

// NewStepEscalation takes an explicit ordered list of breakpoints.
// Ages must be strictly increasing and fractions non-decreasing within
// [base, ceiling]; a non-monotone list is rejected here, never at
// evaluation time.
func NewStepEscalation(base, ceiling float64, breakpoints []Breakpoint) (EscalationProfile, error) {
	if err := validateBounds(base, ceiling); err != nil {
		return nil, err
	}

	prevAge := time.Duration(0)
	prevFraction := base
	for _, bp := range breakpoints {
		if bp.Age <= prevAge {
			return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("reason", "breakpoint ages must be strictly increasing")
		}
		if bp.Fraction < prevFraction {
			return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("reason", "breakpoint fractions must be non-decreasing")
		}
		if bp.Fraction > ceiling {
			return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("fraction", bp.Fraction)
		}
		prevAge = bp.Age
		prevFraction = bp.Fraction
	}

	copied := make([]Breakpoint, len(breakpoints))
	copy(copied, breakpoints)

	return stepEscalation{base: base, ceiling: ceiling, breakpoints: copied}, nil
}

func validateBounds(base, ceiling float64) error {
	if base <= 0 || base >= 1.0 {
		return errors.ErrorInvalidEscalationProfile.Clone().SetData("base", base)
	}
	if ceiling < base || ceiling > DefaultThresholdCeiling {
		return errors.ErrorInvalidEscalationProfile.Clone().SetData("ceiling", ceiling)
	}

	return nil
}
