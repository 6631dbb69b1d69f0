package voting

import (
	"time"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/errors"
)

// DecayConfig is the serializable form of a DecayModel, used by the
// policy file and the HTTP API.
type DecayConfig struct {
	Type     string        `json:"type" yaml:"type"`
	HalfLife time.Duration `json:"half_life,omitempty" yaml:"half_life,omitempty"`
	Span     time.Duration `json:"span,omitempty" yaml:"span,omitempty"`
	Steps    []DecayStep   `json:"steps,omitempty" yaml:"steps,omitempty"`
	Floor    float64       `json:"floor,omitempty" yaml:"floor,omitempty"`
}

func (c DecayConfig) Make() (DecayModel, error) {
	floor := c.Floor
	if floor == 0 {
		floor = DefaultWeightFloor
	}

	switch c.Type {
	case DecayExponential:
		return NewExponentialDecay(c.HalfLife, floor)
	case DecayLinear:
		return NewLinearDecay(c.Span, floor)
	case DecayStepped:
		return NewSteppedDecay(c.Steps, floor)
	}

	return nil, errors.ErrorInvalidDecayConfig.Clone().SetData("type", c.Type)
}

// EscalationConfig is the serializable form of an EscalationProfile.
type EscalationConfig struct {
	Type        string        `json:"type" yaml:"type"`
	Base        float64       `json:"base" yaml:"base"`
	Ceiling     float64       `json:"ceiling,omitempty" yaml:"ceiling,omitempty"`
	Rate        float64       `json:"rate,omitempty" yaml:"rate,omitempty"`
	Midpoint    time.Duration `json:"midpoint,omitempty" yaml:"midpoint,omitempty"`
	Steepness   float64       `json:"steepness,omitempty" yaml:"steepness,omitempty"`
	Breakpoints []Breakpoint  `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`
}

func (c EscalationConfig) Make() (EscalationProfile, error) {
	ceiling := c.Ceiling
	if ceiling == 0 {
		ceiling = DefaultThresholdCeiling
	}

	switch c.Type {
	case EscalationLinear:
		return NewLinearEscalation(c.Base, ceiling, c.Rate)
	case EscalationExponential:
		return NewExponentialEscalation(c.Base, ceiling, c.Rate)
	case EscalationSigmoid:
		return NewSigmoidEscalation(c.Base, ceiling, c.Midpoint, c.Steepness)
	case EscalationStep:
		return NewStepEscalation(c.Base, ceiling, c.Breakpoints)
	}

	return nil, errors.ErrorInvalidEscalationProfile.Clone().SetData("type", c.Type)
}

// ProposalConfig is the external description of a proposal. Escalation
// may be omitted, in which case the profile registered for the
// proposal's criticality is used.
type ProposalConfig struct {
	ID             string            `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt      string            `json:"created_at,omitempty" yaml:"created_at,omitempty"` // ISO8601
	Criticality    Criticality       `json:"criticality,omitempty" yaml:"criticality,omitempty"`
	EligibleWeight float64           `json:"eligible_weight" yaml:"eligible_weight"`
	MinimumVotes   int               `json:"minimum_votes,omitempty" yaml:"minimum_votes,omitempty"`
	Decay          DecayConfig       `json:"decay" yaml:"decay"`
	Escalation     *EscalationConfig `json:"escalation,omitempty" yaml:"escalation,omitempty"`
	Window         WindowConfig      `json:"window" yaml:"window"`
}

func (c ProposalConfig) Make(now time.Time) (p *Proposal, err error) {
	id := c.ID
	if len(id) < 1 {
		id = common.GenerateUUID()
	}

	createdAt := now
	if len(c.CreatedAt) > 0 {
		if createdAt, err = common.ParseISO8601(c.CreatedAt); err != nil {
			err = errors.ErrorInvalidProposal.Clone().SetData("created_at", c.CreatedAt)
			return
		}
	}

	criticality := c.Criticality
	if len(criticality) < 1 {
		criticality = CriticalityNormal
	}

	var decay DecayModel
	if decay, err = c.Decay.Make(); err != nil {
		return
	}

	escalationConfig := c.Escalation
	if escalationConfig == nil {
		registered, found := DefaultProfiles()[criticality]
		if !found {
			err = errors.ErrorInvalidProposal.Clone().SetData("criticality", string(criticality))
			return
		}
		escalationConfig = &registered
	}

	var escalation EscalationProfile
	if escalation, err = escalationConfig.Make(); err != nil {
		return
	}

	if p, err = NewProposal(id, createdAt, c.EligibleWeight, decay, escalation, c.Window); err != nil {
		return
	}
	p.Criticality = criticality
	p.MinimumVotes = c.MinimumVotes

	return
}
