package voting

import (
	"time"

	"kairosvote.io/kairos/lib/errors"
)

type Criticality string

const (
	CriticalityNormal   Criticality = "NORMAL"
	CriticalityCritical Criticality = "CRITICAL"
)

func (c Criticality) IsValid() bool {
	return c == CriticalityNormal || c == CriticalityCritical
}

// Proposal binds a decay model, an escalation profile and a window
// configuration for one decision. It passes only when the weighted
// fraction meets the escalated bar AND, when configured, the raw vote
// count reaches MinimumVotes; both dimensions must hold, never either.
type Proposal struct {
	ID          string
	CreatedAt   time.Time
	Criticality Criticality

	// EligibleWeight is the total raw stake entitled to vote; the
	// weighted fraction is measured against it.
	EligibleWeight float64

	// MinimumVotes is the optional absolute-count dimension; 0 disables it.
	MinimumVotes int

	Decay      DecayModel
	Escalation EscalationProfile
	Window     WindowConfig
}

func NewProposal(id string, createdAt time.Time, eligibleWeight float64, decay DecayModel, escalation EscalationProfile, window WindowConfig) (*Proposal, error) {
	p := &Proposal{
		ID:             id,
		CreatedAt:      createdAt,
		Criticality:    CriticalityNormal,
		EligibleWeight: eligibleWeight,
		Decay:          decay,
		Escalation:     escalation,
		Window:         window,
	}

	if err := p.IsWellFormed(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Proposal) IsWellFormed() (err error) {
	if len(p.ID) < 1 {
		err = errors.ErrorInvalidProposal.Clone().SetData("reason", "empty id")
		return
	}
	if p.CreatedAt.IsZero() {
		err = errors.ErrorInvalidProposal.Clone().SetData("reason", "zero created_at")
		return
	}
	if !p.Criticality.IsValid() {
		err = errors.ErrorInvalidProposal.Clone().SetData("criticality", string(p.Criticality))
		return
	}
	if p.EligibleWeight <= 0 {
		err = errors.ErrorInvalidProposal.Clone().SetData("eligible_weight", p.EligibleWeight)
		return
	}
	if p.MinimumVotes < 0 {
		err = errors.ErrorInvalidProposal.Clone().SetData("minimum_votes", p.MinimumVotes)
		return
	}
	if p.Decay == nil || p.Escalation == nil {
		err = errors.ErrorInvalidProposal.Clone().SetData("reason", "missing decay model or escalation profile")
		return
	}
	if err = p.Window.IsWellFormed(); err != nil {
		return
	}

	return
}

// Age is the elapsed proposal lifetime used by the escalation profile.
func (p *Proposal) Age(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

// RequiredFraction is the acceptance bar at `now`.
func (p *Proposal) RequiredFraction(now time.Time) float64 {
	return p.Escalation.RequiredFraction(p.Age(now))
}
