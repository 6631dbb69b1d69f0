package engine

import (
	"sort"
	"sync"
	"time"

	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/voting"
)

// RunningProposal is one proposal in the active pool together with its
// window and accepted votes. All vote intake and evaluation on a single
// proposal is serialized through its lock; different proposals run
// concurrently.
type RunningProposal struct {
	sync.RWMutex

	Proposal *voting.Proposal
	Window   *Window

	votes map[string]voting.Vote // keyed by validator
}

func NewRunningProposal(p *voting.Proposal) (rp *RunningProposal, err error) {
	var window *Window
	if window, err = NewWindow(p.CreatedAt, p.Window); err != nil {
		return
	}

	rp = &RunningProposal{
		Proposal: p,
		Window:   window,
		votes:    map[string]voting.Vote{},
	}

	return
}

func (rp *RunningProposal) VoteCount() int {
	rp.RLock()
	defer rp.RUnlock()

	return len(rp.votes)
}

// Votes returns the accepted votes in deterministic validator order.
func (rp *RunningProposal) Votes() []voting.Vote {
	rp.RLock()
	defer rp.RUnlock()

	return rp.sortedVotes()
}

func (rp *RunningProposal) sortedVotes() []voting.Vote {
	validators := make([]string, 0, len(rp.votes))
	for validator := range rp.votes {
		validators = append(validators, validator)
	}
	sort.Strings(validators)

	votes := make([]voting.Vote, 0, len(validators))
	for _, validator := range validators {
		votes = append(votes, rp.votes[validator])
	}

	return votes
}

// AddVote accepts one vote after well-formedness, timestamp attestation
// and open-window checks. A fresh vote from a validator who already
// voted supersedes the earlier one; resubmitting the identical vote is
// rejected. The superseded vote, if any, is returned so the caller can
// drop its cached weight.
func (rp *RunningProposal) AddVote(v voting.Vote, attestor attest.Attestor, networkID []byte, now time.Time) (superseded *voting.Vote, err error) {
	rp.Lock()
	defer rp.Unlock()

	if !rp.Window.IsOpen() || rp.Window.IsExpired(now) {
		err = errors.ErrorProposalNotOpen.Clone().SetData("proposal", rp.Proposal.ID)
		return
	}

	if err = v.IsWellFormed(networkID); err != nil {
		return
	}

	castAt, _ := v.CastAt()
	if _, err = attestor.Attest(castAt, now); err != nil {
		return
	}

	if prev, found := rp.votes[v.Validator()]; found {
		if prev.GetHash() == v.GetHash() {
			err = errors.ErrorVoteAlreadyCast.Clone().SetData("validator", v.Validator()).SetData("vote", prev.GetHash())
			return
		}
		superseded = &prev
	}

	rp.votes[v.Validator()] = v

	return
}

// ProposalSummary is a consistent point-in-time view of a running
// proposal, safe to hand outside the lock.
type ProposalSummary struct {
	ID             string             `json:"id"`
	Criticality    voting.Criticality `json:"criticality"`
	Status         voting.Verdict     `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	Deadline       time.Time          `json:"deadline"`
	EligibleWeight float64            `json:"eligible_weight"`
	MinimumVotes   int                `json:"minimum_votes"`
	VoteCount      int                `json:"vote_count"`
	Extensions     []Extension        `json:"extensions"`
}

func (rp *RunningProposal) Summary() ProposalSummary {
	rp.RLock()
	defer rp.RUnlock()

	return ProposalSummary{
		ID:             rp.Proposal.ID,
		Criticality:    rp.Proposal.Criticality,
		Status:         rp.Window.Status(),
		CreatedAt:      rp.Proposal.CreatedAt,
		Deadline:       rp.Window.Deadline(),
		EligibleWeight: rp.Proposal.EligibleWeight,
		MinimumVotes:   rp.Proposal.MinimumVotes,
		VoteCount:      len(rp.votes),
		Extensions:     rp.Window.Extensions(),
	}
}

// EvaluationResult is the outcome of one evaluation pass over a
// proposal. Evaluating a terminal proposal again returns the recorded
// result unchanged.
type EvaluationResult struct {
	ProposalID  string         `json:"proposal_id"`
	Verdict     voting.Verdict `json:"verdict"`
	Fraction    float64        `json:"fraction"`
	Required    float64        `json:"required"`
	VoteCount   int            `json:"vote_count"`
	Extended    bool           `json:"extended"`
	Deadline    time.Time      `json:"deadline"`
	EvaluatedAt time.Time      `json:"evaluated_at"`
}

// Evaluate tallies the proposal at `now` and applies at most one state
// transition: pass when both the weighted fraction and the absolute
// count dimensions hold, otherwise extend on a near miss, otherwise
// expire once past the deadline plus grace.
func (rp *RunningProposal) Evaluate(weights *WeightEngine, now time.Time) (result EvaluationResult, err error) {
	rp.Lock()
	defer rp.Unlock()

	p := rp.Proposal

	result = EvaluationResult{
		ProposalID:  p.ID,
		Verdict:     rp.Window.Status(),
		VoteCount:   len(rp.votes),
		EvaluatedAt: now,
	}

	if !rp.Window.IsOpen() {
		result.Deadline = rp.Window.Deadline()
		return
	}

	var total float64
	if total, err = weights.BatchWeights(p, rp.sortedVotes(), now); err != nil {
		return
	}

	result.Fraction = total / p.EligibleWeight
	result.Required = p.RequiredFraction(now)

	quorum := p.MinimumVotes == 0 || len(rp.votes) >= p.MinimumVotes

	switch {
	case result.Fraction >= result.Required && quorum:
		err = rp.Window.Transition(voting.PASSED)

	case rp.Window.ShouldExtend(now, result.Fraction, result.Required):
		if err = rp.Window.Extend(now, "near miss"); err == nil {
			result.Extended = true
		}

	case rp.Window.IsExpired(now):
		err = rp.Window.Transition(voting.EXPIRED)
	}

	result.Verdict = rp.Window.Status()
	result.Deadline = rp.Window.Deadline()

	return
}

// Close forces the window into a terminal verdict, for override and
// withdrawal paths that bypass the tally.
func (rp *RunningProposal) Close(to voting.Verdict, now time.Time) (result EvaluationResult, err error) {
	rp.Lock()
	defer rp.Unlock()

	if err = rp.Window.Transition(to); err != nil {
		return
	}

	result = EvaluationResult{
		ProposalID:  rp.Proposal.ID,
		Verdict:     to,
		VoteCount:   len(rp.votes),
		Deadline:    rp.Window.Deadline(),
		EvaluatedAt: now,
	}

	return
}
