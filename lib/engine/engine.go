package engine

import (
	"sort"
	"sync"
	"time"

	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/metrics"
	"kairosvote.io/kairos/lib/voting"
)

// OverrideAuthorizer decides whether an emergency override token is
// acceptable. Validating the token is outside the core; the engine only
// records that the check passed.
type OverrideAuthorizer interface {
	Authorize(proposalID, token string) bool
}

type OverrideAuthorizerFunc func(proposalID, token string) bool

func (f OverrideAuthorizerFunc) Authorize(proposalID, token string) bool {
	return f(proposalID, token)
}

// DecisionEngine holds the active proposal pool and drives vote intake
// and evaluation. Every time-dependent call takes an explicit `now`;
// the engine never consults a clock of its own.
type DecisionEngine struct {
	sync.RWMutex

	conf       Config
	weights    *WeightEngine
	attestor   attest.Attestor
	auditor    Auditor
	authorizer OverrideAuthorizer

	proposals map[string]*RunningProposal
	closed    map[string]EvaluationResult
}

func NewDecisionEngine(conf Config, weights *WeightEngine, attestor attest.Attestor, auditor Auditor) (de *DecisionEngine, err error) {
	if err = conf.IsWellFormed(); err != nil {
		return
	}

	de = &DecisionEngine{
		conf:      conf,
		weights:   weights,
		attestor:  attestor,
		auditor:   auditor,
		proposals: map[string]*RunningProposal{},
		closed:    map[string]EvaluationResult{},
	}

	return
}

func (de *DecisionEngine) SetOverrideAuthorizer(authorizer OverrideAuthorizer) {
	de.Lock()
	defer de.Unlock()

	de.authorizer = authorizer
}

func (de *DecisionEngine) AddProposal(p *voting.Proposal) (err error) {
	var rp *RunningProposal
	if rp, err = NewRunningProposal(p); err != nil {
		return
	}

	de.Lock()
	defer de.Unlock()

	if _, found := de.proposals[p.ID]; found {
		err = errors.ErrorProposalAlreadyExists.Clone().SetData("proposal", p.ID)
		return
	}
	if _, found := de.closed[p.ID]; found {
		err = errors.ErrorProposalAlreadyExists.Clone().SetData("proposal", p.ID)
		return
	}

	de.proposals[p.ID] = rp
	metrics.Engine.SetOpenProposals(len(de.proposals))

	log.Info("proposal opened",
		"proposal", p.ID,
		"deadline", rp.Window.Deadline(),
		"eligible-weight", p.EligibleWeight,
	)

	return
}

func (de *DecisionEngine) runningProposal(proposalID string) (rp *RunningProposal, err error) {
	de.RLock()
	defer de.RUnlock()

	var found bool
	if rp, found = de.proposals[proposalID]; found {
		return
	}

	if _, found = de.closed[proposalID]; found {
		err = errors.ErrorProposalNotOpen.Clone().SetData("proposal", proposalID)
		return
	}

	err = errors.ErrorProposalNotFound.Clone().SetData("proposal", proposalID)
	return
}

func (de *DecisionEngine) Proposal(proposalID string) (*RunningProposal, error) {
	return de.runningProposal(proposalID)
}

// RunningProposalIDs returns the ids of the active pool, sorted.
func (de *DecisionEngine) RunningProposalIDs() []string {
	de.RLock()
	defer de.RUnlock()

	ids := make([]string, 0, len(de.proposals))
	for id := range de.proposals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Summaries snapshots the active pool, sorted by proposal id.
func (de *DecisionEngine) Summaries() []ProposalSummary {
	de.RLock()
	rps := make([]*RunningProposal, 0, len(de.proposals))
	for _, rp := range de.proposals {
		rps = append(rps, rp)
	}
	de.RUnlock()

	summaries := make([]ProposalSummary, 0, len(rps))
	for _, rp := range rps {
		summaries = append(summaries, rp.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	return summaries
}

// Result returns the recorded final result of a closed proposal.
func (de *DecisionEngine) Result(proposalID string) (EvaluationResult, bool) {
	de.RLock()
	defer de.RUnlock()

	result, found := de.closed[proposalID]
	return result, found
}

// SubmitVote routes a vote to its proposal. A rejected vote never
// disturbs the proposal; other validators' votes keep evaluating.
func (de *DecisionEngine) SubmitVote(v voting.Vote, now time.Time) (err error) {
	var rp *RunningProposal
	if rp, err = de.runningProposal(v.ProposalID()); err != nil {
		metrics.Engine.AddRejectedVote()
		return
	}

	var superseded *voting.Vote
	if superseded, err = rp.AddVote(v, de.attestor, de.conf.NetworkID, now); err != nil {
		metrics.Engine.AddRejectedVote()
		log.Debug("vote rejected", "proposal", v.ProposalID(), "validator", v.Validator(), "error", err)
		return
	}

	if superseded != nil {
		de.weights.Invalidate(rp.Proposal, *superseded)
	}

	log.Debug("vote accepted",
		"proposal", v.ProposalID(),
		"validator", v.Validator(),
		"raw-weight", v.RawWeight(),
		"superseded", superseded != nil,
	)

	return
}

// Evaluate runs one evaluation pass at `now`. Terminal proposals return
// their recorded result unchanged.
func (de *DecisionEngine) Evaluate(proposalID string, now time.Time) (result EvaluationResult, err error) {
	de.RLock()
	rp, running := de.proposals[proposalID]
	result, done := de.closed[proposalID]
	de.RUnlock()

	if done {
		return
	}
	if !running {
		err = errors.ErrorProposalNotFound.Clone().SetData("proposal", proposalID)
		return
	}

	begin := time.Now()
	if result, err = rp.Evaluate(de.weights, now); err != nil {
		return
	}
	metrics.Engine.ObserveEvaluateDuration(time.Since(begin).Seconds())

	if result.Extended {
		metrics.Engine.AddExtension()
		log.Info("window extended",
			"proposal", proposalID,
			"deadline", result.Deadline,
			"fraction", result.Fraction,
			"required", result.Required,
		)
	}

	if result.Verdict.IsTerminal() {
		err = de.finalize(result, now)
	}

	return
}

// EvaluateAll sweeps the active pool at a single shared `now`.
func (de *DecisionEngine) EvaluateAll(now time.Time) (results []EvaluationResult) {
	for _, id := range de.RunningProposalIDs() {
		result, err := de.Evaluate(id, now)
		if err != nil {
			log.Error("evaluation failed", "proposal", id, "error", err)
			continue
		}
		results = append(results, result)
	}

	return
}

// Override forces a proposal to OVERRIDDEN after the external
// authorization check accepts the token. By default the tally is
// bypassed entirely; with OverrideRespectsQuorum the absolute vote
// count minimum still applies.
func (de *DecisionEngine) Override(proposalID, token string, now time.Time) (result EvaluationResult, err error) {
	de.RLock()
	authorizer := de.authorizer
	de.RUnlock()

	if authorizer == nil || !authorizer.Authorize(proposalID, token) {
		err = errors.ErrorInvalidOverrideToken.Clone().SetData("proposal", proposalID)
		return
	}

	var rp *RunningProposal
	if rp, err = de.runningProposal(proposalID); err != nil {
		return
	}

	if de.conf.OverrideRespectsQuorum {
		if min := rp.Proposal.MinimumVotes; min > 0 && rp.VoteCount() < min {
			err = errors.ErrorInvalidOverrideToken.Clone().
				SetData("proposal", proposalID).
				SetData("reason", "minimum vote count not reached")
			return
		}
	}

	if result, err = rp.Close(voting.OVERRIDDEN, now); err != nil {
		return
	}

	log.Warn("proposal overridden", "proposal", proposalID)
	err = de.finalize(result, now)

	return
}

// Withdraw cancels a still-open proposal.
func (de *DecisionEngine) Withdraw(proposalID string, now time.Time) (result EvaluationResult, err error) {
	var rp *RunningProposal
	if rp, err = de.runningProposal(proposalID); err != nil {
		return
	}

	if result, err = rp.Close(voting.WITHDRAWN, now); err != nil {
		return
	}

	log.Info("proposal withdrawn", "proposal", proposalID)
	err = de.finalize(result, now)

	return
}

// Verdict reports the current verdict of a proposal, running or closed.
func (de *DecisionEngine) Verdict(proposalID string) (verdict voting.Verdict, err error) {
	de.RLock()
	defer de.RUnlock()

	if result, found := de.closed[proposalID]; found {
		verdict = result.Verdict
		return
	}
	if rp, found := de.proposals[proposalID]; found {
		verdict = rp.Window.Status()
		return
	}

	err = errors.ErrorProposalNotFound.Clone().SetData("proposal", proposalID)
	return
}

// finalize moves a proposal out of the active pool and records the
// verdict with the auditor. The result stays retrievable forever.
func (de *DecisionEngine) finalize(result EvaluationResult, now time.Time) (err error) {
	de.Lock()
	if _, found := de.closed[result.ProposalID]; found {
		de.Unlock()
		return
	}
	delete(de.proposals, result.ProposalID)
	de.closed[result.ProposalID] = result
	metrics.Engine.SetOpenProposals(len(de.proposals))
	de.Unlock()

	metrics.Engine.AddVerdict(result.Verdict.String())

	log.Info("verdict reached",
		"proposal", result.ProposalID,
		"verdict", result.Verdict,
		"fraction", result.Fraction,
		"required", result.Required,
		"votes", result.VoteCount,
	)

	err = de.auditor.RecordVerdict(
		result.ProposalID,
		result.Verdict,
		result.Fraction,
		result.Required,
		result.VoteCount,
		now,
	)

	return
}
