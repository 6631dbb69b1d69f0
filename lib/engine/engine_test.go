package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/common/keypair"
	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/trust"
	"kairosvote.io/kairos/lib/voting"
)

func newTestDecisionEngine(t *testing.T, auditor Auditor) *DecisionEngine {
	we := newTestWeightEngine(trust.NewStaticProvider(nil), auditor)
	attestor := attest.NewLocalAttestor(time.Minute, time.Hour)

	de, err := NewDecisionEngine(NewConfig(testNetworkID), we, attestor, auditor)
	require.NoError(t, err)

	return de
}

func TestDecisionEngineImmediatePass(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "pass", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(p))

	v := newSignedVote(p.ID, 100, testOpenedAt)
	require.NoError(t, de.SubmitVote(v, testOpenedAt.Add(time.Second)))

	result, err := de.Evaluate(p.ID, testOpenedAt.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, voting.PASSED, result.Verdict)
	require.True(t, result.Verdict.IsAccepted())
	require.True(t, result.Fraction >= result.Required)
	require.Equal(t, 1, result.VoteCount)
}

func TestDecisionEngineEvaluateIdempotent(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "idempotent", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(p))
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 100, testOpenedAt), testOpenedAt.Add(time.Second)))

	now := testOpenedAt.Add(2 * time.Second)

	first, err := de.Evaluate(p.ID, now)
	require.NoError(t, err)
	require.Equal(t, voting.PASSED, first.Verdict)

	// a terminal verdict never moves and the recorded result is
	// returned unchanged, even much later
	second, err := de.Evaluate(p.ID, now)
	require.NoError(t, err)
	require.Equal(t, first, second)

	third, err := de.Evaluate(p.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, first, third)
}

func TestDecisionEngineMinimumVotes(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "quorum", testOpenedAt, 100, 10*time.Minute)
	p.MinimumVotes = 3
	require.NoError(t, de.AddProposal(p))

	// one validator carrying the entire eligible weight clears the
	// fraction bar but not the absolute count; both must hold
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 100, testOpenedAt), testOpenedAt.Add(time.Second)))

	result, err := de.Evaluate(p.ID, testOpenedAt.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, voting.PENDING, result.Verdict)
	require.True(t, result.Fraction >= result.Required)
}

func TestDecisionEngineNearMissExtension(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	// very long half-life so decay is negligible across the window
	p := newTestProposal(t, "nearmiss", testOpenedAt, 100, 1000*time.Hour)
	require.NoError(t, de.AddProposal(p))

	// 0.48 of the eligible weight: 0.03 short of the 0.51 bar,
	// within the 0.05 near-miss epsilon
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 48, testOpenedAt), testOpenedAt.Add(time.Second)))

	// 28m in, 2m before the 30m deadline: inside the trigger window
	result, err := de.Evaluate(p.ID, testOpenedAt.Add(28*time.Minute))
	require.NoError(t, err)
	require.Equal(t, voting.PENDING, result.Verdict)
	require.True(t, result.Extended)
	require.Equal(t, testOpenedAt.Add(33*time.Minute), result.Deadline)

	// a late vote lands inside the extension and tips the tally
	late := newSignedVote(p.ID, 10, testOpenedAt.Add(30*time.Minute+30*time.Second))
	require.NoError(t, de.SubmitVote(late, testOpenedAt.Add(30*time.Minute+30*time.Second)))

	result, err = de.Evaluate(p.ID, testOpenedAt.Add(31*time.Minute))
	require.NoError(t, err)
	require.Equal(t, voting.PASSED, result.Verdict)
}

func TestDecisionEngineExpiry(t *testing.T) {
	auditor := &recordingAuditor{}
	de := newTestDecisionEngine(t, auditor)

	p := newTestProposal(t, "expired", testOpenedAt, 100, 1000*time.Hour)
	require.NoError(t, de.AddProposal(p))

	// far short of the bar: no near miss, no extension
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 20, testOpenedAt), testOpenedAt.Add(time.Second)))

	result, err := de.Evaluate(p.ID, testOpenedAt.Add(31*time.Minute))
	require.NoError(t, err)
	require.Equal(t, voting.EXPIRED, result.Verdict)
	require.False(t, result.Extended)

	// the closed proposal takes no more votes
	err = de.SubmitVote(newSignedVote(p.ID, 80, testOpenedAt.Add(31*time.Minute)), testOpenedAt.Add(31*time.Minute))
	require.True(t, errors.ErrorProposalNotOpen.Equal(err))

	require.Len(t, auditor.verdicts, 1)
	require.Equal(t, voting.EXPIRED, auditor.verdicts[0].Verdict)
}

func TestDecisionEngineWithdraw(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "withdrawn", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(p))

	now := testOpenedAt.Add(time.Minute)
	result, err := de.Withdraw(p.ID, now)
	require.NoError(t, err)
	require.Equal(t, voting.WITHDRAWN, result.Verdict)
	require.False(t, result.Verdict.IsAccepted())

	// terminal states never move backward
	result, err = de.Evaluate(p.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, voting.WITHDRAWN, result.Verdict)

	_, err = de.Withdraw(p.ID, now.Add(time.Minute))
	require.True(t, errors.ErrorProposalNotOpen.Equal(err))
}

func TestDecisionEngineOverride(t *testing.T) {
	auditor := &recordingAuditor{}
	de := newTestDecisionEngine(t, auditor)
	de.SetOverrideAuthorizer(OverrideAuthorizerFunc(func(proposalID, token string) bool {
		return token == "emergency-0001"
	}))

	p := newTestProposal(t, "overridden", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(p))

	now := testOpenedAt.Add(time.Minute)

	_, err := de.Override(p.ID, "wrong-token", now)
	require.True(t, errors.ErrorInvalidOverrideToken.Equal(err))

	result, err := de.Override(p.ID, "emergency-0001", now)
	require.NoError(t, err)
	require.Equal(t, voting.OVERRIDDEN, result.Verdict)

	// passed-equivalent downstream, tagged distinctly in the audit trail
	require.True(t, result.Verdict.IsAccepted())
	require.Len(t, auditor.verdicts, 1)
	require.Equal(t, voting.OVERRIDDEN, auditor.verdicts[0].Verdict)
}

func TestDecisionEngineOverrideRespectsQuorum(t *testing.T) {
	we := newTestWeightEngine(trust.NewStaticProvider(nil), NewNopAuditor())
	conf := NewConfig(testNetworkID)
	conf.OverrideRespectsQuorum = true

	de, err := NewDecisionEngine(conf, we, attest.NewLocalAttestor(time.Minute, time.Hour), NewNopAuditor())
	require.NoError(t, err)
	de.SetOverrideAuthorizer(OverrideAuthorizerFunc(func(proposalID, token string) bool {
		return true
	}))

	p := newTestProposal(t, "quorum-override", testOpenedAt, 100, 10*time.Minute)
	p.MinimumVotes = 2
	require.NoError(t, de.AddProposal(p))

	now := testOpenedAt.Add(time.Minute)

	_, err = de.Override(p.ID, "any", now)
	require.True(t, errors.ErrorInvalidOverrideToken.Equal(err))

	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 40, testOpenedAt), now))
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 30, testOpenedAt), now))

	result, err := de.Override(p.ID, "any", now)
	require.NoError(t, err)
	require.Equal(t, voting.OVERRIDDEN, result.Verdict)
}

func TestDecisionEngineUntrustedTimestamp(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "untrusted", testOpenedAt, 100, 1000*time.Hour)
	require.NoError(t, de.AddProposal(p))

	now := testOpenedAt.Add(time.Minute)

	// cast two hours before submission, past the attestor's max age;
	// rejected and surfaced, never silently dropped
	stale := newSignedVote(p.ID, 60, now.Add(-2*time.Hour))
	err := de.SubmitVote(stale, now)
	require.True(t, errors.ErrorUntrustedTimestamp.Equal(err))

	// the proposal keeps evaluating with the remaining valid votes
	require.NoError(t, de.SubmitVote(newSignedVote(p.ID, 60, testOpenedAt), now))

	result, err := de.Evaluate(p.ID, now)
	require.NoError(t, err)
	require.Equal(t, voting.PASSED, result.Verdict)
	require.Equal(t, 1, result.VoteCount)
}

func TestDecisionEngineSupersedingVote(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "supersede", testOpenedAt, 100, 1000*time.Hour)
	require.NoError(t, de.AddProposal(p))

	kp := keypair.Random()

	first := voting.NewVote(kp.Address(), p.ID, 30, testOpenedAt)
	first.Sign(kp, testNetworkID)
	require.NoError(t, de.SubmitVote(*first, testOpenedAt.Add(time.Second)))

	// the identical vote again is a duplicate
	err := de.SubmitVote(*first, testOpenedAt.Add(2*time.Second))
	require.True(t, errors.ErrorVoteAlreadyCast.Equal(err))

	// a fresh vote from the same validator supersedes the old one
	second := voting.NewVote(kp.Address(), p.ID, 50, testOpenedAt.Add(time.Minute))
	second.Sign(kp, testNetworkID)
	require.NoError(t, de.SubmitVote(*second, testOpenedAt.Add(time.Minute)))

	rp, err := de.Proposal(p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, rp.VoteCount())
	require.Equal(t, second.GetHash(), rp.Votes()[0].GetHash())
}

func TestDecisionEngineUnknownProposal(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	err := de.SubmitVote(newSignedVote("nope", 10, testOpenedAt), testOpenedAt)
	require.True(t, errors.ErrorProposalNotFound.Equal(err))

	_, err = de.Evaluate("nope", testOpenedAt)
	require.True(t, errors.ErrorProposalNotFound.Equal(err))

	_, err = de.Verdict("nope")
	require.True(t, errors.ErrorProposalNotFound.Equal(err))
}

func TestDecisionEngineDuplicateProposal(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	p := newTestProposal(t, "dup", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(p))

	err := de.AddProposal(p)
	require.True(t, errors.ErrorProposalAlreadyExists.Equal(err))
}

func TestDecisionEngineEvaluateAll(t *testing.T) {
	de := newTestDecisionEngine(t, NewNopAuditor())

	a := newTestProposal(t, "sweep-a", testOpenedAt, 100, 10*time.Minute)
	b := newTestProposal(t, "sweep-b", testOpenedAt, 100, 10*time.Minute)
	require.NoError(t, de.AddProposal(a))
	require.NoError(t, de.AddProposal(b))

	require.NoError(t, de.SubmitVote(newSignedVote(a.ID, 100, testOpenedAt), testOpenedAt.Add(time.Second)))

	results := de.EvaluateAll(testOpenedAt.Add(2 * time.Second))
	require.Len(t, results, 2)

	verdicts := map[string]voting.Verdict{}
	for _, result := range results {
		verdicts[result.ProposalID] = result.Verdict
	}
	require.Equal(t, voting.PASSED, verdicts[a.ID])
	require.Equal(t, voting.PENDING, verdicts[b.ID])

	// the passed proposal left the active pool
	require.Equal(t, []string{b.ID}, de.RunningProposalIDs())

	verdict, err := de.Verdict(a.ID)
	require.NoError(t, err)
	require.Equal(t, voting.PASSED, verdict)
}
