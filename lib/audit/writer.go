package audit

import (
	"fmt"
	"time"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/common/observer"
	"kairosvote.io/kairos/lib/storage"
	"kairosvote.io/kairos/lib/voting"
)

const (
	WeightEntryPrefix  = "audit-weight-"
	VerdictEntryPrefix = "audit-verdict-"
)

// WeightEntry records one effective-weight recomputation that moved a
// cached weight by more than the audit epsilon.
type WeightEntry struct {
	ProposalID string  `json:"proposal_id"`
	VoteID     string  `json:"vote_id"`
	OldWeight  float64 `json:"old_weight"`
	NewWeight  float64 `json:"new_weight"`
	ComputedAt string  `json:"computed_at"` // ISO8601
}

// VerdictEntry records a terminal state transition.
type VerdictEntry struct {
	ProposalID string         `json:"proposal_id"`
	Verdict    voting.Verdict `json:"verdict"`
	Fraction   float64        `json:"fraction"`
	Required   float64        `json:"required"`
	VoteCount  int            `json:"vote_count"`
	DecidedAt  string         `json:"decided_at"` // ISO8601
}

// Margin is positive when the tally beat the bar at decision time.
func (e VerdictEntry) Margin() float64 {
	return e.Fraction - e.Required
}

// Writer is the append-only boundary to the audit collaborator. The
// engine only ever writes here; decisions never read the trail back.
type Writer struct {
	storage *storage.LevelDBBackend
}

func NewWriter(st *storage.LevelDBBackend) *Writer {
	return &Writer{storage: st}
}

func (w *Writer) RecordWeight(entry WeightEntry) (err error) {
	key := fmt.Sprintf("%s%s-%s", WeightEntryPrefix, entry.ProposalID, common.GenerateUUID())
	if err = w.storage.New(key, entry); err != nil {
		return
	}

	event := observer.NewEvent(observer.ResourceWeight, observer.ConditionProposal, entry.ProposalID)
	observer.WeightObserver.Trigger(event.String(), entry)
	observer.WeightObserver.Trigger(observer.ResourceWeight+"-"+observer.ConditionAll, entry)

	return
}

func (w *Writer) RecordVerdict(proposalID string, verdict voting.Verdict, fraction, required float64, voteCount int, now time.Time) (err error) {
	entry := VerdictEntry{
		ProposalID: proposalID,
		Verdict:    verdict,
		Fraction:   fraction,
		Required:   required,
		VoteCount:  voteCount,
		DecidedAt:  common.FormatISO8601(now),
	}

	key := fmt.Sprintf("%s%s-%s", VerdictEntryPrefix, proposalID, common.GenerateUUID())
	if err = w.storage.New(key, entry); err != nil {
		return
	}

	event := observer.NewEvent(observer.ResourceVerdict, observer.ConditionProposal, proposalID)
	observer.VerdictObserver.Trigger(event.String(), entry)
	observer.VerdictObserver.Trigger(observer.ResourceVerdict+"-"+observer.ConditionAll, entry)

	return
}
