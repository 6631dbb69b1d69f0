package engine

import (
	"time"

	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/voting"
)

// Auditor receives every weight recompute and every verdict transition.
// audit.Writer is the persistent implementation.
type Auditor interface {
	RecordWeight(entry audit.WeightEntry) error
	RecordVerdict(proposalID string, verdict voting.Verdict, fraction, required float64, voteCount int, now time.Time) error
}

// NopAuditor drops everything.
type NopAuditor struct{}

func NewNopAuditor() NopAuditor {
	return NopAuditor{}
}

func (NopAuditor) RecordWeight(audit.WeightEntry) error {
	return nil
}

func (NopAuditor) RecordVerdict(string, voting.Verdict, float64, float64, int, time.Time) error {
	return nil
}
