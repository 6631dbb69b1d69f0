package audit

import (
	"encoding/json"

	"kairosvote.io/kairos/lib/storage"
)

// Analyzer summarizes the recorded verdict trail. It is tooling over
// the audit store, not an input to any decision.
type Analyzer struct {
	storage *storage.LevelDBBackend
}

func NewAnalyzer(st *storage.LevelDBBackend) *Analyzer {
	return &Analyzer{storage: st}
}

func (a *Analyzer) Verdicts() (entries []VerdictEntry, err error) {
	return a.verdictsByPrefix(VerdictEntryPrefix)
}

// ProposalVerdicts returns the verdict trail of one proposal.
func (a *Analyzer) ProposalVerdicts(proposalID string) (entries []VerdictEntry, err error) {
	return a.verdictsByPrefix(VerdictEntryPrefix + proposalID + "-")
}

func (a *Analyzer) verdictsByPrefix(prefix string) (entries []VerdictEntry, err error) {
	it, closeFunc := a.storage.GetIterator(prefix, false)
	defer closeFunc()

	for {
		item, hasNext := it()
		if !hasNext {
			break
		}

		var entry VerdictEntry
		if err = json.Unmarshal(item.Value, &entry); err != nil {
			return
		}
		entries = append(entries, entry)
	}

	return
}

// ProposalWeights returns the recorded weight recomputes of one proposal.
func (a *Analyzer) ProposalWeights(proposalID string) (entries []WeightEntry, err error) {
	it, closeFunc := a.storage.GetIterator(WeightEntryPrefix+proposalID+"-", false)
	defer closeFunc()

	for {
		item, hasNext := it()
		if !hasNext {
			break
		}

		var entry WeightEntry
		if err = json.Unmarshal(item.Value, &entry); err != nil {
			return
		}
		entries = append(entries, entry)
	}

	return
}

// AverageMargin is the mean distance between tally and bar at decision
// time across all recorded verdicts.
func (a *Analyzer) AverageMargin() (float64, error) {
	entries, err := a.Verdicts()
	if err != nil {
		return 0, err
	}
	if len(entries) < 1 {
		return 0, nil
	}

	var total float64
	for _, entry := range entries {
		total += entry.Margin()
	}

	return total / float64(len(entries)), nil
}

// SuggestedBaseThreshold nudges the base up when proposals usually fail
// the bar, down when they usually clear it.
func (a *Analyzer) SuggestedBaseThreshold() (float64, error) {
	margin, err := a.AverageMargin()
	if err != nil {
		return 0, err
	}

	if margin < 0 {
		return 0.55, nil
	}

	return 0.50, nil
}
