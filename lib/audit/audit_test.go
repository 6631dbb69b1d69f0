package audit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/common/observer"
	"kairosvote.io/kairos/lib/storage"
	"kairosvote.io/kairos/lib/voting"
)

func TestWriterRecordWeight(t *testing.T) {
	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	w := NewWriter(st)

	entry := WeightEntry{
		ProposalID: "proposal-1",
		VoteID:     "vote-1",
		OldWeight:  100,
		NewWeight:  80,
		ComputedAt: common.NowISO8601(),
	}
	require.NoError(t, w.RecordWeight(entry))

	it, closeFunc := st.GetIterator(WeightEntryPrefix, false)
	defer closeFunc()
	_, hasNext := it()
	require.True(t, hasNext)
}

func TestWriterRecordVerdictPublishes(t *testing.T) {
	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	w := NewWriter(st)

	var wg sync.WaitGroup
	wg.Add(1)

	var received VerdictEntry
	event := observer.NewEvent(observer.ResourceVerdict, observer.ConditionProposal, "proposal-2").String()
	callback := func(args ...interface{}) {
		received = args[0].(VerdictEntry)
		wg.Done()
	}
	observer.VerdictObserver.On(event, callback)
	defer observer.VerdictObserver.Off(event, callback)

	require.NoError(t, w.RecordVerdict("proposal-2", voting.PASSED, 0.80, 0.55, 3, time.Now()))

	wg.Wait()
	require.Equal(t, voting.PASSED, received.Verdict)
	require.Equal(t, 3, received.VoteCount)
}

func TestAnalyzerMargins(t *testing.T) {
	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	w := NewWriter(st)
	now := time.Now()

	require.NoError(t, w.RecordVerdict("p1", voting.PASSED, 0.80, 0.60, 4, now))
	require.NoError(t, w.RecordVerdict("p2", voting.EXPIRED, 0.40, 0.60, 2, now))

	a := NewAnalyzer(st)

	margin, err := a.AverageMargin()
	require.NoError(t, err)
	require.InDelta(t, 0.0, margin, 1e-9) // +0.20 and -0.20

	suggested, err := a.SuggestedBaseThreshold()
	require.NoError(t, err)
	require.Equal(t, 0.50, suggested)
}

func TestAnalyzerSuggestsRaiseOnFailures(t *testing.T) {
	st, err := storage.NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	w := NewWriter(st)
	require.NoError(t, w.RecordVerdict("p1", voting.EXPIRED, 0.30, 0.60, 1, time.Now()))

	a := NewAnalyzer(st)
	suggested, err := a.SuggestedBaseThreshold()
	require.NoError(t, err)
	require.Equal(t, 0.55, suggested)
}
