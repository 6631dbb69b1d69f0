package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/voting"
)

var testOpenedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWindowConfig() voting.WindowConfig {
	return voting.WindowConfig{
		Type:        voting.WindowMedium, // 30 minutes
		GraceBuffer: 5 * time.Second,
		Extension: voting.ExtensionPolicy{
			TriggerWindow:     3 * time.Minute,
			NearMissEpsilon:   0.05,
			ExtensionLength:   3 * time.Minute,
			MaxExtensions:     1,
			MaxTotalExtension: 6 * time.Minute,
		},
	}
}

func TestWindowDeadline(t *testing.T) {
	w, err := NewWindow(testOpenedAt, newTestWindowConfig())
	require.NoError(t, err)

	require.Equal(t, voting.PENDING, w.Status())
	require.True(t, w.IsOpen())
	require.Equal(t, testOpenedAt, w.OpenedAt())
	require.Equal(t, testOpenedAt.Add(30*time.Minute), w.Deadline())
}

func TestWindowGraceBuffer(t *testing.T) {
	w, err := NewWindow(testOpenedAt, newTestWindowConfig())
	require.NoError(t, err)

	deadline := w.Deadline()

	require.False(t, w.IsExpired(deadline))
	require.False(t, w.IsExpired(deadline.Add(4*time.Second))) // inside grace
	require.True(t, w.IsExpired(deadline.Add(6*time.Second)))
}

func TestWindowExtend(t *testing.T) {
	w, err := NewWindow(testOpenedAt, newTestWindowConfig())
	require.NoError(t, err)

	now := testOpenedAt.Add(28 * time.Minute)
	require.NoError(t, w.Extend(now, "near miss"))

	require.Equal(t, testOpenedAt.Add(33*time.Minute), w.Deadline())
	require.Equal(t, 3*time.Minute, w.TotalExtension())
	require.Len(t, w.Extensions(), 1)

	// quota of one extension is spent
	err = w.Extend(now.Add(time.Minute), "near miss")
	require.True(t, errors.ErrorExtensionLimitExceeded.Equal(err))
}

func TestWindowMaxTotalExtension(t *testing.T) {
	conf := newTestWindowConfig()
	conf.Extension.MaxExtensions = 10
	conf.Extension.MaxTotalExtension = 5 * time.Minute

	w, err := NewWindow(testOpenedAt, conf)
	require.NoError(t, err)

	now := testOpenedAt.Add(28 * time.Minute)
	require.NoError(t, w.Extend(now, "near miss"))

	// a second 3 minute extension would exceed the 5 minute total
	err = w.Extend(now, "near miss")
	require.True(t, errors.ErrorExtensionLimitExceeded.Equal(err))
}

func TestWindowShouldExtend(t *testing.T) {
	w, err := NewWindow(testOpenedAt, newTestWindowConfig())
	require.NoError(t, err)

	early := testOpenedAt.Add(10 * time.Minute)
	late := testOpenedAt.Add(28 * time.Minute)

	// outside the trigger window
	require.False(t, w.ShouldExtend(early, 0.48, 0.51))

	// inside the trigger window, shortfall within epsilon
	require.True(t, w.ShouldExtend(late, 0.48, 0.51))

	// not a near miss: already past the bar
	require.False(t, w.ShouldExtend(late, 0.52, 0.51))

	// not a near miss: too far short
	require.False(t, w.ShouldExtend(late, 0.40, 0.51))
}

func TestWindowTransition(t *testing.T) {
	w, err := NewWindow(testOpenedAt, newTestWindowConfig())
	require.NoError(t, err)

	// non-terminal target is a caller bug
	require.Error(t, w.Transition(voting.PENDING))

	require.NoError(t, w.Transition(voting.PASSED))
	require.Equal(t, voting.PASSED, w.Status())
	require.False(t, w.IsOpen())

	// terminal states are sticky
	err = w.Transition(voting.EXPIRED)
	require.True(t, errors.ErrorProposalNotOpen.Equal(err))
	require.Equal(t, voting.PASSED, w.Status())

	err = w.Extend(testOpenedAt.Add(28*time.Minute), "near miss")
	require.True(t, errors.ErrorProposalNotOpen.Equal(err))
}
