package attest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/errors"
)

func TestLocalAttestorValid(t *testing.T) {
	a := NewLocalAttestor(5*time.Second, 5*time.Minute)
	now := time.Now()

	att, err := a.Attest(now.Add(-time.Minute), now)
	require.NoError(t, err)
	require.True(t, att.Validated)
	require.Equal(t, 5*time.Second, att.DriftTolerance)
}

func TestLocalAttestorFutureTimestamp(t *testing.T) {
	a := NewLocalAttestor(5*time.Second, 0)
	now := time.Now()

	// within drift tolerance
	_, err := a.Attest(now.Add(3*time.Second), now)
	require.NoError(t, err)

	// beyond drift tolerance
	_, err = a.Attest(now.Add(10*time.Second), now)
	require.True(t, errors.ErrorUntrustedTimestamp.Equal(err))
}

func TestLocalAttestorExpiredTimestamp(t *testing.T) {
	a := NewLocalAttestor(5*time.Second, 5*time.Minute)
	now := time.Now()

	_, err := a.Attest(now.Add(-10*time.Minute), now)
	require.True(t, errors.ErrorUntrustedTimestamp.Equal(err))
}

func TestLocalAttestorNoAgeLimit(t *testing.T) {
	a := NewLocalAttestor(5*time.Second, 0)
	now := time.Now()

	_, err := a.Attest(now.Add(-24*time.Hour), now)
	require.NoError(t, err)
}
