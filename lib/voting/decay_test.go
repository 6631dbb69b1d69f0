package voting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/errors"
)

func TestExponentialDecayHalfLife(t *testing.T) {
	d, err := NewExponentialDecay(10*time.Minute, DefaultWeightFloor)
	require.NoError(t, err)

	require.Equal(t, 1.0, d.Multiplier(0))
	require.InDelta(t, 0.5, d.Multiplier(10*time.Minute), 1e-9)
	require.InDelta(t, 0.25, d.Multiplier(20*time.Minute), 1e-9)

	// a vote evaluated long after several half-lives clamps at the floor
	require.Equal(t, DefaultWeightFloor, d.Multiplier(60*time.Minute))
}

func TestLinearDecay(t *testing.T) {
	d, err := NewLinearDecay(100*time.Second, DefaultWeightFloor)
	require.NoError(t, err)

	require.Equal(t, 1.0, d.Multiplier(0))
	require.InDelta(t, 0.8, d.Multiplier(20*time.Second), 1e-9)
	require.Equal(t, DefaultWeightFloor, d.Multiplier(200*time.Second))
}

func TestSteppedDecay(t *testing.T) {
	d, err := NewSteppedDecay([]DecayStep{
		{Age: 60 * time.Second, Factor: 0.8},
		{Age: 180 * time.Second, Factor: 0.5},
		{Age: 300 * time.Second, Factor: 0.2},
	}, DefaultWeightFloor)
	require.NoError(t, err)

	require.Equal(t, 1.0, d.Multiplier(30*time.Second))
	require.Equal(t, 0.8, d.Multiplier(60*time.Second))
	require.Equal(t, 0.5, d.Multiplier(200*time.Second))
	require.Equal(t, 0.2, d.Multiplier(2*time.Hour))
}

func TestSteppedDecayClampsAtFloor(t *testing.T) {
	d, err := NewSteppedDecay([]DecayStep{
		{Age: 60 * time.Second, Factor: 0.05},
	}, DefaultWeightFloor)
	require.NoError(t, err)

	require.Equal(t, DefaultWeightFloor, d.Multiplier(2*time.Minute))
}

func TestDecayMultiplierIsNonIncreasing(t *testing.T) {
	stepped, err := NewSteppedDecay([]DecayStep{
		{Age: 1 * time.Minute, Factor: 0.8},
		{Age: 3 * time.Minute, Factor: 0.5},
	}, DefaultWeightFloor)
	require.NoError(t, err)

	exponential, err := NewExponentialDecay(5*time.Minute, DefaultWeightFloor)
	require.NoError(t, err)

	linear, err := NewLinearDecay(20*time.Minute, DefaultWeightFloor)
	require.NoError(t, err)

	for _, d := range []DecayModel{stepped, exponential, linear} {
		prev := 1.0
		for age := time.Duration(0); age <= 2*time.Hour; age += 30 * time.Second {
			m := d.Multiplier(age)
			require.True(t, m <= prev, "%s: multiplier increased at age %s", d.Name(), age)
			require.True(t, m >= d.Floor(), "%s: multiplier below floor at age %s", d.Name(), age)
			prev = m
		}
	}
}

func TestInvalidDecayConfig(t *testing.T) {
	_, err := NewExponentialDecay(0, DefaultWeightFloor)
	require.True(t, errors.ErrorInvalidDecayConfig.Equal(err))

	_, err = NewLinearDecay(-1*time.Second, DefaultWeightFloor)
	require.True(t, errors.ErrorInvalidDecayConfig.Equal(err))

	_, err = NewExponentialDecay(time.Minute, 1.5)
	require.True(t, errors.ErrorInvalidDecayConfig.Equal(err))

	// non-monotone step factors are a configuration error
	_, err = NewSteppedDecay([]DecayStep{
		{Age: 1 * time.Minute, Factor: 0.5},
		{Age: 2 * time.Minute, Factor: 0.8},
	}, DefaultWeightFloor)
	require.True(t, errors.ErrorInvalidDecayConfig.Equal(err))

	// step ages must be strictly increasing
	_, err = NewSteppedDecay([]DecayStep{
		{Age: 2 * time.Minute, Factor: 0.8},
		{Age: 1 * time.Minute, Factor: 0.5},
	}, DefaultWeightFloor)
	require.True(t, errors.ErrorInvalidDecayConfig.Equal(err))
}
