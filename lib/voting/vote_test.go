package voting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/common/keypair"
	"kairosvote.io/kairos/lib/errors"
)

var networkID = []byte("kairos-test-network")

func TestVoteSignAndVerify(t *testing.T) {
	kp := keypair.Random()

	v := NewVote(kp.Address(), "proposal-abc", 100, time.Now())
	v.Sign(kp, networkID)

	require.NoError(t, v.IsWellFormed(networkID))
}

func TestVoteVerifyWrongNetwork(t *testing.T) {
	kp := keypair.Random()

	v := NewVote(kp.Address(), "proposal-abc", 100, time.Now())
	v.Sign(kp, networkID)

	err := v.Verify([]byte("another-network"))
	require.True(t, errors.ErrorSignatureVerificationFailed.Equal(err))
}

func TestVoteTamperedWeight(t *testing.T) {
	kp := keypair.Random()

	v := NewVote(kp.Address(), "proposal-abc", 100, time.Now())
	v.Sign(kp, networkID)

	v.B.RawWeight = 10000

	err := v.IsWellFormed(networkID)
	require.True(t, errors.ErrorInvalidVote.Equal(err))
}

func TestVoteRequiresPositiveWeight(t *testing.T) {
	kp := keypair.Random()

	v := NewVote(kp.Address(), "proposal-abc", 0, time.Now())
	v.Sign(kp, networkID)

	err := v.IsWellFormed(networkID)
	require.True(t, errors.ErrorInvalidVote.Equal(err))
}

func TestVoteSerializeRoundTrip(t *testing.T) {
	kp := keypair.Random()

	v := NewVote(kp.Address(), "proposal-abc", 42.5, time.Now())
	v.Sign(kp, networkID)

	encoded, err := v.Serialize()
	require.NoError(t, err)

	decoded, err := NewVoteFromJSON(encoded)
	require.NoError(t, err)
	require.NoError(t, decoded.IsWellFormed(networkID))
	require.Equal(t, v.GetHash(), decoded.GetHash())
}
