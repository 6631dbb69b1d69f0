package voting

import (
	"encoding/json"
	"time"

	"github.com/btcsuite/btcutil/base58"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/common/keypair"
	"kairosvote.io/kairos/lib/errors"
)

// Vote is a single validator's signed vote on a proposal. Votes are
// immutable once accepted; the effective weight is derived at
// evaluation time, never stored back into the vote.
type Vote struct {
	H VoteHeader
	B VoteBody
}

type VoteHeader struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

type VoteBody struct {
	Validator  string  `json:"validator"`
	ProposalID string  `json:"proposal_id"`
	CastAt     string  `json:"cast_at"` // ISO8601
	RawWeight  float64 `json:"raw_weight"`
}

func NewVote(validator, proposalID string, rawWeight float64, castAt time.Time) (v *Vote) {
	v = &Vote{
		H: VoteHeader{},
		B: VoteBody{
			Validator:  validator,
			ProposalID: proposalID,
			CastAt:     common.FormatISO8601(castAt),
			RawWeight:  rawWeight,
		},
	}

	return
}

func NewVoteFromJSON(data []byte) (v Vote, err error) {
	if err = json.Unmarshal(data, &v); err != nil {
		return
	}

	return
}

func (v Vote) GetHash() string {
	return v.H.Hash
}

func (v Vote) Validator() string {
	return v.B.Validator
}

func (v Vote) ProposalID() string {
	return v.B.ProposalID
}

func (v Vote) RawWeight() float64 {
	return v.B.RawWeight
}

func (v Vote) CastAt() (time.Time, error) {
	return common.ParseISO8601(v.B.CastAt)
}

func (v Vote) Serialize() (encoded []byte, err error) {
	encoded, err = json.Marshal(v)
	return
}

func (v Vote) String() string {
	encoded, _ := json.MarshalIndent(v, "", "  ")
	return string(encoded)
}

func (v *Vote) Sign(kp keypair.KP, networkID []byte) {
	v.B.Validator = kp.Address()
	v.H.Hash = v.B.MakeHashString()
	signature, _ := keypair.MakeSignature(kp, networkID, v.H.Hash)
	v.H.Signature = base58.Encode(signature)

	return
}

func (v Vote) Verify(networkID []byte) (err error) {
	var kp keypair.KP
	if kp, err = keypair.Parse(v.B.Validator); err != nil {
		return
	}
	err = kp.Verify(
		append(networkID, []byte(v.H.Hash)...),
		base58.Decode(v.H.Signature),
	)
	if err != nil {
		err = errors.ErrorSignatureVerificationFailed
		return
	}

	return
}

func (v Vote) IsWellFormed(networkID []byte) (err error) {
	if len(v.B.Validator) < 1 || len(v.B.ProposalID) < 1 {
		err = errors.ErrorInvalidVote
		return
	}

	if v.B.RawWeight <= 0 {
		err = errors.ErrorInvalidVote.Clone().SetData("raw_weight", v.B.RawWeight)
		return
	}

	if _, err = common.ParseISO8601(v.B.CastAt); err != nil {
		err = errors.ErrorInvalidVote.Clone().SetData("cast_at", v.B.CastAt)
		return
	}

	if v.H.Hash != v.B.MakeHashString() {
		err = errors.ErrorInvalidVote.Clone().SetData("reason", "hash mismatch")
		return
	}

	if err = v.Verify(networkID); err != nil {
		return
	}

	return
}

func (vb VoteBody) MakeHashString() string {
	return base58.Encode(common.MustMakeObjectHash(vb))
}
