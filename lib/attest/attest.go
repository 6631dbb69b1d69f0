package attest

import (
	"time"

	"kairosvote.io/kairos/lib/errors"
)

// Attestation is the trust boundary's answer about a vote timestamp.
// The engine trusts a validated timestamp as-is and never infers trust
// itself.
type Attestation struct {
	Validated      bool          `json:"validated"`
	CastAt         time.Time     `json:"cast_at"`
	DriftTolerance time.Duration `json:"drift_tolerance"`
}

// Attestor validates a vote's cast timestamp against `now`.
// Implementations must be safe to call concurrently for different votes.
type Attestor interface {
	Attest(castAt, now time.Time) (Attestation, error)
}

// LocalAttestor trusts the local clock within a drift tolerance.
// A timestamp further in the future than the tolerance, or older than
// maxAge, fails attestation.
type LocalAttestor struct {
	driftTolerance time.Duration
	maxAge         time.Duration // 0 disables the age check
}

func NewLocalAttestor(driftTolerance, maxAge time.Duration) *LocalAttestor {
	return &LocalAttestor{
		driftTolerance: driftTolerance,
		maxAge:         maxAge,
	}
}

func (a *LocalAttestor) Attest(castAt, now time.Time) (Attestation, error) {
	if castAt.After(now.Add(a.driftTolerance)) {
		return Attestation{}, errors.ErrorUntrustedTimestamp.Clone().SetData("reason", "timestamp in the future")
	}

	if a.maxAge > 0 && now.Sub(castAt) > a.maxAge {
		return Attestation{}, errors.ErrorUntrustedTimestamp.Clone().SetData("reason", "timestamp too old")
	}

	return Attestation{
		Validated:      true,
		CastAt:         castAt,
		DriftTolerance: a.driftTolerance,
	}, nil
}
