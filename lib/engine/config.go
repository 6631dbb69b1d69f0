package engine

import (
	"time"

	"kairosvote.io/kairos/lib/errors"
)

const (
	// DefaultRecomputeTolerance is how stale a cached effective weight may
	// be before it is recomputed against the decay curve.
	DefaultRecomputeTolerance time.Duration = 5 * time.Second

	// DefaultAuditEpsilon is the minimum change of an effective weight that
	// gets a recompute entry in the audit trail.
	DefaultAuditEpsilon float64 = 0.0001

	DefaultWeightCacheSize    int           = 100000
	DefaultEvaluationInterval time.Duration = 5 * time.Second
)

// Config carries the engine-wide knobs. Per-proposal policy (decay model,
// escalation profile, window) lives on the proposal itself.
type Config struct {
	NetworkID []byte

	RecomputeTolerance time.Duration
	AuditEpsilon       float64
	WeightCacheSize    int

	// OverrideRespectsQuorum makes Override still require the absolute
	// minimum vote count; by default an override bypasses the tally
	// entirely.
	OverrideRespectsQuorum bool

	EvaluationInterval time.Duration
}

func NewConfig(networkID []byte) Config {
	return Config{
		NetworkID:          networkID,
		RecomputeTolerance: DefaultRecomputeTolerance,
		AuditEpsilon:       DefaultAuditEpsilon,
		WeightCacheSize:    DefaultWeightCacheSize,
		EvaluationInterval: DefaultEvaluationInterval,
	}
}

func (c Config) IsWellFormed() (err error) {
	if len(c.NetworkID) < 1 {
		err = errors.ErrorInvalidConfig.Clone().SetData("error", "empty network id")
		return
	}
	if c.RecomputeTolerance < 0 {
		err = errors.ErrorInvalidConfig.Clone().SetData("error", "negative recompute tolerance")
		return
	}
	if c.AuditEpsilon < 0 {
		err = errors.ErrorInvalidConfig.Clone().SetData("error", "negative audit epsilon")
		return
	}
	if c.WeightCacheSize < 1 {
		err = errors.ErrorInvalidConfig.Clone().SetData("error", "weight cache size must be positive")
		return
	}
	if c.EvaluationInterval <= 0 {
		err = errors.ErrorInvalidConfig.Clone().SetData("error", "evaluation interval must be positive")
		return
	}

	return
}
