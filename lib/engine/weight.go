package engine

import (
	"time"

	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/cache"
	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/metrics"
	"kairosvote.io/kairos/lib/trust"
	"kairosvote.io/kairos/lib/voting"
)

// WeightEngine turns a vote's raw weight into its effective weight at a
// given instant:
//
//	effective = raw * decay(now - cast_at) * trust_bonus
//
// clamped between the decay floor and the undecayed bonus-adjusted
// weight. Results are cached and reused while younger than the recompute
// tolerance.
type WeightEngine struct {
	cache     cache.Adapter
	trust     trust.Provider
	tolerance time.Duration
	epsilon   float64
	auditor   Auditor
}

func NewWeightEngine(adapter cache.Adapter, provider trust.Provider, conf Config, auditor Auditor) *WeightEngine {
	return &WeightEngine{
		cache:     adapter,
		trust:     provider,
		tolerance: conf.RecomputeTolerance,
		epsilon:   conf.AuditEpsilon,
		auditor:   auditor,
	}
}

func (we *WeightEngine) cacheKey(p *voting.Proposal, v voting.Vote) string {
	return p.ID + "-" + v.GetHash()
}

// EffectiveWeight computes one vote's weight at `now`, hitting the cache
// first. Recomputes that move the weight by more than the audit epsilon
// are handed to the auditor.
func (we *WeightEngine) EffectiveWeight(p *voting.Proposal, v voting.Vote, now time.Time) (weight float64, err error) {
	key := we.cacheKey(p, v)

	var old *cache.Entry
	if entry, found := we.cache.Get(key); found {
		age := now.Sub(entry.ComputedAt)
		if age >= 0 && age < we.tolerance {
			weight = entry.Weight
			return
		}
		old = entry
	}

	var castAt time.Time
	if castAt, err = v.CastAt(); err != nil {
		err = errors.ErrorInvalidVote.Clone().SetData("cast_at", v.B.CastAt)
		return
	}

	weight = we.compute(p, v, castAt, now)
	metrics.Engine.AddWeightRecomputes(1)

	if old != nil && abs(weight-old.Weight) > we.epsilon {
		entry := audit.WeightEntry{
			ProposalID: p.ID,
			VoteID:     v.GetHash(),
			OldWeight:  old.Weight,
			NewWeight:  weight,
			ComputedAt: common.FormatISO8601(now),
		}
		if err = we.auditor.RecordWeight(entry); err != nil {
			return
		}
	}

	we.cache.Set(key, &cache.Entry{
		VoteID:     v.GetHash(),
		Weight:     weight,
		ComputedAt: now,
	})

	return
}

func (we *WeightEngine) compute(p *voting.Proposal, v voting.Vote, castAt, now time.Time) float64 {
	age := now.Sub(castAt)
	if age < 0 {
		// attestation tolerates small clock drift; a vote from the
		// near future simply has not started decaying
		age = 0
	}

	raw := v.RawWeight()
	bonus := we.trust.Bonus(v.Validator())

	weight := raw * p.Decay.Multiplier(age) * bonus

	if floor := raw * p.Decay.Floor(); weight < floor {
		weight = floor
	}
	if ceiling := raw * bonus; weight > ceiling {
		weight = ceiling
	}

	return weight
}

// BatchWeights evaluates every vote at a single shared instant and
// returns the effective total. One `now` across the batch keeps a tally
// internally consistent no matter how long the sweep takes.
func (we *WeightEngine) BatchWeights(p *voting.Proposal, votes []voting.Vote, now time.Time) (total float64, err error) {
	for _, v := range votes {
		var w float64
		if w, err = we.EffectiveWeight(p, v, now); err != nil {
			return
		}
		total += w
	}

	return
}

// Invalidate drops the cached weight of one vote.
func (we *WeightEngine) Invalidate(p *voting.Proposal, v voting.Vote) {
	we.cache.Remove(we.cacheKey(p, v))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
