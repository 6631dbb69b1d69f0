package trust

import "sync"

// NeutralBonus is applied when a validator has no reputation entry.
const NeutralBonus = 1.0

// Provider supplies a per-validator trust multiplier, always >= 1.0.
// Reputation is computed by an external service; the engine only
// consumes the number. Implementations must be safe for concurrent use.
type Provider interface {
	Bonus(validator string) float64
}

type StaticProvider struct {
	sync.RWMutex

	bonuses map[string]float64
}

func NewStaticProvider(bonuses map[string]float64) *StaticProvider {
	copied := map[string]float64{}
	for validator, bonus := range bonuses {
		copied[validator] = bonus
	}

	return &StaticProvider{bonuses: copied}
}

func (p *StaticProvider) Bonus(validator string) float64 {
	p.RLock()
	defer p.RUnlock()

	bonus, found := p.bonuses[validator]
	if !found || bonus < NeutralBonus {
		return NeutralBonus
	}

	return bonus
}

func (p *StaticProvider) SetBonus(validator string, bonus float64) {
	p.Lock()
	defer p.Unlock()

	p.bonuses[validator] = bonus
}
