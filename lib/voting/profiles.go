package voting

import "time"

// DefaultProfiles registers one escalation profile per criticality.
// Critical proposals get a steeper, higher-base sigmoid rather than a
// runtime override of the normal profile, so each proposal's curve
// stays pure.
func DefaultProfiles() map[Criticality]EscalationConfig {
	return map[Criticality]EscalationConfig{
		CriticalityNormal: {
			Type:    EscalationLinear,
			Base:    0.51,
			Ceiling: DefaultThresholdCeiling,
			Rate:    (DefaultThresholdCeiling - 0.51) / (30 * time.Minute).Seconds(),
		},
		CriticalityCritical: {
			Type:      EscalationSigmoid,
			Base:      0.67,
			Ceiling:   DefaultThresholdCeiling,
			Midpoint:  10 * time.Minute,
			Steepness: 0.01,
		},
	}
}
