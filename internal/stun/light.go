package stun

import "math"

// LightOutcome is the light stun verdict for one hit.
type LightOutcome struct {
	// FinalChance is the stun chance in percent, clamped to [0, 100].
	FinalChance float64
	// WillStun is the resolved outcome. Without a random source it is true
	// only for a guaranteed stun (FinalChance >= 100).
	WillStun bool
	// Rolled is set when a RandomSource decided WillStun.
	Rolled bool
	// Roll is the rolled value in percent units, valid when Rolled.
	Roll float64
}

// EvaluateLight computes the light stun chance of a single hit.
//
// Formula:
//
//	chance = damage × 100 / (maxLife × ReducedStunThreshold)
//	       × damageCoeff × attackCoeff × (1 + Increased/100) × More
//
// clamped to [0, 100]. Inputs are assumed validated by the Calculator.
func EvaluateLight(damage, targetMaxLife float64, dt DamageType, at AttackType, mods Modifiers, coeffs Coefficients) LightOutcome {
	effectiveLife := targetMaxLife * mods.ReducedStunThreshold

	var chance float64
	switch {
	case damage <= 0:
		chance = 0
	case effectiveLife <= 0:
		// Threshold reduced to nothing: any damage is a guaranteed stun.
		chance = TriggeredThreshold
	default:
		chance = damage * 100 / effectiveLife
		chance *= coeffs.Factor(dt, at)
		chance *= 1 + mods.IncreasedStunChance/100
		chance *= mods.MoreStunChance
	}

	chance = clampPercent(chance)
	return LightOutcome{
		FinalChance: chance,
		WillStun:    chance >= TriggeredThreshold,
	}
}

// ResolveLight rolls the outcome against src. A nil src keeps the
// deterministic verdict.
func ResolveLight(o LightOutcome, src RandomSource) LightOutcome {
	if src == nil {
		return o
	}
	roll := src.Float64() * 100
	o.Rolled = true
	o.Roll = roll
	o.WillStun = roll < o.FinalChance
	return o
}

// clampPercent maps v into [0, 100]. NaN (Inf × 0 on overflowing damage
// with a zero ratio) counts as no chance.
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
