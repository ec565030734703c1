package stun

import "fmt"

// Modifiers are the stun-related bonuses of the attacker.
//
// IncreasedStunChance is additive in percent (+75 means ×1.75).
// MoreStunChance and StunBuildupMultiplier are plain ratios.
// ReducedStunThreshold scales the target's max life for light stun only,
// so values below 1 make the target easier to stun.
type Modifiers struct {
	IncreasedStunChance   float64
	MoreStunChance        float64
	StunBuildupMultiplier float64
	ReducedStunThreshold  float64
}

// NeutralModifiers returns modifiers that change nothing.
func NeutralModifiers() Modifiers {
	return Modifiers{
		MoreStunChance:        1.0,
		StunBuildupMultiplier: 1.0,
		ReducedStunThreshold:  1.0,
	}
}

// Validate rejects negative or non-finite ratios.
func (m Modifiers) Validate() error {
	if !Finite(m.IncreasedStunChance) {
		return fmt.Errorf("%w: increased stun chance %v", ErrInvalidInput, m.IncreasedStunChance)
	}
	ratios := []struct {
		name  string
		value float64
	}{
		{"more stun chance", m.MoreStunChance},
		{"stun buildup multiplier", m.StunBuildupMultiplier},
		{"reduced stun threshold", m.ReducedStunThreshold},
	}
	for _, r := range ratios {
		if !Finite(r.value) || r.value < 0 {
			return fmt.Errorf("%w: %s %v must be a finite ratio >= 0", ErrInvalidInput, r.name, r.value)
		}
	}
	return nil
}

// ModifierOverrides holds optionally set modifiers as decoded from scripts or
// tool input. Nil fields stay neutral.
type ModifierOverrides struct {
	IncreasedStunChance   *float64
	MoreStunChance        *float64
	StunBuildupMultiplier *float64
	ReducedStunThreshold  *float64
}

// Modifiers merges the set fields over NeutralModifiers.
func (o ModifierOverrides) Modifiers() Modifiers {
	m := NeutralModifiers()
	if o.IncreasedStunChance != nil {
		m.IncreasedStunChance = *o.IncreasedStunChance
	}
	if o.MoreStunChance != nil {
		m.MoreStunChance = *o.MoreStunChance
	}
	if o.StunBuildupMultiplier != nil {
		m.StunBuildupMultiplier = *o.StunBuildupMultiplier
	}
	if o.ReducedStunThreshold != nil {
		m.ReducedStunThreshold = *o.ReducedStunThreshold
	}
	return m
}

// orNeutral dereferences optional modifiers.
func orNeutral(m *Modifiers) Modifiers {
	if m == nil {
		return NeutralModifiers()
	}
	return *m
}
