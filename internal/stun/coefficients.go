package stun

import "fmt"

// Coefficients is the stun efficiency table per damage and attack type.
// It is game data: loaded from config or the game-data database.
type Coefficients struct {
	Damage map[DamageType]float64
	Attack map[AttackType]float64
}

// DefaultCoefficients keeps the reference ordering:
// physical > elemental > chaos and melee > ranged > spell.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Damage: map[DamageType]float64{
			DamagePhysical:  1.0,
			DamageFire:      0.8,
			DamageCold:      0.8,
			DamageLightning: 0.8,
			DamageChaos:     0.6,
		},
		Attack: map[AttackType]float64{
			AttackMelee:  1.0,
			AttackRanged: 0.85,
			AttackSpell:  0.7,
		},
	}
}

// Validate requires a finite, non-negative coefficient for every type.
func (c Coefficients) Validate() error {
	for _, dt := range DamageTypes {
		v, ok := c.Damage[dt]
		if !ok {
			return fmt.Errorf("%w: missing %s damage coefficient", ErrInvalidInput, dt)
		}
		if !Finite(v) || v < 0 {
			return fmt.Errorf("%w: %s damage coefficient %v", ErrInvalidInput, dt, v)
		}
	}
	for _, at := range AttackTypes {
		v, ok := c.Attack[at]
		if !ok {
			return fmt.Errorf("%w: missing %s attack coefficient", ErrInvalidInput, at)
		}
		if !Finite(v) || v < 0 {
			return fmt.Errorf("%w: %s attack coefficient %v", ErrInvalidInput, at, v)
		}
	}
	return nil
}

// Factor returns the combined damage × attack coefficient.
func (c Coefficients) Factor(dt DamageType, at AttackType) float64 {
	return c.Damage[dt] * c.Attack[at]
}

// Clone returns a deep copy so callers can tweak a table without aliasing.
func (c Coefficients) Clone() Coefficients {
	out := Coefficients{
		Damage: make(map[DamageType]float64, len(c.Damage)),
		Attack: make(map[AttackType]float64, len(c.Attack)),
	}
	for k, v := range c.Damage {
		out.Damage[k] = v
	}
	for k, v := range c.Attack {
		out.Attack[k] = v
	}
	return out
}
