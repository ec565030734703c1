package stun

import (
	"fmt"
	"strings"
)

// DamageType is the damage category of a hit.
type DamageType uint8

const (
	DamagePhysical DamageType = iota
	DamageFire
	DamageCold
	DamageLightning
	DamageChaos
)

// DamageTypes lists every damage type in declaration order.
var DamageTypes = []DamageType{DamagePhysical, DamageFire, DamageCold, DamageLightning, DamageChaos}

var damageTypeNames = map[DamageType]string{
	DamagePhysical:  "physical",
	DamageFire:      "fire",
	DamageCold:      "cold",
	DamageLightning: "lightning",
	DamageChaos:     "chaos",
}

func (d DamageType) String() string {
	if name, ok := damageTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DamageType(%d)", uint8(d))
}

// Valid reports whether d is one of the declared damage types.
func (d DamageType) Valid() bool {
	_, ok := damageTypeNames[d]
	return ok
}

// ParseDamageType parses a damage type name (case-insensitive).
func ParseDamageType(s string) (DamageType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, dt := range DamageTypes {
		if damageTypeNames[dt] == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown damage type %q", ErrInvalidInput, s)
}

// AttackType is the delivery of a hit.
type AttackType uint8

const (
	AttackMelee AttackType = iota
	AttackRanged
	AttackSpell
)

// AttackTypes lists every attack type in declaration order.
var AttackTypes = []AttackType{AttackMelee, AttackRanged, AttackSpell}

var attackTypeNames = map[AttackType]string{
	AttackMelee:  "melee",
	AttackRanged: "ranged",
	AttackSpell:  "spell",
}

func (a AttackType) String() string {
	if name, ok := attackTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AttackType(%d)", uint8(a))
}

// Valid reports whether a is one of the declared attack types.
func (a AttackType) Valid() bool {
	_, ok := attackTypeNames[a]
	return ok
}

// ParseAttackType parses an attack type name (case-insensitive).
func ParseAttackType(s string) (AttackType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, at := range AttackTypes {
		if attackTypeNames[at] == name {
			return at, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown attack type %q", ErrInvalidInput, s)
}

// MeterState is the heavy stun meter state.
//
// Resting states after a hit are Dormant (empty), Building (below the primed
// threshold) and Primed. Triggered is only ever reported as the transition of
// the hit that filled the meter; the meter itself is reset to Dormant.
type MeterState uint8

const (
	StateDormant MeterState = iota
	StateBuilding
	StatePrimed
	StateTriggered
)

var meterStateNames = map[MeterState]string{
	StateDormant:   "dormant",
	StateBuilding:  "building",
	StatePrimed:    "primed",
	StateTriggered: "triggered",
}

func (s MeterState) String() string {
	if name, ok := meterStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("MeterState(%d)", uint8(s))
}

// Meter thresholds in percent of the heavy stun bar.
const (
	PrimedThreshold    = 50.0
	TriggeredThreshold = 100.0
)

// stateFor derives the resting state for a buildup value below TriggeredThreshold.
func stateFor(buildup float64) MeterState {
	switch {
	case buildup >= PrimedThreshold:
		return StatePrimed
	case buildup > 0:
		return StateBuilding
	default:
		return StateDormant
	}
}
