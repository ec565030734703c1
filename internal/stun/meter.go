package stun

import (
	"math"
	"sync"
)

// Meter is the heavy stun buildup of one target.
//
// Meters are owned by a Registry; callers obtain them through it and mutate
// them only via ApplyHit and Decay. Thread-safe: every meter has its own
// mutex, so hits on different targets never contend.
type Meter struct {
	mu sync.Mutex

	targetID      string
	buildup       float64 // percent, always in [0, 100)
	state         MeterState
	hits          int
	heavyStuns    int
	crushingBlows int
}

func newMeter(targetID string) *Meter {
	return &Meter{targetID: targetID, state: StateDormant}
}

// MeterSnapshot is an immutable copy of a meter.
type MeterSnapshot struct {
	TargetID          string
	BuildupPercentage float64
	State             MeterState
	Hits              int
	HeavyStuns        int
	CrushingBlows     int
}

// IsPrimed reports whether the next hit lands a crushing blow.
func (s MeterSnapshot) IsPrimed() bool {
	return s.State == StatePrimed
}

// HeavyOutcome is the effect of one hit on a heavy stun meter.
type HeavyOutcome struct {
	// Meter is the state after this hit (already reset when triggered).
	Meter MeterSnapshot
	// BuildupAdded is the buildup this hit contributed, in percent.
	BuildupAdded float64
	// TriggeredHeavyStun is true on the hit that filled the meter.
	TriggeredHeavyStun bool
	// TriggeredCrushingBlow is true when the hit landed on a primed meter.
	TriggeredCrushingBlow bool
	// HitsToHeavyStun estimates the remaining hits of this size to fill the
	// meter from its post-hit value; +Inf when the hit adds nothing.
	HitsToHeavyStun float64
	PriorState      MeterState
	// Transition is StateTriggered on the filling hit, else the new state.
	Transition MeterState
}

// heavyBuildup is the raw meter contribution of one hit, in percent.
func heavyBuildup(damage, targetMaxLife float64, dt DamageType, at AttackType, mods Modifiers, coeffs Coefficients) float64 {
	if damage <= 0 {
		return 0
	}
	raw := damage * 100 / targetMaxLife * coeffs.Factor(dt, at) * mods.StunBuildupMultiplier
	if math.IsNaN(raw) {
		return 0
	}
	return raw
}

// hitsToFill divides the remaining buildup by the per-hit delta.
func hitsToFill(remaining, perHit float64) float64 {
	if perHit <= 0 {
		return math.Inf(1)
	}
	return remaining / perHit
}

// ApplyHit adds the buildup of one hit and runs the state transitions:
//
//	buildup >= 100 → heavy stun, meter resets to 0 / dormant
//	buildup >= 50  → primed
//	buildup > 0    → building
//
// A hit landing while primed is a crushing blow, whether or not it also
// fills the meter. Inputs are assumed validated by the Calculator.
func (m *Meter) ApplyHit(damage, targetMaxLife float64, dt DamageType, at AttackType, mods Modifiers, coeffs Coefficients) HeavyOutcome {
	raw := heavyBuildup(damage, targetMaxLife, dt, at, mods, coeffs)

	m.mu.Lock()
	defer m.mu.Unlock()

	out := HeavyOutcome{
		BuildupAdded: raw,
		PriorState:   m.state,
	}

	m.hits++
	if m.state == StatePrimed {
		out.TriggeredCrushingBlow = true
		m.crushingBlows++
	}

	next := m.buildup + raw
	if next >= TriggeredThreshold {
		out.TriggeredHeavyStun = true
		out.Transition = StateTriggered
		m.heavyStuns++
		m.buildup = 0
		m.state = StateDormant
	} else {
		m.buildup = next
		m.state = stateFor(next)
		out.Transition = m.state
	}

	out.HitsToHeavyStun = hitsToFill(TriggeredThreshold-m.buildup, raw)
	out.Meter = m.snapshotLocked()
	return out
}

// Decay lowers the buildup by points (floored at 0) and re-derives the state.
// It never triggers a heavy stun or a crushing blow.
func (m *Meter) Decay(points float64) MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if points > 0 {
		m.buildup = math.Max(0, m.buildup-points)
		m.state = stateFor(m.buildup)
	}
	return m.snapshotLocked()
}

// Snapshot returns a copy of the current meter.
func (m *Meter) Snapshot() MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// BuildupPercentage returns the current buildup in percent.
func (m *Meter) BuildupPercentage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buildup
}

// State returns the current resting state.
func (m *Meter) State() MeterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsPrimed reports whether the meter is primed.
func (m *Meter) IsPrimed() bool {
	return m.State() == StatePrimed
}

// TargetID returns the id the meter is tracked under.
func (m *Meter) TargetID() string {
	return m.targetID
}

func (m *Meter) snapshotLocked() MeterSnapshot {
	return MeterSnapshot{
		TargetID:          m.targetID,
		BuildupPercentage: m.buildup,
		State:             m.state,
		Hits:              m.hits,
		HeavyStuns:        m.heavyStuns,
		CrushingBlows:     m.crushingBlows,
	}
}
