package stun

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalculator(t *testing.T, opts ...Option) *Calculator {
	t.Helper()
	calc, err := NewCalculator(opts...)
	require.NoError(t, err)
	return calc
}

func TestCalculator_SinglePhysicalMeleeHit(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	res, err := calc.CalculateCompleteStun(1500, 6000, DamagePhysical, AttackMelee, "boss1", nil)
	require.NoError(t, err)

	assert.Equal(t, "boss1", res.TargetID)
	assert.Equal(t, 1500.0, res.Damage)
	assert.Equal(t, 6000.0, res.TargetMaxLife)
	assert.Equal(t, DamagePhysical, res.DamageType)
	assert.Equal(t, AttackMelee, res.AttackType)
	assert.InDelta(t, 25.0, res.Light.FinalChance, 1e-9)
	assert.Greater(t, res.Light.FinalChance, 0.0)
	assert.False(t, res.Light.WillStun)
	assert.InDelta(t, 25.0, res.Heavy.Meter.BuildupPercentage, 1e-9)
}

func TestCalculator_RepeatedHitsAccumulateUntilTrigger(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	prev := 0.0
	triggered := false

	for i := range 5 {
		res, err := calc.CalculateCompleteStun(1500, 6000, DamagePhysical, AttackMelee, "fresh-boss", nil)
		require.NoError(t, err)

		if res.Heavy.TriggeredHeavyStun {
			triggered = true
			assert.Equal(t, 3, i, "25 percent per hit fills the meter on the fourth hit")
			break
		}
		assert.Greater(t, res.Heavy.Meter.BuildupPercentage, prev, "hit %d", i)
		prev = res.Heavy.Meter.BuildupPercentage
	}
	assert.True(t, triggered)
}

func TestCalculator_PrimedThenCrushingBlow(t *testing.T) {
	t.Parallel()

	// Elemental spells at full efficiency: 2500 / 5000 fills exactly half the bar.
	coeffs := DefaultCoefficients()
	coeffs.Damage[DamageFire] = 1.0
	coeffs.Attack[AttackSpell] = 1.0
	calc := newCalculator(t, WithCoefficients(coeffs))

	first, err := calc.CalculateCompleteStun(2500, 5000, DamageFire, AttackSpell, "primed_test_boss", nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, first.Heavy.Meter.BuildupPercentage)
	assert.Equal(t, StatePrimed, first.Heavy.Meter.State)
	assert.False(t, first.Heavy.TriggeredCrushingBlow)

	snap, ok := calc.HeavyStunMeter("primed_test_boss")
	require.True(t, ok)
	assert.True(t, snap.IsPrimed())

	second, err := calc.CalculateCompleteStun(1, 5000, DamageFire, AttackSpell, "primed_test_boss", nil)
	require.NoError(t, err)
	assert.True(t, second.Heavy.TriggeredCrushingBlow)
	assert.False(t, second.Heavy.TriggeredHeavyStun)
}

func TestCalculator_WithCoefficientsCopiesTable(t *testing.T) {
	t.Parallel()

	coeffs := DefaultCoefficients()
	calc := newCalculator(t, WithCoefficients(coeffs))
	coeffs.Damage[DamagePhysical] = 0

	assert.Equal(t, 1.0, calc.Coefficients().Damage[DamagePhysical])
}

func TestCalculator_HitsToStunMatchesReplay(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	plan, err := calc.CalculateHitsToStun(1000, 10000, DamagePhysical, AttackMelee, nil)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, plan.BuildupPerHit, 1e-9)
	assert.InDelta(t, 100/plan.BuildupPerHit, plan.HitsForHeavyStun, 1e-9)
	assert.InDelta(t, 10.0, plan.HitsForLightStun, 1e-9)
	assert.Empty(t, calc.TrackedEntities(), "projection never touches the registry")

	limit := int(math.Ceil(plan.HitsForHeavyStun - 1e-9))
	triggeredAt := 0
	for i := 1; i <= limit; i++ {
		res, err := calc.CalculateCompleteStun(1000, 10000, DamagePhysical, AttackMelee, "replay", nil)
		require.NoError(t, err)
		if res.Heavy.TriggeredHeavyStun {
			triggeredAt = i
			break
		}
	}
	require.NotZero(t, triggeredAt, "trigger must happen within %d hits", limit)
	assert.LessOrEqual(t, triggeredAt, limit)
}

func TestCalculator_HitsToStunDegenerate(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	plan, err := calc.CalculateHitsToStun(0, 10000, DamagePhysical, AttackMelee, nil)
	require.NoError(t, err)
	assert.True(t, IsUnreachable(plan.HitsForLightStun))
	assert.True(t, IsUnreachable(plan.HitsForHeavyStun))

	plan, err = calc.CalculateHitsToStun(50000, 100, DamagePhysical, AttackMelee, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, plan.HitsForLightStun, "light chance clamps at 100 percent")
	assert.Less(t, plan.HitsForHeavyStun, 1.0)
}

func TestCalculator_InvalidInputLeavesRegistryUntouched(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	_, err := calc.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, "existing", nil)
	require.NoError(t, err)
	before := calc.Registry().Len()

	negative := NeutralModifiers()
	negative.MoreStunChance = -1

	tests := []struct {
		name     string
		damage   float64
		life     float64
		dt       DamageType
		at       AttackType
		targetID string
		mods     *Modifiers
	}{
		{"negative damage", -1, 1000, DamagePhysical, AttackMelee, "new-a", nil},
		{"zero life", 100, 0, DamagePhysical, AttackMelee, "new-b", nil},
		{"negative life", 100, -5, DamagePhysical, AttackMelee, "new-c", nil},
		{"nan damage", math.NaN(), 1000, DamagePhysical, AttackMelee, "new-d", nil},
		{"infinite life", 100, math.Inf(1), DamagePhysical, AttackMelee, "new-e", nil},
		{"empty target", 100, 1000, DamagePhysical, AttackMelee, "", nil},
		{"negative ratio", 100, 1000, DamagePhysical, AttackMelee, "new-f", &negative},
		{"unknown damage type", 100, 1000, DamageType(42), AttackMelee, "new-g", nil},
		{"unknown attack type", 100, 1000, DamagePhysical, AttackType(42), "new-h", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.CalculateCompleteStun(tt.damage, tt.life, tt.dt, tt.at, tt.targetID, tt.mods)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
			assert.Equal(t, before, calc.Registry().Len())
		})
	}

	snap, ok := calc.HeavyStunMeter("existing")
	require.True(t, ok)
	assert.Equal(t, 1, snap.Hits, "failed calls apply no buildup")
}

func TestCalculator_HitsToStunRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	_, err := calc.CalculateHitsToStun(-1, 1000, DamagePhysical, AttackMelee, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = calc.CalculateHitsToStun(1, 0, DamagePhysical, AttackMelee, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCalculator_RandomSource(t *testing.T) {
	t.Parallel()

	sure := newCalculator(t, WithRandomSource(fixedSource(0)))
	res, err := sure.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, "a", nil)
	require.NoError(t, err)
	assert.True(t, res.Light.Rolled)
	assert.True(t, res.Light.WillStun, "roll 0 is below a 10 percent chance")

	never := newCalculator(t, WithRandomSource(fixedSource(0.99)))
	res, err = never.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, "a", nil)
	require.NoError(t, err)
	assert.False(t, res.Light.WillStun)
}

func TestCalculator_SharedRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	a := newCalculator(t, WithRegistry(reg))
	b := newCalculator(t, WithRegistry(reg))

	_, err := a.CalculateCompleteStun(1000, 10000, DamagePhysical, AttackMelee, "shared", nil)
	require.NoError(t, err)
	res, err := b.CalculateCompleteStun(1000, 10000, DamagePhysical, AttackMelee, "shared", nil)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, res.Heavy.Meter.BuildupPercentage, 1e-9)
	assert.Equal(t, []string{"shared"}, a.TrackedEntities())
}

func TestCalculator_TrackedEntitiesOrder(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	for _, id := range []string{"rare_elite", "magic_mob1", "magic_mob2", "normal_mob", "magic_mob1"} {
		_, err := calc.CalculateCompleteStun(1000, 3000, DamagePhysical, AttackMelee, id, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"rare_elite", "magic_mob1", "magic_mob2", "normal_mob"}, calc.TrackedEntities())

	_, ok := calc.HeavyStunMeter("never_hit")
	assert.False(t, ok)
	assert.Len(t, calc.TrackedEntities(), 4, "lookups do not create meters")
}

func TestCalculator_Decay(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	_, err := calc.Decay("ghost", 10)
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.Zero(t, calc.Registry().Len())

	_, err = calc.CalculateCompleteStun(3000, 5000, DamagePhysical, AttackMelee, "boss", nil)
	require.NoError(t, err)

	_, err = calc.Decay("boss", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	snap, err := calc.Decay("boss", 15)
	require.NoError(t, err)
	assert.InDelta(t, 45.0, snap.BuildupPercentage, 1e-9)
	assert.Equal(t, StateBuilding, snap.State)
}

func TestNewCalculator_RejectsInvalidCoefficients(t *testing.T) {
	t.Parallel()

	missing := DefaultCoefficients()
	delete(missing.Damage, DamageChaos)

	negative := DefaultCoefficients()
	negative.Attack[AttackRanged] = -0.5

	notFinite := DefaultCoefficients()
	notFinite.Damage[DamageCold] = math.NaN()

	for name, coeffs := range map[string]Coefficients{
		"missing key": missing,
		"negative":    negative,
		"nan":         notFinite,
	} {
		t.Run(name, func(t *testing.T) {
			calc, err := NewCalculator(WithCoefficients(coeffs))
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, calc)
		})
	}
}

func TestCalculator_OverflowingDamageStaysInRange(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	mods := &Modifiers{MoreStunChance: 0, StunBuildupMultiplier: 0, ReducedStunThreshold: 1}

	res, err := calc.CalculateCompleteStun(1e307, 1, DamagePhysical, AttackMelee, "x", mods)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(res.Light.FinalChance))
	assert.Zero(t, res.Light.FinalChance)
	assert.False(t, res.Light.WillStun)
	assert.Zero(t, res.Heavy.BuildupAdded)
	assert.Zero(t, res.Heavy.Meter.BuildupPercentage)
	assert.Equal(t, StateDormant, res.Heavy.Meter.State)

	next, err := calc.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, "x", nil)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, next.Heavy.Meter.BuildupPercentage, 1e-9, "meter is still usable")
}

func TestCalculator_SeedIsPerTarget(t *testing.T) {
	t.Parallel()

	rolls := func(order []string) map[string][]float64 {
		calc := newCalculator(t, WithSeed("fight-1"))
		out := make(map[string][]float64)
		for _, id := range order {
			res, err := calc.CalculateCompleteStun(400, 1000, DamagePhysical, AttackMelee, id, nil)
			require.NoError(t, err)
			require.True(t, res.Light.Rolled)
			out[id] = append(out[id], res.Light.Roll)
		}
		return out
	}

	sequential := rolls([]string{"a", "a", "a", "b", "b", "b"})
	interleaved := rolls([]string{"b", "a", "b", "a", "a", "b"})
	assert.Equal(t, sequential, interleaved)
	assert.NotEqual(t, sequential["a"], sequential["b"], "targets draw from distinct streams")

	other := newCalculator(t, WithSeed("fight-2"))
	res, err := other.CalculateCompleteStun(400, 1000, DamagePhysical, AttackMelee, "a", nil)
	require.NoError(t, err)
	assert.NotEqual(t, sequential["a"][0], res.Light.Roll)
}

func TestCalculator_RandomSourceOverridesSeed(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t, WithSeed("ignored"), WithRandomSource(fixedSource(0)))
	res, err := calc.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, "a", nil)
	require.NoError(t, err)
	assert.Zero(t, res.Light.Roll)
	assert.True(t, res.Light.WillStun)
}
