package stun

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreateIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	a := reg.GetOrCreate("X")
	b := reg.GetOrCreate("X")
	require.Same(t, a, b)

	a.ApplyHit(3000, 5000, DamagePhysical, AttackMelee, NeutralModifiers(), DefaultCoefficients())
	assert.Equal(t, StatePrimed, b.State(), "mutation through one handle is visible through the other")
	assert.Equal(t, "X", b.TargetID())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_GetDoesNotCreate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	m, ok := reg.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, m)
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.TrackedIDs())
}

func TestRegistry_NewMeterIsEmpty(t *testing.T) {
	t.Parallel()

	m := NewRegistry().GetOrCreate("fresh")
	assert.Zero(t, m.BuildupPercentage())
	assert.Equal(t, StateDormant, m.State())
	assert.False(t, m.IsPrimed())
}

func TestRegistry_TrackedIDsInsertionOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, id := range []string{"c", "a", "b", "a"} {
		reg.GetOrCreate(id)
	}
	ids := reg.TrackedIDs()
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	ids[0] = "mutated"
	assert.Equal(t, "c", reg.TrackedIDs()[0], "returned slice is a copy")
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	old := reg.GetOrCreate("boss")
	old.ApplyHit(1000, 2000, DamagePhysical, AttackMelee, NeutralModifiers(), DefaultCoefficients())

	reg.Clear()
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.TrackedIDs())

	fresh := reg.GetOrCreate("boss")
	assert.NotSame(t, old, fresh)
	assert.Zero(t, fresh.BuildupPercentage())
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	meters := make([]*Meter, goroutines)
	for i := range goroutines {
		go func() {
			defer wg.Done()
			meters[i] = reg.GetOrCreate("same")
		}()
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, meters[0], meters[i])
	}
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, []string{"same"}, reg.TrackedIDs())
}

func TestRegistry_ConcurrentHitsOnDistinctTargets(t *testing.T) {
	t.Parallel()

	calc := newCalculator(t)
	const targets = 20
	const hitsPerTarget = 7 // 7 × 10% never fills the meter

	var wg sync.WaitGroup
	wg.Add(targets)
	for i := range targets {
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("mob-%d", i)
			for range hitsPerTarget {
				_, err := calc.CalculateCompleteStun(100, 1000, DamagePhysical, AttackMelee, id, nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, targets, calc.Registry().Len())
	for _, id := range calc.TrackedEntities() {
		snap, ok := calc.HeavyStunMeter(id)
		require.True(t, ok)
		assert.InDelta(t, 70.0, snap.BuildupPercentage, 1e-9, id)
		assert.Equal(t, hitsPerTarget, snap.Hits)
	}
}
