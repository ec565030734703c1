package stun

import (
	"fmt"
	"log/slog"
	"sync"
)

// Result is the complete stun evaluation of one landed hit.
type Result struct {
	TargetID      string
	Damage        float64
	TargetMaxLife float64
	DamageType    DamageType
	AttackType    AttackType
	Light         LightOutcome
	Heavy         HeavyOutcome
}

// HitPlan projects how many uniform hits are needed to stun.
// Unreachable counts are +Inf (see IsUnreachable).
type HitPlan struct {
	HitsForLightStun  float64
	HitsForHeavyStun  float64
	LightChancePerHit float64
	BuildupPerHit     float64
}

// Calculator composes the light stun evaluator and the heavy stun meters of
// an injected Registry.
//
// Validation happens here, before anything touches a meter; the evaluator
// and the meter assume clean inputs. Hits against the same target must be
// submitted in chronological order by the caller.
type Calculator struct {
	registry *Registry
	coeffs   Coefficients
	rng      RandomSource

	seed    string
	srcMu   sync.Mutex
	sources map[string]RandomSource
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithRegistry shares an existing registry (e.g. a combat session's).
func WithRegistry(r *Registry) Option {
	return func(c *Calculator) { c.registry = r }
}

// WithCoefficients replaces the default coefficient table.
// NewCalculator rejects a table that fails Coefficients.Validate.
func WithCoefficients(coeffs Coefficients) Option {
	return func(c *Calculator) { c.coeffs = coeffs.Clone() }
}

// WithRandomSource makes light stun outcomes rolled from one shared source.
// Rolls then depend on the order hits arrive in across all targets.
func WithRandomSource(src RandomSource) Option {
	return func(c *Calculator) { c.rng = src }
}

// WithSeed makes light stun outcomes rolled from one seeded stream per
// target, derived from seed and the target ID. Rolls for a target depend
// only on that target's own hit sequence, so concurrent replays of the
// same script reproduce. WithRandomSource takes precedence.
func WithSeed(seed string) Option {
	return func(c *Calculator) { c.seed = seed }
}

// NewCalculator creates a calculator. Without options it owns a private
// registry, uses DefaultCoefficients and resolves light stun deterministically.
//
// Returns an error wrapping ErrInvalidInput when the coefficient table is
// incomplete or holds a non-finite or negative value.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		coeffs: DefaultCoefficients(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.coeffs.Validate(); err != nil {
		return nil, fmt.Errorf("coefficients: %w", err)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.seed != "" {
		c.sources = make(map[string]RandomSource)
	}
	return c, nil
}

// sourceFor returns the random source used to roll hits against targetID,
// or nil when light stun resolves deterministically.
func (c *Calculator) sourceFor(targetID string) RandomSource {
	if c.rng != nil || c.sources == nil {
		return c.rng
	}

	c.srcMu.Lock()
	defer c.srcMu.Unlock()

	src, ok := c.sources[targetID]
	if !ok {
		src = NewSeededSource(c.seed + ":" + targetID)
		c.sources[targetID] = src
	}
	return src
}

// CalculateCompleteStun evaluates one hit of damage against targetID: the
// light stun verdict plus the heavy stun meter update. mods may be nil.
//
// Returns an error wrapping ErrInvalidInput (and leaves the registry
// untouched) when damage < 0, targetMaxLife <= 0, targetID is empty or the
// modifiers are invalid.
func (c *Calculator) CalculateCompleteStun(damage, targetMaxLife float64, dt DamageType, at AttackType, targetID string, mods *Modifiers) (Result, error) {
	if targetID == "" {
		return Result{}, fmt.Errorf("%w: empty target id", ErrInvalidInput)
	}
	m, err := c.validate(damage, targetMaxLife, dt, at, mods)
	if err != nil {
		return Result{}, err
	}

	light := ResolveLight(EvaluateLight(damage, targetMaxLife, dt, at, m, c.coeffs), c.sourceFor(targetID))
	heavy := c.registry.GetOrCreate(targetID).ApplyHit(damage, targetMaxLife, dt, at, m, c.coeffs)

	slog.Debug("stun hit applied",
		"target", targetID,
		"damage", damage,
		"damageType", dt,
		"attackType", at,
		"lightChance", light.FinalChance,
		"buildupAdded", heavy.BuildupAdded,
		"buildup", heavy.Meter.BuildupPercentage,
		"state", heavy.Meter.State)
	if heavy.TriggeredHeavyStun {
		slog.Info("heavy stun triggered", "target", targetID, "heavyStuns", heavy.Meter.HeavyStuns)
	}
	if heavy.TriggeredCrushingBlow {
		slog.Info("crushing blow", "target", targetID)
	}

	return Result{
		TargetID:      targetID,
		Damage:        damage,
		TargetMaxLife: targetMaxLife,
		DamageType:    dt,
		AttackType:    at,
		Light:         light,
		Heavy:         heavy,
	}, nil
}

// CalculateHitsToStun projects, from one representative hit, how many
// uniform hits reach a 100% light stun chance and fill an empty heavy meter.
// It is plain division, not a simulation, and never touches the registry.
func (c *Calculator) CalculateHitsToStun(damagePerHit, targetMaxLife float64, dt DamageType, at AttackType, mods *Modifiers) (HitPlan, error) {
	m, err := c.validate(damagePerHit, targetMaxLife, dt, at, mods)
	if err != nil {
		return HitPlan{}, err
	}

	light := EvaluateLight(damagePerHit, targetMaxLife, dt, at, m, c.coeffs)
	buildup := heavyBuildup(damagePerHit, targetMaxLife, dt, at, m, c.coeffs)

	return HitPlan{
		HitsForLightStun:  hitsToFill(TriggeredThreshold, light.FinalChance),
		HitsForHeavyStun:  hitsToFill(TriggeredThreshold, buildup),
		LightChancePerHit: light.FinalChance,
		BuildupPerHit:     buildup,
	}, nil
}

// HeavyStunMeter returns a snapshot of the target's meter, or false if the
// target was never hit.
func (c *Calculator) HeavyStunMeter(targetID string) (MeterSnapshot, bool) {
	m, ok := c.registry.Get(targetID)
	if !ok {
		return MeterSnapshot{}, false
	}
	return m.Snapshot(), true
}

// TrackedEntities returns the ids of every tracked target in first-hit order.
func (c *Calculator) TrackedEntities() []string {
	return c.registry.TrackedIDs()
}

// Decay lowers a tracked target's buildup by points. It does not create
// meters: an unseen target yields ErrUnknownTarget.
func (c *Calculator) Decay(targetID string, points float64) (MeterSnapshot, error) {
	if !Finite(points) || points < 0 {
		return MeterSnapshot{}, fmt.Errorf("%w: decay points %v", ErrInvalidInput, points)
	}
	m, ok := c.registry.Get(targetID)
	if !ok {
		return MeterSnapshot{}, fmt.Errorf("%w: %q", ErrUnknownTarget, targetID)
	}
	snap := m.Decay(points)
	slog.Debug("stun meter decayed", "target", targetID, "points", points, "buildup", snap.BuildupPercentage)
	return snap, nil
}

// Coefficients returns a copy of the coefficient table in use.
func (c *Calculator) Coefficients() Coefficients {
	return c.coeffs.Clone()
}

// Registry returns the registry the calculator writes to.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

func (c *Calculator) validate(damage, targetMaxLife float64, dt DamageType, at AttackType, mods *Modifiers) (Modifiers, error) {
	if !Finite(damage) || damage < 0 {
		return Modifiers{}, fmt.Errorf("%w: damage %v must be >= 0", ErrInvalidInput, damage)
	}
	if !Finite(targetMaxLife) || targetMaxLife <= 0 {
		return Modifiers{}, fmt.Errorf("%w: target max life %v must be > 0", ErrInvalidInput, targetMaxLife)
	}
	if !dt.Valid() {
		return Modifiers{}, fmt.Errorf("%w: %s", ErrInvalidInput, dt)
	}
	if !at.Valid() {
		return Modifiers{}, fmt.Errorf("%w: %s", ErrInvalidInput, at)
	}
	m := orNeutral(mods)
	if err := m.Validate(); err != nil {
		return Modifiers{}, err
	}
	return m, nil
}
