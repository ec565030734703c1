package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/stunsim/internal/stun"
)

// HitResult is the outcome of one scripted hit.
type HitResult struct {
	Index  int // position in the script, 0-based
	Label  string
	Result stun.Result
}

// TargetSummary aggregates the hits a target received during a run.
type TargetSummary struct {
	TargetID        string
	Label           string
	MaxLife         float64
	Hits            int
	LightStuns      int
	HeavyStuns      int
	CrushingBlows   int
	PeakLightChance float64
	FinalBuildup    float64
	FinalState      stun.MeterState
}

// Report is the result of a replay: every hit in script order plus one
// summary per target in declaration order.
type Report struct {
	Hits    []HitResult
	Targets []TargetSummary
}

// Runner replays scripts against a Calculator.
//
// Hits on the same target run sequentially in script order on one
// goroutine; distinct targets run in parallel, at most Workers at a time.
type Runner struct {
	calc    *stun.Calculator
	workers int
}

// NewRunner creates a runner. workers < 1 is treated as 1.
func NewRunner(calc *stun.Calculator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{calc: calc, workers: workers}
}

// Run validates and replays the script. It stops at the first failing hit or
// when ctx is cancelled; hits already applied stay applied.
func (r *Runner) Run(ctx context.Context, script Script) (Report, error) {
	planned, err := script.plan()
	if err != nil {
		return Report{}, err
	}

	// Group by target, preserving script order inside each group.
	groups := make(map[string][]plannedHit)
	var order []string
	for _, p := range planned {
		if _, seen := groups[p.target.ID]; !seen {
			order = append(order, p.target.ID)
		}
		groups[p.target.ID] = append(groups[p.target.ID], p)
	}

	results := make([]HitResult, len(planned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, id := range order {
		hits := groups[id]
		g.Go(func() error {
			return r.runTarget(gctx, hits, results)
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		Hits:    results,
		Targets: summarize(script.Targets, results),
	}
	slog.Info("replay finished", "hits", len(results), "targets", len(order))
	return report, nil
}

// runTarget applies one target's hits in order. Each goroutine writes only
// to its own indexes of results.
func (r *Runner) runTarget(ctx context.Context, hits []plannedHit, results []HitResult) error {
	for _, p := range hits {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.decayBefore > 0 {
			_, err := r.calc.Decay(p.target.ID, p.decayBefore)
			// Nothing to decay before the target's first hit.
			if err != nil && !errors.Is(err, stun.ErrUnknownTarget) {
				return fmt.Errorf("hit %d: %w", p.index+1, err)
			}
		}

		res, err := r.calc.CalculateCompleteStun(p.damage, p.target.MaxLife, p.damageType, p.attackType, p.target.ID, p.mods)
		if err != nil {
			return fmt.Errorf("hit %d on %q: %w", p.index+1, p.target.ID, err)
		}
		results[p.index] = HitResult{Index: p.index, Label: p.label, Result: res}
	}
	return nil
}

func summarize(targets []Target, results []HitResult) []TargetSummary {
	byID := make(map[string]*TargetSummary, len(targets))
	summaries := make([]TargetSummary, len(targets))
	for i, t := range targets {
		summaries[i] = TargetSummary{TargetID: t.ID, Label: t.Label, MaxLife: t.MaxLife}
		byID[t.ID] = &summaries[i]
	}

	for _, hr := range results {
		s := byID[hr.Result.TargetID]
		s.Hits++
		if hr.Result.Light.WillStun {
			s.LightStuns++
		}
		if hr.Result.Heavy.TriggeredHeavyStun {
			s.HeavyStuns++
		}
		if hr.Result.Heavy.TriggeredCrushingBlow {
			s.CrushingBlows++
		}
		if hr.Result.Light.FinalChance > s.PeakLightChance {
			s.PeakLightChance = hr.Result.Light.FinalChance
		}
		s.FinalBuildup = hr.Result.Heavy.Meter.BuildupPercentage
		s.FinalState = hr.Result.Heavy.Meter.State
	}
	return summaries
}
