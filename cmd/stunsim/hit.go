package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/udisondev/stunsim/internal/stun"
)

// hitFlags are the hit description shared by hit and plan.
type hitFlags struct {
	damage     float64
	life       float64
	damageType string
	attackType string

	increased float64
	more      float64
	buildup   float64
	threshold float64
}

func (f *hitFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.damage, "damage", "d", 0, "damage of the hit")
	cmd.Flags().Float64VarP(&f.life, "life", "l", 0, "target maximum life")
	cmd.Flags().StringVar(&f.damageType, "damage-type", "physical", "physical, fire, cold, lightning or chaos")
	cmd.Flags().StringVar(&f.attackType, "attack-type", "melee", "melee, ranged or spell")
	cmd.Flags().Float64Var(&f.increased, "increased-stun-chance", 0, "additive percent bonus to light stun chance")
	cmd.Flags().Float64Var(&f.more, "more-stun-chance", 1, "multiplicative light stun chance factor")
	cmd.Flags().Float64Var(&f.buildup, "stun-buildup-multiplier", 1, "multiplier on heavy stun buildup")
	cmd.Flags().Float64Var(&f.threshold, "reduced-stun-threshold", 1, "fraction of max life used for light stun")
	_ = cmd.MarkFlagRequired("damage")
	_ = cmd.MarkFlagRequired("life")
}

func (f *hitFlags) parse() (stun.DamageType, stun.AttackType, *stun.Modifiers, error) {
	dt, err := stun.ParseDamageType(f.damageType)
	if err != nil {
		return 0, 0, nil, err
	}
	at, err := stun.ParseAttackType(f.attackType)
	if err != nil {
		return 0, 0, nil, err
	}
	return dt, at, &stun.Modifiers{
		IncreasedStunChance:   f.increased,
		MoreStunChance:        f.more,
		StunBuildupMultiplier: f.buildup,
		ReducedStunThreshold:  f.threshold,
	}, nil
}

func hitCmd(a *app) *cobra.Command {
	var (
		flags  hitFlags
		target string
		repeat int
	)

	cmd := &cobra.Command{
		Use:   "hit",
		Short: "Evaluate light and heavy stun for a hit",
		Long: `Evaluate one hit, or the same hit repeated, against a single target.
Heavy stun buildup accumulates across repeats.

Examples:
  stunsim hit -d 1500 -l 6000
  stunsim hit -d 800 -l 5000 --damage-type fire --attack-type spell --repeat 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if repeat < 1 {
				return fmt.Errorf("--repeat must be >= 1, got %d", repeat)
			}
			dt, at, mods, err := flags.parse()
			if err != nil {
				return err
			}
			calc, err := a.calculator(cmd.Context(), "")
			if err != nil {
				return err
			}

			for range repeat {
				res, err := calc.CalculateCompleteStun(flags.damage, flags.life, dt, at, target, mods)
				if err != nil {
					return err
				}
				a.print(a.renderer.Result(res))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "target", "target id")
	cmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "apply the hit this many times")
	return cmd
}

func planCmd(a *app) *cobra.Command {
	var flags hitFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Project how many hits are needed to stun",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dt, at, mods, err := flags.parse()
			if err != nil {
				return err
			}
			calc, err := a.calculator(cmd.Context(), "")
			if err != nil {
				return err
			}

			plan, err := calc.CalculateHitsToStun(flags.damage, flags.life, dt, at, mods)
			if err != nil {
				return err
			}
			a.print(a.renderer.Plan(plan))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func quickCmd(a *app) *cobra.Command {
	var physical, melee bool

	cmd := &cobra.Command{
		Use:   "quick <damage> <life>",
		Short: "One-line summary of a single hit",
		Long: `Summarize one hit against a fresh target with default coefficients.
Damage is physical unless --physical=false (fire); the attack is melee unless
--melee=false (spell).`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			damage, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("damage %q: %w", args[0], err)
			}
			life, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("life %q: %w", args[1], err)
			}

			summary, err := stun.QuickStunCalculation(damage, life, physical, melee)
			if err != nil {
				return err
			}
			a.print(summary + "\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&physical, "physical", true, "physical damage (false = fire)")
	cmd.Flags().BoolVar(&melee, "melee", true, "melee attack (false = spell)")
	return cmd
}
