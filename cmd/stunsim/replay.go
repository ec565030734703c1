package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/stunsim/internal/sim"
	"github.com/udisondev/stunsim/internal/stun"
)

// session is one replayed script with its own registry.
type session struct {
	path   string
	report sim.Report
	meters []stun.MeterSnapshot
}

func replayCmd(a *app) *cobra.Command {
	var showMeters bool

	cmd := &cobra.Command{
		Use:   "replay <script.yaml> [script.yaml...]",
		Short: "Replay combat scripts",
		Long: `Replay one or more combat scripts. Every script is an independent
combat session with its own heavy stun meters; sessions run in parallel and
are printed in argument order.

Example:
  stunsim replay examples/boss_fight.yaml --meters`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scripts := make([]sim.Script, len(args))
			for i, path := range args {
				s, err := sim.LoadScript(path)
				if err != nil {
					return err
				}
				scripts[i] = s
			}

			sessions := make([]session, len(args))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(a.cfg.Workers)

			for i, path := range args {
				g.Go(func() error {
					calc, err := a.calculator(gctx, ":"+path)
					if err != nil {
						return err
					}
					report, err := sim.NewRunner(calc, a.cfg.Workers).Run(gctx, scripts[i])
					if err != nil {
						return fmt.Errorf("replaying %s: %w", path, err)
					}

					meters := make([]stun.MeterSnapshot, 0, len(report.Targets))
					for _, id := range calc.TrackedEntities() {
						if snap, ok := calc.HeavyStunMeter(id); ok {
							meters = append(meters, snap)
						}
					}
					sessions[i] = session{path: path, report: report, meters: meters}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for _, s := range sessions {
				if len(sessions) > 1 {
					a.print(color.New(color.Bold).Sprintf("== %s ==\n", s.path))
				}
				a.print(a.renderer.Report(s.report))
				if showMeters {
					a.print("\n" + a.renderer.Meters(s.meters))
				}
			}
			slog.Debug("replay sessions finished", "sessions", len(sessions))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMeters, "meters", false, "print final heavy stun meters")
	return cmd
}
