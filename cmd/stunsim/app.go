package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/udisondev/stunsim/internal/config"
	"github.com/udisondev/stunsim/internal/db"
	"github.com/udisondev/stunsim/internal/render"
	"github.com/udisondev/stunsim/internal/stun"
)

// app is the state shared by every command, set up in PersistentPreRunE.
type app struct {
	configPath string
	noColor    bool

	cfg      config.StunSim
	renderer *render.Renderer
	out      io.Writer
}

func rootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	root := &cobra.Command{
		Use:     "stunsim",
		Short:   "Light and heavy stun simulator",
		Version: version,
		Long: `stunsim computes light stun chance and heavy stun buildup for hits
against targets, projects hits to stun, replays combat scripts and serves
the calculator to assistants over MCP (stdio).

Configuration is read from --config, $STUNSIM_CONFIG or config/stunsim.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $STUNSIM_CONFIG or "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		hitCmd(a),
		planCmd(a),
		quickCmd(a),
		replayCmd(a),
		mcpCmd(a),
		migrateCmd(a),
		profilesCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	// stdout carries results and the MCP transport; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if a.noColor {
		color.NoColor = true
	}
	a.out = cmd.OutOrStdout()
	a.renderer = render.New(!color.NoColor)

	slog.Debug("config loaded",
		"log_level", cfg.LogLevel,
		"workers", cfg.Workers,
		"seeded", cfg.Seed != "",
		"database", cfg.Database.Enabled)
	return nil
}

// coefficients returns the table from the game-data DB when it is enabled,
// otherwise the YAML table.
func (a *app) coefficients(ctx context.Context) (stun.Coefficients, error) {
	if !a.cfg.Database.Enabled {
		return a.cfg.StunCoefficients()
	}

	database, err := db.New(ctx, a.cfg.Database.DSN())
	if err != nil {
		return stun.Coefficients{}, err
	}
	defer database.Close()

	coeffs, err := database.Coefficients().LoadProfile(ctx, a.cfg.CoefficientProfile)
	if err != nil {
		return stun.Coefficients{}, err
	}
	slog.Info("coefficient profile loaded", "profile", a.cfg.CoefficientProfile)
	return coeffs, nil
}

// calculator builds a calculator over a fresh registry. seedSuffix separates
// the random streams of independent sessions sharing one configured seed.
func (a *app) calculator(ctx context.Context, seedSuffix string) (*stun.Calculator, error) {
	coeffs, err := a.coefficients(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading coefficients: %w", err)
	}

	opts := []stun.Option{stun.WithCoefficients(coeffs)}
	if a.cfg.Seed != "" {
		opts = append(opts, stun.WithSeed(a.cfg.Seed+seedSuffix))
	}
	calc, err := stun.NewCalculator(opts...)
	if err != nil {
		return nil, fmt.Errorf("building calculator: %w", err)
	}
	return calc, nil
}

func (a *app) print(s string) {
	fmt.Fprint(a.out, s)
}
