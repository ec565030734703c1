package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/stunsim/internal/db"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply game-data database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := db.RunMigrations(cmd.Context(), a.cfg.Database.DSN()); err != nil {
				return err
			}
			slog.Info("database migrations applied")
			return nil
		},
	}
}

func profilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Coefficient profiles stored in the game-data database",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := db.New(cmd.Context(), a.cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer database.Close()

			names, err := database.Coefficients().ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			a.print(a.renderer.Profiles(names))
			return nil
		},
	}

	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Store the coefficient table from the config file as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coeffs, err := a.cfg.StunCoefficients()
			if err != nil {
				return err
			}

			database, err := db.New(cmd.Context(), a.cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Coefficients().SaveProfile(cmd.Context(), args[0], coeffs); err != nil {
				return err
			}
			a.print(fmt.Sprintf("saved profile %s\n", args[0]))
			return nil
		},
	}

	cmd.AddCommand(listCmd, saveCmd)
	return cmd
}
