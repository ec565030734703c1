package main

import (
	"github.com/spf13/cobra"

	"github.com/udisondev/stunsim/internal/mcpserver"
)

func mcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve stun tools over MCP (stdio)",
		Long: `Serve analyze_stun, plan_stun, quick_stun, stun_meter and decay_stun
over MCP on stdin/stdout. Heavy stun meters live for the whole session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc, err := a.calculator(cmd.Context(), "")
			if err != nil {
				return err
			}
			return mcpserver.New(calc).Run(cmd.Context())
		},
	}
}
