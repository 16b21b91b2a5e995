package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/app/tui"
)

// newUICmd launches the interactive terminal dashboard.
func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive dashboard prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := buildOrchestrator(cmd.OutOrStdout(), nil)
			return tui.Run(cmd.Context(), orch)
		},
	}
}
