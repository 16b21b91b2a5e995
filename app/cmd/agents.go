package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAgentsCmd lists the handlers in the swarm's fixed pool.
func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the handlers available to the router",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := buildOrchestrator(cmd.OutOrStdout(), nil)
			for _, name := range orch.Handlers() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
