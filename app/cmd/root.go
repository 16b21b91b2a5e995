package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/config"
)

var (
	cfgFile   string
	workspace string

	settings *config.Settings
)

// Execute is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dashbot",
		Short:         "Personal dashboard swarm and data collector",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				if wd, err := os.Getwd(); err == nil {
					workspace = wd
				} else {
					return err
				}
			}
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath(workspace)
			}
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			settings = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to dashbot config file")

	root.AddCommand(
		newRunCmd(),
		newCollectCmd(),
		newNoteCmd(),
		newAgentsCmd(),
		newHistoryCmd(),
		newMailCmd(),
		newUICmd(),
	)
	return root
}
