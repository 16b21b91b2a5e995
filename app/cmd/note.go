package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/tools"
)

// newNoteCmd manages the daily note directly, without going through the swarm.
func newNoteCmd() *cobra.Command {
	var date string
	var section string

	cmd := &cobra.Command{
		Use:   "note [content]",
		Short: "Read or update the vault's daily note",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !settings.Obsidian.Configured() {
				return tools.ErrVaultNotConfigured
			}
			vault := tools.NewVault(settings.Obsidian.VaultPath)
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				content, err := vault.ReadDailyNote(date)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, content)
				return nil
			}

			content := strings.Join(args, " ")
			var confirmation string
			var err error
			if section != "" {
				confirmation, err = vault.AppendToSection(section, content, date)
			} else {
				confirmation, err = vault.WriteDailyNote(content, date)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, confirmation)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Note date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&section, "section", "", "Append under this markdown header instead of the note body")
	return cmd
}
