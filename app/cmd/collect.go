package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/collector"
	"github.com/lexcodex/dashbot/tools"
)

// newCollectCmd runs one collection pass over the configured sources.
func newCollectCmd() *cobra.Command {
	var mailLimit int
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Gather tasks and mail into the daily context artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			artifactsDir := settings.Artifacts
			if !filepath.IsAbs(artifactsDir) {
				artifactsDir = filepath.Join(workspace, artifactsDir)
			}

			opts := []collector.Option{collector.WithMailLimit(mailLimit)}
			if settings.Jira.Configured() {
				opts = append(opts, collector.WithIssueSource(
					tools.NewJiraClient(settings.Jira.URL, settings.Jira.Email, settings.Jira.Token)))
			}
			if settings.Microsoft.Configured() {
				opts = append(opts, collector.WithMailSource(
					tools.NewGraphClient(settings.Microsoft.ClientID, settings.Microsoft.Authority,
						settings.Microsoft.ScopeList(), out)))
			}
			if settings.Obsidian.Configured() {
				opts = append(opts, collector.WithNoteWriter(tools.NewVault(settings.Obsidian.VaultPath)))
			}
			if !noArchive {
				store, err := openSnapshotStore()
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, collector.WithArchive(store))
			}

			result, err := collector.New(artifactsDir, opts...).Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Collected %d tasks and %d emails\n",
				result.Payload.Summary.TotalTasks, result.Payload.Summary.TotalEmails)
			fmt.Fprintf(out, "Payload:  %s\n", result.PayloadPath)
			fmt.Fprintf(out, "Markdown: %s\n", result.MarkdownPath)
			if result.NoteResult != "" {
				fmt.Fprintf(out, "Note:     %s\n", result.NoteResult)
			}
			if result.SnapshotID != 0 {
				fmt.Fprintf(out, "Snapshot: #%d\n", result.SnapshotID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&mailLimit, "mail-limit", 10, "Maximum number of emails to fetch")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Skip writing a snapshot to the history store")
	return cmd
}
