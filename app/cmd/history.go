package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newHistoryCmd inspects the snapshot archive produced by `collect`.
func newHistoryCmd() *cobra.Command {
	var limit int
	var prune int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent collector snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSnapshotStore()
			if err != nil {
				return err
			}
			defer store.Close()
			out := cmd.OutOrStdout()

			if prune > 0 {
				removed, err := store.Prune(cmd.Context(), prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d snapshots, kept the newest %d\n", removed, prune)
			}

			snapshots, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(snapshots) == 0 {
				fmt.Fprintln(out, "No snapshots recorded yet.")
				return nil
			}
			for _, snap := range snapshots {
				fmt.Fprintf(out, "#%d  %s  tasks=%d emails=%d\n",
					snap.ID, snap.TakenAt.Format("2006-01-02 15:04"), snap.TaskCount, snap.EmailCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of snapshots to show")
	cmd.Flags().IntVar(&prune, "prune", 0, "Before listing, delete all but the newest N snapshots")
	return cmd
}
