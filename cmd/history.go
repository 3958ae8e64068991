package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints the most recent transfer journal entries.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transfers from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if a.journal == nil {
			return errors.New("transfer journal is not enabled (set DATABASE_ENABLED=true)")
		}

		entries, err := a.journal.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %-8s %-7s %s/%s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.Status, e.Container, e.BlobPath)
			if e.Target != "" {
				line += " -> " + e.Target
			}
			if e.Error != "" {
				line += "  (" + e.Error + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show")
	RootCmd.AddCommand(historyCmd)
}
