// Package syncnow implements the sync command, which forces a sync run
// regardless of the sync-mode gate.
package syncnow

import (
	"github.com/spf13/cobra"

	"github.com/eventscout/eventsync/cmd/run"
)

// Command returns the sync command.
func Command() *cobra.Command {
	var purgePast bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Force a sync run, bypassing the sync-mode gate",
		Long: `Run the sync pipeline on the accumulated intake batch immediately.
The run counter is still incremented so cadence bookkeeping stays
consistent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.Execute(cmd, true, purgePast)
		},
	}

	cmd.Flags().BoolVar(&purgePast, "purge-past", false, "remove past-dated events after a clean sync")

	return cmd
}
