// Package stats implements the stats command, reporting local pipeline
// state and store counts for operators.
package stats

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventscout/eventsync/cmd/common"
	"github.com/eventscout/eventsync/internal/config"
	"github.com/eventscout/eventsync/internal/intake"
	"github.com/eventscout/eventsync/internal/runcounter"
	"github.com/eventscout/eventsync/internal/tracker"
)

// Command returns the stats command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline state: tracker, run counter, intake and store",
		RunE:  executeStats,
	}
}

func executeStats(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	cfg := deps.Config

	counter, err := runcounter.Load(cfg.Paths.CounterFile())
	if err != nil {
		return fmt.Errorf("load run counter: %w", err)
	}

	seen, err := tracker.Load(cfg.Paths.TrackerFile())
	if err != nil {
		deps.Logger.Warn("tracker snapshot unreadable", "error", err)
	}

	pending, err := intake.NewFile(cfg.Paths.IntakeFile()).Count()
	if err != nil {
		return fmt.Errorf("count intake events: %w", err)
	}

	fmt.Printf("run counter:      %d\n", counter.Value())
	fmt.Printf("sync mode:        %d\n", cfg.Sync.Mode)
	fmt.Printf("pending intake:   %d\n", pending)
	fmt.Printf("tracked hashes:   %d\n", seen.Len())
	if oldest, ok := seen.Oldest(); ok {
		fmt.Printf("oldest tracked:   %s\n", oldest.Format("2006-01-02"))
	}

	store, err := common.ConnectStore(cmd.Context(), cfg)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Println("store:            not configured")
			return nil
		}
		return err
	}
	defer store.Close()

	total, err := store.Events.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("count store events: %w", err)
	}
	fmt.Printf("store events:     %d\n", total)

	return nil
}
