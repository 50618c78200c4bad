// Package run implements the run command: one pipeline invocation,
// counter increment and sync-mode gate included.
package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventscout/eventsync/cmd/common"
	"github.com/eventscout/eventsync/internal/config"
	"github.com/eventscout/eventsync/internal/domain"
	"github.com/eventscout/eventsync/internal/runner"
)

// Command returns the run command.
func Command() *cobra.Command {
	var purgePast bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one pipeline invocation",
		Long: `Increment the run counter, evaluate the sync-mode gate and, when the
gate opens, sync the accumulated intake batch into the store. The run
summary is printed as JSON on stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, false, purgePast)
		},
	}

	cmd.Flags().BoolVar(&purgePast, "purge-past", false, "remove past-dated events after a clean sync")

	return cmd
}

// Execute is shared by the run and sync commands; force bypasses the
// sync-mode gate.
func Execute(cmd *cobra.Command, force, purgePast bool) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	if mkdirErr := os.MkdirAll(deps.Config.Paths.DataDir, 0o755); mkdirErr != nil {
		return fmt.Errorf("create data directory: %w", mkdirErr)
	}

	store, err := common.ConnectStore(cmd.Context(), deps.Config)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			// Missing credentials skip the sync step; scrapers keep
			// accumulating intake files for a later run.
			deps.Logger.Error("sync skipped: store not configured", "error", cfgErr)
			return cfgErr
		}
		return err
	}
	defer store.Close()

	r := runner.New(store.Events, deps.Config.Sync, deps.Config.Paths, deps.Logger)

	result, err := r.RunOnce(cmd.Context(), force, purgePast)
	if err != nil {
		return err
	}

	if result.Skipped {
		deps.Logger.Info("no sync this run", "run_count", result.RunCount)
		return printSummary(&domain.RunSummary{})
	}

	return printSummary(result.Summary)
}

// printSummary writes the run summary as JSON to stdout for the
// scheduler or workflow engine that invoked us.
func printSummary(summary *domain.RunSummary) error {
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Println(string(data))

	return nil
}
