// Package schedule implements the schedule command, a long-running
// process that triggers pipeline invocations on a cron expression.
package schedule

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eventscout/eventsync/cmd/run"
)

// scheduleFromConfig returns the cron expression configured under
// sync.schedule (env SYNC_SCHEDULE).
func scheduleFromConfig() string {
	return viper.GetString("sync.schedule")
}

// Command returns the schedule command.
func Command() *cobra.Command {
	var spec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Long: `Start a scheduler that performs a pipeline invocation on the configured
cron expression. Runs until interrupted with Ctrl+C. Overlapping
invocations are prevented by the run lock.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSchedule(cmd, spec)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (overrides sync.schedule from config)")

	return cmd
}

func executeSchedule(cmd *cobra.Command, spec string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	if spec == "" {
		spec = scheduleFromConfig()
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		if runErr := run.Execute(cmd, false, false); runErr != nil {
			// Errors are already logged with context inside the run;
			// the scheduler keeps going for the next tick.
			fmt.Printf("scheduled run failed: %v\n", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	scheduler.Start()
	fmt.Printf("scheduler started with %q, press Ctrl+C to stop\n", spec)

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}
