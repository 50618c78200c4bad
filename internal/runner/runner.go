// Package runner drives one pipeline invocation end to end: it bumps
// the run counter, evaluates the sync-mode gate, and, when the gate
// opens, locks out concurrent runs and hands the accumulated intake
// batch to the sync manager.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/eventscout/eventsync/internal/config"
	"github.com/eventscout/eventsync/internal/domain"
	"github.com/eventscout/eventsync/internal/intake"
	"github.com/eventscout/eventsync/internal/logger"
	"github.com/eventscout/eventsync/internal/runcounter"
	"github.com/eventscout/eventsync/internal/syncer"
	"github.com/eventscout/eventsync/internal/tracker"
)

// Store is the store surface the runner needs: the syncer's operations
// plus maintenance.
type Store interface {
	syncer.EventStore
	PurgePast(ctx context.Context, before string) (int64, error)
}

// Result reports what one pipeline invocation did.
type Result struct {
	// RunCount is the counter value after this invocation.
	RunCount int
	// Skipped is true when the sync-mode gate kept the sync from running.
	Skipped bool
	// Summary is nil when Skipped is true.
	Summary *domain.RunSummary
	// PastPurged is the number of past-dated events removed, when purging
	// was requested.
	PastPurged int64
}

// Runner wires the pipeline's process-wide state to the sync manager.
type Runner struct {
	store   Store
	syncCfg config.SyncConfig
	paths   config.PathsConfig
	logger  logger.Interface
}

// New creates a runner.
func New(store Store, syncCfg config.SyncConfig, paths config.PathsConfig, log logger.Interface) *Runner {
	return &Runner{
		store:   store,
		syncCfg: syncCfg,
		paths:   paths,
		logger:  log.WithComponent("runner"),
	}
}

// RunOnce performs one pipeline invocation. The counter is incremented
// and persisted whether or not the gate opens, so cadence is measured
// in invocations, not syncs. With force set the gate is bypassed. With
// purgePast set, past-dated events are removed from the store after a
// successful sync.
func (r *Runner) RunOnce(ctx context.Context, force, purgePast bool) (*Result, error) {
	counter, err := runcounter.Load(r.paths.CounterFile())
	if err != nil {
		return nil, fmt.Errorf("load run counter: %w", err)
	}

	runCount := counter.Increment()
	if flushErr := counter.Flush(); flushErr != nil {
		return nil, fmt.Errorf("persist run counter: %w", flushErr)
	}

	result := &Result{RunCount: runCount}

	if !force && !runcounter.ShouldSync(r.syncCfg.Mode, runCount) {
		r.logger.Info("sync gate closed, skipping",
			"mode", r.syncCfg.Mode, "run_count", runCount)
		result.Skipped = true
		return result, nil
	}

	lock, err := tracker.AcquireLock(r.paths.LockFile())
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			r.logger.Warn("failed to release run lock", "error", releaseErr)
		}
	}()

	summary, err := r.sync(ctx)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	if purgePast && summary.Clean() {
		today := time.Now().UTC().Format("2006-01-02")
		removed, purgeErr := r.store.PurgePast(ctx, today)
		if purgeErr != nil {
			summary.AddError(fmt.Sprintf("purge past events: %v", purgeErr))
		} else {
			result.PastPurged = removed
			if removed > 0 {
				r.logger.Info("purged past events", "removed", removed)
			}
		}
	}

	return result, nil
}

// sync loads local state, runs the sync manager on the intake batch,
// and clears the intake file after a clean run.
func (r *Runner) sync(ctx context.Context) (*domain.RunSummary, error) {
	seen, err := tracker.Load(r.paths.TrackerFile())
	if err != nil {
		// Tracker loss only costs redundant store round-trips.
		r.logger.Warn("tracker snapshot unreadable, starting empty", "error", err)
	}

	batchFile := intake.NewFile(r.paths.IntakeFile())
	raw, err := batchFile.Load()
	if err != nil {
		return nil, fmt.Errorf("load intake batch: %w", err)
	}

	manager := syncer.NewManager(r.store, seen, r.logger, syncer.Options{
		BatchSize:     r.syncCfg.BatchSize,
		RetentionDays: r.syncCfg.RetentionDays,
	})

	summary, err := manager.Sync(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("sync run: %w", err)
	}

	if summary.Clean() {
		if clearErr := batchFile.Clear(); clearErr != nil {
			summary.AddError(fmt.Sprintf("clear intake file: %v", clearErr))
		}
	} else {
		r.logger.Warn("run had errors, keeping intake file for retry",
			"errors", len(summary.Errors))
	}

	return summary, nil
}
