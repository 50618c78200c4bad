// Package syncer orchestrates one sync run: validation, tagging,
// hashing, layered dedup filtering, and batched inserts into the store.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eventscout/eventsync/internal/domain"
	"github.com/eventscout/eventsync/internal/eventhash"
	"github.com/eventscout/eventsync/internal/logger"
	"github.com/eventscout/eventsync/internal/tagger"
	"github.com/eventscout/eventsync/internal/validator"
)

// DefaultBatchSize bounds insert statement size and memory per batch.
const DefaultBatchSize = 100

// State is the phase a sync run is in. A manager is not re-entrant;
// the caller serializes runs via the run lock.
type State string

// Sync run states.
const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateTagging    State = "tagging"
	StateDedup      State = "dedup_filtering"
	StateInserting  State = "batch_inserting"
	StateCleanup    State = "cleanup"
)

// EventStore is the subset of store operations the syncer needs. The
// production implementation is database.EventRepository; tests
// substitute fakes.
type EventStore interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	InsertBatch(ctx context.Context, events []*domain.CleanEvent) (int, error)
}

// SeenTracker is the local dedup cache consulted before the store.
type SeenTracker interface {
	Seen(hash string) bool
	Record(hash string, ts time.Time)
	Cleanup(retentionDays int) int
	Flush() error
}

// Options configures a sync run.
type Options struct {
	BatchSize     int
	RetentionDays int
}

// Manager runs the scrape-to-store synchronization pipeline.
type Manager struct {
	store   EventStore
	tracker SeenTracker
	tagger  *tagger.Tagger
	logger  logger.Interface
	opts    Options
	state   State
}

// NewManager creates a sync manager.
func NewManager(store EventStore, seen SeenTracker, log logger.Interface, opts Options) *Manager {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Manager{
		store:   store,
		tracker: seen,
		tagger:  tagger.New(),
		logger:  log.WithComponent("syncer"),
		opts:    opts,
		state:   StateIdle,
	}
}

// State returns the manager's current phase.
func (m *Manager) State() State {
	return m.state
}

func (m *Manager) setState(s State) {
	m.state = s
	m.logger.Debug("sync state changed", "state", string(s))
}

// Sync processes one batch of raw events and returns the run summary.
// Invalid records are counted and dropped; duplicates are counted and
// skipped; store errors go into the summary's error list without
// aborting the remaining batches. The returned error is non-nil only
// for failures outside normal record handling.
func (m *Manager) Sync(ctx context.Context, raw []domain.RawEvent) (*domain.RunSummary, error) {
	runID := uuid.NewString()
	log := m.logger.WithRunID(runID)
	summary := &domain.RunSummary{RunID: runID}

	log.Info("sync run started", "raw_events", len(raw))
	defer m.setState(StateIdle)

	clean := m.validate(raw, summary, log)
	m.tagAndHash(clean)
	fresh := m.filterDuplicates(ctx, clean, summary, log)
	m.insertBatches(ctx, fresh, summary, log)
	m.cleanup(summary, log)

	log.Info("sync run finished",
		"synced", summary.EventsSynced,
		"duplicates", summary.DuplicatesRemoved,
		"invalid", summary.InvalidEvents,
		"errors", len(summary.Errors),
	)

	return summary, nil
}

// validate runs every raw record through the validator, dropping and
// counting failures. Input order is preserved.
func (m *Manager) validate(raw []domain.RawEvent, summary *domain.RunSummary, log logger.Interface) []*domain.CleanEvent {
	m.setState(StateValidating)
	now := time.Now().UTC()

	clean := make([]*domain.CleanEvent, 0, len(raw))
	for _, r := range raw {
		event, err := validator.Validate(r, now)
		if err != nil {
			summary.InvalidEvents++
			log.Debug("dropped invalid event", "link", r.Link, "error", err)
			continue
		}
		clean = append(clean, event)
	}

	return clean
}

// tagAndHash derives price tier, category and fingerprint for each
// surviving record.
func (m *Manager) tagAndHash(events []*domain.CleanEvent) {
	m.setState(StateTagging)

	for _, event := range events {
		m.tagger.Tag(event)
		eventhash.ForEvent(event)
	}
}

// filterDuplicates applies the layered dedup checks, cheapest first:
// the in-run set, the local tracker, then a store existence check by
// fingerprint. The store's unique constraints remain the final backstop
// at insert time. Hits at any layer reinforce the tracker so the cache
// converges on store state.
func (m *Manager) filterDuplicates(
	ctx context.Context,
	events []*domain.CleanEvent,
	summary *domain.RunSummary,
	log logger.Interface,
) []*domain.CleanEvent {
	m.setState(StateDedup)
	now := time.Now().UTC()

	inRun := make(map[string]struct{}, len(events))
	fresh := make([]*domain.CleanEvent, 0, len(events))

	for _, event := range events {
		if _, dup := inRun[event.EventHash]; dup {
			summary.DuplicatesRemoved++
			continue
		}
		inRun[event.EventHash] = struct{}{}

		if m.tracker.Seen(event.EventHash) {
			summary.DuplicatesRemoved++
			m.tracker.Record(event.EventHash, now)
			continue
		}

		exists, err := m.store.ExistsByHash(ctx, event.EventHash)
		if err != nil {
			// Record stays in the intake file and retries next run.
			summary.AddError(fmt.Sprintf("existence check for %s: %v", event.EventHash, err))
			continue
		}
		if exists {
			summary.DuplicatesRemoved++
			m.tracker.Record(event.EventHash, now)
			continue
		}

		fresh = append(fresh, event)
	}

	return fresh
}

// insertBatches writes the surviving events in fixed-size batches. Each
// batch commits or fails independently: a failed batch is reported and
// its records are not marked synced, while later batches still run.
// Conflict skips inside a successful batch are duplicates caught by the
// unique constraints, never errors.
func (m *Manager) insertBatches(
	ctx context.Context,
	events []*domain.CleanEvent,
	summary *domain.RunSummary,
	log logger.Interface,
) {
	m.setState(StateInserting)
	now := time.Now().UTC()

	for start := 0; start < len(events); start += m.opts.BatchSize {
		end := min(start+m.opts.BatchSize, len(events))
		batch := events[start:end]

		inserted, err := m.store.InsertBatch(ctx, batch)
		if err != nil {
			summary.AddError(fmt.Sprintf("batch insert (%d events): %v", len(batch), err))
			log.Error("batch insert failed", "batch_size", len(batch), "error", err)
			continue
		}

		summary.EventsSynced += inserted
		summary.DuplicatesRemoved += len(batch) - inserted

		for _, event := range batch {
			m.tracker.Record(event.EventHash, now)
		}

		log.Debug("batch inserted", "inserted", inserted, "skipped", len(batch)-inserted)
	}
}

// cleanup expires old tracker entries and persists the snapshot.
func (m *Manager) cleanup(summary *domain.RunSummary, log logger.Interface) {
	m.setState(StateCleanup)

	if removed := m.tracker.Cleanup(m.opts.RetentionDays); removed > 0 {
		log.Info("expired tracker entries", "removed", removed)
	}

	if err := m.tracker.Flush(); err != nil {
		summary.AddError(fmt.Sprintf("tracker flush: %v", err))
		log.Error("tracker flush failed", "error", err)
	}
}
