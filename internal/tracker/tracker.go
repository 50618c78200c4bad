// Package tracker maintains the local record of previously-synced event
// fingerprints. It is a cache in front of the store's unique
// constraints: losing the snapshot file costs extra store round-trips
// on the next run, never correctness.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultRetentionDays is the default retention window for entries.
const DefaultRetentionDays = 30

// snapshotFileMode is the permission for written snapshot files.
const snapshotFileMode = 0o644

// snapshot is the on-disk form: fingerprint -> first-seen timestamp.
type snapshot struct {
	Entries map[string]time.Time `json:"entries"`
}

// Tracker is the in-memory set of synced fingerprints. The whole
// snapshot is loaded at the start of a run and flushed at the end.
// Methods are safe for concurrent use so record-level parallelism in
// the pipeline stays an implementation choice of the caller.
type Tracker struct {
	mu      sync.Mutex
	path    string
	entries map[string]time.Time
	dirty   bool
}

// Load reads the snapshot at path into memory. A missing file yields an
// empty tracker. A corrupt file also yields an empty tracker, with the
// parse error returned alongside so the caller can log it; the store's
// unique constraints make starting over safe.
func Load(path string) (*Tracker, error) {
	t := &Tracker{
		path:    path,
		entries: make(map[string]time.Time),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("read tracker snapshot: %w", err)
	}

	var snap snapshot
	if unmarshalErr := json.Unmarshal(data, &snap); unmarshalErr != nil {
		return t, fmt.Errorf("parse tracker snapshot: %w", unmarshalErr)
	}
	if snap.Entries != nil {
		t.entries = snap.Entries
	}

	return t, nil
}

// Seen reports whether a fingerprint has been recorded as synced.
func (t *Tracker) Seen(hash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.entries[hash]
	return ok
}

// Record marks a fingerprint as synced. The first-seen timestamp of an
// already-known fingerprint is preserved so retention is measured from
// first sync, not last sighting.
func (t *Tracker) Record(hash string, ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[hash]; ok {
		return
	}
	t.entries[hash] = ts
	t.dirty = true
}

// Cleanup removes entries first seen more than retentionDays ago and
// returns how many were removed. Called once per sync run.
func (t *Tracker) Cleanup(retentionDays int) int {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for hash, firstSeen := range t.entries {
		if firstSeen.Before(cutoff) {
			delete(t.entries, hash)
			removed++
		}
	}
	if removed > 0 {
		t.dirty = true
	}

	return removed
}

// Len returns the number of tracked fingerprints.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}

// Oldest returns the earliest first-seen timestamp, if any entries exist.
func (t *Tracker) Oldest() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var oldest time.Time
	found := false
	for _, ts := range t.entries {
		if !found || ts.Before(oldest) {
			oldest = ts
			found = true
		}
	}

	return oldest, found
}

// Flush writes the snapshot to disk if anything changed since load.
// The write goes through a temp file and rename so a crash mid-flush
// never leaves a truncated snapshot.
func (t *Tracker) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty {
		return nil
	}

	data, err := json.Marshal(snapshot{Entries: t.entries})
	if err != nil {
		return fmt.Errorf("encode tracker snapshot: %w", err)
	}

	dir := filepath.Dir(t.path)
	if mkdirErr := os.MkdirAll(dir, 0o755); mkdirErr != nil {
		return fmt.Errorf("create tracker directory: %w", mkdirErr)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create tracker temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write tracker snapshot: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close tracker temp file: %w", closeErr)
	}
	if chmodErr := os.Chmod(tmpName, snapshotFileMode); chmodErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod tracker snapshot: %w", chmodErr)
	}

	if renameErr := os.Rename(tmpName, t.path); renameErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace tracker snapshot: %w", renameErr)
	}

	t.dirty = false
	return nil
}
