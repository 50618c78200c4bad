package tracker_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventscout/eventsync/internal/tracker"
)

func trackerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "synced_events.json")
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	tr, err := tracker.Load(trackerPath(t))
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.Seen("deadbeef"))
}

func TestRecordAndSeen(t *testing.T) {
	tr, err := tracker.Load(trackerPath(t))
	require.NoError(t, err)

	now := time.Now().UTC()
	tr.Record("hash-a", now)

	assert.True(t, tr.Seen("hash-a"))
	assert.False(t, tr.Seen("hash-b"))
	assert.Equal(t, 1, tr.Len())
}

func TestRecord_PreservesFirstSeen(t *testing.T) {
	tr, err := tracker.Load(trackerPath(t))
	require.NoError(t, err)

	first := time.Now().UTC().AddDate(0, 0, -10)
	tr.Record("hash-a", first)
	tr.Record("hash-a", time.Now().UTC())

	oldest, ok := tr.Oldest()
	require.True(t, ok)
	assert.True(t, oldest.Equal(first), "re-recording must not refresh first-seen")
}

func TestFlushAndReload(t *testing.T) {
	path := trackerPath(t)

	tr, err := tracker.Load(path)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	tr.Record("hash-a", ts)
	tr.Record("hash-b", ts)
	require.NoError(t, tr.Flush())

	reloaded, err := tracker.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.Seen("hash-a"))
	assert.True(t, reloaded.Seen("hash-b"))
}

func TestFlush_NoopWhenClean(t *testing.T) {
	path := trackerPath(t)

	tr, err := tracker.Load(path)
	require.NoError(t, err)
	require.NoError(t, tr.Flush())

	// Nothing recorded, nothing written.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanup_RemovesExpiredEntries(t *testing.T) {
	tr, err := tracker.Load(trackerPath(t))
	require.NoError(t, err)

	now := time.Now().UTC()
	tr.Record("fresh", now.AddDate(0, 0, -5))
	tr.Record("stale", now.AddDate(0, 0, -45))
	tr.Record("ancient", now.AddDate(0, 0, -200))

	removed := tr.Cleanup(30)

	assert.Equal(t, 2, removed)
	assert.True(t, tr.Seen("fresh"))
	assert.False(t, tr.Seen("stale"))
	assert.False(t, tr.Seen("ancient"))
}

func TestCleanup_DefaultsRetention(t *testing.T) {
	tr, err := tracker.Load(trackerPath(t))
	require.NoError(t, err)

	tr.Record("recent", time.Now().UTC().AddDate(0, 0, -29))
	assert.Equal(t, 0, tr.Cleanup(0))
	assert.True(t, tr.Seen("recent"))
}

func TestLoad_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := trackerPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	tr, err := tracker.Load(path)

	// The error is reported for logging, but the tracker is usable.
	assert.Error(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, 0, tr.Len())

	tr.Record("hash-a", time.Now().UTC())
	assert.NoError(t, tr.Flush())
}

func TestAcquireLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")

	lock, err := tracker.AcquireLock(path)
	require.NoError(t, err)

	_, second := tracker.AcquireLock(path)
	assert.ErrorIs(t, second, tracker.ErrLocked)

	require.NoError(t, lock.Release())

	relock, err := tracker.AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, relock.Release())
}

func TestAcquireLock_TakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.lock")
	require.NoError(t, os.WriteFile(path, []byte("12345\n"), 0o644))

	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(path, stale, stale))

	lock, err := tracker.AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}
