package runcounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eventscout/eventsync/internal/runcounter"
)

func TestShouldSync(t *testing.T) {
	tests := []struct {
		name     string
		mode     int
		runCount int
		want     bool
	}{
		{"mode 0 never syncs", 0, 1, false},
		{"mode 0 never syncs at high counts", 0, 100, false},
		{"negative mode never syncs", -1, 10, false},
		{"mode 1 syncs every run", 1, 1, true},
		{"mode 1 syncs every run again", 1, 7, true},
		{"mode 2 on even runs", 2, 4, true},
		{"mode 2 off odd runs", 2, 5, false},
		{"mode 3 on multiple", 3, 6, true},
		{"mode 3 off non-multiple", 3, 7, false},
		{"mode 4 on multiple", 4, 8, true},
		{"mode 4 off non-multiple", 4, 9, false},
		{"mode 5 always", 5, 1, true},
		{"mode 5 always at non-multiple", 5, 3, true},
		{"mode above 5 always", 12, 13, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runcounter.ShouldSync(tt.mode, tt.runCount); got != tt.want {
				t.Errorf("ShouldSync(%d, %d) = %v, want %v", tt.mode, tt.runCount, got, tt.want)
			}
		})
	}
}

func TestCounter_LoadMissingStartsAtZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_counter")

	counter, err := runcounter.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if counter.Value() != 0 {
		t.Errorf("Value() = %d, want 0", counter.Value())
	}
}

func TestCounter_IncrementAndFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_counter")

	counter, err := runcounter.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := counter.Increment(); got != 1 {
		t.Errorf("Increment() = %d, want 1", got)
	}
	if got := counter.Increment(); got != 2 {
		t.Errorf("Increment() = %d, want 2", got)
	}
	if err := counter.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	reloaded, err := runcounter.Load(path)
	if err != nil {
		t.Fatalf("Load() after flush error = %v", err)
	}
	if reloaded.Value() != 2 {
		t.Errorf("reloaded Value() = %d, want 2", reloaded.Value())
	}
}

func TestCounter_LoadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_counter")
	if err := os.WriteFile(path, []byte("41\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	counter, err := runcounter.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if counter.Increment() != 42 {
		t.Errorf("Increment() = %d, want 42", counter.Value())
	}
}

func TestCounter_LoadCorruptFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_counter")
	if err := os.WriteFile(path, []byte("not a number"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runcounter.Load(path); err == nil {
		t.Error("Load() accepted corrupt counter file")
	}
}
