// Package runcounter persists the pipeline invocation counter and
// implements the sync-mode gate that decides whether a given invocation
// should trigger a sync against the store.
package runcounter

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sync modes. Between disabled and always, the mode is the cadence
// divisor: sync on every mode-th invocation.
const (
	// ModeDisabled never syncs.
	ModeDisabled = 0
	// ModeAlways is the lowest mode that syncs on every invocation.
	ModeAlways = 5
)

// Counter is the persisted pipeline invocation counter. It carries no
// domain data; it exists only to drive sync cadence.
type Counter struct {
	path  string
	value int
}

// Load reads the counter file. A missing file starts the counter at 0;
// a corrupt file is an error because silently resetting the counter
// would change sync cadence unnoticed.
func Load(path string) (*Counter, error) {
	c := &Counter{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read run counter: %w", err)
	}

	value, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		return nil, fmt.Errorf("parse run counter %q: %w", strings.TrimSpace(string(data)), parseErr)
	}
	c.value = value

	return c, nil
}

// Value returns the current count.
func (c *Counter) Value() int {
	return c.value
}

// Increment bumps the counter by one and returns the new value. The
// counter is incremented once per pipeline invocation whether or not a
// sync ends up running.
func (c *Counter) Increment() int {
	c.value++
	return c.value
}

// Flush writes the counter back to its file.
func (c *Counter) Flush() error {
	data := strconv.Itoa(c.value) + "\n"
	if err := os.WriteFile(c.path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write run counter: %w", err)
	}
	return nil
}

// ShouldSync decides whether an invocation with the given run count
// triggers a sync. Mode 0 never syncs, modes 1 through 4 sync on every
// mode-th run, and mode 5 or above syncs on every run. Evaluated after
// the counter has been incremented.
func ShouldSync(mode, runCount int) bool {
	switch {
	case mode <= ModeDisabled:
		return false
	case mode >= ModeAlways:
		return true
	default:
		return runCount%mode == 0
	}
}
