// Package intake manages the intermediate batch file through which
// scraper processes hand raw events to the sync pipeline. Scrapers
// append; the pipeline loads the accumulated batch and clears the file
// only after a clean run, so records from failed batches are retried on
// the next invocation.
package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eventscout/eventsync/internal/domain"
)

// File is a JSON array of raw events on disk.
type File struct {
	path string
}

// NewFile returns an intake file handle at the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the on-disk location of the intake file.
func (f *File) Path() string {
	return f.path
}

// Load reads the accumulated raw events. A missing file is an empty
// batch, not an error.
func (f *File) Load() ([]domain.RawEvent, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read intake file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var events []domain.RawEvent
	if unmarshalErr := json.Unmarshal(data, &events); unmarshalErr != nil {
		return nil, fmt.Errorf("parse intake file: %w", unmarshalErr)
	}

	return events, nil
}

// Count returns how many raw events are waiting in the file.
func (f *File) Count() (int, error) {
	events, err := f.Load()
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// Append adds raw events to the file. Read-modify-write is acceptable
// here because scraper invocations and pipeline runs are serialized by
// the scheduler and the run lock.
func (f *File) Append(events []domain.RawEvent) error {
	if len(events) == 0 {
		return nil
	}

	existing, err := f.Load()
	if err != nil {
		return err
	}

	return f.write(append(existing, events...))
}

// Clear truncates the file to an empty batch. Called only after a run
// with no store or tracker errors.
func (f *File) Clear() error {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return nil
	}
	return f.write(nil)
}

func (f *File) write(events []domain.RawEvent) error {
	if events == nil {
		events = []domain.RawEvent{}
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encode intake file: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(f.path), 0o755); mkdirErr != nil {
		return fmt.Errorf("create intake directory: %w", mkdirErr)
	}
	if writeErr := os.WriteFile(f.path, data, 0o644); writeErr != nil {
		return fmt.Errorf("write intake file: %w", writeErr)
	}

	return nil
}
