// Package domain defines the core types shared across the sync pipeline.
package domain

import "time"

// TimeTBA is the sentinel stored when a scraper could not determine a
// start time for an event.
const TimeTBA = "TBA"

// DefaultCategory is assigned when no category rule matches an event.
const DefaultCategory = "Other"

// RawEvent is one scraped record as produced by an external scraper.
// Nothing about it is trusted: fields may be missing, empty, or of the
// wrong shape. Price is either a JSON number (cents) or free text
// (e.g. "$25", "Free") depending on the source platform.
type RawEvent struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Price       any    `json:"price,omitempty"`
}

// CleanEvent is the canonical, validated form of an event. It is the
// unit persisted to the events table and is never mutated after insert.
type CleanEvent struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Location    string    `db:"location" json:"location"`
	Link        string    `db:"link" json:"link"`
	Description string    `db:"description" json:"description"`
	Source      string    `db:"source" json:"source"`
	Price       int       `db:"price" json:"price"`
	PriceTier   int       `db:"price_tier" json:"price_tier"`
	Category    string    `db:"category" json:"category"`
	EventHash   string    `db:"event_hash" json:"event_hash"`
	ScrapedAt   time.Time `db:"scraped_at" json:"scraped_at"`
}

// RunSummary reports the outcome of one sync run. Partial success is
// reported as-is: a run with errors may still have synced events.
type RunSummary struct {
	RunID             string   `json:"run_id"`
	EventsSynced      int      `json:"events_synced"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	InvalidEvents     int      `json:"invalid_events"`
	Errors            []string `json:"errors"`
}

// Clean reports whether the run completed without store or tracker
// errors. Callers use this to decide whether the intake file may be
// cleared; invalid and duplicate records do not make a run unclean.
func (s *RunSummary) Clean() bool {
	return len(s.Errors) == 0
}

// AddError appends a store or tracker error to the summary.
func (s *RunSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}
