package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// eventsSchema is the authoritative shape of the events table. The
// unique constraints on event_hash and link are load-bearing: they are
// the final dedup layer behind the local tracker and the existence
// pre-check.
const eventsSchema = `
CREATE TABLE IF NOT EXISTS events (
	id          BIGSERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	date        TEXT NOT NULL,
	time        TEXT NOT NULL DEFAULT 'TBA',
	location    TEXT NOT NULL,
	link        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	price       INTEGER NOT NULL DEFAULT 0,
	price_tier  SMALLINT NOT NULL DEFAULT 0,
	category    TEXT NOT NULL DEFAULT 'Other',
	event_hash  CHAR(32) NOT NULL UNIQUE,
	scraped_at  TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events (date);
CREATE INDEX IF NOT EXISTS idx_events_category ON events (category);
CREATE INDEX IF NOT EXISTS idx_events_price_tier ON events (price_tier);
CREATE INDEX IF NOT EXISTS idx_events_location ON events (location);
`

// EnsureSchema creates the events table and its indexes if they do not
// exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, eventsSchema); err != nil {
		return fmt.Errorf("ensure events schema: %w", err)
	}
	return nil
}
