package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/eventscout/eventsync/internal/domain"
)

// ErrEventNotFound is returned when a lookup matches no event.
// Callers should check with errors.Is().
var ErrEventNotFound = errors.New("event not found")

// Event repository constants.
const (
	defaultListLimit = 50
	maxListLimit     = 500

	// insertColumnCount is the number of columns written per event row.
	insertColumnCount = 12

	// eventSelectColumns lists columns for SELECT queries on events.
	eventSelectColumns = `id, title, date, time, location, link, description, source,
		price, price_tier, category, event_hash, scraped_at`
)

// EventRepository handles database operations for synced events. The
// events table carries unique constraints on event_hash and link; those
// constraints, not this code, are the final dedup authority.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ExistsByHash checks whether an event with the given fingerprint is
// already persisted.
func (r *EventRepository) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE event_hash = $1)`

	if err := r.db.GetContext(ctx, &exists, query, hash); err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}

	return exists, nil
}

// ExistsByLink checks whether an event with the given link is already
// persisted.
func (r *EventRepository) ExistsByLink(ctx context.Context, link string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM events WHERE link = $1)`

	if err := r.db.GetContext(ctx, &exists, query, link); err != nil {
		return false, fmt.Errorf("check event link exists: %w", err)
	}

	return exists, nil
}

// InsertBatch inserts events in a single multi-row statement with
// ON CONFLICT DO NOTHING, so rows that collide with an existing
// event_hash or link are silently skipped rather than failing the
// batch. Returns the number of rows actually inserted; the difference
// from len(events) is the number of conflict skips.
func (r *EventRepository) InsertBatch(ctx context.Context, events []*domain.CleanEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(events))
	args := make([]any, 0, len(events)*insertColumnCount)

	for i, event := range events {
		base := i * insertColumnCount
		row := make([]string, insertColumnCount)
		for j := range row {
			row[j] = "$" + strconv.Itoa(base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")
		args = append(args,
			event.Title, event.Date, event.Time, event.Location, event.Link,
			event.Description, event.Source, event.Price, event.PriceTier,
			event.Category, event.EventHash, event.ScrapedAt,
		)
	}

	query := `
		INSERT INTO events (title, date, time, location, link, description, source,
			price, price_tier, category, event_hash, scraped_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert event batch: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert event batch rows affected: %w", err)
	}

	return int(inserted), nil
}

// GetByHash fetches one event by its fingerprint. Returns
// ErrEventNotFound when no row matches.
func (r *EventRepository) GetByHash(ctx context.Context, hash string) (*domain.CleanEvent, error) {
	query := `SELECT ` + eventSelectColumns + ` FROM events WHERE event_hash = $1`

	var event domain.CleanEvent
	if err := r.db.GetContext(ctx, &event, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event by hash: %w", err)
	}

	return &event, nil
}

// Count returns the total number of persisted events.
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}

// EventFilters represents filtering options for listing events. Dates
// are ISO YYYY-MM-DD strings, which compare correctly as text.
type EventFilters struct {
	Location  string // substring match, case-insensitive
	Category  string
	Source    string
	DateFrom  string
	DateTo    string
	PriceTier *int
	Limit     int
	Offset    int
}

// List returns events matching the filters, ordered by date then time,
// plus the total match count for pagination.
func (r *EventRepository) List(ctx context.Context, filters EventFilters) ([]*domain.CleanEvent, int, error) {
	whereClause, args := buildEventWhere(filters)

	countQuery := `SELECT COUNT(*) FROM events` + whereClause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count filtered events: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := fmt.Sprintf(
		`SELECT %s FROM events%s ORDER BY date ASC, time ASC LIMIT $%d OFFSET $%d`,
		eventSelectColumns, whereClause, len(args)+1, len(args)+2,
	)
	args = append(args, limit, filters.Offset)

	events := []*domain.CleanEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	return events, total, nil
}

// PurgePast deletes events dated strictly before the given ISO date and
// returns the number removed.
func (r *EventRepository) PurgePast(ctx context.Context, before string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE date < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge past events: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge past events rows affected: %w", err)
	}

	return removed, nil
}

// buildEventWhere constructs the WHERE clause and arguments for List.
func buildEventWhere(filters EventFilters) (string, []any) {
	conditions := []string{}
	args := []any{}

	addCondition := func(expr string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filters.Location != "" {
		addCondition("location ILIKE $%d", "%"+filters.Location+"%")
	}
	if filters.Category != "" {
		addCondition("category = $%d", filters.Category)
	}
	if filters.Source != "" {
		addCondition("source = $%d", filters.Source)
	}
	if filters.DateFrom != "" {
		addCondition("date >= $%d", filters.DateFrom)
	}
	if filters.DateTo != "" {
		addCondition("date <= $%d", filters.DateTo)
	}
	if filters.PriceTier != nil {
		addCondition("price_tier = $%d", *filters.PriceTier)
	}

	if len(conditions) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}
