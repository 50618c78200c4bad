// Package validator checks raw scraped records against the required-field
// and format rules of the canonical event schema and normalizes them into
// clean events. Validation is a pure function over its input: no I/O, no
// shared state. Records that fail validation are dropped by the caller
// and never reach the store.
package validator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/eventscout/eventsync/internal/domain"
)

// Rule identifies which class of validation a record failed.
type Rule string

const (
	// RuleMissingField means a required field was absent or empty.
	RuleMissingField Rule = "missing_field"
	// RuleFormat means a field was present but malformed.
	RuleFormat Rule = "format"
)

// dateLayout is the only accepted calendar date form.
const dateLayout = "2006-01-02"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// requiredFields lists the fields that must be present and non-empty,
// in the order they are checked.
var requiredFields = []string{"title", "date", "location", "link", "source"}

// ValidationError describes why a raw record was rejected. It carries
// the failed rule so callers can distinguish missing fields from bad
// formats when counting.
type ValidationError struct {
	Field string
	Rule  Rule
	Msg   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: field %q: %s", e.Field, e.Msg)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Rule: RuleMissingField, Msg: "required field missing or empty"}
}

func formatError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Rule: RuleFormat, Msg: msg}
}

// Validate checks one raw record and, on success, returns a normalized
// CleanEvent with title, date, time, location, link, description, source
// and price populated. PriceTier, Category and EventHash are filled in
// later by the tagger and hasher. Checks short-circuit on the first
// failure, required fields before formats.
func Validate(raw domain.RawEvent, scrapedAt time.Time) (*domain.CleanEvent, error) {
	fields := map[string]string{
		"title":    strings.TrimSpace(raw.Title),
		"date":     strings.TrimSpace(raw.Date),
		"location": strings.TrimSpace(StripInvisible(raw.Location)),
		"link":     strings.TrimSpace(raw.Link),
		"source":   strings.TrimSpace(raw.Source),
	}

	for _, name := range requiredFields {
		if fields[name] == "" {
			return nil, missingField(name)
		}
	}

	if err := validateDate(fields["date"]); err != nil {
		return nil, err
	}
	if err := validateLink(fields["link"]); err != nil {
		return nil, err
	}
	// Title non-emptiness after trimming is covered by the required-field
	// pass above; kept as a distinct rule so the ordering is explicit.
	if fields["title"] == "" {
		return nil, formatError("title", "empty after trimming")
	}

	return &domain.CleanEvent{
		Title:       fields["title"],
		Date:        fields["date"],
		Time:        normalizeTime(raw.Time),
		Location:    fields["location"],
		Link:        fields["link"],
		Description: strings.TrimSpace(raw.Description),
		Source:      fields["source"],
		Price:       ParsePrice(raw.Price),
		ScrapedAt:   scrapedAt,
	}, nil
}

// validateDate requires the ISO YYYY-MM-DD form and a real calendar
// date, so "2026-02-30" is rejected even though it matches the pattern.
func validateDate(date string) error {
	if !datePattern.MatchString(date) {
		return formatError("date", "expected YYYY-MM-DD")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return formatError("date", "not a valid calendar date")
	}
	return nil
}

func validateLink(link string) error {
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return formatError("link", "must start with http:// or https://")
	}
	return nil
}

// normalizeTime accepts HH:MM 24-hour text and maps anything else,
// including an absent time, to the TBA sentinel.
func normalizeTime(t string) string {
	t = strings.TrimSpace(t)
	if timePattern.MatchString(t) {
		return t
	}
	return domain.TimeTBA
}

// StripInvisible removes zero-width and other invisible format runes
// (zero-width spaces and joiners, BOMs, direction marks, soft hyphens).
// Scraped venue names frequently carry these from rich-text editors and
// they break equality and hashing.
func StripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// ParsePrice converts the untyped scraped price into integer cents.
// JSON numbers are taken as cents already; free text such as "$25.50"
// is parsed as a currency amount and converted. Absent or unparseable
// prices default to 0 (free).
func ParsePrice(price any) int {
	switch v := price.(type) {
	case nil:
		return 0
	case float64:
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(math.Round(v))
	case int:
		if v < 0 {
			return 0
		}
		return v
	case string:
		return parsePriceText(v)
	default:
		return 0
	}
}

// parsePriceText extracts a currency amount from free text. The first
// number found is taken as a dollar amount and converted to cents.
func parsePriceText(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.Contains(s, "free") {
		return 0
	}

	var num strings.Builder
	seenDigit := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num.WriteRune(r)
			seenDigit = true
			continue
		}
		if r == '.' && seenDigit {
			num.WriteRune(r)
			continue
		}
		if seenDigit {
			break
		}
	}
	if !seenDigit {
		return 0
	}

	dollars, err := strconv.ParseFloat(strings.TrimSuffix(num.String(), "."), 64)
	if err != nil || dollars < 0 {
		return 0
	}
	return int(math.Round(dollars * 100))
}
