// Package eventhash computes the content fingerprint used for event
// deduplication. The fingerprint covers only the fields least likely to
// vary between re-scrapes of the same posting (title, date, location,
// link); description, time and scrape timestamp never influence it, so
// the hash is a stable identity across the lifetime of an event.
package eventhash

import (
	"crypto/md5" //nolint:gosec // fingerprint for dedup, not a security boundary
	"encoding/hex"
	"strings"

	"github.com/eventscout/eventsync/internal/domain"
)

// Size is the length of a fingerprint in hex characters.
const Size = 32

// Hash returns the 32-character fingerprint for the given identity
// tuple. Inputs are normalized (lowercased, whitespace collapsed)
// before hashing so cosmetic differences between scrapes of the same
// event produce identical fingerprints.
func Hash(title, date, location, link string) string {
	parts := []string{
		normalize(title),
		strings.TrimSpace(date),
		normalize(location),
		strings.TrimSpace(link),
	}

	sum := md5.Sum([]byte(strings.Join(parts, "|"))) //nolint:gosec // see package doc
	return hex.EncodeToString(sum[:])
}

// ForEvent computes and assigns the fingerprint of a clean event.
func ForEvent(event *domain.CleanEvent) string {
	event.EventHash = Hash(event.Title, event.Date, event.Location, event.Link)
	return event.EventHash
}

// normalize lowercases and collapses internal whitespace runs.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
