package eventhash_test

import (
	"testing"

	"github.com/eventscout/eventsync/internal/domain"
	"github.com/eventscout/eventsync/internal/eventhash"
)

func TestHash_DeterministicAnd32Chars(t *testing.T) {
	first := eventhash.Hash("Warehouse Sessions", "2026-09-12", "The Old Depot", "https://example.com/e/1")
	second := eventhash.Hash("Warehouse Sessions", "2026-09-12", "The Old Depot", "https://example.com/e/1")

	if first != second {
		t.Errorf("Hash not deterministic: %q vs %q", first, second)
	}
	if len(first) != eventhash.Size {
		t.Errorf("len(hash) = %d, want %d", len(first), eventhash.Size)
	}
	for _, r := range first {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("hash contains non-hex rune %q", r)
		}
	}
}

func TestHash_InsensitiveToCaseAndSpacing(t *testing.T) {
	base := eventhash.Hash("Warehouse Sessions", "2026-09-12", "The Old Depot", "https://example.com/e/1")

	variants := []struct {
		name     string
		title    string
		location string
	}{
		{"different case", "WAREHOUSE SESSIONS", "the old depot"},
		{"extra internal spaces", "Warehouse   Sessions", "The  Old  Depot"},
		{"surrounding whitespace", "  Warehouse Sessions ", " The Old Depot\t"},
	}

	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			got := eventhash.Hash(tt.title, "2026-09-12", tt.location, "https://example.com/e/1")
			if got != base {
				t.Errorf("hash changed for cosmetic variant: %q vs %q", got, base)
			}
		})
	}
}

func TestHash_SensitiveToIdentityFields(t *testing.T) {
	base := eventhash.Hash("Warehouse Sessions", "2026-09-12", "The Old Depot", "https://example.com/e/1")

	changed := []struct {
		name  string
		title string
		date  string
		loc   string
		link  string
	}{
		{"title", "Warehouse Sessions 2", "2026-09-12", "The Old Depot", "https://example.com/e/1"},
		{"date", "Warehouse Sessions", "2026-09-13", "The Old Depot", "https://example.com/e/1"},
		{"location", "Warehouse Sessions", "2026-09-12", "The New Depot", "https://example.com/e/1"},
		{"link", "Warehouse Sessions", "2026-09-12", "The Old Depot", "https://example.com/e/2"},
	}

	for _, tt := range changed {
		t.Run(tt.name, func(t *testing.T) {
			got := eventhash.Hash(tt.title, tt.date, tt.loc, tt.link)
			if got == base {
				t.Errorf("hash unchanged when %s differs", tt.name)
			}
		})
	}
}

func TestForEvent_IgnoresNonIdentityFields(t *testing.T) {
	a := &domain.CleanEvent{
		Title:       "Warehouse Sessions",
		Date:        "2026-09-12",
		Time:        "21:00",
		Location:    "The Old Depot",
		Link:        "https://example.com/e/1",
		Description: "Original description",
	}
	b := &domain.CleanEvent{
		Title:       "Warehouse Sessions",
		Date:        "2026-09-12",
		Time:        "TBA",
		Location:    "The Old Depot",
		Link:        "https://example.com/e/1",
		Description: "A totally rewritten description",
	}

	if eventhash.ForEvent(a) != eventhash.ForEvent(b) {
		t.Error("hash differs when only description/time differ")
	}
	if a.EventHash == "" {
		t.Error("ForEvent did not assign EventHash")
	}
}
