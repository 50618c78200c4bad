package tagger_test

import (
	"testing"

	"github.com/eventscout/eventsync/internal/domain"
	"github.com/eventscout/eventsync/internal/tagger"
)

func TestPriceTier_Boundaries(t *testing.T) {
	tests := []struct {
		cents int
		want  int
	}{
		{0, tagger.TierFree},
		{1, tagger.TierUnder20},
		{2000, tagger.TierUnder20},
		{2001, tagger.TierUnder50},
		{5000, tagger.TierUnder50},
		{5001, tagger.TierUnder100},
		{7500, tagger.TierUnder100},
		{10000, tagger.TierUnder100},
		{10001, tagger.TierPremium},
		{250000, tagger.TierPremium},
		{-1, tagger.TierFree},
	}

	for _, tt := range tests {
		if got := tagger.PriceTier(tt.cents); got != tt.want {
			t.Errorf("PriceTier(%d) = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestPriceTier_MonotonicNonDecreasing(t *testing.T) {
	prev := tagger.PriceTier(0)
	for cents := 1; cents <= 12000; cents++ {
		tier := tagger.PriceTier(cents)
		if tier < prev {
			t.Fatalf("PriceTier(%d) = %d dropped below PriceTier(%d) = %d", cents, tier, cents-1, prev)
		}
		prev = tier
	}
}

func TestCategorize(t *testing.T) {
	matcher := tagger.NewCategoryMatcher(tagger.DefaultRules())

	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"concert in title", "Summer Concert at the Pier", "", "Music"},
		{"keyword in description", "Friday Special", "An intimate live music evening", "Music"},
		{"tech conference", "CloudConf 2026", "The developer conference of the year", "Tech"},
		{"comedy night", "Stand-Up at the Basement", "", "Comedy"},
		{"nightlife event", "Warehouse Party", "", "Nightlife"},
		{"gallery opening", "New Voices", "Gallery opening with the artists", "Arts"},
		{"wine tasting", "Valley Wine Walk", "tasting across twelve cellars", "Food & Drink"},
		{"is case-insensitive", "ROOFTOP CONCERT", "", "Music"},
		{"punctuation insensitive", "live-music, all night!", "", "Music"},
		{"no match", "Annual General Meeting", "Agenda and minutes", "Other"},
		{"empty input", "", "", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Categorize(tt.title, tt.description)
			if got != tt.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestCategorize_FirstRuleWins(t *testing.T) {
	matcher := tagger.NewCategoryMatcher(tagger.DefaultRules())

	// "concert" (Music, rule 0) and "party" (Nightlife, rule 3) both
	// match; the earlier rule in the table must win.
	got := matcher.Categorize("Concert after-party", "")
	if got != "Music" {
		t.Errorf("Categorize = %q, want Music (earliest rule)", got)
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	matcher := tagger.NewCategoryMatcher(tagger.DefaultRules())

	first := matcher.Categorize("DJ set and wine tasting", "club night")
	for i := 0; i < 10; i++ {
		if got := matcher.Categorize("DJ set and wine tasting", "club night"); got != first {
			t.Fatalf("Categorize changed between calls: %q then %q", first, got)
		}
	}
}

func TestTag_FillsTierAndCategory(t *testing.T) {
	tag := tagger.New()

	event := &domain.CleanEvent{
		Title:       "Harbour Concert Series",
		Description: "",
		Price:       7500,
	}
	tag.Tag(event)

	if event.PriceTier != tagger.TierUnder100 {
		t.Errorf("PriceTier = %d, want %d", event.PriceTier, tagger.TierUnder100)
	}
	if event.Category != "Music" {
		t.Errorf("Category = %q, want Music", event.Category)
	}

	free := &domain.CleanEvent{Title: "Community Picnic", Price: 0}
	tag.Tag(free)

	if free.PriceTier != tagger.TierFree {
		t.Errorf("PriceTier = %d, want %d", free.PriceTier, tagger.TierFree)
	}
	if free.Category != domain.DefaultCategory {
		t.Errorf("Category = %q, want %q", free.Category, domain.DefaultCategory)
	}
}

func TestNewCategoryMatcher_EmptyRules(t *testing.T) {
	matcher := tagger.NewCategoryMatcher(nil)

	if got := matcher.Categorize("concert", ""); got != domain.DefaultCategory {
		t.Errorf("Categorize with no rules = %q, want %q", got, domain.DefaultCategory)
	}
}
