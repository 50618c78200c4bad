// Package tagger derives price tiers and categories for clean events.
// Tagging is total: every input gets a tier and a category, defaulting
// conservatively when nothing matches.
package tagger

import "github.com/eventscout/eventsync/internal/domain"

// Price tier boundaries in cents. Boundaries are inclusive of the
// upper amount: an event priced exactly 2000 is tier 1.
const (
	tierFreeMax  = 0
	tierUnder20  = 2000
	tierUnder50  = 5000
	tierUnder100 = 10000
)

// Price tiers.
const (
	// TierFree is a free event.
	TierFree = 0
	// TierUnder20 is 1–2000 cents.
	TierUnder20 = 1
	// TierUnder50 is 2001–5000 cents.
	TierUnder50 = 2
	// TierUnder100 is 5001–10000 cents.
	TierUnder100 = 3
	// TierPremium is anything above 10000 cents.
	TierPremium = 4
)

// PriceTier maps a price in cents to its tier. Negative prices are
// treated as free; the validator never produces them, but the mapping
// stays total regardless.
func PriceTier(cents int) int {
	switch {
	case cents <= tierFreeMax:
		return TierFree
	case cents <= tierUnder20:
		return TierUnder20
	case cents <= tierUnder50:
		return TierUnder50
	case cents <= tierUnder100:
		return TierUnder100
	default:
		return TierPremium
	}
}

// Tagger assigns price tiers and categories.
type Tagger struct {
	categories *CategoryMatcher
}

// New creates a Tagger with the default category rule table.
func New() *Tagger {
	return &Tagger{categories: NewCategoryMatcher(DefaultRules())}
}

// NewWithRules creates a Tagger with a custom ordered rule table.
func NewWithRules(rules []CategoryRule) *Tagger {
	return &Tagger{categories: NewCategoryMatcher(rules)}
}

// Tag fills PriceTier and Category on a clean event in place.
func (t *Tagger) Tag(event *domain.CleanEvent) {
	event.PriceTier = PriceTier(event.Price)
	event.Category = t.categories.Categorize(event.Title, event.Description)
}
