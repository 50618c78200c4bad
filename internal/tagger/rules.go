package tagger

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/eventscout/eventsync/internal/domain"
)

// CategoryRule maps a set of keywords to a category. Rules are ordered:
// when keywords from several rules match the same text, the rule that
// appears earliest in the table wins. The table order is therefore part
// of the contract and results are reproducible given the same table.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultRules returns the built-in ordered rule table. More specific
// vocabularies are listed before broader ones so that, for example, a
// "tech conference after-party" tags as Tech rather than Nightlife.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{Category: "Music", Keywords: []string{
			"concert", "live music", "gig", "orchestra", "symphony", "album release", "open mic",
		}},
		{Category: "Tech", Keywords: []string{
			"tech", "conference", "hackathon", "startup", "developer", "coding", "meetup",
		}},
		{Category: "Comedy", Keywords: []string{
			"comedy", "stand-up", "standup", "improv",
		}},
		{Category: "Nightlife", Keywords: []string{
			"nightlife", "club night", "party", "rave", "dj set", "dance floor",
		}},
		{Category: "Arts", Keywords: []string{
			"gallery", "exhibit", "theatre", "theater", "museum", "opera", "film screening",
		}},
		{Category: "Food & Drink", Keywords: []string{
			"tasting", "brunch", "food festival", "wine", "beer", "cocktail", "supper",
		}},
		{Category: "Sports", Keywords: []string{
			"tournament", "marathon", "race day", "yoga", "football", "basketball", "climbing",
		}},
		{Category: "Market", Keywords: []string{
			"market", "bazaar", "craft fair", "flea", "pop-up shop",
		}},
	}
}

// CategoryMatcher matches event text against an ordered rule table
// using a single Aho-Corasick pass over all keywords, rather than one
// scan per rule.
type CategoryMatcher struct {
	matcher  *ahocorasick.Matcher
	keywords []string
	kwToRule []int // keyword index -> rule index
	rules    []CategoryRule
}

// NewCategoryMatcher builds the automaton for the given rule table.
func NewCategoryMatcher(rules []CategoryRule) *CategoryMatcher {
	m := &CategoryMatcher{rules: rules}

	for ruleIdx, rule := range rules {
		for _, kw := range rule.Keywords {
			normalized := normalizeText(kw)
			if normalized == "" {
				continue
			}
			m.keywords = append(m.keywords, normalized)
			m.kwToRule = append(m.kwToRule, ruleIdx)
		}
	}

	if len(m.keywords) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	}

	return m
}

// Categorize returns the category of the first rule with a keyword hit
// in title+description, or the default category when nothing matches.
func (m *CategoryMatcher) Categorize(title, description string) string {
	if m.matcher == nil {
		return domain.DefaultCategory
	}

	text := normalizeText(title + " " + description)
	hits := m.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return domain.DefaultCategory
	}

	best := len(m.rules)
	for _, kwIdx := range hits {
		if ruleIdx := m.kwToRule[kwIdx]; ruleIdx < best {
			best = ruleIdx
		}
	}

	return m.rules[best].Category
}

// normalizeText lowercases and collapses non-alphanumeric runs to
// single spaces so keyword matching is insensitive to punctuation and
// hyphenation. Keywords pass through the same normalization when the
// automaton is built, so "stand-up" and "stand up" are equivalent.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
