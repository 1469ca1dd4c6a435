// Package match implements the heuristic engine that pairs lost item reports
// with found item reports: a pure pairwise scoring function and a finder that
// ranks candidate counterparts for a given report.
package match

import (
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// Confidence tiers derived from the numeric score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// criticalKeywords are assets whose loss is urgent enough to warrant a small
// global score boost when mentioned in the lost report.
var criticalKeywords = []string{
	"wallet", "id", "card", "passport", "license",
	"phone", "iphone", "android", "laptop", "macbook", "keys", "keychain",
}

// minKeywordLen filters out tiny words like "a" or "of" from keyword overlap.
const minKeywordLen = 4

// Score rates how well a lost report matches a found report, 0-100, higher is
// better. The two roles are not interchangeable: the date field and the
// keyword/boost direction depend on which report is the lost one.
//
// Missing optional fields (category, color, location, date) skip their term
// entirely. Only a present-but-mismatched category or a distant date pair
// contribute penalties; the sum is clamped to [0, 100] at the end.
func Score(lost, found *model.Item) int {
	score := 0

	// Category: strong signal.
	if lost.Category != "" && found.Category != "" {
		if lost.Category == found.Category {
			score += 30
		} else {
			score -= 20
		}
	}

	// Color: medium signal.
	if lost.Color != "" && found.Color != "" {
		if strings.EqualFold(strings.TrimSpace(lost.Color), strings.TrimSpace(found.Color)) {
			score += 15
		}
	}

	// Location: medium signal, substring containment either direction.
	if lost.Location != "" && found.Location != "" {
		locL := strings.ToLower(lost.Location)
		locF := strings.ToLower(found.Location)
		if strings.Contains(locF, locL) || strings.Contains(locL, locF) {
			score += 20
		}
	}

	// Date proximity.
	if lost.DateLost != nil && found.DateFound != nil {
		days := daysApart(*lost.DateLost, *found.DateFound)
		switch {
		case days <= 1:
			score += 20
		case days <= 3:
			score += 10
		case days <= 7:
			score += 5
		default:
			score -= 5
		}
	}

	nameL := strings.ToLower(lost.Name)
	descL := strings.ToLower(lost.Description)
	nameF := strings.ToLower(found.Name)
	descF := strings.ToLower(found.Description)

	// Keyword overlap: distinct lost-side tokens appearing in the found text.
	shared := 0
	for kw := range keywords(nameL, descL) {
		if strings.Contains(nameF, kw) || strings.Contains(descF, kw) {
			shared++
		}
	}
	switch {
	case shared >= 3:
		score += 20
	case shared == 2:
		score += 12
	case shared == 1:
		score += 5
	}

	// Money is sensitive: the amount usually lives in the name or description,
	// so the category alone gets extra weight.
	cat := strings.ToLower(lost.Category)
	if strings.Contains(cat, "money") || strings.Contains(nameL, "cash") || strings.Contains(descL, "cash") {
		score += 5
	}

	// Critical assets (wallets, IDs, phones, ...) get a small global boost.
	for _, kw := range criticalKeywords {
		if strings.Contains(nameL, kw) || strings.Contains(descL, kw) {
			score += 5
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Confidence buckets a score into high/medium/low.
func Confidence(score int) string {
	switch {
	case score >= 70:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var tokenCleaner = strings.NewReplacer(",", " ", ".", " ")

// keywords returns the distinct tokens of length >= minKeywordLen across the
// given lowercased texts, split on whitespace, commas and periods.
func keywords(texts ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, text := range texts {
		for _, word := range strings.Fields(tokenCleaner.Replace(text)) {
			if len(word) >= minKeywordLen {
				out[word] = struct{}{}
			}
		}
	}
	return out
}

// daysApart returns the absolute whole-day difference between two dates.
func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
