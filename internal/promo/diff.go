package promo

import (
	"strconv"
	"strings"
)

// Detector compares two promotion snapshots by id.
type Detector struct {
	norm *Normalizer
}

// NewDetector creates a detector using the given normalizer for field
// equality checks.
func NewDetector(norm *Normalizer) *Detector {
	return &Detector{norm: norm}
}

// DetectChanges partitions the two snapshots into added, removed and changed
// promotions by id. Equality for changed detection is exact field equality
// on normalized text; materiality judgments belong to the Filter. Ordering
// of added and changed follows current, removed follows previous.
func (d *Detector) DetectChanges(current, previous []Promotion) ChangeResult {
	prevById := make(map[string]Promotion, len(previous))
	for _, p := range previous {
		prevById[p.Id] = p
	}

	var result ChangeResult
	for _, cur := range current {
		prev, seen := prevById[cur.Id]
		if !seen {
			result.Added = append(result.Added, cur)
			continue
		}
		if !d.equal(prev, cur) {
			result.Changed = append(result.Changed, ChangePair{Previous: prev, Current: cur})
		}
		delete(prevById, cur.Id)
	}

	for _, prev := range previous {
		if _, gone := prevById[prev.Id]; gone {
			result.Removed = append(result.Removed, prev)
		}
	}

	result.HasChanges = len(result.Added) > 0 || len(result.Removed) > 0 || len(result.Changed) > 0
	result.Summary = summarize(len(result.Added), len(result.Removed), len(result.Changed), "No changes detected")
	return result
}

func (d *Detector) equal(a, b Promotion) bool {
	return d.norm.Normalize(a.Title) == d.norm.Normalize(b.Title) &&
		d.norm.Normalize(a.Perk) == d.norm.Normalize(b.Perk) &&
		d.norm.Normalize(a.Dates) == d.norm.Normalize(b.Dates) &&
		d.norm.Normalize(a.Price) == d.norm.Normalize(b.Price)
}

// summarize builds the human-readable count summary, e.g.
// "2 new promotions, 1 promotion removed, and 1 promotion updated".
func summarize(added, removed, changed int, empty string) string {
	var parts []string
	if added > 0 {
		parts = append(parts, pluralize(added, "new promotion", "new promotions"))
	}
	if removed > 0 {
		parts = append(parts, pluralize(removed, "promotion removed", "promotions removed"))
	}
	if changed > 0 {
		parts = append(parts, pluralize(changed, "promotion updated", "promotions updated"))
	}
	switch len(parts) {
	case 0:
		return empty
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
