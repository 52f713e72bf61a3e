package promo

// minFieldLength is the floor below which a promotion's title and perk are
// both considered trivial.
const minFieldLength = 3

// Filter re-evaluates a ChangeResult and drops entries that only differ by
// noise. It never mutates its input.
type Filter struct {
	norm       *Normalizer
	thresholds Thresholds
}

// NewFilter creates a materiality filter.
func NewFilter(norm *Normalizer, thresholds Thresholds) *Filter {
	return &Filter{norm: norm, thresholds: thresholds}
}

// FilterMaterialChanges returns a new ChangeResult with non-material entries
// removed: added and removed promotions must qualify as material promotions,
// changed pairs must differ in at least one field beyond its similarity
// tolerance. The summary is regenerated from the filtered counts.
func (f *Filter) FilterMaterialChanges(result ChangeResult) ChangeResult {
	var filtered ChangeResult
	for _, p := range result.Added {
		if f.isMaterialPromotion(p) {
			filtered.Added = append(filtered.Added, p)
		}
	}
	for _, p := range result.Removed {
		if f.isMaterialPromotion(p) {
			filtered.Removed = append(filtered.Removed, p)
		}
	}
	for _, pair := range result.Changed {
		if f.isMaterialChange(pair) {
			filtered.Changed = append(filtered.Changed, pair)
		}
	}

	filtered.HasChanges = len(filtered.Added) > 0 || len(filtered.Removed) > 0 || len(filtered.Changed) > 0
	filtered.Summary = summarize(len(filtered.Added), len(filtered.Removed), len(filtered.Changed), "No material changes detected")
	return filtered
}

// isMaterialPromotion rejects promotions whose content is trivial or matches
// a known placeholder pattern (loading text, cookie notices, script
// warnings).
func (f *Filter) isMaterialPromotion(p Promotion) bool {
	title := f.norm.Normalize(p.Title)
	perk := f.norm.Normalize(p.Perk)
	if len(title) <= minFieldLength && len(perk) <= minFieldLength {
		return false
	}
	for _, field := range []string{title, perk, f.norm.Normalize(p.Dates), f.norm.Normalize(p.Price)} {
		if field != "" && f.norm.IsPlaceholder(field) {
			return false
		}
	}
	return true
}

// isMaterialChange reports whether any field of the pair moved beyond its
// similarity tolerance. Title and perk use text similarity, dates and price
// use their dedicated comparators.
func (f *Filter) isMaterialChange(pair ChangePair) bool {
	prev, cur := pair.Previous, pair.Current
	if !f.thresholds.TextSimilar(f.norm.Normalize(prev.Title), f.norm.Normalize(cur.Title)) {
		return true
	}
	if !f.thresholds.TextSimilar(f.norm.Normalize(prev.Perk), f.norm.Normalize(cur.Perk)) {
		return true
	}
	if !f.thresholds.DateSimilar(prev.Dates, cur.Dates) {
		return true
	}
	if !f.thresholds.PriceSimilar(prev.Price, cur.Price) {
		return true
	}
	return false
}
