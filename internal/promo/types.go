package promo

// Promotion represents one promotional offer extracted from a page.
// All fields hold normalized text; a Promotion is never mutated after
// construction.
type Promotion struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Perk  string `json:"perk,omitempty"`
	Dates string `json:"dates,omitempty"`
	Price string `json:"price,omitempty"`
}

// ChangePair holds the previous and current version of a promotion that
// shares an id across two snapshots.
type ChangePair struct {
	Previous Promotion `json:"previous"`
	Current  Promotion `json:"current"`
}

// ChangeResult is the outcome of comparing two promotion snapshots.
type ChangeResult struct {
	HasChanges bool         `json:"has_changes"`
	Added      []Promotion  `json:"added,omitempty"`
	Removed    []Promotion  `json:"removed,omitempty"`
	Changed    []ChangePair `json:"changed,omitempty"`
	Summary    string       `json:"summary"`
}
