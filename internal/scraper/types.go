package scraper

import "sjsage522/promowatch/internal/promo"

// Scraper interface defines the contract for all target scrapers
type Scraper interface {
	// FetchPromotions retrieves the current promotion list from a target page
	FetchPromotions() ([]promo.Promotion, error)

	// GetName returns the target's name for logging and state keys
	GetName() string
}

// Selectors contains CSS selectors for promotion elements in the page
type Selectors struct {
	PromoList string
	Title     string
	Perk      string
	Dates     string
	Price     string
}

// Target describes one monitored promotions page
type Target struct {
	Name      string
	URL       string
	CacheKey  string
	BlockTime int
	Selectors Selectors
}
