package scraper

import (
	"sjsage522/promowatch/config"
	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/services/cache"
)

// CreateScrapers creates all the target scrapers based on the configuration
func CreateScrapers(cfg *config.Config, cacheSvc cache.CacheService, norm *promo.Normalizer) []Scraper {
	targets := []Target{
		{
			Name:      "BankPerks",
			URL:       cfg.BankPerksURL,
			CacheKey:  "bankperks_rate_limited",
			BlockTime: 500,
			Selectors: Selectors{
				PromoList: "div.promo-grid div.promo-card",
				Title:     "h3.promo-title",
				Perk:      "p.promo-benefit",
				Dates:     "span.promo-validity",
				Price:     "span.promo-fee",
			},
		},
		{
			Name:      "StayRewards",
			URL:       cfg.StayRewardsURL,
			CacheKey:  "stayrewards_rate_limited",
			BlockTime: 500,
			Selectors: Selectors{
				PromoList: "ul.offers-list li.offer",
				Title:     "a.offer-name",
				Perk:      "div.offer-description",
				Dates:     "div.offer-dates",
				Price:     "div.offer-rate",
			},
		},
		{
			Name:      "SkyDeals",
			URL:       cfg.SkyDealsURL,
			CacheKey:  "skydeals_rate_limited",
			BlockTime: 500,
			Selectors: Selectors{
				PromoList: "section.deals article.deal-tile",
				Title:     "h2.deal-headline",
				Perk:      "p.deal-perk",
				Dates:     "time.deal-window",
				Price:     "span.deal-fare",
			},
		},
	}

	scrapers := make([]Scraper, 0, len(targets))
	for _, target := range targets {
		scrapers = append(scrapers, NewPageScraper(target, cacheSvc, norm))
	}
	return scrapers
}
