package scraper

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/pkg/errors"
	"sjsage522/promowatch/services/cache"
)

// offerLineRegex marks a text line as offer-like in fallback extraction:
// a currency figure, a percentage perk, a points multiplier or "free".
var offerLineRegex = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?|\d+%\s*(?:off|back|bonus)|\d+x\s+points|\bfree\b`)

var priceFragmentRegex = regexp.MustCompile(`\$[\d,]+(?:\.\d+)?(?:\s*-\s*\$[\d,]+(?:\.\d+)?)?`)

// PageScraper extracts promotions from a single monitored page. When the
// configured promo-list selector matches nothing it falls back to scanning
// visible text for offer-like lines.
type PageScraper struct {
	target    Target
	cacheSvc  cache.CacheService
	norm      *promo.Normalizer
	blockTime time.Duration
	fetchFunc func() (io.Reader, error)
}

// NewPageScraper creates a scraper for the given target.
func NewPageScraper(target Target, cacheSvc cache.CacheService, norm *promo.Normalizer) *PageScraper {
	s := &PageScraper{
		target:    target,
		cacheSvc:  cacheSvc,
		norm:      norm,
		blockTime: time.Duration(target.BlockTime) * time.Second,
	}
	s.fetchFunc = s.fetchWithCache
	return s
}

// GetName returns the target's name
func (s *PageScraper) GetName() string {
	return s.target.Name
}

// FetchPromotions fetches the target page and extracts its promotion list.
// Extraction is structured when the promo-list selector matches; otherwise
// the text fallback runs. Output order follows page order.
func (s *PageScraper) FetchPromotions() ([]promo.Promotion, error) {
	body, err := s.fetchFunc()
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, errors.NewParsing(s.target.Name, "failed to parse HTML", err)
	}

	selections := doc.Find(s.target.Selectors.PromoList)
	if selections.Length() > 0 {
		return s.extractStructured(selections), nil
	}
	return s.extractFromText(doc), nil
}

// fetchWithCache fetches the target URL with a memcache-backed rate-limit key
func (s *PageScraper) fetchWithCache() (io.Reader, error) {
	if s.cacheSvc != nil && s.target.CacheKey != "" {
		if _, err := s.cacheSvc.Get(s.target.CacheKey); err == nil {
			return nil, errors.NewRateLimit(s.target.Name, s.blockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(s.target.URL)
	if err != nil {
		if s.cacheSvc != nil && s.target.CacheKey != "" && strings.HasPrefix(err.Error(), "rate limited") {
			s.cacheSvc.Set(s.target.CacheKey, []byte("1"), s.blockTime)
		}
		return nil, errors.NewNetwork(s.target.Name, "failed to fetch page", err)
	}
	return body, nil
}

func (s *PageScraper) extractStructured(selections *goquery.Selection) []promo.Promotion {
	var promotions []promo.Promotion
	selections.Each(func(_ int, sel *goquery.Selection) {
		title := s.norm.Normalize(sel.Find(s.target.Selectors.Title).Text())
		if title == "" {
			return
		}
		promotions = append(promotions, promo.Promotion{
			Id:    s.norm.PromotionID(title),
			Title: title,
			Perk:  s.norm.Normalize(s.fieldText(sel, s.target.Selectors.Perk)),
			Dates: s.norm.Normalize(s.fieldText(sel, s.target.Selectors.Dates)),
			Price: s.norm.Normalize(s.fieldText(sel, s.target.Selectors.Price)),
		})
	})
	return promotions
}

// extractFromText is the fallback strategy for pages whose markup the
// selectors no longer match: every offer-like text line becomes a promotion.
func (s *PageScraper) extractFromText(doc *goquery.Document) []promo.Promotion {
	var promotions []promo.Promotion
	seen := make(map[string]bool)

	for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
		line = s.norm.Normalize(line)
		if line == "" || !offerLineRegex.MatchString(line) {
			continue
		}
		title := s.norm.FilterNoise(line)
		if title == "" {
			continue
		}
		id := s.norm.PromotionID(title)
		if seen[id] {
			continue
		}
		seen[id] = true

		p := promo.Promotion{Id: id, Title: title}
		if price := priceFragmentRegex.FindString(line); price != "" {
			p.Price = price
		}
		promotions = append(promotions, p)
	}
	return promotions
}

func (s *PageScraper) fieldText(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return sel.Find(selector).Text()
}
