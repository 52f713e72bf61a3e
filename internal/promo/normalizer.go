package promo

import (
	"regexp"
	"strings"
)

// whitespaceRegex collapses any run of whitespace, including newlines and tabs
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Config holds the pattern tables used by the Normalizer. Build it once with
// DefaultConfig and pass it to NewNormalizer; nothing mutates it afterwards.
type Config struct {
	// Timestamps matches embedded timestamp fragments such as
	// "(updated 01/08/2025)" or ISO-8601 pieces with a time component.
	Timestamps []*regexp.Regexp

	// Tracking matches tracking-code tokens (utm parameters, trk tokens).
	Tracking []*regexp.Regexp

	// Filler matches promotional filler phrases removed by FilterNoise:
	// urgency language, legal disclaimers, social-proof boilerplate.
	Filler []*regexp.Regexp

	// Placeholders matches non-promotional page text used to reject
	// spurious extractions (loading indicators, script warnings, cookie
	// notices).
	Placeholders []*regexp.Regexp
}

// DefaultConfig returns the pattern tables used in production.
func DefaultConfig() *Config {
	return &Config{
		Timestamps: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\(\s*(?:last\s+)?(?:updated|refreshed|checked)[:\s][^)]*\)`),
			regexp.MustCompile(`(?i)\b(?:last\s+)?(?:updated|refreshed)[:\s]+\d{1,2}/\d{1,2}/\d{2,4}\b`),
			regexp.MustCompile(`(?i)\bas\s+of\s+\d{1,2}/\d{1,2}/\d{2,4}\b`),
			// ISO-8601 with a time component only; bare dates are content.
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?\b`),
		},
		Tracking: []*regexp.Regexp{
			regexp.MustCompile(`(?i)[?&]utm_[a-z]+=[^\s&]+`),
			regexp.MustCompile(`(?i)\btrk[:=][\w.-]+`),
			regexp.MustCompile(`(?i)\bref(?:erral)?[:=][\w.-]+`),
		},
		Filler: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bhurry[,!]?\s*(?:offer\s+)?ends\s+soon[.!]?`),
			regexp.MustCompile(`(?i)\blimited\s+time\s+(?:only|offer)[.!]?`),
			regexp.MustCompile(`(?i)\bact\s+now[.!]?`),
			regexp.MustCompile(`(?i)\bdon'?t\s+miss\s+(?:out|this)[.!]?`),
			regexp.MustCompile(`(?i)\bwhile\s+supplies\s+last[.!]?`),
			regexp.MustCompile(`(?i)\bterms\s+(?:and|&)\s+conditions\s+apply[.!]?`),
			regexp.MustCompile(`(?i)\boffer\s+subject\s+to\s+change(?:\s+without\s+notice)?[.!]?`),
			regexp.MustCompile(`(?i)\bjoin\s+(?:over\s+)?[\d,]+\+?\s+(?:happy\s+|satisfied\s+)?(?:members|customers|travelers)[.!]?`),
			regexp.MustCompile(`(?i)\bas\s+seen\s+on\s+tv[.!]?`),
		},
		Placeholders: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bloading(?:\.{2,}|…)?$`),
			regexp.MustCompile(`(?i)\bjavascript\s+(?:is\s+)?(?:required|disabled)\b`),
			regexp.MustCompile(`(?i)\benable\s+javascript\b`),
			regexp.MustCompile(`(?i)\bwe\s+use\s+cookies\b`),
			regexp.MustCompile(`(?i)\baccept\s+(?:all\s+)?cookies\b`),
			regexp.MustCompile(`(?i)\bplease\s+wait\b`),
			regexp.MustCompile(`(?i)^error\b`),
			regexp.MustCompile(`(?i)\bsomething\s+went\s+wrong\b`),
			regexp.MustCompile(`(?i)\b(?:page|content)\s+(?:not\s+found|unavailable)\b`),
		},
	}
}

// Normalizer strips incidental formatting and noise from extracted text.
// It is stateless and safe for concurrent use.
type Normalizer struct {
	cfg *Config
}

// NewNormalizer creates a normalizer with the given pattern config.
func NewNormalizer(cfg *Config) *Normalizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Normalizer{cfg: cfg}
}

// Normalize collapses whitespace and removes timestamp fragments and
// tracking tokens. It preserves semantic content (prices, dates, counts)
// and is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	s := raw
	for _, re := range n.cfg.Timestamps {
		s = re.ReplaceAllString(s, " ")
	}
	for _, re := range n.cfg.Tracking {
		s = re.ReplaceAllString(s, " ")
	}
	return collapseWhitespace(s)
}

// FilterNoise removes promotional filler phrases. This is a separate pass
// from Normalize so callers can apply either independently.
func (n *Normalizer) FilterNoise(raw string) string {
	s := raw
	for _, re := range n.cfg.Filler {
		s = re.ReplaceAllString(s, " ")
	}
	return collapseWhitespace(s)
}

// IsPlaceholder reports whether the text matches a known non-promotional
// pattern (loading indicator, cookie notice, script warning).
func (n *Normalizer) IsPlaceholder(s string) bool {
	for _, re := range n.cfg.Placeholders {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
