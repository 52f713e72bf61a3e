package promo

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Thresholds holds the tolerances used by the similarity comparators.
type Thresholds struct {
	// TextRatio is the minimum normalized edit-distance ratio for two
	// strings to count as similar.
	TextRatio float64

	// PriceTolerance is the maximum relative difference between two prices.
	PriceTolerance float64

	// DateToleranceDays is the maximum day difference between two dates.
	DateToleranceDays int
}

// DefaultThresholds returns the production tolerances.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TextRatio:         0.85,
		PriceTolerance:    0.01,
		DateToleranceDays: 7,
	}
}

// TextSimilar reports whether two strings are close enough to be noise,
// based on the levenshtein distance relative to the longer string.
func (t Thresholds) TextSimilar(a, b string) bool {
	if a == b {
		return true
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b), 1)
	distance := levenshtein.ComputeDistance(a, b)
	return 1-float64(distance)/float64(longest) >= t.TextRatio
}

// PriceSimilar compares the numeric magnitude of two price strings. Ranges
// and "from $X" forms are compared on the lowest figure each side carries.
// Unparsable prices fall back to text similarity.
func (t Thresholds) PriceSimilar(a, b string) bool {
	p1, ok1 := parsePrice(a)
	p2, ok2 := parsePrice(b)
	if !ok1 || !ok2 {
		return t.TextSimilar(a, b)
	}
	return math.Abs(p1-p2)/max(p1, p2, 1) <= t.PriceTolerance
}

// DateSimilar compares the most specific date referenced by each string.
// Unparsable dates fall back to text similarity.
func (t Thresholds) DateSimilar(a, b string) bool {
	d1, ok1 := parseDate(a)
	d2, ok2 := parseDate(b)
	if !ok1 || !ok2 {
		return t.TextSimilar(a, b)
	}
	diff := d1.Sub(d2)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(t.DateToleranceDays)*24*time.Hour
}

var priceFigureRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// parsePrice extracts the lowest numeric figure from a price string,
// ignoring currency symbols and thousands separators.
func parsePrice(s string) (float64, bool) {
	var lowest float64
	found := false
	for _, m := range priceFigureRegex.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			continue
		}
		if !found || v < lowest {
			lowest = v
			found = true
		}
	}
	return lowest, found
}

var (
	slashDateRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	isoDateRegex   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthNameRegex = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	monthYearRegex = regexp.MustCompile(`\b(\d{1,2})/(\d{4})\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// parseDate extracts the first date referenced by the string, trying the
// most specific formats first. Month-only references resolve to the first
// of the month.
func parseDate(s string) (time.Time, bool) {
	if m := slashDateRegex.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}
	if m := isoDateRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}
	if m := monthNameRegex.FindStringSubmatch(s); m != nil {
		month := monthsByPrefix[strings.ToLower(m[1])]
		day, _ := strconv.Atoi(m[2])
		year := time.Now().Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return makeDate(year, int(month), day)
	}
	if m := monthYearRegex.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return makeDate(year, month, 1)
	}
	return time.Time{}, false
}

func makeDate(year, month, day int) (time.Time, bool) {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
