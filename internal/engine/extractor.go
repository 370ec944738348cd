package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Extract runs the strategy cascade for one field against a listing and
// returns the first non-empty trimmed value, or "" when nothing matched.
// Lookup failures on individual strategies are never fatal: the cascade just
// moves on. Pseudo-listings (no DOM element) answer from their mined values.
func Extract(l Listing, field Field, strategies []CandidateStrategy) string {
	if l.Element == nil {
		return strings.TrimSpace(l.Values[field])
	}

	for _, s := range strategies {
		var raw string
		switch {
		case s.Selector != "":
			el, ok := l.Element.Query(s.Selector)
			if !ok {
				continue
			}
			if s.Attr != "" {
				raw, _ = el.Attr(s.Attr)
			} else {
				raw = el.Text()
			}
		case s.Pattern != "":
			raw = matchPattern(l.Element.HTML(), s.Pattern)
		}

		if v := strings.TrimSpace(raw); v != "" {
			return v
		}
	}
	return ""
}

// matchPattern applies a strategy regex to markup. An invalid pattern is a
// configuration bug but still must not kill extraction, so it matches nothing.
func matchPattern(markup, pattern string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(markup)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

var decimalRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseRating pulls a star rating out of free text. Text without star/rating
// context is rejected to avoid reading arbitrary numbers (prices, counts) as
// ratings. The longest decimal match wins; out-of-range values and parse
// failures yield 0.
func ParseRating(text string) float64 {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "star") && !strings.Contains(lower, "rating") {
		return 0
	}

	var best string
	for _, m := range decimalRe.FindAllString(text, -1) {
		if len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return 0
	}

	v, err := strconv.ParseFloat(best, 64)
	if err != nil || v < 0 || v > 5 {
		return 0
	}
	return v
}

var intRe = regexp.MustCompile(`\d[\d,]*`)

// ParseReviewCount pulls a review count out of free text. Bare numbers
// without "review" context are accepted only when the whole text is numeric
// (e.g. a dedicated count element like "(213)").
func ParseReviewCount(text string) int {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	bare := strings.Trim(trimmed, "() ")
	if !strings.Contains(lower, "review") && intRe.FindString(bare) != bare {
		return 0
	}

	m := intRe.FindString(trimmed)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var priceRe = regexp.MustCompile(`\${1,4}`)

// ParsePriceTier extracts a $..$$$$ run from free text; "" when absent.
func ParsePriceTier(text string) string {
	longest := ""
	for _, m := range priceRe.FindAllString(text, -1) {
		if len(m) > len(longest) {
			longest = m
		}
	}
	return longest
}
