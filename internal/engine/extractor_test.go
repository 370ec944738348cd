package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingFromHTML(t *testing.T, html string) Listing {
	t.Helper()
	page := pageFromHTML(t, `<html><body><div class="item">`+html+`</div></body></html>`)
	els := page.QueryAll(".item")
	require.Len(t, els, 1)
	return Listing{Element: els[0]}
}

func TestExtractCascade(t *testing.T) {
	t.Parallel()

	l := listingFromHTML(t, `<span class="b">from b</span><span class="c">from c</span>`)

	tests := []struct {
		name       string
		strategies []CandidateStrategy
		want       string
	}{
		{
			name:       "first non-empty wins",
			strategies: []CandidateStrategy{{Selector: ".a"}, {Selector: ".b"}, {Selector: ".c"}},
			want:       "from b",
		},
		{
			name:       "attr strategy",
			strategies: []CandidateStrategy{{Selector: "span", Attr: "class"}},
			want:       "b",
		},
		{
			name:       "pattern fallback",
			strategies: []CandidateStrategy{{Selector: ".missing"}, {Pattern: `from (\w+)</span>$`}},
			want:       "c",
		},
		{
			name:       "invalid pattern matches nothing",
			strategies: []CandidateStrategy{{Pattern: `([unclosed`}},
			want:       "",
		},
		{
			name:       "nothing matches",
			strategies: []CandidateStrategy{{Selector: ".x"}, {Selector: ".y"}},
			want:       "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(l, FieldName, tt.strategies))
		})
	}
}

func TestExtractPseudoListing(t *testing.T) {
	t.Parallel()

	l := Listing{Values: map[Field]string{FieldName: "  Mined Name  "}}
	assert.Equal(t, "Mined Name", Extract(l, FieldName, nil))
	assert.Equal(t, "", Extract(l, FieldPhone, nil))
}

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want float64
	}{
		{"4.5 star rating", 4.5},
		{"Rated 3.0 of 5 stars", 3.0},
		{"5 stars", 5},
		{"rating: 4.2", 4.2},
		{"4.5", 0},         // no context
		{"$4.50 lunch", 0}, // price, not a rating
		{"9.9 star", 0},    // out of range
		{"no stars here", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseRating(tt.text), 0.001, "text %q", tt.text)
	}
}

func TestParseReviewCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want int
	}{
		{"213 reviews", 213},
		{"1,024 Reviews", 1024},
		{"(87)", 87},
		{" 42 ", 42},
		{"42 photos", 0}, // number without review context
		{"no reviews yet", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseReviewCount(tt.text), "text %q", tt.text)
	}
}

func TestParsePriceTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"$$", "$$"},
		{"$ · Coffee", "$"},
		{"$$$ - $$$$", "$$$$"},
		{"Moderate", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePriceTier(tt.text), "text %q", tt.text)
	}
}
