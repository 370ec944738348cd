// Package engine implements the listing extraction core: per-source selector
// cascades, field extraction, record building, and the orchestration that
// falls back to synthesis when a live scrape produces nothing.
package engine

import (
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Field names a BusinessRecord field targeted by extraction strategies.
type Field string

const (
	FieldName         Field = "name"
	FieldPhone        Field = "phone"
	FieldAddress      Field = "address"
	FieldWebsite      Field = "website"
	FieldCategory     Field = "category"
	FieldRating       Field = "rating"
	FieldReviewCount  Field = "review_count"
	FieldPriceTier    Field = "price_tier"
	FieldNeighborhood Field = "neighborhood"
	FieldHours        Field = "hours"
	FieldDescription  Field = "description"
)

// CandidateStrategy is one ordered lookup rule for a field. Either Selector
// (optionally with Attr to read an attribute instead of text) or Pattern (a
// regex with one capture group applied to the listing markup) is set.
type CandidateStrategy struct {
	Selector string
	Attr     string
	Pattern  string
}

// SourceConfig parameterizes the engine for one listing source. The several
// per-site scrapers differ only in these tables.
type SourceConfig struct {
	Source model.SourceName

	// SearchURL builds the results-page URL for a query/location pair.
	SearchURL func(query, location string) string

	// ContainerSelectors is the ordered cascade for locating repeated
	// listing elements. The first selector yielding at least one element wins.
	ContainerSelectors []string

	// Fields maps each record field to its ordered extraction strategies.
	Fields map[Field][]CandidateStrategy

	// SelfHosts are host suffixes whose links point back at the source
	// itself and must not be taken as a business website.
	SelfHosts []string
}

// ConfigFor returns the extraction configuration for a source.
func ConfigFor(source model.SourceName) (SourceConfig, error) {
	switch source {
	case model.SourceYelp:
		return yelpConfig, nil
	case model.SourceYellowPages:
		return yellowPagesConfig, nil
	case model.SourceHouzz:
		return houzzConfig, nil
	case model.SourceGoogleMaps:
		return googleMapsConfig, nil
	case model.SourceCustom:
		return customConfig, nil
	default:
		return SourceConfig{}, eris.Errorf("engine: no extraction config for source %q", source)
	}
}

func q(s string) string { return url.QueryEscape(s) }

var yelpConfig = SourceConfig{
	Source: model.SourceYelp,
	SearchURL: func(query, location string) string {
		return "https://www.yelp.com/search?find_desc=" + q(query) + "&find_loc=" + q(location)
	},
	ContainerSelectors: []string{
		`[data-testid="serp-ia-card"]`,
		`.result`,
		`.search-result`,
		`[class*="businessName"]`,
		`[class*="biz-name"]`,
		`[class*="container"] li [class*="business"]`,
	},
	Fields: map[Field][]CandidateStrategy{
		FieldName: {
			{Selector: `h3 a`},
			{Selector: `h3`},
			{Selector: `h4`},
			{Selector: `[class*="businessName"] a`},
			{Selector: `a[class*="biz-name"]`},
			{Selector: `[data-testid="business-name"]`},
		},
		FieldPhone: {
			{Selector: `[class*="phone"]`},
			{Selector: `a[href^="tel:"]`, Attr: "href"},
			{Pattern: `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`},
		},
		FieldAddress: {
			{Selector: `address`},
			{Selector: `[class*="address"]`},
			{Selector: `.address`},
		},
		FieldWebsite: {
			{Selector: `a[href^="http"]:not([href*="yelp.com"])`, Attr: "href"},
		},
		FieldCategory: {
			{Selector: `[class*="priceCategory"] a`},
			{Selector: `[class*="category"] a`},
			{Selector: `[class*="category"]`},
		},
		FieldRating: {
			{Selector: `[aria-label*="star rating"]`, Attr: "aria-label"},
			{Selector: `[class*="rating"]`},
			{Selector: `[role="img"]`, Attr: "aria-label"},
		},
		FieldReviewCount: {
			{Selector: `[class*="reviewCount"]`},
			{Selector: `[class*="review-count"]`},
			{Pattern: `(\d[\d,]*)\s*review`},
		},
		FieldPriceTier: {
			{Selector: `[class*="priceRange"]`},
			{Pattern: `>(\${1,4})<`},
		},
		FieldNeighborhood: {
			{Selector: `[class*="neighborhood"]`},
			{Selector: `[class*="secondaryAttributes"] span`},
		},
		FieldDescription: {
			{Selector: `[class*="snippet"]`},
			{Selector: `p[class*="comment"]`},
		},
	},
	SelfHosts: []string{"yelp.com"},
}

var yellowPagesConfig = SourceConfig{
	Source: model.SourceYellowPages,
	SearchURL: func(query, location string) string {
		return "https://www.yellowpages.com/search?search_terms=" + q(query) + "&geo_location_terms=" + q(location)
	},
	ContainerSelectors: []string{
		`.result`,
		`[data-testid="organic-list-item"]`,
		`.search-results .result`,
		`.organic .result`,
		`.business-listing`,
		`[class*="listing"]`,
	},
	Fields: map[Field][]CandidateStrategy{
		FieldName: {
			{Selector: `.business-name`},
			{Selector: `.listing-name`},
			{Selector: `h3 a`},
			{Selector: `h2 a`},
			{Selector: `.name a`},
			{Selector: `[data-testid="business-name"]`},
		},
		FieldPhone: {
			{Selector: `.phones .phone`},
			{Selector: `.phone`},
			{Selector: `[class*="phone"]`},
			{Selector: `a[href^="tel:"]`, Attr: "href"},
			{Selector: `.contact-info .phone`},
		},
		FieldAddress: {
			{Selector: `.address`},
			{Selector: `.street-address`},
			{Selector: `.locality`},
			{Selector: `[class*="address"]`},
			{Selector: `.contact-info .address`},
		},
		FieldWebsite: {
			{Selector: `.website a`, Attr: "href"},
			{Selector: `.links a[href^="http"]`, Attr: "href"},
			{Selector: `a.track-visit-website`, Attr: "href"},
		},
		FieldCategory: {
			{Selector: `.categories`},
			{Selector: `.business-type`},
			{Selector: `.category`},
			{Selector: `[class*="categor"]`},
		},
		FieldRating: {
			{Selector: `.result-rating`, Attr: "class"},
			{Selector: `[class*="rating"]`},
		},
		FieldReviewCount: {
			{Selector: `.count`},
			{Pattern: `\((\d[\d,]*)\)`},
		},
		FieldPriceTier: {
			{Selector: `.price-range`},
		},
		FieldNeighborhood: {
			{Selector: `.locality`},
		},
		FieldHours: {
			{Selector: `.open-status`},
			{Selector: `[class*="hours"]`},
		},
		FieldDescription: {
			{Selector: `.snippet`},
			{Selector: `.body p`},
		},
	},
	SelfHosts: []string{"yellowpages.com"},
}

var houzzConfig = SourceConfig{
	Source: model.SourceHouzz,
	SearchURL: func(query, location string) string {
		return "https://www.houzz.com/professionals/search?query=" + q(query) + "&location=" + q(location)
	},
	ContainerSelectors: []string{
		`[data-testid="professional-card"]`,
		`.professional-card`,
		`.pro-card`,
		`article[data-testid*="pro"]`,
		`.hz-pro-card`,
		`div[data-professional-id]`,
	},
	Fields: map[Field][]CandidateStrategy{
		FieldName: {
			{Selector: `[data-testid="pro-name"]`},
			{Selector: `.pro-name`},
			{Selector: `h2 a`},
			{Selector: `h3`},
		},
		FieldPhone: {
			{Selector: `a[href^="tel:"]`, Attr: "href"},
			{Selector: `[class*="phone"]`},
		},
		FieldAddress: {
			{Selector: `.business-details .address`},
			{Selector: `.location`},
			{Selector: `[data-testid="address"]`},
		},
		FieldWebsite: {
			{Selector: `a[data-testid="website-link"]`, Attr: "href"},
			{Selector: `a[href^="http"]:not([href*="houzz.com"])`, Attr: "href"},
		},
		FieldCategory: {
			{Selector: `.category`},
			{Selector: `.service-type`},
			{Selector: `.profession`},
		},
		FieldRating: {
			{Selector: `.rating`},
			{Selector: `[data-testid="rating"]`},
			{Selector: `[aria-label*="rating"]`, Attr: "aria-label"},
		},
		FieldReviewCount: {
			{Selector: `.review-count`},
			{Selector: `[data-testid="review-count"]`},
			{Pattern: `(\d[\d,]*)\s*Review`},
		},
		FieldDescription: {
			{Selector: `[data-testid="pro-description"]`},
			{Selector: `.pro-description`},
		},
	},
	SelfHosts: []string{"houzz.com"},
}

var googleMapsConfig = SourceConfig{
	Source: model.SourceGoogleMaps,
	SearchURL: func(query, location string) string {
		return "https://www.google.com/maps/search/" + q(query+" in "+location)
	},
	ContainerSelectors: []string{
		`div[role="feed"] > div > div[jsaction]`,
		`div[role="article"]`,
		`.Nv2PK`,
		`a[href*="/maps/place/"]`,
	},
	Fields: map[Field][]CandidateStrategy{
		FieldName: {
			{Selector: `.qBF1Pd`},
			{Selector: `[class*="fontHeadline"]`},
			{Selector: `a[aria-label]`, Attr: "aria-label"},
		},
		FieldPhone: {
			{Selector: `[class*="UsdlK"]`},
			{Pattern: `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`},
		},
		FieldAddress: {
			{Pattern: `·\s*([^·<]{6,80}(?:St|Ave|Blvd|Rd|Dr|Ln|Way|Hwy)[^·<]*)`},
		},
		FieldWebsite: {
			{Selector: `a[data-value="Website"]`, Attr: "href"},
		},
		FieldCategory: {
			{Pattern: `>([A-Z][a-z]+(?: [a-z]+)?)\s*·`},
		},
		FieldRating: {
			{Selector: `[role="img"][aria-label*="star"]`, Attr: "aria-label"},
			{Selector: `.MW4etd`},
		},
		FieldReviewCount: {
			{Selector: `.UY7F9`},
			{Pattern: `\((\d[\d,]*)\)`},
		},
		FieldPriceTier: {
			{Pattern: `(\${1,4})\s*·`},
		},
	},
	SelfHosts: []string{"google.com", "maps.google.com"},
}

// customConfig serves arbitrary static listing pages: generic markup
// heuristics only, no search URL of its own (the caller must provide one via
// Request.SearchURL).
var customConfig = SourceConfig{
	Source: model.SourceCustom,
	SearchURL: func(query, location string) string {
		return ""
	},
	ContainerSelectors: []string{
		`[itemtype*="LocalBusiness"]`,
		`.listing`,
		`.result`,
		`article`,
		`li[class*="business"]`,
	},
	Fields: map[Field][]CandidateStrategy{
		FieldName: {
			{Selector: `[itemprop="name"]`},
			{Selector: `h2`},
			{Selector: `h3`},
			{Selector: `[class*="name"]`},
		},
		FieldPhone: {
			{Selector: `[itemprop="telephone"]`},
			{Selector: `a[href^="tel:"]`, Attr: "href"},
			{Selector: `[class*="phone"]`},
			{Pattern: `\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`},
		},
		FieldAddress: {
			{Selector: `[itemprop="address"]`},
			{Selector: `address`},
			{Selector: `[class*="address"]`},
		},
		FieldWebsite: {
			{Selector: `a[itemprop="url"]`, Attr: "href"},
			{Selector: `a[href^="http"]`, Attr: "href"},
		},
		FieldCategory: {
			{Selector: `[class*="category"]`},
		},
		FieldRating: {
			{Selector: `[itemprop="ratingValue"]`},
			{Selector: `[class*="rating"]`},
		},
		FieldReviewCount: {
			{Selector: `[itemprop="reviewCount"]`},
			{Pattern: `(\d[\d,]*)\s*review`},
		},
		FieldHours: {
			{Selector: `[itemprop="openingHours"]`},
			{Selector: `[class*="hours"]`},
		},
		FieldDescription: {
			{Selector: `[itemprop="description"]`},
			{Selector: `[class*="description"]`},
			{Selector: `p`},
		},
	},
}
