package engine

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Builder assembles BusinessRecords from located listings using one source's
// strategy tables.
type Builder struct {
	cfg SourceConfig
}

// NewBuilder creates a Builder for the given source configuration.
func NewBuilder(cfg SourceConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build extracts every target field from a listing and assembles a
// normalized record. The second return is false when the listing produced no
// usable name: such listings are dropped rather than emitted as junk rows.
func (b *Builder) Build(l Listing, query, location, pageURL string, now time.Time) (model.BusinessRecord, bool) {
	name := collapseWhitespace(Extract(l, FieldName, b.cfg.Fields[FieldName]))
	if name == "" {
		return model.BusinessRecord{}, false
	}

	rec := model.BusinessRecord{
		Name:           name,
		Phone:          cleanPhone(Extract(l, FieldPhone, b.cfg.Fields[FieldPhone])),
		Address:        collapseWhitespace(Extract(l, FieldAddress, b.cfg.Fields[FieldAddress])),
		Website:        b.cleanWebsite(Extract(l, FieldWebsite, b.cfg.Fields[FieldWebsite])),
		Category:       collapseWhitespace(Extract(l, FieldCategory, b.cfg.Fields[FieldCategory])),
		Rating:         ParseRating(Extract(l, FieldRating, b.cfg.Fields[FieldRating])),
		ReviewCount:    ParseReviewCount(Extract(l, FieldReviewCount, b.cfg.Fields[FieldReviewCount])),
		PriceTier:      ParsePriceTier(Extract(l, FieldPriceTier, b.cfg.Fields[FieldPriceTier])),
		Neighborhood:   collapseWhitespace(Extract(l, FieldNeighborhood, b.cfg.Fields[FieldNeighborhood])),
		Hours:          collapseWhitespace(Extract(l, FieldHours, b.cfg.Fields[FieldHours])),
		Description:    truncate(collapseWhitespace(Extract(l, FieldDescription, b.cfg.Fields[FieldDescription])), model.MaxDescriptionLen),
		SourceURL:      pageURL,
		SourceName:     b.cfg.Source,
		SearchQuery:    query,
		SearchLocation: location,
		ScrapedAt:      now,
	}

	if rec.Category == "" {
		rec.Category = titleCase(query)
	}

	return rec, true
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var phoneCharRe = regexp.MustCompile(`[^\d+\-(). ]`)

// cleanPhone strips tel: prefixes and any character that isn't part of a
// phone shape, then collapses whitespace.
func cleanPhone(s string) string {
	s = strings.TrimSpace(s)
	if lower := strings.ToLower(s); strings.HasPrefix(lower, "tel:") {
		s = s[len("tel:"):]
	}
	s = phoneCharRe.ReplaceAllString(s, "")
	s = collapseWhitespace(s)
	// A phone with no digits is noise from a matched-but-empty element.
	if !strings.ContainsAny(s, "0123456789") {
		return ""
	}
	return s
}

// cleanWebsite validates a candidate website URL and rejects links pointing
// back at the listing source itself; a Yelp profile URL is not the
// business's own site.
func (b *Builder) cleanWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	for _, self := range b.cfg.SelfHosts {
		if host == self || strings.HasSuffix(host, "."+self) {
			return ""
		}
	}
	return raw
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
