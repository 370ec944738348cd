package engine

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/browser"
)

// Listing is one located business entry. Live listings carry a DOM element;
// pseudo-listings recovered from structured data or pattern mining carry
// pre-extracted field values instead.
type Listing struct {
	Element browser.Element
	Values  map[Field]string
}

// Locate finds the repeating listing elements on a loaded results page.
// The container selector cascade is tried in order and the first selector
// producing at least one element wins; results from different selectors are
// never merged. When no selector matches, structured-data blocks and then
// raw pattern mining are tried. An empty return means the page genuinely has
// nothing extractable and the caller should synthesize.
func Locate(page browser.Page, cfg SourceConfig) []Listing {
	log := zap.L().With(
		zap.String("component", "engine.locator"),
		zap.String("source", string(cfg.Source)),
	)

	for _, sel := range cfg.ContainerSelectors {
		els := page.QueryAll(sel)
		if len(els) == 0 {
			continue
		}
		log.Debug("container selector matched",
			zap.String("selector", sel),
			zap.Int("elements", len(els)),
		)
		listings := make([]Listing, len(els))
		for i, el := range els {
			listings[i] = Listing{Element: el}
		}
		return listings
	}

	log.Debug("no container selector matched, trying structured data")
	if listings := locateStructured(page); len(listings) > 0 {
		log.Info("recovered listings from structured data", zap.Int("count", len(listings)))
		return listings
	}

	log.Debug("no structured data, trying pattern mining")
	if listings := mineContent(page.Content()); len(listings) > 0 {
		log.Info("recovered listings from pattern mining", zap.Int("count", len(listings)))
		return listings
	}

	return nil
}

// locateStructured pulls LocalBusiness objects out of JSON-LD script blocks
// and turns each into a pseudo-listing. Malformed blocks are skipped.
func locateStructured(page browser.Page) []Listing {
	var listings []Listing
	for _, script := range page.QueryAll(`script[type="application/ld+json"]`) {
		var payload any
		if err := json.Unmarshal([]byte(script.Text()), &payload); err != nil {
			continue
		}
		for _, obj := range flattenJSONLD(payload) {
			if l, ok := listingFromJSONLD(obj); ok {
				listings = append(listings, l)
			}
		}
	}
	return listings
}

// flattenJSONLD normalizes a JSON-LD payload into a list of candidate
// objects: top-level objects, top-level arrays, and @graph members.
func flattenJSONLD(payload any) []map[string]any {
	var out []map[string]any
	switch v := payload.(type) {
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					out = append(out, m)
				}
			}
			return out
		}
		out = append(out, v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// businessTypes are JSON-LD @type values accepted as business listings.
var businessTypes = map[string]bool{
	"LocalBusiness": true, "Restaurant": true, "Dentist": true,
	"Attorney": true, "Plumber": true, "HomeAndConstructionBusiness": true,
	"ProfessionalService": true, "Store": true, "FoodEstablishment": true,
}

func isBusinessType(v any) bool {
	switch t := v.(type) {
	case string:
		return businessTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && businessTypes[s] {
				return true
			}
		}
	}
	return false
}

func listingFromJSONLD(obj map[string]any) (Listing, bool) {
	if !isBusinessType(obj["@type"]) {
		return Listing{}, false
	}

	name, _ := obj["name"].(string)
	if strings.TrimSpace(name) == "" {
		return Listing{}, false
	}

	values := map[Field]string{FieldName: name}

	if tel, ok := obj["telephone"].(string); ok {
		values[FieldPhone] = tel
	} else if cp, ok := obj["contactPoint"].(map[string]any); ok {
		if tel, ok := cp["telephone"].(string); ok {
			values[FieldPhone] = tel
		}
	}

	switch addr := obj["address"].(type) {
	case string:
		values[FieldAddress] = addr
	case map[string]any:
		parts := make([]string, 0, 3)
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion"} {
			if s, ok := addr[key].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		values[FieldAddress] = strings.Join(parts, ", ")
	}

	if u, ok := obj["url"].(string); ok {
		values[FieldWebsite] = u
	}
	if agg, ok := obj["aggregateRating"].(map[string]any); ok {
		if rv, ok := agg["ratingValue"].(float64); ok {
			values[FieldRating] = strconv.FormatFloat(rv, 'f', -1, 64) + " rating"
		}
		if rc, ok := agg["reviewCount"].(float64); ok {
			values[FieldReviewCount] = strconv.FormatFloat(rc, 'f', -1, 64) + " reviews"
		}
	}
	if pr, ok := obj["priceRange"].(string); ok {
		values[FieldPriceTier] = pr
	}

	return Listing{Values: values}, true
}

var (
	minePhoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}`)
	mineNameRes = []*regexp.Regexp{
		regexp.MustCompile(`"businessName"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"name"\s*:\s*"([^"]{2,80})"`),
		regexp.MustCompile(`(?i)<h3[^>]*>([^<]{2,80})</h3>`),
		regexp.MustCompile(`(?i)<h2[^>]*>([^<]{2,80})</h2>`),
	}
)

// mineContent scans raw markup for repeated field-shaped substrings and zips
// same-index name/phone matches into pseudo-listings. This is the last
// resort before synthesis: noisy, but better than returning nothing when a
// page renders its data outside any known container.
func mineContent(content string) []Listing {
	if content == "" {
		return nil
	}

	var names []string
	seen := map[string]bool{}
	for _, re := range mineNameRes {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	phones := minePhoneRe.FindAllString(content, -1)

	listings := make([]Listing, 0, len(names))
	for i, name := range names {
		values := map[Field]string{FieldName: name}
		if i < len(phones) {
			values[FieldPhone] = phones[i]
		}
		listings = append(listings, Listing{Values: values})
	}
	return listings
}
