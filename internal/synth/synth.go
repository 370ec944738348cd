// Package synth fabricates plausible business records for searches where
// live extraction produced nothing. Every record it emits is tagged with
// the synthetic source so downstream consumers can tell fabricated leads
// from scraped ones.
package synth

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Generator produces synthetic business records for one (query, location)
// pair. The random stream is seeded from the pair, so the same search
// yields the same records across runs.
type Generator struct {
	query    string
	location string
	rng      *rand.Rand
	log      *zap.Logger
}

func NewGenerator(query, location string) *Generator {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(query)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(location)))
	seed := h.Sum64()
	return &Generator{
		query:    query,
		location: location,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:      zap.L().Named("synth"),
	}
}

// Generate returns exactly count records with unique names, phones, and
// emails. Name uniqueness comes from template rotation plus city and
// district suffixes; phones and emails are re-rolled on collision.
func (g *Generator) Generate(count int, now time.Time) []model.BusinessRecord {
	if count <= 0 {
		return nil
	}
	templates := templatesFor(g.query)
	city := cityOf(g.location)

	records := make([]model.BusinessRecord, 0, count)
	usedNames := make(map[string]bool, count)
	usedPhones := make(map[string]bool, count)
	usedEmails := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		tpl := templates[i%len(templates)]
		name := g.uniqueName(tpl.name, city, i/len(templates), usedNames)
		phone := g.uniquePhone(usedPhones)
		email := g.uniqueEmail(tpl.slug, usedEmails)
		domain := tpl.slug + ".com"

		records = append(records, model.BusinessRecord{
			Name:         name,
			Phone:        phone,
			Address:      g.address(city),
			Website:      "https://www." + domain,
			Category:     tpl.category,
			Rating:       g.rating(),
			ReviewCount:  15 + g.rng.IntN(786),
			PriceTier:    priceTiers[g.rng.IntN(len(priceTiers))],
			Neighborhood: neighborhoods[g.rng.IntN(len(neighborhoods))],
			Hours:        hoursOptions[g.rng.IntN(len(hoursOptions))],
			Description:  fmt.Sprintf("Professional %s serving %s and surrounding areas.", strings.ToLower(tpl.category), city),
			SourceName:   model.SourceSynthetic,
			Email:        email,
			EmailStatus:  model.EmailStatusUnknown,

			SearchQuery:    g.query,
			SearchLocation: g.location,
			ScrapedAt:      now,
		})
	}

	g.log.Info("generated synthetic records",
		zap.String("query", g.query),
		zap.String("location", g.location),
		zap.Int("count", len(records)))
	return records
}

func (g *Generator) uniqueName(base, city string, round int, used map[string]bool) string {
	candidate := base
	if round > 0 {
		candidate = fmt.Sprintf("%s %s", base, directions[(round-1)%len(directions)])
	}
	if city != "" {
		candidate = candidate + " " + city
	}
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s #%d", base, n)
	}
	used[candidate] = true
	return candidate
}

func (g *Generator) uniquePhone(used map[string]bool) string {
	for {
		phone := fmt.Sprintf("(%d) %03d-%04d",
			200+g.rng.IntN(800), g.rng.IntN(1000), g.rng.IntN(10000))
		if !used[phone] {
			used[phone] = true
			return phone
		}
	}
}

func (g *Generator) uniqueEmail(slug string, used map[string]bool) string {
	for n := 0; ; n++ {
		prefix := emailPrefixes[g.rng.IntN(len(emailPrefixes))]
		email := prefix + "@" + slug + ".com"
		if n > 0 {
			email = fmt.Sprintf("%s%d@%s.com", prefix, n, slug)
		}
		if !used[email] {
			used[email] = true
			return email
		}
	}
}

func (g *Generator) address(city string) string {
	number := 100 + g.rng.IntN(9900)
	street := streetNames[g.rng.IntN(len(streetNames))]
	if city == "" {
		return fmt.Sprintf("%d %s", number, street)
	}
	return fmt.Sprintf("%d %s, %s", number, street, city)
}

// rating is uniform over [3.5, 5.0] at one decimal place.
func (g *Generator) rating() float64 {
	return float64(35+g.rng.IntN(16)) / 10
}

// cityOf takes the city portion of a "City, ST" location string.
func cityOf(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify lowercases, strips diacritics, and drops everything outside
// [a-z0-9] so template slugs are safe as domain labels.
func slugify(s string) string {
	folded, _, err := transform.String(slugFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
