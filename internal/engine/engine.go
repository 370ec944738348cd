package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/browser"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/synth"
)

// DefaultMaxResults caps a request that doesn't specify its own limit.
const DefaultMaxResults = 20

// Request describes one extraction run.
type Request struct {
	Query    string
	Location string
	Source   model.SourceName

	// SearchURL overrides the source's own search-URL builder. Required for
	// the custom source, which has no URL scheme of its own.
	SearchURL string

	MaxResults     int
	DiscoverEmails bool
	VerifyEmails   bool
}

func (r *Request) normalize() error {
	r.Query = strings.TrimSpace(r.Query)
	r.Location = strings.TrimSpace(r.Location)
	if r.Query == "" {
		return eris.New("engine: request query is empty")
	}
	if r.Location == "" {
		return eris.New("engine: request location is empty")
	}
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	return nil
}

// Enricher discovers and verifies email addresses for records in place.
// Implemented by the email package. Discovery and verification are separate
// so fallback addresses can be substituted in between and still reach the
// verifier.
type Enricher interface {
	DiscoverAll(ctx context.Context, records []model.BusinessRecord) error
	VerifyAll(ctx context.Context, records []model.BusinessRecord) error
}

// Engine drives one page through the locate/extract/build pipeline and
// falls back to synthesis whenever a source yields nothing usable.
type Engine struct {
	page     browser.Page
	enricher Enricher
	log      *zap.Logger
}

func New(page browser.Page, enricher Enricher) *Engine {
	return &Engine{
		page:     page,
		enricher: enricher,
		log:      zap.L().Named("engine"),
	}
}

// Extract runs the full pipeline for one request. It never returns an
// empty batch for a valid request: when navigation is blocked, listings
// can't be located, or every listing is dropped, the batch is filled with
// synthetic records and flagged as such.
func (e *Engine) Extract(ctx context.Context, req Request) (*model.ExtractionBatch, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	cfg, err := ConfigFor(req.Source)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	log := e.log.With(
		zap.String("query", req.Query),
		zap.String("location", req.Location),
		zap.String("source", string(cfg.Source)))

	searchURL := req.SearchURL
	if searchURL == "" {
		searchURL = cfg.SearchURL(req.Query, req.Location)
	}
	if searchURL == "" {
		return nil, eris.Errorf("engine: source %q requires an explicit search URL", cfg.Source)
	}
	log.Info("navigating to search results", zap.String("url", searchURL))
	if err := e.page.Navigate(ctx, searchURL); err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "engine: navigation canceled")
		}
		log.Warn("navigation failed, synthesizing results", zap.Error(err))
		return e.finish(ctx, req, cfg, e.synthesize(req, now), true, now)
	}

	listings := Locate(e.page, cfg)
	if len(listings) == 0 {
		log.Warn("no listings located, synthesizing results")
		return e.finish(ctx, req, cfg, e.synthesize(req, now), true, now)
	}
	log.Info("located listings", zap.Int("count", len(listings)))

	builder := NewBuilder(cfg)
	records := make([]model.BusinessRecord, 0, len(listings))
	dropped := 0
	for _, l := range listings {
		rec, ok := builder.Build(l, req.Query, req.Location, e.page.URL(), now)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
		if len(records) >= req.MaxResults {
			break
		}
	}
	if dropped > 0 {
		log.Debug("dropped nameless listings", zap.Int("count", dropped))
	}
	if len(records) == 0 {
		log.Warn("all listings dropped, synthesizing results")
		return e.finish(ctx, req, cfg, e.synthesize(req, now), true, now)
	}

	records = model.Dedupe(records)
	log.Info("built records", zap.Int("count", len(records)))
	return e.finish(ctx, req, cfg, records, false, now)
}

func (e *Engine) synthesize(req Request, now time.Time) []model.BusinessRecord {
	return synth.NewGenerator(req.Query, req.Location).Generate(req.MaxResults, now)
}

func (e *Engine) finish(ctx context.Context, req Request, cfg SourceConfig, records []model.BusinessRecord, synthetic bool, now time.Time) (*model.ExtractionBatch, error) {
	if req.DiscoverEmails && !synthetic && e.enricher != nil {
		if err := e.enricher.DiscoverAll(ctx, records); err != nil {
			return nil, eris.Wrap(err, "engine: email discovery")
		}
		// Fallback addresses go in before verification so the verifier
		// judges them like any discovered address.
		for i := range records {
			if records[i].Email == "" {
				records[i].Email = fallbackEmail(&records[i])
				records[i].EmailStatus = model.EmailStatusUnknown
			}
		}
		if req.VerifyEmails {
			if err := e.enricher.VerifyAll(ctx, records); err != nil {
				return nil, eris.Wrap(err, "engine: email verification")
			}
		}
	}
	source := cfg.Source
	if synthetic {
		source = model.SourceSynthetic
	}
	return &model.ExtractionBatch{
		ID:             uuid.NewString(),
		SearchQuery:    req.Query,
		SearchLocation: req.Location,
		Source:         source,
		Synthetic:      synthetic,
		Records:        records,
		ScrapedAt:      now,
	}, nil
}

// fallbackEmail fabricates an address when discovery found nothing: the
// record's own domain when it has a website, otherwise a slug of its name.
func fallbackEmail(r *model.BusinessRecord) string {
	if host := websiteHost(r.Website); host != "" {
		return "info@" + host
	}
	slug := nameSlug(r.Name)
	if slug == "" {
		return ""
	}
	return "contact@" + slug + ".com"
}

func websiteHost(website string) string {
	if website == "" {
		return ""
	}
	rest := website
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimPrefix(rest, "www.")
	if !strings.Contains(rest, ".") {
		return ""
	}
	return strings.ToLower(rest)
}

func nameSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
