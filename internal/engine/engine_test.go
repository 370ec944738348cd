package engine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/browser"
	"github.com/sells-group/leadgen-cli/internal/engine"
	"github.com/sells-group/leadgen-cli/internal/model"
)

const resultsHTML = `<!DOCTYPE html>
<html><head><title>Directory</title></head><body>
<div class="listing">
  <h3>Joe's Cafe</h3>
  <span class="address">12 Main St, Denver, CO</span>
  <span class="category">Cafe</span>
</div>
<div class="listing">
  <h3>Acme Widgets</h3>
  <span class="phone">(303) 555-0147</span>
  <span class="address">99 Oak Ave, Denver, CO</span>
  <a href="https://www.acmewidgets.com">Website</a>
  <span class="rating">4.5 star rating</span>
  <span class="review-note">213 reviews</span>
</div>
<div class="listing">
  <h3>Acme Widgets</h3>
  <span class="phone">(303) 555-9999</span>
</div>
<div class="listing">
  <span class="address">No name here</span>
</div>
</body></html>`

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newStaticEngine(t *testing.T, enricher engine.Enricher) (*engine.Engine, *browser.StaticPage) {
	t.Helper()
	page := browser.NewStaticPage(5*time.Second, 0)
	t.Cleanup(func() { _ = page.Close() })
	return engine.New(page, enricher), page
}

func TestExtractFromListingPage(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsHTML))
	})
	e, _ := newStaticEngine(t, nil)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:     "coffee shops",
		Location:  "Denver, CO",
		Source:    model.SourceCustom,
		SearchURL: srv.URL,
	})
	require.NoError(t, err)

	assert.False(t, batch.Synthetic)
	assert.Equal(t, model.SourceCustom, batch.Source)
	assert.NotEmpty(t, batch.ID)
	require.Len(t, batch.Records, 2, "duplicate name and nameless listing must be dropped")

	joe := batch.Records[0]
	assert.Equal(t, "Joe's Cafe", joe.Name)
	assert.Empty(t, joe.Phone)
	assert.Empty(t, joe.Email)
	assert.Equal(t, "12 Main St, Denver, CO", joe.Address)
	assert.Equal(t, "Cafe", joe.Category)
	assert.Equal(t, model.SourceCustom, joe.SourceName)
	assert.Equal(t, "coffee shops", joe.SearchQuery)

	acme := batch.Records[1]
	assert.Equal(t, "Acme Widgets", acme.Name)
	assert.Equal(t, "(303) 555-0147", acme.Phone)
	assert.Equal(t, "https://www.acmewidgets.com", acme.Website)
	assert.InDelta(t, 4.5, acme.Rating, 0.001)
	assert.Equal(t, 213, acme.ReviewCount)

	for _, rec := range batch.Records {
		require.NoError(t, rec.Validate())
	}
}

func TestExtractRespectsMaxResults(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<div class="listing"><h3>One</h3></div>
			<div class="listing"><h3>Two</h3></div>
			<div class="listing"><h3>Three</h3></div>
			<div class="listing"><h3>Four</h3></div>
		</body></html>`))
	})
	e, _ := newStaticEngine(t, nil)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:      "shops",
		Location:   "Denver, CO",
		Source:     model.SourceCustom,
		SearchURL:  srv.URL,
		MaxResults: 2,
	})
	require.NoError(t, err)
	assert.Len(t, batch.Records, 2)
}

func TestExtractBlockedSourceSynthesizes(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("cf-ray", "8f2a1c3d4e5f6a7b-DEN")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Access denied"))
	})
	e, _ := newStaticEngine(t, nil)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:      "restaurants",
		Location:   "Denver, CO",
		Source:     model.SourceCustom,
		SearchURL:  srv.URL,
		MaxResults: 10,
	})
	require.NoError(t, err)

	assert.True(t, batch.Synthetic)
	assert.Equal(t, model.SourceSynthetic, batch.Source)
	require.Len(t, batch.Records, 10)

	names := make(map[string]bool, 10)
	for _, rec := range batch.Records {
		assert.True(t, rec.Synthetic())
		assert.NotEmpty(t, rec.Name)
		assert.NotEmpty(t, rec.Phone)
		assert.NotEmpty(t, rec.Email)
		assert.False(t, names[rec.Name], "duplicate synthetic name %q", rec.Name)
		names[rec.Name] = true
		require.NoError(t, rec.Validate())
	}
}

func TestExtractEmptyPageSynthesizes(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Search</title></head><body><p>Nothing matched your search.</p></body></html>`))
	})
	e, _ := newStaticEngine(t, nil)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:      "dentists",
		Location:   "Austin, TX",
		Source:     model.SourceCustom,
		SearchURL:  srv.URL,
		MaxResults: 5,
	})
	require.NoError(t, err)
	assert.True(t, batch.Synthetic)
	assert.Len(t, batch.Records, 5)
}

func TestExtractUnreachableHostSynthesizes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e, _ := newStaticEngine(t, nil)
	batch, err := e.Extract(context.Background(), engine.Request{
		Query:      "plumbers",
		Location:   "Chicago, IL",
		Source:     model.SourceCustom,
		SearchURL:  url,
		MaxResults: 3,
	})
	require.NoError(t, err)
	assert.True(t, batch.Synthetic)
	assert.Len(t, batch.Records, 3)
}

type stubEnricher struct {
	discovered bool
	verified   []string
	emails     map[string]string
}

func (s *stubEnricher) DiscoverAll(_ context.Context, records []model.BusinessRecord) error {
	s.discovered = true
	for i := range records {
		if email, ok := s.emails[records[i].Name]; ok {
			records[i].Email = email
			records[i].EmailStatus = model.EmailStatusUnknown
		}
	}
	return nil
}

func (s *stubEnricher) VerifyAll(_ context.Context, records []model.BusinessRecord) error {
	for i := range records {
		s.verified = append(s.verified, records[i].Email)
		records[i].EmailVerified = true
		records[i].EmailStatus = model.EmailStatusVerified
		records[i].EmailConfidence = model.ConfidenceMedium
	}
	return nil
}

func TestExtractEnrichmentAndFallbackEmails(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsHTML))
	})
	enricher := &stubEnricher{emails: map[string]string{}}
	e, _ := newStaticEngine(t, enricher)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:          "widgets",
		Location:       "Denver, CO",
		Source:         model.SourceCustom,
		SearchURL:      srv.URL,
		DiscoverEmails: true,
		VerifyEmails:   true,
	})
	require.NoError(t, err)

	assert.True(t, enricher.discovered)
	require.Len(t, batch.Records, 2)

	// No website: slug of the business name.
	assert.Equal(t, "contact@joescafe.com", batch.Records[0].Email)
	// Has website: its own domain.
	assert.Equal(t, "info@acmewidgets.com", batch.Records[1].Email)

	// Fallback addresses are substituted before verification, so the
	// verifier sees them and their status moves past unknown.
	assert.Equal(t, []string{"contact@joescafe.com", "info@acmewidgets.com"}, enricher.verified)
	for _, rec := range batch.Records {
		assert.Equal(t, model.EmailStatusVerified, rec.EmailStatus, "record %q", rec.Name)
	}
}

func TestExtractSkipsEnrichmentForSyntheticBatch(t *testing.T) {
	t.Parallel()

	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("cf-ray", "8f2a1c3d4e5f6a7b-DEN")
		w.WriteHeader(http.StatusForbidden)
	})
	enricher := &stubEnricher{}
	e, _ := newStaticEngine(t, enricher)

	batch, err := e.Extract(context.Background(), engine.Request{
		Query:          "restaurants",
		Location:       "Denver, CO",
		Source:         model.SourceCustom,
		SearchURL:      srv.URL,
		DiscoverEmails: true,
	})
	require.NoError(t, err)
	assert.True(t, batch.Synthetic)
	assert.False(t, enricher.discovered, "synthetic records already carry emails")
}

func TestExtractRequestValidation(t *testing.T) {
	t.Parallel()

	e, _ := newStaticEngine(t, nil)
	ctx := context.Background()

	_, err := e.Extract(ctx, engine.Request{Location: "Denver, CO", Source: model.SourceYelp})
	assert.Error(t, err)

	_, err = e.Extract(ctx, engine.Request{Query: "shops", Source: model.SourceYelp})
	assert.Error(t, err)

	_, err = e.Extract(ctx, engine.Request{Query: "shops", Location: "Denver, CO", Source: "bing"})
	assert.Error(t, err)

	_, err = e.Extract(ctx, engine.Request{Query: "shops", Location: "Denver, CO", Source: model.SourceCustom})
	assert.Error(t, err, "custom source needs an explicit search URL")
}
