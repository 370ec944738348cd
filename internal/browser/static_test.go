package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<!DOCTYPE html>
<html><head><title>Search Results</title></head>
<body>
  <div class="result">
    <h3 class="business-name">Joe's Cafe</h3>
    <span class="phone">(512) 555-0134</span>
    <a class="website" href="https://joescafe.com">site</a>
  </div>
  <div class="result">
    <h3 class="business-name">Thai Garden</h3>
  </div>
</body></html>`

func TestStaticPageNavigateAndQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	p := NewStaticPage(5*time.Second, 0)
	defer func() { _ = p.Close() }()

	require.NoError(t, p.Navigate(context.Background(), srv.URL))
	assert.Equal(t, srv.URL, p.URL())
	assert.Equal(t, "Search Results", p.Title())

	results := p.QueryAll(".result")
	require.Len(t, results, 2)

	name, ok := results[0].Query(".business-name")
	require.True(t, ok)
	assert.Equal(t, "Joe's Cafe", name.Text())

	link, ok := results[0].Query("a.website")
	require.True(t, ok)
	href, found := link.Attr("href")
	assert.True(t, found)
	assert.Equal(t, "https://joescafe.com", href)

	// Second listing lacks a phone: selector miss, not an error.
	_, ok = results[1].Query(".phone")
	assert.False(t, ok)
}

func TestStaticPageInvalidSelectorMatchesNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	p := NewStaticPage(5*time.Second, 0)
	defer func() { _ = p.Close() }()
	require.NoError(t, p.Navigate(context.Background(), srv.URL))

	assert.Empty(t, p.QueryAll("[[[not-a-selector"))
}

func TestStaticPageNavigationError(t *testing.T) {
	t.Parallel()

	p := NewStaticPage(time.Second, 0)
	defer func() { _ = p.Close() }()

	err := p.Navigate(context.Background(), "http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	var navErr *NavigationError
	assert.True(t, errors.As(err, &navErr))
}

func TestStaticPageClientError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewStaticPage(time.Second, 0)
	defer func() { _ = p.Close() }()

	var navErr *NavigationError
	err := p.Navigate(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.As(err, &navErr))
}

func TestStaticPageRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer srv.Close()

	p := NewStaticPage(5*time.Second, 0)
	defer func() { _ = p.Close() }()

	require.NoError(t, p.Navigate(context.Background(), srv.URL))
	assert.Equal(t, 2, calls)
}

func TestStaticPageRetryAttemptsConfigurable(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewStaticPage(5*time.Second, 1)
	defer func() { _ = p.Close() }()

	require.Error(t, p.Navigate(context.Background(), srv.URL))
	assert.Equal(t, 1, calls, "a single attempt must not retry")
}

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *http.Response
		body string
		want BlockType
	}{
		{"clean page", nil, listingHTML, BlockNone},
		{"cloudflare challenge", nil, "Checking your browser before accessing", BlockCloudflare},
		{"recaptcha", nil, "<div class='g-recaptcha'></div>", BlockCaptcha},
		{"js shell", nil, "<noscript>enable javascript</noscript>", BlockJSShell},
		{
			"cloudflare header",
			&http.Response{StatusCode: 403, Header: http.Header{"Cf-Ray": []string{"abc"}}},
			"denied",
			BlockCloudflare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blocked, kind := DetectBlock(tt.resp, []byte(tt.body))
			assert.Equal(t, tt.want, kind)
			assert.Equal(t, tt.want != BlockNone, blocked)
		})
	}
}
