package browser

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

const (
	staticMaxBody   = 2 * 1024 * 1024
	staticUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// StaticPage fetches pages over plain HTTP and parses them without script
// execution. Suitable for custom sources that serve real markup, and for
// tests. JS-rendered sources need ChromeSession instead.
type StaticPage struct {
	client *http.Client
	retry  resilience.RetryConfig
	snap   *snapshot
}

// NewStaticPage creates a StaticPage with sensible network timeouts.
// retries is the total fetch attempts per navigation; <= 0 uses the default.
func NewStaticPage(timeout time.Duration, retries int) *StaticPage {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StaticPage{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.FetchRetryConfig(retries),
	}
}

// NewStaticPageFromHTML builds an already-navigated page from markup, for
// callers that obtained the content themselves.
func NewStaticPageFromHTML(rawHTML, url string) (*StaticPage, error) {
	snap, err := newSnapshot(rawHTML, url)
	if err != nil {
		return nil, eris.Wrap(err, "static: parse document")
	}
	p := NewStaticPage(0, 0)
	p.snap = snap
	return p, nil
}

// Navigate fetches the URL and snapshots its DOM. Blocks detected in the
// response are reported as navigation failures.
func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	body, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]byte, error) {
		return p.fetch(ctx, url)
	})
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	snap, err := newSnapshot(string(body), url)
	if err != nil {
		return &NavigationError{URL: url, Err: eris.Wrap(err, "static: parse document")}
	}
	p.snap = snap
	return nil
}

func (p *StaticPage) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "static: create request")
	}
	req.Header.Set("User-Agent", staticUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "static: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, staticMaxBody))
	if err != nil {
		return nil, eris.Wrap(err, "static: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("static: blocked (%s)", kind)
	}

	if resp.StatusCode >= 400 {
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(
				eris.Errorf("static: status %d", resp.StatusCode), resp.StatusCode)
		}
		return nil, eris.Errorf("static: status %d", resp.StatusCode)
	}

	return body, nil
}

func (p *StaticPage) URL() string {
	if p.snap == nil {
		return ""
	}
	return p.snap.url
}

func (p *StaticPage) Title() string { return p.snap.title() }

func (p *StaticPage) Content() string {
	if p.snap == nil {
		return ""
	}
	return p.snap.raw
}

func (p *StaticPage) QueryAll(selector string) []Element {
	return p.snap.queryAll(selector)
}

func (p *StaticPage) Close() error {
	p.client.CloseIdleConnections()
	p.snap = nil
	return nil
}
