// Package email discovers contact addresses on business websites and
// verifies them against DNS and, optionally, the receiving mail server.
package email

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	emailaddress "github.com/mcnijman/go-emailaddress"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	discoverMaxBody   = 1 * 1024 * 1024
	discoverUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// deniedDomains are providers and placeholders whose addresses are never a
// business contact worth keeping.
var deniedDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
	"outlook.com": true,
	"aol.com":     true,
	"icloud.com":  true,
	"example.com": true,
	"example.org": true,
	"test.com":    true,
	"sentry.io":   true,
}

// deniedPrefixes are local parts that identify machine mailboxes.
var deniedPrefixes = []string{"noreply", "no-reply", "donotreply", "mailer-daemon", "postmaster"}

// Discoverer finds a contact email on a business website: the landing page
// first, then one contact page linked from it.
type Discoverer struct {
	client *http.Client
	log    *zap.Logger
}

// NewDiscoverer creates a Discoverer whose fetches time out after the given
// duration.
func NewDiscoverer(timeout time.Duration) *Discoverer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Discoverer{
		client: &http.Client{Timeout: timeout},
		log:    zap.L().Named("email.discover"),
	}
}

// Discover returns the first usable email found on the site, or "" when the
// site is unreachable, unparseable, or carries no acceptable address.
// Discovery failures are expected for a large share of sites, so they are
// reported as an empty result rather than an error; only context
// cancellation aborts.
func (d *Discoverer) Discover(ctx context.Context, websiteURL string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(websiteURL))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", nil
	}

	doc, err := d.fetchDoc(ctx, base.String())
	if err != nil {
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "email: discovery canceled")
		}
		d.log.Debug("landing page fetch failed", zap.String("url", base.String()), zap.Error(err))
		return "", nil
	}

	if email := firstEmail(doc); email != "" {
		return email, nil
	}

	contactURL := contactLink(doc, base)
	if contactURL == "" {
		return "", nil
	}
	doc, err = d.fetchDoc(ctx, contactURL)
	if err != nil {
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "email: discovery canceled")
		}
		d.log.Debug("contact page fetch failed", zap.String("url", contactURL), zap.Error(err))
		return "", nil
	}
	return firstEmail(doc), nil
}

func (d *Discoverer) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "email: create request")
	}
	req.Header.Set("User-Agent", discoverUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "email: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("email: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, discoverMaxBody))
	if err != nil {
		return nil, eris.Wrap(err, "email: parse document")
	}
	return doc, nil
}

// firstEmail scans mailto links first, then the raw markup, and returns the
// first address that survives the denylist.
func firstEmail(doc *goquery.Document) string {
	var found string
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexAny(addr, "?&"); i >= 0 {
			addr = addr[:i]
		}
		if email := acceptable(addr); email != "" {
			found = email
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	markup, err := doc.Html()
	if err != nil {
		return ""
	}
	for _, candidate := range emailaddress.Find([]byte(markup), false) {
		if email := acceptable(candidate.String()); email != "" {
			return email
		}
	}
	return ""
}

// acceptable validates and normalizes a candidate address; "" means denied.
func acceptable(raw string) string {
	parsed, err := emailaddress.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	local := strings.ToLower(parsed.LocalPart)
	domain := strings.ToLower(parsed.Domain)
	if deniedDomains[domain] {
		return ""
	}
	for _, prefix := range deniedPrefixes {
		if strings.HasPrefix(local, prefix) {
			return ""
		}
	}
	return local + "@" + domain
}

// contactLink finds the first link that looks like a contact page and
// resolves it against the page URL.
func contactLink(doc *goquery.Document, base *url.URL) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		text := strings.ToLower(s.Text())
		if !strings.Contains(strings.ToLower(href), "contact") && !strings.Contains(text, "contact") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}
		found = resolved.String()
		return false
	})
	return found
}
