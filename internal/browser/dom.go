package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// domElement wraps a goquery selection as an Element. goquery swallows
// invalid selectors (they match nothing), which gives us the "a selector
// miss is never fatal" contract for free.
type domElement struct {
	sel *goquery.Selection
}

func wrapSelection(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &domElement{sel: s})
	})
	return out
}

func (e *domElement) Query(selector string) (Element, bool) {
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &domElement{sel: found}, true
}

func (e *domElement) QueryAll(selector string) []Element {
	return wrapSelection(e.sel.Find(selector))
}

func (e *domElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *domElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *domElement) HTML() string {
	html, err := e.sel.Html()
	if err != nil {
		return ""
	}
	return html
}

// snapshot holds a parsed DOM plus the markup it came from.
type snapshot struct {
	doc *goquery.Document
	raw string
	url string
}

func newSnapshot(rawHTML, url string) (*snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return &snapshot{doc: doc, raw: rawHTML, url: url}, nil
}

func (s *snapshot) title() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

func (s *snapshot) queryAll(selector string) []Element {
	if s == nil {
		return nil
	}
	return wrapSelection(s.doc.Find(selector))
}
