// Package browser abstracts a navigable page session for the extraction
// engine. Two backends exist: a chromedp-driven Chrome session for
// JS-rendered sources, and a plain HTTP fetcher for static pages and tests.
// Both expose the DOM of the last navigation as a queryable snapshot.
package browser

import (
	"context"
	"fmt"
)

// Element is a handle to one DOM node in a loaded page snapshot. Selector
// queries never fail: an invalid or non-matching selector yields nothing.
type Element interface {
	// Query returns the first descendant matching the selector.
	Query(selector string) (Element, bool)
	// QueryAll returns all descendants matching the selector.
	QueryAll(selector string) []Element
	// Text returns the element's combined text content.
	Text() string
	// Attr returns the named attribute value.
	Attr(name string) (string, bool)
	// HTML returns the element's inner HTML.
	HTML() string
}

// Page is a navigable page session. A Page holds at most one loaded document;
// Navigate replaces it. Implementations are not safe for concurrent use.
type Page interface {
	// Navigate loads the URL and snapshots the resulting DOM. Load or
	// timeout failures return a *NavigationError.
	Navigate(ctx context.Context, url string) error
	// URL returns the last successfully navigated URL.
	URL() string
	// Title returns the document title of the current snapshot.
	Title() string
	// Content returns the raw markup of the current snapshot.
	Content() string
	// QueryAll returns all elements matching the selector in the current snapshot.
	QueryAll(selector string) []Element
	// Close releases the session and all resources it holds.
	Close() error
}

// NavigationError indicates a page failed to load: network failure, timeout,
// or an anti-bot block. It is fatal to the live-extraction attempt for the
// current request.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("browser: navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
