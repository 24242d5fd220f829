package browser

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a required element is not on the page.
	ErrNotFound = errors.New("element not found")

	// ErrNoPage is returned when the session is queried before a page was loaded.
	ErrNoPage = errors.New("no page loaded")

	// ErrHTTPStatus is returned when a page responds with a non-success status.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// Session is a browser tab owned by one caller at a time.
type Session interface {
	// Navigate loads url and waits until the page is loaded.
	Navigate(ctx context.Context, url string) error

	// Find returns the first element matching selector or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)

	// FindAll returns every element matching selector. An empty result is
	// not an error.
	FindAll(ctx context.Context, selector string) ([]Element, error)

	// Lookup is Find for optional elements: found is false when nothing
	// matches and err is nil.
	Lookup(ctx context.Context, selector string) (el Element, found bool, err error)

	// SelectOption selects the option with the given value in the select
	// element matching selector.
	SelectOption(ctx context.Context, selector, value string) error

	// Close releases the session.
	Close() error
}

// Element is a node of the loaded page.
type Element interface {
	// Text returns the visible text of the element.
	Text(ctx context.Context) (string, error)

	// Attr returns the named attribute. ok is false when it is absent.
	Attr(ctx context.Context, name string) (value string, ok bool, err error)

	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	Lookup(ctx context.Context, selector string) (el Element, found bool, err error)

	// Height returns the rendered height of the element. Only its change
	// over time is meaningful.
	Height(ctx context.Context) (float64, error)

	ScrollIntoView(ctx context.Context) error
	Click(ctx context.Context) error
}

// normalizeText collapses runs of whitespace inside each line and drops
// blank lines, which approximates how a browser renders text.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
