package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultUserAgent is sent by StaticSession unless overridden.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// StaticSession is a Session that fetches pages over HTTP without running
// scripts. Lazily loaded content never appears, so element heights are
// constant and scrolling has no effect.
type StaticSession struct {
	client      *http.Client
	userAgent   string
	loadTimeout time.Duration
	maxBodySize int64

	doc *goquery.Document
	url string
}

var _ Session = (*StaticSession)(nil)

// StaticOption configures a StaticSession.
type StaticOption func(*StaticSession)

// WithHTTPClient sets the HTTP client used for page loads.
func WithHTTPClient(c *http.Client) StaticOption {
	return func(s *StaticSession) {
		s.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) StaticOption {
	return func(s *StaticSession) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithLoadTimeout bounds each page load.
func WithLoadTimeout(d time.Duration) StaticOption {
	return func(s *StaticSession) {
		s.loadTimeout = d
	}
}

// WithMaxBodySize limits how much of a response body is parsed.
func WithMaxBodySize(size int64) StaticOption {
	return func(s *StaticSession) {
		s.maxBodySize = size
	}
}

// NewStaticSession creates a StaticSession.
func NewStaticSession(opts ...StaticOption) *StaticSession {
	s := &StaticSession{
		client:      http.DefaultClient,
		userAgent:   DefaultUserAgent,
		loadTimeout: DefaultPageLoadTimeout,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the address of the loaded page.
func (s *StaticSession) URL() string {
	return s.url
}

// Navigate fetches url and parses the response as HTML. The response is
// decoded to UTF-8 according to its Content-Type and meta tags.
func (s *StaticSession) Navigate(ctx context.Context, url string) error {
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, url, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, s.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", url, err)
	}

	s.doc = doc
	s.url = resp.Request.URL.String()
	return nil
}

// Find returns the first element matching selector.
func (s *StaticSession) Find(ctx context.Context, selector string) (Element, error) {
	if s.doc == nil {
		return nil, ErrNoPage
	}
	return staticFind(s.doc.Selection, selector)
}

// FindAll returns all elements matching selector.
func (s *StaticSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, ErrNoPage
	}
	return staticFindAll(s.doc.Selection, selector), nil
}

// Lookup returns the first element matching selector if there is one.
func (s *StaticSession) Lookup(ctx context.Context, selector string) (Element, bool, error) {
	if s.doc == nil {
		return nil, false, ErrNoPage
	}
	el, found := staticLookup(s.doc.Selection, selector)
	return el, found, nil
}

// SelectOption marks the option with the given value as selected. The page
// content does not change since no scripts run.
func (s *StaticSession) SelectOption(ctx context.Context, selector, value string) error {
	if s.doc == nil {
		return ErrNoPage
	}
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}

	options := sel.Find("option")
	match := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		v, ok := o.Attr("value")
		if !ok {
			v = o.Text()
		}
		return v == value
	})
	if match.Length() == 0 {
		return fmt.Errorf("%w: option %s in %s", ErrNotFound, strconv.Quote(value), selector)
	}

	options.RemoveAttr("selected")
	match.First().SetAttr("selected", "selected")
	return nil
}

// Close drops the loaded page.
func (s *StaticSession) Close() error {
	s.doc = nil
	s.url = ""
	return nil
}

func staticFind(parent *goquery.Selection, selector string) (Element, error) {
	el, found := staticLookup(parent, selector)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return el, nil
}

func staticLookup(parent *goquery.Selection, selector string) (Element, bool) {
	sel := parent.Find(selector).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &staticElement{sel: sel}, true
}

func staticFindAll(parent *goquery.Selection, selector string) []Element {
	sel := parent.Find(selector)
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out
}

// staticElement adapts a single-node goquery selection to Element.
type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text(ctx context.Context) (string, error) {
	return normalizeText(e.sel.Text()), nil
}

func (e *staticElement) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *staticElement) Find(ctx context.Context, selector string) (Element, error) {
	return staticFind(e.sel, selector)
}

func (e *staticElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return staticFindAll(e.sel, selector), nil
}

func (e *staticElement) Lookup(ctx context.Context, selector string) (Element, bool, error) {
	el, found := staticLookup(e.sel, selector)
	return el, found, nil
}

// Height returns the number of descendant elements. It stands in for the
// rendered height and only changes if the document does.
func (e *staticElement) Height(ctx context.Context) (float64, error) {
	return float64(e.sel.Find("*").Length()), nil
}

func (e *staticElement) ScrollIntoView(ctx context.Context) error {
	return nil
}

func (e *staticElement) Click(ctx context.Context) error {
	return nil
}
