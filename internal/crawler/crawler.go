package crawler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/ecbcrawl/internal/browser"
	"github.com/nao1215/ecbcrawl/internal/config"
	"github.com/nao1215/ecbcrawl/internal/model"
)

// ErrNotHTML is returned by FetchText for documents whose link does not
// point to an HTML page.
var ErrNotHTML = errors.New("document link is not an HTML page")

// Crawler collects documents from the publications listing.
// It is not safe for concurrent use.
type Crawler struct {
	session   browser.Session
	logger    *slog.Logger
	listing   string
	years     []int
	maxCount  int
	selectors config.Selectors
	timing    config.Timing

	// maxScrollPolls bounds the scroll loop. 0 derives the bound from timing.
	maxScrollPolls int

	now   func() time.Time
	stats model.CrawlStats
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithYears sets the year batches crawled in order. A 0 entry crawls the
// listing without a year filter. An empty slice keeps the default [0].
func WithYears(years []int) Option {
	return func(c *Crawler) {
		if len(years) > 0 {
			c.years = append([]int(nil), years...)
		}
	}
}

// WithMaxCount caps the documents kept per year batch. 0 means unlimited.
func WithMaxCount(n int) Option {
	return func(c *Crawler) {
		c.maxCount = n
	}
}

// WithListingURL sets the listing page.
func WithListingURL(u string) Option {
	return func(c *Crawler) {
		c.listing = u
	}
}

// WithSelectors replaces the page selectors.
func WithSelectors(s config.Selectors) Option {
	return func(c *Crawler) {
		c.selectors = s
	}
}

// WithTiming replaces the delays.
func WithTiming(t config.Timing) Option {
	return func(c *Crawler) {
		c.timing = t
	}
}

// WithMaxScrollPolls bounds how often the listing is scrolled before the
// loaded part is used as is.
func WithMaxScrollPolls(n int) Option {
	return func(c *Crawler) {
		c.maxScrollPolls = n
	}
}

// New creates a Crawler driving session.
func New(session browser.Session, opts ...Option) *Crawler {
	c := &Crawler{
		session:   session,
		logger:    slog.New(slog.DiscardHandler),
		listing:   config.DefaultListingURL,
		years:     []int{0},
		selectors: config.DefaultSelectors(),
		timing:    config.DefaultTiming(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run crawls every year batch and returns the documents whose text was
// fetched, in discovery order. A link already collected by an earlier batch
// is not fetched again.
//
// Per-year and per-document failures are logged and skipped. If ctx is
// canceled, Run returns the documents collected so far and ctx.Err().
func (c *Crawler) Run(ctx context.Context) ([]*model.Document, error) {
	c.stats = model.CrawlStats{Years: make([]model.YearStats, 0, len(c.years))}
	documents := make([]*model.Document, 0)
	seen := make(map[string]bool)

	c.logger.Debug("parse process start", "listing", c.listing, "years", c.years, "max_count", c.maxCount)

	for _, year := range c.years {
		ys := model.YearStats{Year: year}
		var err error
		documents, err = c.runYear(ctx, year, &ys, documents, seen)
		c.stats.Years = append(c.stats.Years, ys)
		if err != nil {
			c.logger.Warn("crawl interrupted", "year", year, "collected", len(documents), "err", err)
			return documents, err
		}
		c.logger.Info("year batch finished",
			"year", year,
			"listed", ys.Listed,
			"kept", ys.Kept,
			"fetched", ys.Fetched,
		)
	}

	c.logger.Debug("parse process finished", "collected", len(documents))
	return documents, nil
}

// runYear handles one batch. It only returns context errors.
func (c *Crawler) runYear(ctx context.Context, year int, ys *model.YearStats, documents []*model.Document, seen map[string]bool) ([]*model.Document, error) {
	discovered, err := c.discoverLinks(ctx, year, ys)
	if err != nil {
		if ctx.Err() != nil {
			return documents, ctx.Err()
		}
		ys.DiscoveryError = err.Error()
		c.logger.Error("failed to discover links", "year", year, "err", err)
		return documents, nil
	}

	for _, doc := range discovered {
		if !doc.HasHTMLLink() {
			continue
		}
		if seen[doc.WebLink] {
			ys.Duplicates++
			c.logger.Debug("skip duplicate link", "url", doc.WebLink)
			continue
		}

		if err := c.FetchText(ctx, doc); err != nil {
			if ctx.Err() != nil {
				return documents, ctx.Err()
			}
			ys.FetchErrors++
			c.logger.Error("failed to fetch document", "url", doc.WebLink, "err", err)
			continue
		}

		seen[doc.WebLink] = true
		ys.Fetched++
		documents = append(documents, doc)
		c.logger.Info("found document", "doc", doc)
	}
	return documents, nil
}

// Stats returns the statistics of the last Run.
func (c *Crawler) Stats() model.CrawlStats {
	years := append([]model.YearStats(nil), c.stats.Years...)
	return model.CrawlStats{Years: years}
}

// scrollPollLimit returns how many times the listing is scrolled at most.
func (c *Crawler) scrollPollLimit() int {
	if c.maxScrollPolls > 0 {
		return c.maxScrollPolls
	}
	interval := c.timing.ScrollInterval
	if interval <= 0 {
		interval = time.Second
	}
	n := int(c.timing.PageLoadTimeout / interval)
	if n < 1 {
		n = 1
	}
	return n
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
