package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/ecbcrawl/internal/browser"
	"github.com/nao1215/ecbcrawl/internal/model"
)

var errMissingHref = errors.New("link has no href")

// DiscoverLinks loads the listing for year (0 for no filter) and returns
// the HTML documents it lists, without body text.
//
// At most maxCount documents are returned when a cap is set. A listing
// whose date and content counts differ yields no documents.
func (c *Crawler) DiscoverLinks(ctx context.Context, year int) ([]*model.Document, error) {
	ys := model.YearStats{Year: year}
	return c.discoverLinks(ctx, year, &ys)
}

func (c *Crawler) discoverLinks(ctx context.Context, year int, ys *model.YearStats) ([]*model.Document, error) {
	documents := make([]*model.Document, 0)

	if err := c.openListing(ctx); err != nil {
		return documents, err
	}

	if year != 0 {
		if err := c.selectYear(ctx, year); err != nil {
			if ctx.Err() != nil {
				return documents, ctx.Err()
			}
			ys.YearFilterFailed = true
			c.logger.Debug("failed to select year", "year", year, "err", err)
		}
		if err := sleep(ctx, c.timing.YearFilterDelay); err != nil {
			return documents, err
		}
	}

	sentinel, err := c.session.Find(ctx, c.selectors.LazyLoad)
	if err != nil {
		return documents, fmt.Errorf("failed to find lazy load sentinel: %w", err)
	}
	wrapper, err := c.session.Find(ctx, c.selectors.Wrapper)
	if err != nil {
		return documents, fmt.Errorf("failed to find listing wrapper: %w", err)
	}
	sections, err := wrapper.FindAll(ctx, c.selectors.Section)
	if err != nil {
		return documents, fmt.Errorf("failed to find listing sections: %w", err)
	}
	if len(sections) == 0 {
		c.logger.Debug("no listing sections", "year", year)
		return documents, nil
	}

	if err := c.scrollToEnd(ctx, sentinel, wrapper, ys); err != nil {
		return documents, err
	}

	// Entries of all dates load into the first section.
	section := sections[0]
	dates, err := section.FindAll(ctx, c.selectors.DateMarker)
	if err != nil {
		return documents, fmt.Errorf("failed to find date markers: %w", err)
	}
	blocks, err := section.FindAll(ctx, c.selectors.ContentBlock)
	if err != nil {
		return documents, fmt.Errorf("failed to find content blocks: %w", err)
	}
	ys.Listed = len(blocks)

	if len(dates) != len(blocks) {
		ys.SectionMismatch = true
		c.logger.Warn("section parse error: date and content counts differ",
			"year", year,
			"dates", len(dates),
			"contents", len(blocks),
		)
		return documents, nil
	}

	for i := range blocks {
		doc, err := c.extractDocument(ctx, dates[i], blocks[i])
		if err != nil {
			if ctx.Err() != nil {
				return documents, ctx.Err()
			}
			ys.ExtractErrors++
			c.logger.Error("failed to extract document", "year", year, "index", i, "err", err)
			continue
		}

		if !doc.HasHTMLLink() {
			ys.NonHTML++
			c.logger.Debug("skip non-HTML link", "url", doc.WebLink)
			continue
		}

		documents = append(documents, doc)
		ys.Kept++
		if c.maxCount > 0 && len(documents) >= c.maxCount {
			ys.CapReached = true
			c.logger.Debug("max count documents reached", "year", year, "max_count", c.maxCount)
			return documents, nil
		}
	}

	return documents, nil
}

// openListing navigates to the listing and dismisses the cookie modal.
func (c *Crawler) openListing(ctx context.Context) error {
	if err := c.session.Navigate(ctx, c.listing); err != nil {
		return fmt.Errorf("failed to open listing: %w", err)
	}
	c.logger.Debug("entered on web page", "url", c.listing)

	if err := sleep(ctx, c.timing.InitialLoadDelay); err != nil {
		return err
	}

	c.dismissCookieModal(ctx)
	return ctx.Err()
}

// dismissCookieModal clicks the consent button if the modal is shown.
func (c *Crawler) dismissCookieModal(ctx context.Context) {
	button, found, err := c.session.Lookup(ctx, c.selectors.CookieAccept)
	if err != nil {
		c.logger.Error("failed to look up cookie modal", "url", c.listing, "err", err)
		return
	}
	if !found {
		c.logger.Debug("cookie modal not found", "url", c.listing)
		return
	}
	if err := button.Click(ctx); err != nil {
		c.logger.Error("failed to accept cookie modal", "url", c.listing, "err", err)
		return
	}
	c.logger.Debug("passed cookie modal", "url", c.listing)
}

func (c *Crawler) selectYear(ctx context.Context, year int) error {
	value := strconv.Itoa(year)
	if err := c.session.SelectOption(ctx, c.selectors.YearDropdown, value); err != nil {
		return err
	}
	c.logger.Debug("selected year", "year", value, "selector", c.selectors.YearDropdown)
	return nil
}

// scrollToEnd scrolls the sentinel into view until the wrapper stops
// growing or the poll limit is reached.
func (c *Crawler) scrollToEnd(ctx context.Context, sentinel, wrapper browser.Element, ys *model.YearStats) error {
	limit := c.scrollPollLimit()
	last := 0.0

	for poll := 0; ; poll++ {
		if poll >= limit {
			ys.ScrollBoundHit = true
			c.logger.Warn("listing still growing after scroll limit, using loaded entries",
				"polls", limit,
				"height", last,
			)
			return nil
		}

		if err := sentinel.ScrollIntoView(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("failed to scroll listing", "err", err)
			return nil
		}

		height, err := wrapper.Height(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("failed to read listing height", "err", err)
			return nil
		}
		if height <= last {
			c.logger.Debug("listing fully loaded", "polls", poll+1, "height", height)
			return nil
		}
		last = height

		if err := sleep(ctx, c.timing.ScrollInterval); err != nil {
			return err
		}
	}
}

// extractDocument builds a document from one date marker and its content
// block.
func (c *Crawler) extractDocument(ctx context.Context, date, block browser.Element) (*model.Document, error) {
	titleEl, err := block.Find(ctx, c.selectors.Title)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	title, err := titleEl.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}

	linkEl, err := titleEl.Find(ctx, c.selectors.Link)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	href, ok, err := linkEl.Attr(ctx, "href")
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	if !ok || strings.TrimSpace(href) == "" {
		return nil, fmt.Errorf("link: %w", errMissingHref)
	}
	link, err := c.resolveLink(href)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}

	dateText, err := date.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	pubDate, err := parseDate(dateText)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}

	doc := model.NewDocument(title, link, pubDate)

	categoryEl, found, err := block.Lookup(ctx, c.selectors.Category)
	if err == nil && found {
		if category, err := categoryEl.Text(ctx); err == nil {
			doc.SetCategory(category)
		}
	}

	return doc, nil
}

// resolveLink makes href absolute against the listing URL.
func (c *Crawler) resolveLink(href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	base, err := url.Parse(c.listing)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
