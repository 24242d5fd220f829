package crawler

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/ecbcrawl/internal/model"
)

// footnoteSeparator joins the body text and the footnotes.
const footnoteSeparator = "\n\n"

// FetchText opens the document page and records its body text and load
// date. The footnotes section is appended when present and not empty.
//
// The document is left untouched on error.
func (c *Crawler) FetchText(ctx context.Context, doc *model.Document) error {
	if !doc.HasHTMLLink() {
		return fmt.Errorf("%w: %s", ErrNotHTML, doc.WebLink)
	}

	if err := c.session.Navigate(ctx, doc.WebLink); err != nil {
		return err
	}
	c.logger.Debug("entered on web page", "url", doc.WebLink)

	if err := sleep(ctx, c.timing.DocumentLoadDelay); err != nil {
		return err
	}

	content, err := c.session.Find(ctx, c.selectors.Content)
	if err != nil {
		return fmt.Errorf("failed to find content section: %w", err)
	}
	text, err := content.Text(ctx)
	if err != nil {
		return fmt.Errorf("failed to read content section: %w", err)
	}

	footnotes, found, err := c.session.Lookup(ctx, c.selectors.Footnotes)
	if err != nil {
		c.logger.Debug("failed to look up footnotes", "url", doc.WebLink, "err", err)
	} else if found {
		notes, err := footnotes.Text(ctx)
		if err != nil {
			c.logger.Debug("failed to read footnotes", "url", doc.WebLink, "err", err)
		} else if strings.TrimSpace(notes) != "" {
			text += footnoteSeparator + notes
		}
	}

	return doc.SetText(norm.NFC.String(text), c.now())
}
