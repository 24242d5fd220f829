package model

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// HTMLSuffix is the path suffix a document link must carry for its page to
// be scraped. Links to PDFs, spreadsheets and other attachments are dropped
// during discovery.
const HTMLSuffix = ".html"

// CategoryKey is the OtherData key holding the listing's category label.
const CategoryKey = "category"

// ErrTextAlreadySet is returned by SetText when the document body was
// already recorded. Text and load date are written exactly once.
var ErrTextAlreadySet = errors.New("document text already set")

// Document is one publication record.
//
// A Document is created during link discovery with its title, link,
// publication date and optional category. It is mutated once when its body
// text is fetched (Text and LoadDate) and never again afterwards.
type Document struct {
	// ID is assigned by the host platform. It is always nil at crawl time.
	ID *string `json:"id"`

	// Title is the listing title with whitespace collapsed.
	Title string `json:"title"`

	// Abstract is part of the platform record shape but unused by this source.
	Abstract *string `json:"abstract"`

	// Text is the scraped body text. Nil until the document page was fetched.
	Text *string `json:"text"`

	// WebLink is the absolute URL of the document page.
	// It is unique within a crawl.
	WebLink string `json:"web_link"`

	// LocalLink is part of the platform record shape but unused by this source.
	LocalLink *string `json:"local_link"`

	// OtherData holds free-form auxiliary data, currently only the category.
	OtherData map[string]string `json:"other_data"`

	// PubDate is the publication date shown on the listing.
	PubDate time.Time `json:"pub_date"`

	// LoadDate is when the body text was fetched. Nil until then.
	LoadDate *time.Time `json:"load_date"`
}

// NewDocument creates a discovered document without body text.
func NewDocument(title, webLink string, pubDate time.Time) *Document {
	return &Document{
		Title:   strings.Join(strings.Fields(title), " "),
		WebLink: webLink,
		PubDate: pubDate,
	}
}

// SetCategory records the listing category label.
// Empty labels are ignored.
func (d *Document) SetCategory(category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}
	if d.OtherData == nil {
		d.OtherData = make(map[string]string)
	}
	d.OtherData[CategoryKey] = category
}

// Category returns the category label if one was recorded.
func (d *Document) Category() (string, bool) {
	category, ok := d.OtherData[CategoryKey]
	return category, ok
}

// HasHTMLLink reports whether WebLink points to an HTML page.
// Only the URL path is inspected, case-insensitively.
func (d *Document) HasHTMLLink() bool {
	return IsHTMLLink(d.WebLink)
}

// IsHTMLLink reports whether link is an absolute http(s) URL whose path ends
// with HTMLSuffix.
func IsHTMLLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), HTMLSuffix)
}

// SetText records the body text and the load date.
// It returns ErrTextAlreadySet on a second call.
func (d *Document) SetText(text string, loadedAt time.Time) error {
	if d.LoadDate != nil {
		return ErrTextAlreadySet
	}
	d.Text = &text
	d.LoadDate = &loadedAt
	return nil
}

// Loaded reports whether the body text was fetched.
func (d *Document) Loaded() bool {
	return d.Text != nil && d.LoadDate != nil
}

// LogValue implements slog.LogValuer so a document can be logged as a
// single attribute.
func (d *Document) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("title", d.Title),
		slog.String("web_link", d.WebLink),
		slog.Time("pub_date", d.PubDate),
	}
	if category, ok := d.Category(); ok {
		attrs = append(attrs, slog.String("category", category))
	}
	if d.Text != nil {
		attrs = append(attrs, slog.Int("text_length", len(*d.Text)))
	}
	return slog.GroupValue(attrs...)
}
