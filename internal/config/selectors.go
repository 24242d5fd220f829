package config

import "fmt"

// Selectors are the CSS selectors describing the markup of the listing and
// document pages. The page structure is an external contract that can
// change without notice; overriding selectors in the config file adapts the
// crawler without a rebuild.
type Selectors struct {
	// LazyLoad is the sentinel element at the bottom of the listing. Scrolling
	// it into view loads the next entries.
	LazyLoad string `yaml:"lazyLoad,omitempty"`

	// Wrapper is the container whose height grows as entries load.
	Wrapper string `yaml:"wrapper,omitempty"`

	// Section is a definition-list section inside the wrapper. Only the first
	// one is read.
	Section string `yaml:"section,omitempty"`

	// DateMarker and ContentBlock are paired by position within a section.
	DateMarker   string `yaml:"dateMarker,omitempty"`
	ContentBlock string `yaml:"contentBlock,omitempty"`

	// Title, Link and Category are looked up inside a content block.
	Title    string `yaml:"title,omitempty"`
	Link     string `yaml:"link,omitempty"`
	Category string `yaml:"category,omitempty"`

	// YearDropdown is the select element filtering the listing by year.
	YearDropdown string `yaml:"yearDropdown,omitempty"`

	// CookieAccept is the button dismissing the cookie consent modal.
	CookieAccept string `yaml:"cookieAccept,omitempty"`

	// Content is the body text section of a document page.
	Content string `yaml:"content,omitempty"`

	// Footnotes is the optional footnotes section of a document page.
	Footnotes string `yaml:"footnotes,omitempty"`
}

// DefaultSelectors returns the selectors matching the current ECB markup.
func DefaultSelectors() Selectors {
	return Selectors{
		LazyLoad:     ".lazy-load-hit",
		Wrapper:      ".dl-wrapper",
		Section:      "dl",
		DateMarker:   "dt",
		ContentBlock: "dd",
		Title:        ".title",
		Link:         "a",
		Category:     ".category",
		YearDropdown: "#year",
		CookieAccept: "#cookieConsent > div:nth-of-type(1) > div > a:nth-of-type(1)",
		Content:      ".section",
		Footnotes:    ".footnotes",
	}
}

// Merge returns s with every non-empty field of override applied.
func (s Selectors) Merge(override Selectors) Selectors {
	pick := func(base, o string) string {
		if o != "" {
			return o
		}
		return base
	}
	return Selectors{
		LazyLoad:     pick(s.LazyLoad, override.LazyLoad),
		Wrapper:      pick(s.Wrapper, override.Wrapper),
		Section:      pick(s.Section, override.Section),
		DateMarker:   pick(s.DateMarker, override.DateMarker),
		ContentBlock: pick(s.ContentBlock, override.ContentBlock),
		Title:        pick(s.Title, override.Title),
		Link:         pick(s.Link, override.Link),
		Category:     pick(s.Category, override.Category),
		YearDropdown: pick(s.YearDropdown, override.YearDropdown),
		CookieAccept: pick(s.CookieAccept, override.CookieAccept),
		Content:      pick(s.Content, override.Content),
		Footnotes:    pick(s.Footnotes, override.Footnotes),
	}
}

// Validate checks that every selector is set.
func (s Selectors) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"lazyLoad", s.LazyLoad},
		{"wrapper", s.Wrapper},
		{"section", s.Section},
		{"dateMarker", s.DateMarker},
		{"contentBlock", s.ContentBlock},
		{"title", s.Title},
		{"link", s.Link},
		{"category", s.Category},
		{"yearDropdown", s.YearDropdown},
		{"cookieAccept", s.CookieAccept},
		{"content", s.Content},
		{"footnotes", s.Footnotes},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrEmptySelector, f.name)
		}
	}
	return nil
}
