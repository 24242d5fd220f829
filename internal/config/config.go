package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The delays mirror how long the listing page needs to settle after each
// interaction; shortening them trades completeness for speed.
const (
	// DefaultListingURL is the ECB "publications by date" listing.
	DefaultListingURL = "https://www.ecb.europa.eu/pub/pubbydate/html/index.en.html"

	// AppName is the application name used for XDG directory paths.
	AppName = "ecbcrawl"

	// DefaultPageLoadTimeout bounds a single page navigation. It also bounds
	// the total time spent scrolling the lazily loaded listing.
	DefaultPageLoadTimeout = 40 * time.Second

	// DefaultInitialLoadDelay is the wait after opening the listing page.
	DefaultInitialLoadDelay = 2 * time.Second

	// DefaultScrollInterval is the wait between two height checks while
	// scrolling the listing.
	DefaultScrollInterval = 1 * time.Second

	// DefaultYearFilterDelay is the wait after selecting a year.
	DefaultYearFilterDelay = 3 * time.Second

	// DefaultDocumentLoadDelay is the wait after opening a document page.
	DefaultDocumentLoadDelay = 2 * time.Second

	// DefaultClickTimeout bounds clicks and dropdown selection.
	DefaultClickTimeout = 5 * time.Second

	// DefaultUserAgent is sent by the HTTP session. The browser session keeps
	// its own user agent unless one is configured.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultHistoryLimit is how many runs the history command lists.
	DefaultHistoryLimit = 20
)

// Timing groups the delays of a crawl.
// A zero delay skips the wait.
type Timing struct {
	PageLoadTimeout   time.Duration
	InitialLoadDelay  time.Duration
	ScrollInterval    time.Duration
	YearFilterDelay   time.Duration
	DocumentLoadDelay time.Duration
	ClickTimeout      time.Duration
}

// DefaultTiming returns the production delays.
func DefaultTiming() Timing {
	return Timing{
		PageLoadTimeout:   DefaultPageLoadTimeout,
		InitialLoadDelay:  DefaultInitialLoadDelay,
		ScrollInterval:    DefaultScrollInterval,
		YearFilterDelay:   DefaultYearFilterDelay,
		DocumentLoadDelay: DefaultDocumentLoadDelay,
		ClickTimeout:      DefaultClickTimeout,
	}
}

// Validate checks that all timeouts are positive and no delay is negative.
func (t Timing) Validate() error {
	if t.PageLoadTimeout <= 0 || t.ClickTimeout <= 0 {
		return ErrInvalidTimeout
	}
	for _, d := range []time.Duration{t.InitialLoadDelay, t.ScrollInterval, t.YearFilterDelay, t.DocumentLoadDelay} {
		if d < 0 {
			return ErrInvalidDelay
		}
	}
	return nil
}

// Config holds all configuration options for ecbcrawl.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed to the commands explicitly.
type Config struct {
	// ListingURL is the page listing the publications.
	ListingURL string

	// Years are the year batches to crawl in order. A 0 entry crawls the
	// listing without a year filter.
	Years []int

	// MaxCount caps the documents kept per year batch. 0 means unlimited.
	MaxCount int

	// Timing holds the page load timeout and the settle delays.
	Timing Timing

	// Selectors locate the parts of the listing and document pages.
	Selectors Selectors

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// Headless hides the browser window.
	Headless bool

	// BrowserBin is the Chrome executable to launch. Empty lets the launcher
	// find one.
	BrowserBin string

	// RemoteURL is the DevTools URL of a running browser to connect to
	// instead of launching one.
	RemoteURL string

	// Static crawls with plain HTTP requests instead of a browser. Lazily
	// loaded listing entries are not seen in this mode.
	Static bool

	// UserAgent is the User-Agent header used by the session.
	UserAgent string

	// JSONReport enables JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty writes to stdout.
	ReportFile string

	// DBDir is the directory of the run journal database.
	// Defaults to the XDG data directory (~/.local/share/ecbcrawl on Linux).
	DBDir string

	// SaveToDB records the run statistics in the journal.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the usual locations.
	ConfigFilePath string

	// File is the loaded configuration file, if any.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ListingURL: DefaultListingURL,
		Years:      []int{0},
		Timing:     DefaultTiming(),
		Selectors:  DefaultSelectors(),
		Headless:   true,
		UserAgent:  DefaultUserAgent,
		DBDir:      XDGDataDir(),
		SaveToDB:   true,
	}
}

// XDGDataDir returns the XDG data directory for ecbcrawl.
// On Linux: ~/.local/share/ecbcrawl
// On macOS: ~/Library/Application Support/ecbcrawl
// On Windows: %LOCALAPPDATA%\ecbcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ecbcrawl.
// On Linux: ~/.config/ecbcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile overlays the values set in f onto c. Flags are applied by the
// caller afterwards so they win over the file.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	if f.ListingURL != "" {
		c.ListingURL = f.ListingURL
	}
	if len(f.Years) > 0 {
		c.Years = append([]int(nil), f.Years...)
	}
	if f.MaxCount != nil {
		c.MaxCount = *f.MaxCount
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	c.Selectors = c.Selectors.Merge(f.Selectors)
	c.Timing = f.Timing.apply(c.Timing)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package sentinel errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ListingURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidListingURL
	}

	if c.MaxCount < 0 {
		return ErrInvalidMaxCount
	}

	for _, y := range c.Years {
		if y != 0 && (y < MinYear || y > MaxYear) {
			return ErrInvalidYear
		}
	}

	if err := c.Timing.Validate(); err != nil {
		return err
	}

	if err := c.Selectors.Validate(); err != nil {
		return err
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Static && c.RemoteURL != "" {
		return ErrConflictingSessionModes
	}

	return nil
}

// Year bounds accepted by Validate. The listing starts in 1998.
const (
	MinYear = 1998
	MaxYear = 2100
)
