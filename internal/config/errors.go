package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can check them
// with errors.Is().
var (
	// ErrInvalidListingURL is returned when the listing URL is not an
	// absolute http(s) URL.
	ErrInvalidListingURL = errors.New("invalid listing URL: must be an absolute http(s) URL")

	// ErrInvalidMaxCount is returned when the max count is negative.
	// Use 0 for no limit.
	ErrInvalidMaxCount = errors.New("invalid max count: must be non-negative")

	// ErrInvalidYear is returned when a year is outside the range the listing
	// covers. Use 0 for the unfiltered listing.
	ErrInvalidYear = errors.New("invalid year: must be 0 or between 1998 and 2100")

	// ErrInvalidTimeout is returned when the page load or click timeout is
	// not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a settle delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingSessionModes is returned when --static and --remote-url
	// are both specified.
	ErrConflictingSessionModes = errors.New("conflicting session modes: --static and --remote-url cannot be used together")

	// ErrEmptySelector is returned when a required selector is empty.
	ErrEmptySelector = errors.New("empty selector")
)
