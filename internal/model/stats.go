package model

// YearStats describes what one year batch of a crawl saw and skipped.
// Year 0 is the unfiltered listing.
type YearStats struct {
	Year int `json:"year"`

	// Listed is the number of date/content pairs found in the listing section.
	Listed int `json:"listed"`
	// Kept is the number of documents returned by discovery.
	Kept int `json:"kept"`
	// NonHTML counts links dropped because they do not point to an HTML page.
	NonHTML int `json:"non_html"`
	// ExtractErrors counts pairs skipped because a field could not be read.
	ExtractErrors int `json:"extract_errors"`

	// SectionMismatch is set when date and content counts differ and the
	// whole section was discarded.
	SectionMismatch bool `json:"section_mismatch"`
	// CapReached is set when discovery stopped at the max count.
	CapReached bool `json:"cap_reached"`
	// YearFilterFailed is set when the year could not be selected and the
	// unfiltered listing was used.
	YearFilterFailed bool `json:"year_filter_failed"`
	// ScrollBoundHit is set when the scroll loop stopped at its poll limit
	// before the listing stopped growing.
	ScrollBoundHit bool `json:"scroll_bound_hit"`

	// Fetched counts documents whose text was scraped.
	Fetched int `json:"fetched"`
	// FetchErrors counts documents dropped because their page failed.
	FetchErrors int `json:"fetch_errors"`
	// Duplicates counts links already collected by an earlier batch.
	Duplicates int `json:"duplicates"`

	// DiscoveryError holds the error that aborted discovery, if any.
	DiscoveryError string `json:"discovery_error,omitempty"`
}

// Dropped returns the number of listed items that did not make it into the
// result.
func (s YearStats) Dropped() int {
	return s.Listed - s.Fetched
}

// CrawlStats aggregates the per-year statistics of a run in batch order.
type CrawlStats struct {
	Years []YearStats `json:"years"`
}

// Totals sums all year batches. The Year field of the result is zero and
// the flags are set when any batch set them.
func (s CrawlStats) Totals() YearStats {
	var total YearStats
	for _, y := range s.Years {
		total.Listed += y.Listed
		total.Kept += y.Kept
		total.NonHTML += y.NonHTML
		total.ExtractErrors += y.ExtractErrors
		total.Fetched += y.Fetched
		total.FetchErrors += y.FetchErrors
		total.Duplicates += y.Duplicates
		total.SectionMismatch = total.SectionMismatch || y.SectionMismatch
		total.CapReached = total.CapReached || y.CapReached
		total.YearFilterFailed = total.YearFilterFailed || y.YearFilterFailed
		total.ScrollBoundHit = total.ScrollBoundHit || y.ScrollBoundHit
		if total.DiscoveryError == "" {
			total.DiscoveryError = y.DiscoveryError
		}
	}
	return total
}

// HasAnomalies reports whether any batch hit a condition that may hide
// published documents: a structural mismatch, a failed year filter, an
// unfinished scroll or a discovery error.
func (s CrawlStats) HasAnomalies() bool {
	for _, y := range s.Years {
		if y.SectionMismatch || y.YearFilterFailed || y.ScrollBoundHit || y.DiscoveryError != "" {
			return true
		}
	}
	return false
}
