package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlResult is a finished crawl run.
type CrawlResult struct {
	// RunID identifies the run in logs and in the run journal.
	RunID string `json:"run_id"`

	ListingURL string `json:"listing_url"`
	Years      []int  `json:"years"`
	MaxCount   int    `json:"max_count"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Documents are the collected records in discovery order.
	Documents []*Document `json:"documents"`

	Stats CrawlStats `json:"stats"`

	// Canceled is set when the run was interrupted and Documents is partial.
	Canceled bool `json:"canceled,omitempty"`
}

// NewCrawlResult starts a result with a fresh run ID.
func NewCrawlResult(listingURL string, years []int, maxCount int) *CrawlResult {
	return &CrawlResult{
		RunID:      uuid.NewString(),
		ListingURL: listingURL,
		Years:      append([]int(nil), years...),
		MaxCount:   maxCount,
		StartedAt:  time.Now(),
		Documents:  []*Document{},
	}
}

// Finish records the documents and statistics and stamps the finish time.
func (r *CrawlResult) Finish(docs []*Document, stats CrawlStats) {
	if docs == nil {
		docs = []*Document{}
	}
	r.Documents = docs
	r.Stats = stats
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took. It is zero for unfinished runs.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
