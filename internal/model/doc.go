// Package model defines the data structures shared by the crawler, the
// report writers and the run journal.
//
// This package contains the following main types:
//   - Document: one publication record in the shape the host platform consumes
//   - YearStats and CrawlStats: counters describing what a run saw and skipped
//   - CrawlResult: a finished run (documents plus statistics)
//
// The models are serializable to JSON for report output and for the run
// journal.
package model
