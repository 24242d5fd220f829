// Package log builds the slog loggers used by ecbcrawl.
//
// The CompactHandler wraps a text or JSON handler and keeps crawl logs
// readable and safe to share:
//   - long string values (scraped body text) are truncated
//   - values of cookie, session and authorization attributes are masked
//     before they reach the output
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, false)
//	logger = logger.With("run", runID, "source", "ecb")
//	logger.Info("found document", "doc", doc)
//
// Components receive the logger explicitly; nothing in this package sets
// the process-wide default.
package log
