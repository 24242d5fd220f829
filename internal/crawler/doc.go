// Package crawler collects publications from the ECB "publications by date"
// listing.
//
// # Architecture
//
// The Crawler drives a browser.Session through two phases per year batch:
//
//  1. Discovery: open the listing, dismiss the cookie modal, optionally
//     select a year, scroll the lazily loaded list until it stops growing,
//     then read the date/content pairs of the first listing section.
//  2. Text fetching: open every discovered HTML document and scrape its body
//     section plus footnotes.
//
// All work happens on the calling goroutine, one page at a time. The
// session is owned by the Crawler for the duration of Run.
//
// # Failure handling
//
// Per-item problems (a pair with a missing field, a page without a content
// section) are logged and the item is skipped. A section whose date and
// content counts differ is discarded as a whole. None of these fail the
// run; they are counted in the statistics returned by Stats. The only error
// Run returns is a canceled context, together with the documents collected
// so far.
//
// # Usage
//
//	c := crawler.New(session,
//		crawler.WithLogger(logger),
//		crawler.WithYears([]int{2023, 2024}),
//		crawler.WithMaxCount(50),
//	)
//	docs, err := c.Run(ctx)
//	stats := c.Stats()
package crawler
