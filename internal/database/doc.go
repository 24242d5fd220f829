// Package database provides the SQLite run journal for ecbcrawl.
//
// The RunDB records one row per crawl run: when it ran, which years and
// cap it used, how many documents it collected and the per-year
// statistics. Documents themselves are handed to the host platform and are
// never stored here.
//
// The journal answers the question a bare document count cannot: did a run
// return nothing because nothing was published, or because the listing
// markup changed. The history command reads it.
//
// The database is a single file opened with modernc.org/sqlite, a CGO-free
// driver.
package database
