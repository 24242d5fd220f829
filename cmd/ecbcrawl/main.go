// Package main provides the entry point for the ecbcrawl CLI.
//
// ecbcrawl collects publications from the European Central Bank
// "publications by date" listing. It opens the listing in a browser, scrolls
// until every entry is loaded, and fetches the text of each HTML publication.
//
// Usage:
//
//	ecbcrawl crawl --year 2024 --max-count 10
//	ecbcrawl history
//
// See --help for all available options.
package main

// main is the entry point for ecbcrawl.
func main() {
	Execute()
}
