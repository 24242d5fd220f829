// Package config provides configuration structures and utilities for ecbcrawl.
// It defines the listing source, the year batches, the page markup contract
// (selectors), the crawl delays and report and journal preferences.
package config
