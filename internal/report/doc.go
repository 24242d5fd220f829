// Package report writes crawl results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text output for terminal display
//   - JSONWriter: documents in the platform record shape plus statistics
//   - MarkdownWriter: GitHub Flavored Markdown summary with tables and alerts
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
