package report

import (
	"io"
	"strconv"

	"github.com/nao1215/ecbcrawl/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the crawl result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status describes how a run ended.
func status(result *model.CrawlResult) string {
	switch {
	case result.Canceled:
		return "Canceled (partial results)"
	case len(result.Documents) == 0 && result.Stats.HasAnomalies():
		return "No documents (listing problems, see per-year statistics)"
	case len(result.Documents) == 0:
		return "No documents"
	case result.Stats.HasAnomalies():
		return "Complete with warnings"
	default:
		return "Complete"
	}
}

// yearLabel renders year 0 as "all".
func yearLabel(year int) string {
	if year == 0 {
		return "all"
	}
	return strconv.Itoa(year)
}

// textLength returns the length of a document's text in runes.
func textLength(doc *model.Document) int {
	if doc.Text == nil {
		return 0
	}
	return len([]rune(*doc.Text))
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
