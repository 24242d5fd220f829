package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/ecbcrawl/internal/model"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05 MST"
	ruleWidth      = 70
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds a text excerpt to each document.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeYears(&sb, result)
	w.writeDocuments(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                         ECB CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	total := result.Stats.Totals()
	fmt.Fprintf(sb, "Run:        %s\n", result.RunID)
	fmt.Fprintf(sb, "Listing:    %s\n", result.ListingURL)
	fmt.Fprintf(sb, "Started:    %s\n", result.StartedAt.Format(dateTimeFormat))
	fmt.Fprintf(sb, "Duration:   %s\n", result.Duration().Round(time.Second))
	fmt.Fprintf(sb, "Documents:  %d of %d listed\n", len(result.Documents), total.Listed)
	fmt.Fprintf(sb, "Status:     %s\n", status(result))
	sb.WriteString("\n")
}

// writeYears writes per-year statistics and anomalies.
func (w *SimpleWriter) writeYears(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Stats.Years) == 0 {
		return
	}

	writeSection(sb, "YEAR BATCHES")

	for _, ys := range result.Stats.Years {
		fmt.Fprintf(sb, "  [%s] listed %d, kept %d, fetched %d\n", yearLabel(ys.Year), ys.Listed, ys.Kept, ys.Fetched)
		if ys.NonHTML > 0 {
			fmt.Fprintf(sb, "    skipped non-HTML: %d\n", ys.NonHTML)
		}
		if ys.ExtractErrors > 0 {
			fmt.Fprintf(sb, "    extraction errors: %d\n", ys.ExtractErrors)
		}
		if ys.FetchErrors > 0 {
			fmt.Fprintf(sb, "    fetch errors: %d\n", ys.FetchErrors)
		}
		if ys.Duplicates > 0 {
			fmt.Fprintf(sb, "    duplicates: %d\n", ys.Duplicates)
		}
		for _, warning := range yearWarnings(ys) {
			fmt.Fprintf(sb, "    ! %s\n", warning)
		}
	}
	sb.WriteString("\n")
}

// writeDocuments lists the collected documents.
func (w *SimpleWriter) writeDocuments(sb *strings.Builder, result *model.CrawlResult) {
	writeSection(sb, "DOCUMENTS")

	if len(result.Documents) == 0 {
		sb.WriteString("  No documents collected\n\n")
		return
	}

	for _, doc := range result.Documents {
		fmt.Fprintf(sb, "  * %s  %s\n", doc.PubDate.Format(dateFormat), doc.Title)
		if category, ok := doc.Category(); ok {
			fmt.Fprintf(sb, "    Category: %s\n", category)
		}
		fmt.Fprintf(sb, "    Link: %s\n", doc.WebLink)
		fmt.Fprintf(sb, "    Text: %d characters\n", textLength(doc))
		if w.verbose && doc.Text != nil {
			fmt.Fprintf(sb, "    Excerpt: %s\n", truncateString(strings.ReplaceAll(*doc.Text, "\n", " "), 120))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by ecbcrawl\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// yearWarnings lists the conditions of a batch that may hide documents.
func yearWarnings(ys model.YearStats) []string {
	var warnings []string
	if ys.DiscoveryError != "" {
		warnings = append(warnings, "discovery failed: "+ys.DiscoveryError)
	}
	if ys.SectionMismatch {
		warnings = append(warnings, "date and content counts differ, section discarded")
	}
	if ys.YearFilterFailed {
		warnings = append(warnings, "year filter could not be applied")
	}
	if ys.ScrollBoundHit {
		warnings = append(warnings, "listing was still loading when scrolling stopped")
	}
	if ys.CapReached {
		warnings = append(warnings, "max count reached")
	}
	return warnings
}
