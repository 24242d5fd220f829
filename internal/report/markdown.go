package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/ecbcrawl/internal/model"
)

// MarkdownWriter outputs results in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAlert(md, result)
	w.writeYears(md, result)
	w.writeCategories(md, result)
	w.writeDocuments(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("ECB Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + result.RunID + "`"},
			{"Listing", result.ListingURL},
			{"Started", result.StartedAt.Format(dateTimeFormat)},
			{"Duration", result.Duration().Round(time.Second).String()},
			{"Documents", strconv.Itoa(len(result.Documents))},
			{"Status", status(result)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert matching how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CrawlResult) {
	total := result.Stats.Totals()
	switch {
	case result.Canceled:
		md.Warningf("The run was canceled. %d document(s) were collected before it stopped.", len(result.Documents))
	case len(result.Documents) == 0 && result.Stats.HasAnomalies():
		md.Cautionf("No documents were collected and the listing showed problems. The page markup may have changed.")
	case len(result.Documents) == 0:
		md.Warningf("No documents were collected from %d listed entries.", total.Listed)
	case result.Stats.HasAnomalies():
		md.Importantf("Some year batches had listing problems. See the table below.")
	default:
		md.Tip("All listed HTML documents were collected.")
	}
	md.PlainText("")
}

// writeYears writes the per-year statistics table.
func (w *MarkdownWriter) writeYears(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Year Batches")
	md.PlainText("")

	if len(result.Stats.Years) == 0 {
		md.PlainText("No year batch ran.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(result.Stats.Years))
	for _, ys := range result.Stats.Years {
		notes := strings.Join(yearWarnings(ys), "; ")
		if notes == "" {
			notes = "-"
		}
		rows = append(rows, []string{
			yearLabel(ys.Year),
			strconv.Itoa(ys.Listed),
			strconv.Itoa(ys.Kept),
			strconv.Itoa(ys.NonHTML),
			strconv.Itoa(ys.Fetched),
			strconv.Itoa(ys.ExtractErrors + ys.FetchErrors),
			notes,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Year", "Listed", "Kept", "Non-HTML", "Fetched", "Errors", "Notes"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCategories writes a pie chart of documents per category.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, result *model.CrawlResult) {
	counts := make(map[string]int)
	for _, doc := range result.Documents {
		category, ok := doc.Category()
		if !ok {
			category = "Uncategorized"
		}
		counts[category]++
	}
	if len(counts) < 2 {
		return
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Documents by Category"),
		piechart.WithShowData(true),
	)
	for _, label := range labels {
		chart.LabelAndIntValue(label, uint64(counts[label]))
	}

	md.H2("Categories")
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDocuments writes the document table and text excerpts.
func (w *MarkdownWriter) writeDocuments(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Documents")
	md.PlainText("")

	if len(result.Documents) == 0 {
		md.PlainText("No documents collected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Documents))
	for i, doc := range result.Documents {
		category, ok := doc.Category()
		if !ok {
			category = "-"
		}
		rows[i] = []string{
			doc.PubDate.Format(dateFormat),
			fmt.Sprintf("[%s](%s)", escapeCell(truncateString(doc.Title, 80)), doc.WebLink),
			escapeCell(category),
			strconv.Itoa(textLength(doc)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Date", "Title", "Category", "Characters"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, doc := range result.Documents {
		if doc.Text != nil && *doc.Text != "" {
			md.Details(truncateString(doc.Title, 80), truncateString(*doc.Text, 500))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by ecbcrawl*")
}

// escapeCell keeps table cells on one line and escapes column separators.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
