package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/ecbcrawl/internal/model"
)

// JSONWriter outputs results in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// documentsOnly writes the bare document array the host platform
	// consumes instead of the wrapped result.
	documentsOnly bool

	// version is recorded in the wrapped result.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithDocumentsOnly writes only the document array.
func WithDocumentsOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.documentsOnly = true
	}
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a result with output metadata.
type JSONReport struct {
	// Version is the ecbcrawl version that generated this report.
	Version string `json:"version,omitempty"`

	// Status is a one-line summary of how the run ended.
	Status string `json:"status"`

	// Total sums the per-year statistics.
	Total model.YearStats `json:"total"`

	*model.CrawlResult
}

// Write outputs the result in JSON format.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	if w.documentsOnly {
		docs := result.Documents
		if docs == nil {
			docs = []*model.Document{}
		}
		return w.writeJSON(docs)
	}

	return w.writeJSON(&JSONReport{
		Version:     w.version,
		Status:      status(result),
		Total:       result.Stats.Totals(),
		CrawlResult: result,
	})
}

// writeJSON encodes v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
