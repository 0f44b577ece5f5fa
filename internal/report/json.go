package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the output.
	version string

	// decisions includes the per-domain decision list.
	decisions bool
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

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// WithDecisions includes every per-domain decision in the output.
func WithDecisions(include bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.decisions = include
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		decisions:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	// Version is the aiblockfeed version that generated this report.
	Version string `json:"version,omitempty"`

	// Summary holds the run totals.
	Summary *Summary `json:"summary"`

	// Domains is the final feed, sorted.
	Domains []string `json:"domains"`

	// Decisions lists how each normalized domain was treated.
	Decisions []model.Decision `json:"decisions,omitempty"`
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	doc := JSONReport{
		Version: w.version,
		Summary: NewSummary(run),
		Domains: run.Final.Strings(),
	}
	if w.decisions {
		doc.Decisions = run.Decisions
	}

	return w.writeJSON(doc)
}

// writeJSON marshals the given value to JSON and writes it to the output.
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

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
