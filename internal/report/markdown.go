package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for pull request comments and run archives.
type MarkdownWriter struct {
	baseWriter

	// listDomains appends the final domain list in a collapsible block.
	listDomains bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithDomainList controls whether the final domains are listed.
func WithDomainList(show bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.listDomains = show
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		listDomains: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	summary := NewSummary(run)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSources(md, summary)
	w.writeFunnel(md, summary)
	w.writeDecisions(md, summary)
	if w.listDomains {
		w.writeDomains(md, run.Final)
	}
	w.writeArtifacts(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *Summary) {
	md.H1("AI Block Feed Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", strconv.FormatFloat(s.ElapsedSeconds, 'f', 1, 64) + "s"},
			{"Status", w.getStatusText(s)},
			{"Final Domains", "**" + strconv.Itoa(s.Final) + "**"},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(s *Summary) string {
	switch s.Status {
	case StatusFailed:
		return "❌ Failed - " + s.Error
	case StatusDegraded:
		return "⚠️ Degraded (" + strings.Join(s.DegradedSources, ", ") + ")"
	default:
		return "✅ Complete"
	}
}

// writeSources writes one row per harvester.
func (w *MarkdownWriter) writeSources(md *markdown.Markdown, s *Summary) {
	md.H2("Sources")
	md.PlainText("")

	if len(s.Sources) == 0 {
		md.PlainText("No harvesters ran.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Sources))
	for i, h := range s.Sources {
		rows[i] = []string{
			h.Source,
			strconv.Itoa(h.CandidateCount),
			strconv.Itoa(h.Failures),
			h.Outcome.String(),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Candidates", "Failed Requests", "Outcome"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(s.DegradedSources) > 0 {
		md.Warningf(
			"%d source(s) were degraded. The feed was built from partial results.",
			len(s.DegradedSources),
		)
		md.PlainText("")
	}
}

// writeFunnel writes how many domains survived each stage.
func (w *MarkdownWriter) writeFunnel(md *markdown.Markdown, s *Summary) {
	md.H2("Funnel")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Count"},
		Rows: [][]string{
			{"Seed / Allow / Deny", strconv.Itoa(s.Seed) + " / " + strconv.Itoa(s.Allow) + " / " + strconv.Itoa(s.Deny)},
			{"Raw candidates", strconv.Itoa(s.Candidates)},
			{"Registrable domains", strconv.Itoa(s.Normalized)},
			{"Resolvable", strconv.Itoa(s.Resolvable)},
			{"Homepage fetch degraded", strconv.Itoa(s.ContentDegraded)},
			{"**Final**", "**" + strconv.Itoa(s.Final) + "**"},
		},
	})
	md.PlainText("")
}

// writeDecisions writes the decision breakdown and a pie chart of the
// reasons domains were included.
func (w *MarkdownWriter) writeDecisions(md *markdown.Markdown, s *Summary) {
	md.H2("Decisions")
	md.PlainText("")

	rows := make([][]string, 0, len(includedReasons)+len(excludedReasons))
	for _, r := range includedReasons {
		rows = append(rows, []string{"Included", string(r), strconv.Itoa(s.Included[r])})
	}
	for _, r := range excludedReasons {
		rows = append(rows, []string{"Excluded", string(r), strconv.Itoa(s.Excluded[r])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Result", "Reason", "Domains"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.Final > 0 {
		w.writePieChart(md, s)
	} else {
		md.Note("The feed is empty.")
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart for inclusion reasons.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Inclusion Reasons"),
		piechart.WithShowData(true),
	)

	for _, r := range includedReasons {
		if n := s.Included[r]; n > 0 {
			chart.LabelAndIntValue(string(r), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDomains writes the final feed inside a collapsible block.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, final model.DomainSet) {
	if final.Len() == 0 {
		return
	}

	md.H2("Domains")
	md.PlainText("")
	md.Details(
		strconv.Itoa(final.Len())+" domains",
		strings.Join(final.Strings(), "\n"),
	)
	md.PlainText("")
}

// writeArtifacts lists the files written by the run.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, s *Summary) {
	md.H2("Artifacts")
	md.PlainText("")

	if len(s.Artifacts) == 0 {
		md.PlainText("No files were written.")
		md.PlainText("")
		return
	}

	items := make([]string, len(s.Artifacts))
	for i, a := range s.Artifacts {
		items[i] = "`" + a + "`"
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [aiblockfeed](https://github.com/nao1215/aiblockfeed)*")
}
