package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display and log archives.
type SimpleWriter struct {
	baseWriter

	// verbose adds one line per excluded domain.
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

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	summary := NewSummary(run)

	var sb strings.Builder
	w.writeHeader(&sb, summary)
	w.writeSources(&sb, summary)
	w.writeDecisions(&sb, summary)
	if w.verbose {
		w.writeExcluded(&sb, run.Decisions)
		w.writeSteps(&sb, summary)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        AI BLOCK FEED REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Started:        %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %.1fs\n", s.ElapsedSeconds)
	switch s.Status {
	case StatusFailed:
		fmt.Fprintf(sb, "Status:         FAILED - %s\n", s.Error)
	case StatusDegraded:
		fmt.Fprintf(sb, "Status:         DEGRADED (%s)\n", strings.Join(s.DegradedSources, ", "))
	default:
		sb.WriteString("Status:         Complete\n")
	}
	fmt.Fprintf(sb, "Final domains:  %d\n\n", s.Final)
}

func (w *SimpleWriter) writeSources(sb *strings.Builder, s *Summary) {
	writeSection(sb, "SOURCES")

	if len(s.Sources) == 0 {
		sb.WriteString("  No harvesters ran\n\n")
		return
	}
	for _, h := range s.Sources {
		fmt.Fprintf(sb, "  %-16s %6d candidates  %3d failed  %s\n",
			h.Source, h.CandidateCount, h.Failures, h.Outcome)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDecisions(sb *strings.Builder, s *Summary) {
	writeSection(sb, "DECISIONS")

	fmt.Fprintf(sb, "  Candidates:       %d\n", s.Candidates)
	fmt.Fprintf(sb, "  Normalized:       %d\n", s.Normalized)
	fmt.Fprintf(sb, "  Resolvable:       %d\n", s.Resolvable)
	sb.WriteString("\n")
	for _, r := range includedReasons {
		fmt.Fprintf(sb, "  [+] %-16s %d\n", r, s.Included[r])
	}
	for _, r := range excludedReasons {
		fmt.Fprintf(sb, "  [-] %-16s %d\n", r, s.Excluded[r])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeExcluded(sb *strings.Builder, decisions []model.Decision) {
	writeSection(sb, "EXCLUDED")

	n := 0
	for _, d := range decisions {
		if d.Included {
			continue
		}
		n++
		fmt.Fprintf(sb, "  %-40s %-16s score %s\n", d.Domain, d.Reason, d.Score)
	}
	if n == 0 {
		sb.WriteString("  None\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSteps(sb *strings.Builder, s *Summary) {
	writeSection(sb, "STEPS")

	for _, st := range s.Steps {
		fmt.Fprintf(sb, "  %-16s %s\n", st.Name, st.Elapsed.Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
