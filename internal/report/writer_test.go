package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// createTestRun creates a finished run with sample data for testing.
func createTestRun() *model.Run {
	run := model.NewRun()
	run.StartedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run.FinishedAt = run.StartedAt.Add(42 * time.Second)

	run.Lists = model.Lists{
		Seed:  model.DomainSetFromStrings("openai.com"),
		Allow: model.DomainSetFromStrings("github.com"),
		Deny:  model.DomainSetFromStrings("blocked.example"),
	}
	run.Harvests = []model.HarvestResult{
		{Source: "directory", CandidateCount: 40, Outcome: model.OutcomeOK},
		{Source: "crtsh", CandidateCount: 7, Failures: 3, Outcome: model.OutcomeDegraded},
	}
	run.Candidates = []string{"openai.com", "chat.openai.com", "foo.ai", "bar.com", "github.com", "blocked.example"}
	run.Normalized = model.DomainSetFromStrings("openai.com", "foo.ai", "bar.com", "github.com", "blocked.example")
	run.Decisions = []model.Decision{
		{Domain: "bar.com", Resolvable: true, Score: 0, Reason: model.ReasonBelowThreshold},
		{Domain: "blocked.example", Included: true, Reason: model.ReasonDeny},
		{Domain: "foo.ai", Resolvable: true, Score: 10, Included: true, Reason: model.ReasonScore, Matched: []string{"brand:gpt", "name:ai", "tld:ai"}},
		{Domain: "github.com", Reason: model.ReasonAllow},
		{Domain: "openai.com", Resolvable: true, Score: 3, Included: true, Reason: model.ReasonSeed, ContentOutcome: model.OutcomeDegraded},
	}
	run.Final = model.DomainSetFromStrings("blocked.example", "foo.ai", "openai.com")
	run.Artifacts = []string{"output/domains.txt", "output/rpz.zone"}
	run.StepTimings = []model.StepTiming{
		{Name: "harvest", Elapsed: 30 * time.Second},
		{Name: "resolve", Elapsed: 11500 * time.Millisecond},
	}

	return run
}

// TestNewSummary tests the totals shared by every writer.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts decisions by reason", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(createTestRun())

		if s.Final != 3 {
			t.Errorf("Final = %d, want 3", s.Final)
		}
		if s.Resolvable != 3 {
			t.Errorf("Resolvable = %d, want 3", s.Resolvable)
		}
		if s.Included[model.ReasonScore] != 1 || s.Included[model.ReasonSeed] != 1 || s.Included[model.ReasonDeny] != 1 {
			t.Errorf("Included = %v", s.Included)
		}
		if s.Excluded[model.ReasonAllow] != 1 || s.Excluded[model.ReasonBelowThreshold] != 1 {
			t.Errorf("Excluded = %v", s.Excluded)
		}
		if s.ContentDegraded != 1 {
			t.Errorf("ContentDegraded = %d, want 1", s.ContentDegraded)
		}
		if s.ElapsedSeconds != 42 {
			t.Errorf("ElapsedSeconds = %v, want 42", s.ElapsedSeconds)
		}
	})

	t.Run("status reflects degraded sources", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(createTestRun())
		if s.Status != StatusDegraded {
			t.Errorf("Status = %q, want %q", s.Status, StatusDegraded)
		}
		if len(s.DegradedSources) != 1 || s.DegradedSources[0] != "crtsh" {
			t.Errorf("DegradedSources = %v, want [crtsh]", s.DegradedSources)
		}
	})

	t.Run("status reflects a failed run", func(t *testing.T) {
		t.Parallel()

		run := createTestRun()
		run.Error = errors.New("seed list not found")

		s := NewSummary(run)
		if s.Status != StatusFailed || s.Error != "seed list not found" {
			t.Errorf("Status/Error = %q/%q", s.Status, s.Error)
		}
	})

	t.Run("clean run is complete", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun()
		if s := NewSummary(run); s.Status != StatusComplete {
			t.Errorf("Status = %q, want %q", s.Status, StatusComplete)
		}
	})
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "AI BLOCK FEED REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "DEGRADED (crtsh)") {
			t.Error("expected output to name the degraded source")
		}
		if !strings.Contains(output, "Final domains:  3") {
			t.Error("expected output to contain the final count")
		}
	})

	t.Run("writes sources and decisions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "directory") || !strings.Contains(output, "crtsh") {
			t.Error("expected output to list every source")
		}
		if !strings.Contains(output, "[+] seed") {
			t.Error("expected output to contain the seed reason")
		}
		if strings.Contains(output, "EXCLUDED") {
			t.Error("expected excluded section to be hidden without verbose")
		}
	})

	t.Run("verbose mode lists excluded domains", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "EXCLUDED") {
			t.Error("expected excluded section")
		}
		if !strings.Contains(output, "github.com") || !strings.Contains(output, "bar.com") {
			t.Error("expected excluded domains in output")
		}
		if !strings.Contains(output, "STEPS") || !strings.Contains(output, "11.5s") {
			t.Error("expected step timings in verbose output")
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		run := model.NewRun()
		run.Error = errors.New("failed to write plain")

		var buf bytes.Buffer
		_, err := NewSimpleWriter(&buf).Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "FAILED - failed to write plain") {
			t.Error("expected error message in output")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc struct {
			Version string `json:"version"`
			Summary struct {
				Status   string         `json:"status"`
				Final    int            `json:"final"`
				Included map[string]int `json:"included"`
				Sources  []struct {
					Source  string `json:"source"`
					Outcome string `json:"outcome"`
				} `json:"sources"`
			} `json:"summary"`
			Domains   []string `json:"domains"`
			Decisions []struct {
				Domain string  `json:"domain"`
				Score  float64 `json:"score"`
				Reason string  `json:"reason"`
			} `json:"decisions"`
		}
		if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if doc.Version != "v1.2.3" {
			t.Errorf("version = %q", doc.Version)
		}
		if doc.Summary.Status != StatusDegraded || doc.Summary.Final != 3 {
			t.Errorf("summary = %+v", doc.Summary)
		}
		if doc.Summary.Included["score"] != 1 {
			t.Errorf("included = %v", doc.Summary.Included)
		}
		if len(doc.Summary.Sources) != 2 || doc.Summary.Sources[1].Outcome != "degraded" {
			t.Errorf("sources = %+v", doc.Summary.Sources)
		}
		if strings.Join(doc.Domains, ",") != "blocked.example,foo.ai,openai.com" {
			t.Errorf("domains = %v", doc.Domains)
		}
		if len(doc.Decisions) != 5 || doc.Decisions[2].Domain != "foo.ai" || doc.Decisions[2].Score != 1.0 {
			t.Errorf("decisions = %+v", doc.Decisions)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewJSONWriter(&buf).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact output on a single line")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("decisions can be omitted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := NewJSONWriter(&buf, WithDecisions(false)).Write(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "\"decisions\"") {
			t.Error("expected no decisions in output")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, run *model.Run, opts ...MarkdownWriterOption) string {
		t.Helper()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf, opts...).Write(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected a non-zero byte count")
		}
		return buf.String()
	}

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestRun())
		if !strings.Contains(output, "# AI Block Feed Report") {
			t.Error("expected H1 header")
		}
		if !strings.Contains(output, "Degraded (crtsh)") {
			t.Error("expected degraded status")
		}
	})

	t.Run("writes sources table and warning", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestRun())
		if !strings.Contains(output, "## Sources") {
			t.Error("expected sources section")
		}
		if !strings.Contains(output, "crtsh") || !strings.Contains(output, "degraded") {
			t.Error("expected crtsh row")
		}
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected warning alert for degraded sources")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestRun())
		if !strings.Contains(output, "pie") {
			t.Error("expected mermaid pie chart")
		}
		if !strings.Contains(output, "Inclusion Reasons") {
			t.Error("expected pie chart title")
		}
	})

	t.Run("lists domains in details", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestRun())
		if !strings.Contains(output, "<details>") || !strings.Contains(output, "foo.ai") {
			t.Error("expected collapsible domain list")
		}

		hidden := write(t, createTestRun(), WithDomainList(false))
		if strings.Contains(hidden, "## Domains") {
			t.Error("expected domain list to be omitted")
		}
	})

	t.Run("empty feed gets a note", func(t *testing.T) {
		t.Parallel()

		output := write(t, model.NewRun())
		if !strings.Contains(output, "The feed is empty.") {
			t.Error("expected empty-feed note")
		}
		if strings.Contains(output, "Inclusion Reasons") {
			t.Error("expected no pie chart for an empty feed")
		}
		if !strings.Contains(output, "No files were written.") {
			t.Error("expected no-artifacts text")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestRun())
		if !strings.Contains(output, "https://github.com/nao1215/aiblockfeed") {
			t.Error("expected footer link")
		}
	})
}
