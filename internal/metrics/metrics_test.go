package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func sampleRun() *model.Run {
	run := model.NewRun()
	run.StartedAt = time.Unix(1700000000, 0)
	run.FinishedAt = run.StartedAt.Add(90 * time.Second)
	run.Harvests = []model.HarvestResult{
		{Source: "directory", CandidateCount: 12, Outcome: model.OutcomeOK},
		{Source: "crtsh", CandidateCount: 3, Failures: 2, Outcome: model.OutcomeDegraded},
	}
	run.Candidates = []string{"a", "b", "c", "d"}
	run.Normalized = model.DomainSetFromStrings("foo.ai", "bar.com", "gone.example")
	run.Decisions = []model.Decision{
		{Domain: "bar.com", Resolvable: true, Reason: model.ReasonBelowThreshold},
		{Domain: "foo.ai", Resolvable: true, Included: true, Reason: model.ReasonScore, ContentOutcome: model.OutcomeDegraded},
		{Domain: "gone.example", Reason: model.ReasonUnresolvable},
	}
	run.Final = model.DomainSetFromStrings("foo.ai")
	run.StepTimings = []model.StepTiming{
		{Name: "harvest", Elapsed: 80 * time.Second},
		{Name: "resolve", Elapsed: 1500 * time.Millisecond},
	}
	return run
}

func TestObserve(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe(sampleRun())

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"directory candidates", testutil.ToFloat64(r.harvested.WithLabelValues("directory")), 12},
		{"crtsh failures", testutil.ToFloat64(r.harvestFailures.WithLabelValues("crtsh")), 2},
		{"crtsh degraded", testutil.ToFloat64(r.harvestDegraded.WithLabelValues("crtsh")), 1},
		{"directory degraded", testutil.ToFloat64(r.harvestDegraded.WithLabelValues("directory")), 0},
		{"candidates", testutil.ToFloat64(r.candidates), 4},
		{"normalized", testutil.ToFloat64(r.normalized), 3},
		{"resolvable", testutil.ToFloat64(r.resolvable), 2},
		{"content degraded", testutil.ToFloat64(r.contentDegraded), 1},
		{"score decisions", testutil.ToFloat64(r.decisions.WithLabelValues("score", "true")), 1},
		{"final", testutil.ToFloat64(r.final), 1},
		{"duration", testutil.ToFloat64(r.duration), 90},
		{"harvest step", testutil.ToFloat64(r.stepDuration.WithLabelValues("harvest")), 80},
		{"resolve step", testutil.ToFloat64(r.stepDuration.WithLabelValues("resolve")), 1.5},
		{"last run", testutil.ToFloat64(r.lastRun), 1700000090},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	r := New()
	r.Observe(sampleRun())

	path := filepath.Join(t.TempDir(), FileName)
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"# TYPE aiblockfeed_final_domains gauge",
		"aiblockfeed_final_domains 1",
		`aiblockfeed_harvest_candidates{source="directory"} 12`,
		`aiblockfeed_decisions{included="false",reason="unresolvable"} 1`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q\n%s", want, content)
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()

	r := New()
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", FileName)); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
