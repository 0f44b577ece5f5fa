package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/aiblockfeed/internal/feed"
	"github.com/nao1215/aiblockfeed/internal/harvest"
	"github.com/nao1215/aiblockfeed/internal/lists"
	"github.com/nao1215/aiblockfeed/internal/metrics"
	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/nao1215/aiblockfeed/internal/normalize"
	"github.com/nao1215/aiblockfeed/internal/policy"
)

// LoadListsStep reads the seed, allow and deny lists.
type LoadListsStep struct {
	dataDir string
	opts    []lists.Option
}

// NewLoadListsStep creates a step that loads lists from dataDir.
func NewLoadListsStep(dataDir string, opts ...lists.Option) *LoadListsStep {
	return &LoadListsStep{dataDir: dataDir, opts: opts}
}

// Name returns the step name.
func (s *LoadListsStep) Name() string {
	return "load_lists"
}

// Do loads the lists into run.Lists. A missing seed list is fatal.
func (s *LoadListsStep) Do(_ context.Context, run *model.Run) error {
	l, err := lists.LoadAll(s.dataDir, s.opts...)
	if err != nil {
		return err
	}
	run.Lists = l
	return nil
}

// HarvestStep runs every harvester, one after another, and unions their
// candidates with the seed list.
type HarvestStep struct {
	harvesters []harvest.Harvester
	logger     *slog.Logger
}

// HarvestStepOption configures a HarvestStep.
type HarvestStepOption func(*HarvestStep)

// WithHarvestLogger sets a custom logger for the harvest step.
func WithHarvestLogger(logger *slog.Logger) HarvestStepOption {
	return func(s *HarvestStep) {
		s.logger = logger
	}
}

// NewHarvestStep creates a harvest step.
func NewHarvestStep(harvesters []harvest.Harvester, opts ...HarvestStepOption) *HarvestStep {
	s := &HarvestStep{
		harvesters: harvesters,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *HarvestStep) Name() string {
	return "harvest"
}

// Do records one result per harvester. Degraded sources are logged at Warn
// and otherwise ignored; only cancellation stops the step.
func (s *HarvestStep) Do(ctx context.Context, run *model.Run) error {
	seen := make(map[string]struct{})
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		run.Candidates = append(run.Candidates, c)
	}

	for _, c := range run.Lists.Seed.Strings() {
		add(c)
	}

	for _, h := range s.harvesters {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := time.Now()
		result := h.Harvest(ctx)
		result.Elapsed = time.Since(started)

		if result.Outcome != model.OutcomeOK {
			s.logger.Warn("source degraded",
				"source", result.Source,
				"failures", result.Failures,
				"candidates", result.CandidateCount,
				"error", result.Err,
			)
		}

		run.Harvests = append(run.Harvests, result)
		for _, c := range result.Candidates {
			add(c)
		}
	}

	slices.Sort(run.Candidates)
	return ctx.Err()
}

// NormalizeStep reduces candidates to registrable domains.
type NormalizeStep struct {
	normalizer *normalize.Normalizer
}

// NewNormalizeStep creates a normalize step.
func NewNormalizeStep(n *normalize.Normalizer) *NormalizeStep {
	return &NormalizeStep{normalizer: n}
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do fills run.Normalized.
func (s *NormalizeStep) Do(_ context.Context, run *model.Run) error {
	run.Normalized = s.normalizer.NormalizeAll(run.Candidates)
	return nil
}

// ResolveStep applies the inclusion policy.
type ResolveStep struct {
	resolver *policy.Resolver
}

// NewResolveStep creates a resolve step.
func NewResolveStep(r *policy.Resolver) *ResolveStep {
	return &ResolveStep{resolver: r}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do fills run.Final and run.Decisions.
func (s *ResolveStep) Do(ctx context.Context, run *model.Run) error {
	final, decisions, err := s.resolver.Resolve(ctx, run.Normalized, run.Lists)
	if err != nil {
		return err
	}
	run.Final = final
	run.Decisions = decisions
	return nil
}

// EmitStep writes the final set in every configured format.
type EmitStep struct {
	outputDir string
	emitters  []feed.Emitter
}

// NewEmitStep creates an emit step. With no emitters it uses feed.All().
func NewEmitStep(outputDir string, emitters ...feed.Emitter) *EmitStep {
	if len(emitters) == 0 {
		emitters = feed.All()
	}
	return &EmitStep{outputDir: outputDir, emitters: emitters}
}

// Name returns the step name.
func (s *EmitStep) Name() string {
	return "emit"
}

// Do writes the artifacts. Any write error is fatal.
func (s *EmitStep) Do(_ context.Context, run *model.Run) error {
	artifacts, err := feed.WriteAll(s.outputDir, run.Final, s.emitters...)
	for _, a := range artifacts {
		run.Artifacts = append(run.Artifacts, a.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to emit feed: %w", err)
	}
	return nil
}

// MetricsStep writes a Prometheus textfile describing the run.
type MetricsStep struct {
	path string
}

// NewMetricsStep creates a step that writes metrics to path.
func NewMetricsStep(path string) *MetricsStep {
	return &MetricsStep{path: path}
}

// Name returns the step name.
func (s *MetricsStep) Name() string {
	return "metrics"
}

// Do observes the run so far and writes the textfile.
func (s *MetricsStep) Do(_ context.Context, run *model.Run) error {
	recorder := metrics.New()
	recorder.Observe(run)
	if err := recorder.WriteTextfile(s.path); err != nil {
		return err
	}
	run.Artifacts = append(run.Artifacts, s.path)
	return nil
}
