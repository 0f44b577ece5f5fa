package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// Step is one stage of a feed build.
type Step interface {
	// Do advances run. A returned error aborts the build; anything the
	// build can live without is recorded in run instead.
	Do(ctx context.Context, run *model.Run) error

	// Name identifies the step in logs, timings and the report.
	Name() string
}

// Pipeline runs its steps in order and stops at the first error.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline, keeping their order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against run. Cancellation is checked before each
// step; steps that block honour ctx themselves.
//
// On return run.FinishedAt is set, run.StepTimings holds one entry per step
// that was started, and run.Error holds the error that stopped the build.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) (err error) {
	defer func() {
		run.FinishedAt = time.Now()
		run.Error = err
	}()

	p.logger.Debug("pipeline started", "steps", p.StepNames())

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "before", step.Name(), "reason", err)
			return err
		}

		started := time.Now()
		err := step.Do(ctx, run)
		elapsed := time.Since(started)
		run.StepTimings = append(run.StepTimings, model.StepTiming{
			Name:    step.Name(),
			Elapsed: elapsed,
		})

		if err != nil {
			p.logger.Error("step failed", "step", step.Name(), "elapsed", elapsed, "error", err)
			return err
		}

		p.logger.Info("step completed", "step", step.Name(), "elapsed", elapsed)
		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
