package model

import "time"

// Run collects everything one invocation of the pipeline produces.
// Pipeline steps fill it in order; nothing in it survives the process.
type Run struct {
	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is set by the pipeline once the last step returns.
	FinishedAt time.Time

	// Lists are the seed, allow and deny lists loaded from the data directory.
	Lists Lists

	// Harvests holds one result per harvester, in execution order.
	Harvests []HarvestResult

	// Candidates is the raw union of seed entries and harvested hostnames.
	Candidates []string

	// Normalized is the set of registrable domains derived from Candidates.
	Normalized DomainSet

	// Decisions holds one entry per normalized domain, sorted by domain.
	Decisions []Decision

	// Final is the authoritative feed handed to the emitters.
	Final DomainSet

	// Artifacts lists the files written by the emit step.
	Artifacts []string

	// PerformedSteps lists the names of completed pipeline steps.
	PerformedSteps []string

	// StepTimings has one entry per started step, including a failed one.
	StepTimings []StepTiming

	// Error is the error that stopped the run, if any.
	Error error
}

// StepTiming is how long one pipeline step took.
type StepTiming struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed"`
}

// NewRun creates an empty run stamped with the current time.
func NewRun() *Run {
	return &Run{
		StartedAt:  time.Now(),
		Harvests:   make([]HarvestResult, 0),
		Candidates: make([]string, 0),
		Decisions:  make([]Decision, 0),
		Artifacts:  make([]string, 0),
	}
}

// Elapsed returns the run duration, or the time since start if unfinished.
func (r *Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// IncludedBy counts decisions that included a domain for the given reason.
func (r *Run) IncludedBy(reason Reason) int {
	n := 0
	for _, d := range r.Decisions {
		if d.Included && d.Reason == reason {
			n++
		}
	}
	return n
}

// ResolvableCount counts decisions whose domain resolved.
func (r *Run) ResolvableCount() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Resolvable {
			n++
		}
	}
	return n
}

// DegradedSources returns the names of harvesters that did not finish cleanly.
func (r *Run) DegradedSources() []string {
	out := make([]string, 0)
	for _, h := range r.Harvests {
		if h.Outcome != OutcomeOK {
			out = append(out, h.Source)
		}
	}
	return out
}
