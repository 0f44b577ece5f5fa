package report

import (
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// Summary is the condensed view of a run that every writer renders.
type Summary struct {
	StartedAt       time.Time             `json:"started_at"`
	ElapsedSeconds  float64               `json:"elapsed_seconds"`
	Status          string                `json:"status"`
	Error           string                `json:"error,omitempty"`
	Sources         []model.HarvestResult `json:"sources"`
	DegradedSources []string              `json:"degraded_sources"`
	Seed            int                   `json:"seed"`
	Allow           int                   `json:"allow"`
	Deny            int                   `json:"deny"`
	Candidates      int                   `json:"candidates"`
	Normalized      int                   `json:"normalized"`
	Resolvable      int                   `json:"resolvable"`
	ContentDegraded int                   `json:"content_degraded"`
	Included        map[model.Reason]int  `json:"included"`
	Excluded        map[model.Reason]int  `json:"excluded"`
	Final           int                   `json:"final"`
	Artifacts       []string              `json:"artifacts"`
	Steps           []model.StepTiming    `json:"steps"`
}

// Status values.
const (
	StatusComplete = "complete"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// NewSummary derives a Summary from run.
func NewSummary(run *model.Run) *Summary {
	s := &Summary{
		StartedAt:       run.StartedAt,
		ElapsedSeconds:  run.Elapsed().Seconds(),
		Sources:         run.Harvests,
		DegradedSources: run.DegradedSources(),
		Seed:            run.Lists.Seed.Len(),
		Allow:           run.Lists.Allow.Len(),
		Deny:            run.Lists.Deny.Len(),
		Candidates:      len(run.Candidates),
		Normalized:      run.Normalized.Len(),
		Resolvable:      run.ResolvableCount(),
		Included:        make(map[model.Reason]int),
		Excluded:        make(map[model.Reason]int),
		Final:           run.Final.Len(),
		Artifacts:       run.Artifacts,
		Steps:           run.StepTimings,
	}

	for _, d := range run.Decisions {
		if d.Included {
			s.Included[d.Reason]++
		} else {
			s.Excluded[d.Reason]++
		}
		if d.Resolvable && d.ContentOutcome == model.OutcomeDegraded {
			s.ContentDegraded++
		}
	}

	switch {
	case run.Error != nil:
		s.Status = StatusFailed
		s.Error = run.Error.Error()
	case len(s.DegradedSources) > 0:
		s.Status = StatusDegraded
	default:
		s.Status = StatusComplete
	}

	return s
}

// includedReasons and excludedReasons fix the row order of the decision
// tables.
var (
	includedReasons = []model.Reason{model.ReasonScore, model.ReasonSeed, model.ReasonDeny}
	excludedReasons = []model.Reason{model.ReasonBelowThreshold, model.ReasonUnresolvable, model.ReasonAllow}
)
