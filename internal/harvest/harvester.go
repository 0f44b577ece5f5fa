package harvest

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// Harvester produces raw candidate hostnames from one source.
type Harvester interface {
	// Name returns the source name used in logs, reports and metrics.
	Name() string

	// Harvest fetches the source and returns what it found.
	// It must not return early on individual request failures.
	Harvest(ctx context.Context) model.HarvestResult
}

// collector accumulates candidates and failures for one harvest.
type collector struct {
	source   string
	started  time.Time
	seen     map[string]bool
	items    []string
	failures int
	lastErr  error
	logger   *slog.Logger
}

// newCollector starts timing a harvest for source.
func newCollector(source string, logger *slog.Logger) *collector {
	return &collector{
		source:  source,
		started: time.Now(),
		seen:    make(map[string]bool),
		items:   make([]string, 0),
		logger:  logger,
	}
}

// add records a candidate once.
func (c *collector) add(candidate string) {
	if candidate == "" || c.seen[candidate] {
		return
	}
	c.seen[candidate] = true
	c.items = append(c.items, candidate)
}

// fail records a recovered request failure.
func (c *collector) fail(target string, err error) {
	c.failures++
	c.lastErr = err
	c.logger.Debug("harvest request failed",
		"source", c.source,
		"target", target,
		"error", err,
	)
}

// result builds the HarvestResult. Candidates are sorted so that the
// result does not depend on page ordering.
func (c *collector) result() model.HarvestResult {
	slices.Sort(c.items)

	outcome := model.OutcomeOK
	if c.failures > 0 {
		outcome = model.OutcomeDegraded
	}

	return model.HarvestResult{
		Source:         c.source,
		Candidates:     c.items,
		CandidateCount: len(c.items),
		Outcome:        outcome,
		Failures:       c.failures,
		Err:            c.lastErr,
		Elapsed:        time.Since(c.started),
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
