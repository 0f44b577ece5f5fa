package policy

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default size of the per-domain worker pool.
const DefaultWorkers = 8

// Verifier reports whether a domain resolves.
type Verifier interface {
	Verify(ctx context.Context, d model.Domain) model.Verification
}

// Scorer computes the heuristic signal for a domain.
type Scorer interface {
	Score(ctx context.Context, d model.Domain) model.Signal
}

// Resolver merges verification, scores and the operator lists into the
// final domain set.
type Resolver struct {
	verifier Verifier
	scorer   Scorer
	workers  int
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers sets the maximum number of domains evaluated concurrently.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver.
func NewResolver(verifier Verifier, scorer Scorer, opts ...Option) *Resolver {
	r := &Resolver{
		verifier: verifier,
		scorer:   scorer,
		workers:  DefaultWorkers,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Resolve evaluates every normalized domain and returns the final set along
// with one decision per domain, sorted by domain. Deny entries that were
// never harvested get a decision too. The only error is context
// cancellation.
func (r *Resolver) Resolve(ctx context.Context, normalized model.DomainSet, lists model.Lists) (model.DomainSet, []model.Decision, error) {
	domains := normalized.Sorted()

	r.logger.Info("resolving domains",
		"total", len(domains),
		"workers", r.workers,
	)
	startTime := time.Now()

	// One slot per domain; each goroutine writes only its own index.
	decisions := make([]model.Decision, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, d := range domains {
		i, d := i, d
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			decisions[i] = r.evaluate(gctx, d, lists)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.DomainSet{}, nil, err
	}
	// A cancellation that landed mid-evaluation shows up as failed lookups,
	// not as an errgroup error.
	if err := ctx.Err(); err != nil {
		return model.DomainSet{}, nil, err
	}

	included := make([]model.Domain, 0, len(decisions))
	for _, dec := range decisions {
		if dec.Included {
			included = append(included, dec.Domain)
		}
	}

	final := model.NewDomainSet(included...).
		Union(lists.Deny).
		Difference(lists.Allow)

	decisions = appendDenyOnly(decisions, normalized, lists)

	r.logger.Info("resolution complete",
		"total", len(domains),
		"included", final.Len(),
		"elapsed", time.Since(startTime),
	)

	return final, decisions, nil
}

// evaluate decides a single domain. Allow members are not looked up at all.
func (r *Resolver) evaluate(ctx context.Context, d model.Domain, lists model.Lists) model.Decision {
	if lists.Allow.Contains(d) {
		return model.Decision{Domain: d, Reason: model.ReasonAllow}
	}

	v := r.verifier.Verify(ctx, d)
	dec := model.Decision{
		Domain:     d,
		Resolvable: v.Resolvable,
		Family:     v.Family,
	}

	if v.Resolvable {
		sig := r.scorer.Score(ctx, d)
		dec.Score = sig.Score
		dec.ContentOutcome = sig.ContentOutcome
		dec.Matched = sig.Matched
	}

	switch {
	case lists.Deny.Contains(d):
		dec.Included, dec.Reason = true, model.ReasonDeny
	case !v.Resolvable:
		dec.Reason = model.ReasonUnresolvable
	case dec.Score.MeetsThreshold():
		dec.Included, dec.Reason = true, model.ReasonScore
	case lists.Seed.Contains(d):
		dec.Included, dec.Reason = true, model.ReasonSeed
	default:
		dec.Reason = model.ReasonBelowThreshold
	}

	r.logger.Debug("domain evaluated",
		"domain", d,
		"resolvable", dec.Resolvable,
		"score", dec.Score.String(),
		"reason", dec.Reason,
	)

	return dec
}

// appendDenyOnly records Deny entries that were not among the normalized
// candidates and keeps the result sorted by domain.
func appendDenyOnly(decisions []model.Decision, normalized model.DomainSet, lists model.Lists) []model.Decision {
	extra := lists.Deny.Difference(normalized)
	if extra.Len() == 0 {
		return decisions
	}

	for _, d := range extra.Sorted() {
		dec := model.Decision{Domain: d, Included: true, Reason: model.ReasonDeny}
		if lists.Allow.Contains(d) {
			dec.Included, dec.Reason = false, model.ReasonAllow
		}
		decisions = append(decisions, dec)
	}

	slices.SortFunc(decisions, func(a, b model.Decision) int {
		return cmp.Compare(a.Domain, b.Domain)
	})
	return decisions
}
