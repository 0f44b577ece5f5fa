// Package metrics exposes the outcome of a run as Prometheus metrics in
// node_exporter textfile-collector format.
package metrics

import (
	"fmt"
	"time"

	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// FileName is the default textfile name.
const FileName = "metrics.prom"

// Recorder holds the metrics of a single run on its own registry, so that
// the textfile contains nothing but this run.
type Recorder struct {
	registry *prometheus.Registry

	harvested       *prometheus.GaugeVec
	harvestFailures *prometheus.GaugeVec
	harvestDegraded *prometheus.GaugeVec
	candidates      prometheus.Gauge
	normalized      prometheus.Gauge
	resolvable      prometheus.Gauge
	contentDegraded prometheus.Gauge
	decisions       *prometheus.GaugeVec
	final           prometheus.Gauge
	duration        prometheus.Gauge
	stepDuration    *prometheus.GaugeVec
	lastRun         prometheus.Gauge
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		harvested: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiblockfeed_harvest_candidates",
				Help: "Raw candidates produced by each harvester",
			},
			[]string{"source"},
		),
		harvestFailures: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiblockfeed_harvest_failures",
				Help: "Failed requests per harvester",
			},
			[]string{"source"},
		),
		harvestDegraded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiblockfeed_harvest_degraded",
				Help: "1 if the harvester finished degraded, 0 otherwise",
			},
			[]string{"source"},
		),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_candidates",
			Help: "Raw candidates after the seed union",
		}),
		normalized: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_normalized_domains",
			Help: "Registrable domains after normalization",
		}),
		resolvable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_resolvable_domains",
			Help: "Normalized domains with an A or AAAA record",
		}),
		contentDegraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_content_fetch_degraded",
			Help: "Resolvable domains whose homepage could not be fetched",
		}),
		decisions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiblockfeed_decisions",
				Help: "Policy decisions by reason",
			},
			[]string{"reason", "included"},
		),
		final: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_final_domains",
			Help: "Domains in the emitted feed",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_run_duration_seconds",
			Help: "Wall time of the run",
		}),
		stepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aiblockfeed_step_duration_seconds",
				Help: "Wall time of each pipeline step",
			},
			[]string{"step"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiblockfeed_last_run_timestamp_seconds",
			Help: "Unix time the run finished",
		}),
	}

	r.registry.MustRegister(
		r.harvested, r.harvestFailures, r.harvestDegraded,
		r.candidates, r.normalized, r.resolvable, r.contentDegraded,
		r.decisions, r.final, r.duration, r.stepDuration, r.lastRun,
	)

	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe sets every metric from a finished run.
func (r *Recorder) Observe(run *model.Run) {
	for _, h := range run.Harvests {
		r.harvested.WithLabelValues(h.Source).Set(float64(h.CandidateCount))
		r.harvestFailures.WithLabelValues(h.Source).Set(float64(h.Failures))
		degraded := 0.0
		if h.Outcome != model.OutcomeOK {
			degraded = 1
		}
		r.harvestDegraded.WithLabelValues(h.Source).Set(degraded)
	}

	r.candidates.Set(float64(len(run.Candidates)))
	r.normalized.Set(float64(run.Normalized.Len()))
	r.resolvable.Set(float64(run.ResolvableCount()))

	contentDegraded := 0
	for _, d := range run.Decisions {
		if d.Resolvable && d.ContentOutcome == model.OutcomeDegraded {
			contentDegraded++
		}
		r.decisions.WithLabelValues(string(d.Reason), fmt.Sprint(d.Included)).Inc()
	}
	r.contentDegraded.Set(float64(contentDegraded))

	r.final.Set(float64(run.Final.Len()))
	for _, st := range run.StepTimings {
		r.stepDuration.WithLabelValues(st.Name).Set(st.Elapsed.Seconds())
	}
	// The metrics step runs before the pipeline stamps FinishedAt.
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	r.duration.Set(finished.Sub(run.StartedAt).Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
