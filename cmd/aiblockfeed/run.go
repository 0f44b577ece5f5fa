package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/aiblockfeed/internal/config"
	"github.com/nao1215/aiblockfeed/internal/feed"
	"github.com/nao1215/aiblockfeed/internal/fetch"
	"github.com/nao1215/aiblockfeed/internal/harvest"
	"github.com/nao1215/aiblockfeed/internal/lists"
	"github.com/nao1215/aiblockfeed/internal/metrics"
	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/nao1215/aiblockfeed/internal/normalize"
	"github.com/nao1215/aiblockfeed/internal/pipeline"
	"github.com/nao1215/aiblockfeed/internal/policy"
	"github.com/nao1215/aiblockfeed/internal/report"
	"github.com/nao1215/aiblockfeed/internal/score"
	"github.com/nao1215/aiblockfeed/internal/verify"
	"github.com/spf13/cobra"
)

// defaultPageInterval paces directory and GitHub topic page fetches.
const defaultPageInterval = time.Second

// runRootCmd executes one build.
func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBuild(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Flags that were set explicitly win over the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	if cfg.DataDir, err = flags.GetString("data-dir"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.DNSTimeout, err = flags.GetDuration("dns-timeout"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = flags.GetDuration("http-timeout"); err != nil {
		return nil, err
	}
	if cfg.Resolvers, err = flags.GetStringArray("resolver"); err != nil {
		return nil, err
	}
	if cfg.PSLFile, err = flags.GetString("psl-file"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.Metrics, err = flags.GetBool("metrics"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit --config must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file, flags.Changed)

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// runBuild wires every component from cfg and runs the pipeline once.
func runBuild(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting build",
		"dataDir", cfg.DataDir,
		"outputDir", cfg.OutputDir,
		"workers", cfg.Workers,
	)

	normalizer, err := buildNormalizer(cfg)
	if err != nil {
		return err
	}

	harvesters := buildHarvesters(cfg, logger)
	if len(harvesters) == 0 {
		logger.Warn("every harvesting source is disabled, only the seed list is used")
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewLoadListsStep(cfg.DataDir, lists.WithLogger(logger)),
		pipeline.NewHarvestStep(harvesters, pipeline.WithHarvestLogger(logger)),
		pipeline.NewNormalizeStep(normalizer),
		pipeline.NewResolveStep(buildResolver(cfg, logger)),
		pipeline.NewEmitStep(cfg.OutputDir, buildEmitters(cfg)...),
	)
	if cfg.Metrics {
		p.AddStep(pipeline.NewMetricsStep(filepath.Join(cfg.OutputDir, metrics.FileName)))
	}

	run := model.NewRun()
	runErr := p.Execute(ctx, run)

	// The report is written even for a failed run so the failure is visible.
	if err := outputReport(cfg, run, stdout); err != nil {
		logger.Error("failed to write report", "error", err)
	}

	if runErr != nil {
		return runErr
	}

	// Keep stdout parseable when the report itself goes there.
	if cfg.ReportFile != "" || (!cfg.JSONReport && !cfg.MarkdownReport) {
		fmt.Fprintf(stdout, "Total domains: %d\n", run.Final.Len())
	}
	return nil
}

// buildNormalizer uses the bundled public suffix list unless a file is given.
func buildNormalizer(cfg *config.Config) (*normalize.Normalizer, error) {
	if cfg.PSLFile == "" {
		return normalize.New(nil), nil
	}
	list, err := normalize.LoadList(cfg.PSLFile)
	if err != nil {
		return nil, err
	}
	return normalize.New(list), nil
}

// buildHarvesters creates the enabled sources in their fixed order. Each
// source gets its own fetcher so that pacing is independent per source.
func buildHarvesters(cfg *config.Config, logger *slog.Logger) []harvest.Harvester {
	src := cfg.Sources
	var harvesters []harvest.Harvester

	if !src.Directory.Disabled {
		pages := orDefault(src.Directory.Pages, harvest.DefaultDirectoryURLs)
		f := newSourceFetcher(cfg, orDefaultDuration(src.Directory.Interval, defaultPageInterval))
		harvesters = append(harvesters, harvest.NewDirectory(f, pages, harvest.WithLogger(logger)))
	}

	if !src.CertLog.Disabled {
		keywords := orDefault(src.CertLog.Keywords, harvest.DefaultCertLogKeywords)
		f := newSourceFetcher(cfg, orDefaultDuration(src.CertLog.Interval, harvest.DefaultCertLogInterval),
			fetch.WithMaxBodySize(src.CertLog.MaxBodySize))
		opts := []harvest.Option{
			harvest.WithLogger(logger),
			harvest.WithEndpoint(src.CertLog.Endpoint),
		}
		if src.CertLog.Backoff > 0 {
			opts = append(opts, harvest.WithBackoff(src.CertLog.Backoff))
		}
		if src.CertLog.ErrorDelay > 0 {
			opts = append(opts, harvest.WithErrorDelay(src.CertLog.ErrorDelay))
		}
		harvesters = append(harvesters, harvest.NewCertLog(f, keywords, opts...))
	}

	if !src.Topics.Disabled {
		topics := orDefault(src.Topics.Topics, harvest.DefaultTopics)
		f := newSourceFetcher(cfg, orDefaultDuration(src.Topics.Interval, defaultPageInterval))
		harvesters = append(harvesters, harvest.NewTopics(f, topics,
			harvest.WithLogger(logger),
			harvest.WithEndpoint(src.Topics.BaseURL),
		))
	}

	return harvesters
}

// newSourceFetcher builds a paced fetcher for one harvester. Extra options
// are applied last, so a per-source body cap overrides the global one.
func newSourceFetcher(cfg *config.Config, interval time.Duration, extra ...fetch.Option) *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithInterval(interval),
		fetch.WithTimeout(cfg.HTTPTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	return fetch.New(append(opts, extra...)...)
}

// buildResolver assembles the verifier, the scorer and the worker pool.
func buildResolver(cfg *config.Config, logger *slog.Logger) *policy.Resolver {
	// Without --resolver the verifier reads resolv.conf.
	verifier := verify.New(
		verify.WithServers(cfg.Resolvers),
		verify.WithTimeout(cfg.DNSTimeout),
		verify.WithRateLimit(cfg.DNSRateLimit),
		verify.WithLogger(logger),
	)

	scorer := score.New(
		score.WithContent(cfg.ContentScoring),
		score.WithGetter(fetch.New(
			fetch.WithTimeout(cfg.HTTPTimeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxBodySize(score.SnippetSize),
		)),
		score.WithLogger(logger),
	)

	return policy.NewResolver(verifier, scorer,
		policy.WithWorkers(cfg.Workers),
		policy.WithLogger(logger),
	)
}

// buildEmitters returns every format, with the RPZ origin from cfg.
func buildEmitters(cfg *config.Config) []feed.Emitter {
	return []feed.Emitter{
		feed.Plain(),
		feed.NewRPZ(cfg.Zone),
		feed.PiHole(),
		feed.PfBlockerNG(),
		feed.Squid(),
		feed.Defender(),
	}
}

// outputReport writes the run report. A report file without a format gets
// the plain-text report; without a report file, only --json and --markdown
// write to stdout.
func outputReport(cfg *config.Config, run *model.Run, stdout io.Writer) error {
	if cfg.ReportFile == "" && !cfg.JSONReport && !cfg.MarkdownReport {
		return nil
	}

	var output io.Writer = stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output, report.WithDomainList(true))
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func orDefault(values, defaults []string) []string {
	if len(values) > 0 {
		return values
	}
	return defaults
}

func orDefaultDuration(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
