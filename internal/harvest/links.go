package harvest

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/aiblockfeed/internal/crawler"
	"github.com/nao1215/aiblockfeed/internal/fetch"
	"github.com/nao1215/aiblockfeed/internal/model"
)

// DefaultDirectoryURLs are the AI directory pages scraped by default.
var DefaultDirectoryURLs = []string{
	"https://theresanaiforthat.com/",
	"https://www.producthunt.com/topics/artificial-intelligence",
}

// DefaultTopics are the GitHub topics scraped by default.
var DefaultTopics = []string{
	"chatgpt",
	"llm",
	"large-language-model",
	"gpt",
	"generative-ai",
	"ai-assistant",
}

// DefaultTopicBaseURL is prefixed to each topic name.
const DefaultTopicBaseURL = "https://github.com/topics/"

// Option configures a harvester.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	endpoint   string
	backoff    time.Duration
	errorDelay time.Duration
}

// WithLogger sets a custom logger for the harvester.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEndpoint overrides the base URL a harvester queries.
// For Topics it replaces DefaultTopicBaseURL; for CertLog, DefaultCertLogURL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithBackoff sets the sleep after a non-200 response. Only CertLog uses it.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		o.backoff = d
	}
}

// WithErrorDelay sets the sleep after a transport or decode error.
// Only CertLog uses it.
func WithErrorDelay(d time.Duration) Option {
	return func(o *options) {
		o.errorDelay = d
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     slog.Default(),
		backoff:    DefaultCertLogBackoff,
		errorDelay: DefaultCertLogErrorDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// linkHarvester fetches fixed pages and collects the hosts of their links.
type linkHarvester struct {
	name    string
	pages   []string
	fetcher *fetch.Fetcher
	logger  *slog.Logger
}

// NewDirectory creates the directory harvester for the given listing pages.
func NewDirectory(f *fetch.Fetcher, pages []string, opts ...Option) Harvester {
	o := buildOptions(opts)
	return &linkHarvester{
		name:    "directory",
		pages:   pages,
		fetcher: f,
		logger:  o.logger,
	}
}

// NewTopics creates the GitHub topic harvester for the given topic names.
func NewTopics(f *fetch.Fetcher, topics []string, opts ...Option) Harvester {
	o := buildOptions(opts)
	base := o.endpoint
	if base == "" {
		base = DefaultTopicBaseURL
	}

	pages := make([]string, len(topics))
	for i, topic := range topics {
		pages[i] = base + topic
	}

	return &linkHarvester{
		name:    "github-topics",
		pages:   pages,
		fetcher: f,
		logger:  o.logger,
	}
}

// Name returns the harvester name.
func (h *linkHarvester) Name() string {
	return h.name
}

// Harvest fetches every page in turn and extracts link hosts.
func (h *linkHarvester) Harvest(ctx context.Context) model.HarvestResult {
	c := newCollector(h.name, h.logger)

	for _, page := range h.pages {
		if ctx.Err() != nil {
			c.fail(page, ctx.Err())
			break
		}

		resp, err := h.fetcher.Get(ctx, page)
		if err != nil {
			c.fail(page, err)
			continue
		}

		hosts, err := crawler.ExtractHosts(bytes.NewReader(resp.Body))
		if err != nil {
			c.fail(page, err)
			continue
		}

		for _, host := range hosts {
			c.add(host)
		}

		h.logger.Debug("page harvested",
			"source", h.name,
			"page", page,
			"hosts", len(hosts),
		)
	}

	return c.result()
}
