package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/aiblockfeed/internal/fetch"
	"github.com/nao1215/aiblockfeed/internal/model"
)

// DefaultCertLogURL is the crt.sh search endpoint.
const DefaultCertLogURL = "https://crt.sh/"

// DefaultCertLogKeywords are the subject keywords searched on crt.sh.
var DefaultCertLogKeywords = []string{
	"ai", "gpt", "llm", "claude", "gemini", "copilot", "mistral",
	"grok", "perplexity", "huggingface", "stability", "midjourney",
	"replicate", "cohere",
}

// Pacing defaults for crt.sh.
const (
	// DefaultCertLogInterval is the minimum gap between two crt.sh queries.
	DefaultCertLogInterval = 1200 * time.Millisecond

	// DefaultCertLogBackoff is slept after a non-200 answer before the
	// next keyword. The failed keyword is not retried.
	DefaultCertLogBackoff = 2 * time.Second

	// DefaultCertLogErrorDelay is slept after a transport or decode error.
	DefaultCertLogErrorDelay = 1 * time.Second
)

// certEntry is the subset of a crt.sh JSON record we use.
type certEntry struct {
	NameValue string `json:"name_value"`
}

// CertLog harvests certificate names from crt.sh.
type CertLog struct {
	fetcher    *fetch.Fetcher
	keywords   []string
	endpoint   string
	backoff    time.Duration
	errorDelay time.Duration
	logger     *slog.Logger
}

// NewCertLog creates a crt.sh harvester.
// Request pacing comes from the fetcher's limiter; see fetch.WithInterval.
func NewCertLog(f *fetch.Fetcher, keywords []string, opts ...Option) *CertLog {
	o := buildOptions(opts)
	endpoint := o.endpoint
	if endpoint == "" {
		endpoint = DefaultCertLogURL
	}

	return &CertLog{
		fetcher:    f,
		keywords:   keywords,
		endpoint:   endpoint,
		backoff:    o.backoff,
		errorDelay: o.errorDelay,
		logger:     o.logger,
	}
}

// Name returns the harvester name.
func (h *CertLog) Name() string {
	return "crtsh"
}

// Harvest queries crt.sh once per keyword.
func (h *CertLog) Harvest(ctx context.Context) model.HarvestResult {
	c := newCollector(h.Name(), h.logger)

	for _, kw := range h.keywords {
		if ctx.Err() != nil {
			c.fail(kw, ctx.Err())
			break
		}

		query := h.queryURL(kw)
		resp, err := h.fetcher.Get(ctx, query)
		if err != nil {
			c.fail(query, err)
			if errors.Is(err, fetch.ErrStatus) {
				sleep(ctx, h.backoff)
			} else {
				sleep(ctx, h.errorDelay)
			}
			continue
		}

		entries, err := decodeEntries(resp.Body)
		before := len(c.items)
		for _, name := range parseNameValues(entries) {
			c.add(name)
		}

		if err != nil {
			c.fail(query, fmt.Errorf("failed to decode crt.sh response after %d records: %w", len(entries), err))
			sleep(ctx, h.errorDelay)
			continue
		}

		h.logger.Debug("keyword harvested",
			"source", h.Name(),
			"keyword", kw,
			"certificates", len(entries),
			"new_names", len(c.items)-before,
		)
	}

	return c.result()
}

// queryURL builds the JSON search URL for a keyword.
func (h *CertLog) queryURL(keyword string) string {
	v := url.Values{}
	v.Set("q", keyword)
	v.Set("output", "json")
	return h.endpoint + "?" + v.Encode()
}

// decodeEntries reads a crt.sh JSON array record by record. When the body is
// cut short, the records decoded before the cut are returned with the error.
func decodeEntries(body []byte) ([]certEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("expected JSON array, got %v", tok)
	}

	var entries []certEntry
	for dec.More() {
		var e certEntry
		if err := dec.Decode(&e); err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}

	if _, err := dec.Token(); err != nil {
		return entries, err
	}
	return entries, nil
}

// parseNameValues splits each entry's newline-delimited name field and
// returns the trimmed, lowercased names. Wildcard names and names without a
// dot are dropped.
func parseNameValues(entries []certEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		for _, name := range strings.Split(e.NameValue, "\n") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || strings.HasPrefix(name, "*.") || !strings.Contains(name, ".") {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}
