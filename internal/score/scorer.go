// Package score computes the heuristic confidence that a domain serves an
// AI product.
package score

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/aiblockfeed/internal/fetch"
	"github.com/nao1215/aiblockfeed/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Weights in tenths of a point.
const (
	weightAITLD       model.Score = 5
	weightNameKeyword model.Score = 3
	weightBrand       model.Score = 2
	weightDeveloper   model.Score = 2
)

// SnippetSize is how many bytes of the homepage are inspected.
const SnippetSize = 4000

// NameKeywords are matched as substrings of the domain.
var NameKeywords = []string{"ai", "gpt", "llm", "rag", "embed", "genai"}

// BrandKeywords are matched as substrings of the homepage title and snippet.
var BrandKeywords = []string{
	"openai", "chatgpt", "oai", "gpt", "llm", "anthropic", "claude", "gemini",
	"copilot", "mistral", "perplexity", "stability", "sdxl", "midjourney",
	"runway", "replicate", "huggingface", "x.ai", "grok", "cohere", "meta ai",
	"ai assistant", "genai", "rag", "embedding", "text-to-image",
	"image generation", "speech-to-text", "tts api",
}

// DeveloperKeywords add a single bonus when any of them is present.
var DeveloperKeywords = []string{"api key", "rest api", "sdk", "rate limit"}

// Getter fetches a URL. *fetch.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Scorer computes a Signal for a domain.
type Scorer struct {
	getter   Getter
	homepage func(model.Domain) string
	content  bool
	logger   *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithGetter sets the HTTP client used for homepage fetches.
func WithGetter(g Getter) Option {
	return func(s *Scorer) {
		s.getter = g
	}
}

// WithHomepage overrides how a domain maps to its homepage URL.
func WithHomepage(fn func(model.Domain) string) Option {
	return func(s *Scorer) {
		s.homepage = fn
	}
}

// WithContent enables or disables homepage inspection.
func WithContent(enabled bool) Option {
	return func(s *Scorer) {
		s.content = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// New creates a Scorer. Without WithGetter it uses a fetch.Fetcher that
// reads at most SnippetSize bytes.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		homepage: HomepageURL,
		content:  true,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.getter == nil {
		s.getter = fetch.New(fetch.WithMaxBodySize(SnippetSize))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// HomepageURL returns https://<d>.
func HomepageURL(d model.Domain) string {
	return "https://" + d.String()
}

// Score adds the structural and content contributions for d and caps the
// total. A failed homepage fetch marks the content as degraded and
// contributes nothing.
func (s *Scorer) Score(ctx context.Context, d model.Domain) model.Signal {
	structural, matched := Structural(d)

	sig := model.Signal{
		Structural:     structural,
		ContentOutcome: model.OutcomeOK,
	}

	if s.content {
		content, contentMatched, ok := s.scoreContent(ctx, d)
		if ok {
			sig.Content = content
			matched = append(matched, contentMatched...)
		} else {
			sig.ContentOutcome = model.OutcomeDegraded
		}
	}

	sig.Score = (sig.Structural + sig.Content).Capped()
	slices.Sort(matched)
	sig.Matched = matched

	return sig
}

// Structural scores the domain name alone.
func Structural(d model.Domain) (model.Score, []string) {
	name := d.String()

	var total model.Score
	var matched []string

	if strings.HasSuffix(name, ".ai") {
		total += weightAITLD
		matched = append(matched, "tld:ai")
	}

	for _, kw := range NameKeywords {
		if strings.Contains(name, kw) {
			total += weightNameKeyword
			matched = append(matched, "name:"+kw)
		}
	}

	return total, matched
}

// Content scores a homepage body. Only the first SnippetSize bytes are
// considered.
func Content(body []byte) (model.Score, []string) {
	bag := contentBag(body)

	var total model.Score
	var matched []string

	for _, kw := range BrandKeywords {
		if strings.Contains(bag, kw) {
			total += weightBrand
			matched = append(matched, "brand:"+kw)
		}
	}

	for _, kw := range DeveloperKeywords {
		if strings.Contains(bag, kw) {
			total += weightDeveloper
			matched = append(matched, "developer")
			break
		}
	}

	return total, matched
}

func (s *Scorer) scoreContent(ctx context.Context, d model.Domain) (model.Score, []string, bool) {
	resp, err := s.getter.Get(ctx, s.homepage(d))
	if err != nil {
		s.logger.Debug("homepage fetch failed", "domain", d, "error", err)
		return 0, nil, false
	}

	score, matched := Content(resp.Body)
	return score, matched, true
}

// contentBag returns the lowercased title and snippet joined by a space.
func contentBag(body []byte) string {
	if len(body) > SnippetSize {
		body = body[:SnippetSize]
	}
	snippet := cases.Lower(language.Und).String(string(body))

	var title string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet)); err == nil {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return title + " " + snippet
}
