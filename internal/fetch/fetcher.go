// Package fetch provides the HTTP client shared by harvesters and the scorer.
//
// Every external source gets its own Fetcher with its own token-bucket
// limiter, so pacing for crt.sh never slows down GitHub topic pages and
// vice versa. Bodies are always size-limited.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default values for a Fetcher.
const (
	// DefaultUserAgent identifies aiblockfeed to the sites it reads.
	DefaultUserAgent = "aiblockfeed/1.0"

	// DefaultTimeout bounds a single request including body read.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodySize caps how much of any response is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// ErrStatus is wrapped by StatusError so callers can test with errors.Is.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d from %s", ErrStatus, e.Code, e.URL)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Response is a fully read, size-limited HTTP response.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body holds at most the configured maximum number of bytes.
	Body []byte
}

// Fetcher performs rate-limited GET requests.
type Fetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithLimiter sets the token bucket used to pace requests.
// A nil limiter disables pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithInterval paces requests to one every d, with a burst of one.
// A zero or negative interval disables pacing.
func WithInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// New creates a Fetcher. Without options it uses http.DefaultClient,
// no pacing and the package defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      http.DefaultClient,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Get waits for a token, fetches url and reads at most the configured number
// of body bytes. A non-2xx status returns the response together with a
// *StatusError so callers can still inspect the code.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	out := &Response{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return out, nil
}
