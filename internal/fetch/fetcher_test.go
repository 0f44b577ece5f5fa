package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestFetcherGet tests request construction and response handling.
func TestFetcherGet(t *testing.T) {
	t.Parallel()

	t.Run("sends user agent and reads body", func(t *testing.T) {
		t.Parallel()

		uaCh := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uaCh <- r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		f := New(WithClient(server.Client()))
		resp, err := f.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA := <-uaCh; gotUA != DefaultUserAgent {
			t.Errorf("expected user agent %q, got %q", DefaultUserAgent, gotUA)
		}
		if string(resp.Body) != "<html>ok</html>" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if resp.ContentType != "text/html" {
			t.Errorf("unexpected content type %q", resp.ContentType)
		}
	})

	t.Run("limits body size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer server.Close()

		f := New(WithClient(server.Client()), WithMaxBodySize(10))
		resp, err := f.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Body) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(resp.Body))
		}
	})

	t.Run("non-2xx returns StatusError with response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		f := New(WithClient(server.Client()))
		resp, err := f.Get(context.Background(), server.URL)
		if !errors.Is(err, ErrStatus) {
			t.Fatalf("expected ErrStatus, got %v", err)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests {
			t.Errorf("expected StatusError 429, got %v", err)
		}
		if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
			t.Error("expected response alongside status error")
		}
	})

	t.Run("times out slow servers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		f := New(WithClient(server.Client()), WithTimeout(50*time.Millisecond))
		if _, err := f.Get(context.Background(), server.URL); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("limiter honours cancelled context", func(t *testing.T) {
		t.Parallel()

		f := New(WithInterval(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := f.Get(ctx, "http://127.0.0.1:1/"); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
