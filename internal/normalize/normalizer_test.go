package normalize

import (
	"strings"
	"testing"

	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// TestNormalize tests registrable domain extraction with the bundled list.
func TestNormalize(t *testing.T) {
	t.Parallel()

	n := New(nil)

	tests := []struct {
		name  string
		input string
		want  model.Domain
	}{
		{name: "subdomain collapses", input: "chat.openai.com", want: "openai.com"},
		{name: "mixed case folds", input: "API.Mistral.AI", want: "mistral.ai"},
		{name: "multi-label suffix", input: "www.example.co.uk", want: "example.co.uk"},
		{name: "private suffix is ignored", input: "someone.github.io", want: "github.io"},
		{name: "scheme port and path stripped", input: "https://app.foo.ai:8443/login?x=1", want: "foo.ai"},
		{name: "wildcard label stripped", input: "*.cdn.cohere.com", want: "cohere.com"},
		{name: "trailing dot stripped", input: "perplexity.ai.", want: "perplexity.ai"},
		{name: "unknown suffix unchanged", input: "Blocked.Example", want: "blocked.example"},
		{name: "unknown suffix keeps all labels", input: "a.b.legacy-llm.test", want: "a.b.legacy-llm.test"},
		{name: "bare public suffix unchanged", input: "co.uk", want: "co.uk"},
		{name: "IP address unchanged", input: "10.0.0.1", want: "10.0.0.1"},
		{name: "IDN converted to ASCII", input: "bücher.de", want: "xn--bcher-kva.de"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := n.Normalize(tt.input)
			if !ok {
				t.Fatalf("Normalize(%q) reported no result", tt.input)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies that normalizing a normalized domain is a no-op.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	n := New(nil)
	inputs := []string{
		"chat.openai.com", "foo.ai", "x.y.example.co.uk", "blocked.example",
		"legacy-llm.test", "co.uk", "someone.github.io", "HTTPS://Gemini.Google.com/app",
	}

	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			once, ok := n.Normalize(in)
			if !ok {
				t.Fatalf("no result for %q", in)
			}
			twice, ok := n.Normalize(once.String())
			if !ok {
				t.Fatalf("no result for %q", once)
			}
			if once != twice {
				t.Errorf("not idempotent: %q -> %q -> %q", in, once, twice)
			}
		})
	}
}

// TestNormalizeAll tests candidate dropping and deduplication.
func TestNormalizeAll(t *testing.T) {
	t.Parallel()

	n := New(nil)

	t.Run("drops candidates without a dot", func(t *testing.T) {
		t.Parallel()

		got := n.NormalizeAll([]string{
			"localhost", "intranet", "", "localhost.", "http://intranet:8080/a.b", "foo.ai",
		})
		if got.Len() != 1 || !got.Contains("foo.ai") {
			t.Errorf("expected only foo.ai, got %v", got.Strings())
		}
		for _, d := range got.Sorted() {
			if !strings.Contains(d.String(), ".") {
				t.Errorf("dotless domain %q leaked into the set", d)
			}
		}
	})

	t.Run("collapses subdomains into one entry", func(t *testing.T) {
		t.Parallel()

		got := n.NormalizeAll([]string{"a.openai.com", "b.openai.com", "OPENAI.COM"})
		if got.Len() != 1 {
			t.Errorf("expected a single domain, got %v", got.Strings())
		}
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		t.Parallel()

		if got := n.NormalizeAll(nil); got.Len() != 0 {
			t.Errorf("expected empty set, got %v", got.Strings())
		}
	})
}

// TestNewWithCustomList verifies that the injected table is used.
func TestNewWithCustomList(t *testing.T) {
	t.Parallel()

	list := publicsuffix.NewList()
	rule, err := publicsuffix.NewRule("ai")
	if err != nil {
		t.Fatalf("failed to build rule: %v", err)
	}
	if err := list.AddRule(rule); err != nil {
		t.Fatalf("failed to add rule: %v", err)
	}

	n := New(list)

	got, _ := n.Normalize("deep.sub.foo.ai")
	if got != "foo.ai" {
		t.Errorf("expected foo.ai, got %q", got)
	}

	// .com is not in the custom list, so it is returned unchanged.
	got, _ = n.Normalize("chat.openai.com")
	if got != "chat.openai.com" {
		t.Errorf("expected chat.openai.com unchanged, got %q", got)
	}
}

// TestHostOf tests URL remnant stripping.
func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"http://Foo.AI/path", "foo.ai"},
		{"user:pw@host.com:8080", "host.com"},
		{"host.com#frag", "host.com"},
		{"  spaced.com  ", "spaced.com"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := HostOf(tt.input); got != tt.want {
				t.Errorf("HostOf(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
