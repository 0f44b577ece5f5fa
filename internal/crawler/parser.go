package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractHosts parses HTML content and returns the hosts of its absolute
// links, lowercased, without port, deduplicated and in first-seen order.
//
// Only hrefs that already start with http:// or https:// are kept. Relative
// links point back into the listing site itself and never name a product.
// Parsing uses golang.org/x/net/html, so malformed markup and entity-encoded
// attributes are handled by the tokenizer.
func ExtractHosts(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if host, ok := HostFromURL(strings.TrimSpace(getAttr(n, "href"))); ok && !seen[host] {
				seen[host] = true
				hosts = append(hosts, host)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return hosts, nil
}

// HostFromURL returns the lowercased host of an absolute http(s) URL with the
// port removed. The second result is false for any other kind of link.
func HostFromURL(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return host, true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
