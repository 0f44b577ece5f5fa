// Package normalize reduces raw hostnames to their registrable domain.
package normalize

import (
	"fmt"
	"net"
	"strings"

	"github.com/nao1215/aiblockfeed/internal/model"
	"github.com/weppos/publicsuffix-go/publicsuffix"
	"golang.org/x/net/idna"
)

// findOptions disables the implicit "*" rule so that a hostname under an
// unknown TLD is reported as unmatched instead of being split at its last
// label. Private rules (github.io, blogspot.com, ...) are ignored so those
// hosts collapse to the operator's registrable domain.
var findOptions = &publicsuffix.FindOptions{
	IgnorePrivate: true,
	DefaultRule:   nil,
}

// Normalizer maps raw hostnames to eTLD+1 using a fixed public suffix table.
//
// The table is set at construction and never reloaded.
type Normalizer struct {
	list *publicsuffix.List
}

// New creates a Normalizer backed by list.
// A nil list selects the table bundled with publicsuffix-go.
func New(list *publicsuffix.List) *Normalizer {
	if list == nil {
		list = publicsuffix.DefaultList
	}
	return &Normalizer{list: list}
}

// LoadList reads a public_suffix_list.dat file.
// An empty path returns the bundled table.
func LoadList(path string) (*publicsuffix.List, error) {
	if path == "" {
		return publicsuffix.DefaultList, nil
	}
	list, err := publicsuffix.NewListFromFile(path, &publicsuffix.ParserOption{PrivateDomains: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load public suffix list %s: %w", path, err)
	}
	return list, nil
}

// Normalize returns the registrable domain of raw.
//
// If no public suffix rule matches, or raw is itself a public suffix, the
// lowercased host is returned unchanged. The second result is false only when
// nothing usable remains after stripping URL remnants.
func (n *Normalizer) Normalize(raw string) (model.Domain, bool) {
	host := HostOf(raw)
	if host == "" {
		return "", false
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil || ascii == "" {
		ascii = host
	}
	ascii = strings.ToLower(ascii)

	if net.ParseIP(ascii) != nil {
		return model.NewDomain(ascii), true
	}

	dn, err := publicsuffix.ParseFromListWithOptions(n.list, ascii, findOptions)
	if err != nil || dn.SLD == "" {
		return model.NewDomain(ascii), true
	}
	return model.NewDomain(dn.SLD + "." + dn.TLD), true
}

// NormalizeAll normalizes every candidate and returns the resulting set.
// Candidates without a dot are dropped, both before lookup and after URL
// remnants are stripped, so "localhost." and "http://intranet:8080/a.b"
// never reach the set.
func (n *Normalizer) NormalizeAll(candidates []string) model.DomainSet {
	out := make([]model.Domain, 0, len(candidates))
	for _, c := range candidates {
		if !strings.Contains(c, ".") {
			continue
		}
		if d, ok := n.Normalize(c); ok && d.HasDot() {
			out = append(out, d)
		}
	}
	return model.NewDomainSet(out...)
}

// HostOf strips scheme, userinfo, path, query, port, a leading wildcard label
// and a trailing dot from a raw candidate and lowercases what remains.
func HostOf(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	s = strings.Trim(s, "[]")
	s = strings.TrimPrefix(s, "*.")
	s = strings.TrimSuffix(s, ".")
	return strings.ToLower(s)
}
