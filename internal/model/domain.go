package model

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Domain is a case-folded hostname.
//
// Values built from untrusted input must go through NewDomain so that list
// entries and harvested candidates compare case-insensitively.
type Domain string

// NewDomain trims surrounding whitespace and case-folds s.
func NewDomain(s string) Domain {
	// cases.Caser is stateful, so a fresh one is created per call.
	return Domain(cases.Fold().String(strings.TrimSpace(s)))
}

// String returns the domain as a plain string.
func (d Domain) String() string {
	return string(d)
}

// HasDot reports whether the domain contains at least one label separator.
func (d Domain) HasDot() bool {
	return strings.Contains(string(d), ".")
}

// DomainSet is an immutable set of domains.
// The zero value is an empty set and is ready to use.
type DomainSet struct {
	m map[Domain]struct{}
}

// NewDomainSet builds a set from the given domains. Empty domains are skipped.
func NewDomainSet(domains ...Domain) DomainSet {
	m := make(map[Domain]struct{}, len(domains))
	for _, d := range domains {
		if d == "" {
			continue
		}
		m[d] = struct{}{}
	}
	return DomainSet{m: m}
}

// DomainSetFromStrings case-folds each string and builds a set.
func DomainSetFromStrings(values ...string) DomainSet {
	domains := make([]Domain, 0, len(values))
	for _, v := range values {
		domains = append(domains, NewDomain(v))
	}
	return NewDomainSet(domains...)
}

// Contains reports whether d is a member of the set.
func (s DomainSet) Contains(d Domain) bool {
	_, ok := s.m[d]
	return ok
}

// Len returns the number of members.
func (s DomainSet) Len() int {
	return len(s.m)
}

// Sorted returns the members in lexicographic order.
func (s DomainSet) Sorted() []Domain {
	out := make([]Domain, 0, len(s.m))
	for d := range s.m {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// Strings returns the members in lexicographic order as plain strings.
func (s DomainSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = string(d)
	}
	return out
}

// Union returns a new set holding the members of both sets.
func (s DomainSet) Union(other DomainSet) DomainSet {
	m := make(map[Domain]struct{}, len(s.m)+len(other.m))
	for d := range s.m {
		m[d] = struct{}{}
	}
	for d := range other.m {
		m[d] = struct{}{}
	}
	return DomainSet{m: m}
}

// Difference returns a new set holding the members of s that are not in other.
func (s DomainSet) Difference(other DomainSet) DomainSet {
	m := make(map[Domain]struct{}, len(s.m))
	for d := range s.m {
		if !other.Contains(d) {
			m[d] = struct{}{}
		}
	}
	return DomainSet{m: m}
}

// Equal reports whether both sets have exactly the same members.
func (s DomainSet) Equal(other DomainSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for d := range s.m {
		if !other.Contains(d) {
			return false
		}
	}
	return true
}
