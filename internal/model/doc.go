// Package model defines the core data structures used throughout aiblockfeed.
//
// This package contains the following main types:
//   - Domain and DomainSet: case-folded hostnames and immutable sets of them
//   - Score: the bounded heuristic confidence of a domain
//   - Outcome: the two-state result of a best-effort external operation
//   - Decision: why a single domain was included or excluded
//   - Run: everything one invocation of the pipeline produces
//
// The package imports nothing from this module; harvest, policy, feed and
// report all depend on it.
package model
