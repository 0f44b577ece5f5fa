// Package policy decides which normalized domains make it into the feed.
//
// For each domain the resolver verifies resolvability, scores resolvable
// domains, and then applies the lists in a fixed order:
//
//	final = (included by score or seed) ∪ Deny ∖ Allow
//
// Allow is applied last and always wins. Deny is unioned without regard
// to resolvability. Seed only waives the score threshold; a seeded domain
// that does not resolve is excluded.
//
// Per-domain work runs on a bounded errgroup pool. Every result is stored
// at the index of its domain, so the final set and the decision list do
// not depend on goroutine completion order.
package policy
