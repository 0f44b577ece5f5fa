// Package feed renders the final domain set into the formats consumed by
// DNS firewalls, ad blockers, proxies and endpoint protection.
//
// Every emitter is a pure function of the set and iterates it in sorted
// order, so the same set always renders to the same bytes. Each line,
// including the last, ends in a newline; an empty set renders an empty
// list rather than a lone blank line.
package feed
