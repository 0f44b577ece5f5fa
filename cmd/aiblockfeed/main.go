// Package main provides the entry point for the aiblockfeed CLI.
//
// aiblockfeed discovers domains that serve generative-AI products, keeps
// the ones that resolve and look like AI services, and writes the result as
// DNS and proxy blocklists (plain list, RPZ zone, Pi-hole, pfBlockerNG,
// Squid ACL and Microsoft Defender indicators).
//
// Usage:
//
//	aiblockfeed --data-dir ./data --output-dir ./output
//	aiblockfeed init
//
// See --help for all available options.
package main

// main is the entry point for aiblockfeed.
func main() {
	Execute()
}
