package model

import "time"

// HarvestResult is what one harvester produced during a run.
type HarvestResult struct {
	// Source is the harvester name, e.g. "crtsh".
	Source string `json:"source"`

	// Candidates are raw hostnames exactly as extracted, deduplicated.
	Candidates []string `json:"-"`

	// CandidateCount mirrors len(Candidates) for the JSON report.
	CandidateCount int `json:"candidates"`

	// Outcome is OutcomeDegraded when any request for this source failed.
	Outcome Outcome `json:"outcome"`

	// Failures counts the individual requests that failed.
	Failures int `json:"failures"`

	// Err is the last error encountered, if any. It is informational only.
	Err error `json:"-"`

	// Elapsed is the wall time spent in the harvester.
	Elapsed time.Duration `json:"elapsed"`
}

// Verification is the result of checking whether a domain resolves.
type Verification struct {
	// Resolvable is true when an A or AAAA record was found.
	Resolvable bool

	// Family is "A" or "AAAA" for a resolvable domain, empty otherwise.
	Family string

	// Err is the last lookup error for an unresolvable domain.
	Err error
}

// Signal is the result of scoring a domain.
type Signal struct {
	// Score is the capped total of Structural and Content.
	Score Score

	// Structural is the part of the score derived from the name alone.
	Structural Score

	// Content is the part of the score derived from the homepage.
	Content Score

	// ContentOutcome is OutcomeDegraded when the homepage could not be fetched.
	ContentOutcome Outcome

	// Matched lists the signals that fired, sorted.
	Matched []string
}

// Reason explains a policy decision.
type Reason string

// Policy reasons, in the order the resolver evaluates them.
const (
	ReasonAllow          Reason = "allow"
	ReasonDeny           Reason = "deny"
	ReasonUnresolvable   Reason = "unresolvable"
	ReasonScore          Reason = "score"
	ReasonSeed           Reason = "seed"
	ReasonBelowThreshold Reason = "below-threshold"
)

// Decision records how the policy resolver treated one normalized domain.
type Decision struct {
	Domain         Domain   `json:"domain"`
	Resolvable     bool     `json:"resolvable"`
	Family         string   `json:"family,omitempty"`
	Score          Score    `json:"score"`
	ContentOutcome Outcome  `json:"content"`
	Matched        []string `json:"matched,omitempty"`
	Included       bool     `json:"included"`
	Reason         Reason   `json:"reason"`
}

// Lists groups the three operator-maintained domain lists.
type Lists struct {
	// Seed domains are always considered, and waive the score threshold
	// when they resolve.
	Seed DomainSet

	// Allow domains are never emitted. Allow overrides everything.
	Allow DomainSet

	// Deny domains are always emitted unless also allowed.
	Deny DomainSet
}
