package model

// Outcome classifies the result of an operation that talks to the outside world.
//
// Best-effort callers carry on for OutcomeDegraded; the report and metrics
// use it to tell "nothing found" apart from "source was down". Unrecoverable
// failures are returned as errors instead.
type Outcome int

const (
	// OutcomeOK means the operation succeeded and its data is complete.
	OutcomeOK Outcome = iota

	// OutcomeDegraded means the operation failed or partially failed and was
	// recovered locally. Any data returned is a reduced, possibly empty, result.
	OutcomeDegraded
)

// String returns a lowercase name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name so JSON reports stay readable.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
