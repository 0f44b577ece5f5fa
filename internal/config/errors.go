package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and LoadConfigFile and
// can be matched with errors.Is().
var (
	// ErrEmptyDataDir is returned when the data directory is empty.
	ErrEmptyDataDir = errors.New("data directory must not be empty")

	// ErrEmptyOutputDir is returned when the output directory is empty.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when the DNS or HTTP timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to select the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRateLimit is returned when a rate limit or source interval is
	// negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
