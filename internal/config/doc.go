// Package config provides configuration structures and utilities for
// aiblockfeed. It defines the run options set by CLI flags, the optional
// YAML file that overrides source endpoints and keywords, and validation.
package config
