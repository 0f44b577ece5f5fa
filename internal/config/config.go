package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "aiblockfeed"

	// DefaultDataDir holds seed.txt, allowlist.txt and denylist.txt.
	DefaultDataDir = "./data"

	// DefaultOutputDir receives the rendered feeds.
	DefaultOutputDir = "./output"

	// DefaultWorkers is the number of domains verified and scored at once.
	DefaultWorkers = 8

	// DefaultDNSTimeout bounds each A or AAAA lookup.
	DefaultDNSTimeout = 3 * time.Second

	// DefaultHTTPTimeout bounds each source page and homepage fetch.
	DefaultHTTPTimeout = 15 * time.Second

	// DefaultUserAgent identifies aiblockfeed in HTTP requests.
	DefaultUserAgent = "aiblockfeed/1.0"

	// DefaultMaxBodySize limits how much of a source page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultZone is the response-policy zone origin.
	DefaultZone = "ai-block.local"
)

// Config holds all options for one run.
// It is populated from CLI flags and the optional config file and passed
// down explicitly; nothing reads it from global state.
type Config struct {
	// DataDir contains the seed, allow and deny lists.
	DataDir string

	// OutputDir receives the feed files. It is created if missing.
	OutputDir string

	// Workers is the size of the verification and scoring pool.
	Workers int

	// DNSTimeout is the per-lookup DNS timeout.
	DNSTimeout time.Duration

	// HTTPTimeout is the per-request HTTP timeout.
	HTTPTimeout time.Duration

	// Resolvers are upstream DNS servers in host or host:port form.
	// Empty means the system resolv.conf.
	Resolvers []string

	// DNSRateLimit caps DNS queries per second. Zero disables the cap.
	DNSRateLimit float64

	// PSLFile is a public suffix list in .dat format. Empty selects the
	// list bundled with the binary.
	PSLFile string

	// ContentScoring enables homepage fetches during scoring.
	ContentScoring bool

	// Zone is the response-policy zone origin.
	Zone string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum source page size in bytes.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the current directory and then the
	// XDG config directory.
	ConfigFilePath string

	// Sources holds the per-source settings from the config file.
	// Empty fields fall back to the built-in source defaults.
	Sources Sources

	// JSONReport writes a JSON run report. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown run report. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Metrics writes metrics.prom next to the feeds.
	Metrics bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DataDir:        DefaultDataDir,
		OutputDir:      DefaultOutputDir,
		Workers:        DefaultWorkers,
		DNSTimeout:     DefaultDNSTimeout,
		HTTPTimeout:    DefaultHTTPTimeout,
		ContentScoring: true,
		Zone:           DefaultZone,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for aiblockfeed.
// On Linux: ~/.config/aiblockfeed
// On macOS: ~/Library/Application Support/aiblockfeed
// On Windows: %APPDATA%\aiblockfeed
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.DNSTimeout <= 0 || c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 || c.Sources.CertLog.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.DNSRateLimit < 0 || c.Sources.hasNegativeInterval() {
		return ErrInvalidRateLimit
	}

	return nil
}

// ApplyFile copies settings from a config file into c. A field is skipped
// when flagChanged reports that the matching CLI flag was set explicitly,
// so flags always win over the file.
func (c *Config) ApplyFile(f *File, flagChanged func(name string) bool) {
	if f == nil {
		return
	}
	if flagChanged == nil {
		flagChanged = func(string) bool { return false }
	}

	if f.DataDir != "" && !flagChanged("data-dir") {
		c.DataDir = f.DataDir
	}
	if f.OutputDir != "" && !flagChanged("output-dir") {
		c.OutputDir = f.OutputDir
	}
	if f.Workers != 0 && !flagChanged("workers") {
		c.Workers = f.Workers
	}
	if f.DNSTimeout != 0 && !flagChanged("dns-timeout") {
		c.DNSTimeout = f.DNSTimeout
	}
	if f.HTTPTimeout != 0 && !flagChanged("http-timeout") {
		c.HTTPTimeout = f.HTTPTimeout
	}
	if len(f.Resolvers) > 0 && !flagChanged("resolver") {
		c.Resolvers = f.Resolvers
	}
	if f.PSLFile != "" && !flagChanged("psl-file") {
		c.PSLFile = f.PSLFile
	}
	if f.DNSRateLimit != 0 {
		c.DNSRateLimit = f.DNSRateLimit
	}
	if f.ContentScoring != nil {
		c.ContentScoring = *f.ContentScoring
	}
	if f.Zone != "" {
		c.Zone = f.Zone
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}

	c.Sources = f.Sources
}
