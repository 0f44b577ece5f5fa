package config

import "time"

// File represents the structure of the .aiblockfeed.yaml configuration file.
// Every field is optional.
type File struct {
	DataDir        string        `yaml:"data_dir,omitempty"`
	OutputDir      string        `yaml:"output_dir,omitempty"`
	Workers        int           `yaml:"workers,omitempty"`
	DNSTimeout     time.Duration `yaml:"dns_timeout,omitempty"`
	HTTPTimeout    time.Duration `yaml:"http_timeout,omitempty"`
	Resolvers      []string      `yaml:"resolvers,omitempty"`
	DNSRateLimit   float64       `yaml:"dns_rate_limit,omitempty"`
	PSLFile        string        `yaml:"psl_file,omitempty"`
	ContentScoring *bool         `yaml:"content_scoring,omitempty"`
	Zone           string        `yaml:"zone,omitempty"`
	UserAgent      string        `yaml:"user_agent,omitempty"`
	Sources        Sources       `yaml:"sources,omitempty"`
}

// Sources configures the three harvesters.
type Sources struct {
	Directory DirectorySource `yaml:"directory,omitempty"`
	CertLog   CertLogSource   `yaml:"crtsh,omitempty"`
	Topics    TopicSource     `yaml:"github_topics,omitempty"`
}

// DirectorySource configures the AI tool directory harvester.
type DirectorySource struct {
	// Disabled skips the source entirely.
	Disabled bool `yaml:"disabled,omitempty"`

	// Pages overrides the list of directory pages.
	Pages []string `yaml:"pages,omitempty"`

	// Interval is the minimum gap between two page fetches.
	Interval time.Duration `yaml:"interval,omitempty"`
}

// CertLogSource configures the certificate-transparency harvester.
type CertLogSource struct {
	Disabled bool `yaml:"disabled,omitempty"`

	// Endpoint overrides the crt.sh base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Keywords overrides the search keywords.
	Keywords []string `yaml:"keywords,omitempty"`

	// Interval is the minimum gap between two queries.
	Interval time.Duration `yaml:"interval,omitempty"`

	// Backoff is the pause after a non-200 response.
	Backoff time.Duration `yaml:"backoff,omitempty"`

	// ErrorDelay is the pause after a transport or decode error.
	ErrorDelay time.Duration `yaml:"error_delay,omitempty"`

	// MaxBodySize caps one crt.sh reply in bytes. Zero uses max_body_size.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// TopicSource configures the GitHub topic harvester.
type TopicSource struct {
	Disabled bool `yaml:"disabled,omitempty"`

	// BaseURL overrides https://github.com/topics/.
	BaseURL string `yaml:"base_url,omitempty"`

	// Topics overrides the topic names.
	Topics []string `yaml:"topics,omitempty"`

	// Interval is the minimum gap between two page fetches.
	Interval time.Duration `yaml:"interval,omitempty"`
}

func (s Sources) hasNegativeInterval() bool {
	return s.Directory.Interval < 0 ||
		s.CertLog.Interval < 0 ||
		s.CertLog.Backoff < 0 ||
		s.CertLog.ErrorDelay < 0 ||
		s.Topics.Interval < 0
}
