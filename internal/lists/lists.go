// Package lists loads the operator-maintained seed, allow and deny files.
package lists

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/miekg/dns"
	"github.com/nao1215/aiblockfeed/internal/model"
)

// File names inside the data directory.
const (
	SeedFile  = "seed.txt"
	AllowFile = "allowlist.txt"
	DenyFile  = "denylist.txt"
)

// ErrSeedMissing is returned when the data directory has no seed list.
var ErrSeedMissing = errors.New("seed list not found")

// Option configures list loading.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger that reports rejected entries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Parse reads one domain per line. Blank lines and lines starting with '#'
// (after trimming) are skipped. Entries are case-folded. Entries that are
// not domain names are dropped with a warning.
func Parse(r io.Reader, opts ...Option) (model.DomainSet, error) {
	return parse(r, buildOptions(opts).logger)
}

func parse(r io.Reader, logger *slog.Logger) (model.DomainSet, error) {
	var entries []string

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !isDomainName(line) {
			logger.Warn("skipping invalid list entry", "line", lineNo, "entry", line)
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return model.DomainSet{}, err
	}

	return model.DomainSetFromStrings(entries...), nil
}

// isDomainName reports whether s is a plain host name. dns.IsDomainName
// checks label and name lengths but allows any byte, so URL and inline
// comment remnants are rejected separately.
func isDomainName(s string) bool {
	if _, ok := dns.IsDomainName(s); !ok {
		return false
	}
	return !strings.ContainsAny(s, " \t/:@#")
}

// Load reads a list file.
func Load(path string, opts ...Option) (model.DomainSet, error) {
	o := buildOptions(opts)

	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return model.DomainSet{}, err
	}
	defer f.Close()

	set, err := parse(f, o.logger.With("file", path))
	if err != nil {
		return model.DomainSet{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return set, nil
}

// LoadAll reads the three lists from dir. The seed list is required; a
// missing allow or deny list is treated as empty.
func LoadAll(dir string, opts ...Option) (model.Lists, error) {
	seedPath := filepath.Join(dir, SeedFile)
	seed, err := Load(seedPath, opts...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Lists{}, fmt.Errorf("%w: %s", ErrSeedMissing, seedPath)
		}
		return model.Lists{}, fmt.Errorf("failed to load seed list: %w", err)
	}

	allow, err := loadOptional(filepath.Join(dir, AllowFile), opts)
	if err != nil {
		return model.Lists{}, fmt.Errorf("failed to load allow list: %w", err)
	}

	deny, err := loadOptional(filepath.Join(dir, DenyFile), opts)
	if err != nil {
		return model.Lists{}, fmt.Errorf("failed to load deny list: %w", err)
	}

	return model.Lists{Seed: seed, Allow: allow, Deny: deny}, nil
}

func loadOptional(path string, opts []Option) (model.DomainSet, error) {
	set, err := Load(path, opts...)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewDomainSet(), nil
	}
	return set, err
}
