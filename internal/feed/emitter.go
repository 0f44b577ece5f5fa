package feed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/aiblockfeed/internal/model"
)

// Emitter renders a domain set to one output file.
type Emitter interface {
	// Name is a short identifier used in logs and reports.
	Name() string

	// FileName is the base name of the file written in the output directory.
	FileName() string

	// Render formats the set. It must not have side effects.
	Render(set model.DomainSet) []byte
}

// All returns every emitter with default settings, in output order.
func All() []Emitter {
	return []Emitter{
		Plain(),
		NewRPZ(DefaultZone),
		PiHole(),
		PfBlockerNG(),
		Squid(),
		Defender(),
	}
}

// Artifact is a file written by WriteAll.
type Artifact struct {
	Emitter string `json:"emitter"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

// WriteAll creates dir if needed and writes one file per emitter.
// The first write error stops the loop and is returned.
func WriteAll(dir string, set model.DomainSet, emitters ...Emitter) ([]Artifact, error) {
	if dir == "" {
		return nil, errors.New("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(emitters))
	for _, e := range emitters {
		data := e.Render(set)
		path := filepath.Join(dir, e.FileName())

		if err := os.WriteFile(path, data, 0o600); err != nil {
			return artifacts, fmt.Errorf("failed to write %s: %w", e.Name(), err)
		}

		artifacts = append(artifacts, Artifact{Emitter: e.Name(), Path: path, Bytes: len(data)})
	}

	return artifacts, nil
}
