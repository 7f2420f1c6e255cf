// Package config loads the parity profile: where the reference source lives,
// which commands fetch, format, and produce the actual rendering, and where
// artifacts are written.
//
// The built-in defaults reproduce the tree(1) man page workflow. A YAML
// profile may override any field; unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lattice-substrate/refdoc-parity/parityerr"
	"github.com/lattice-substrate/refdoc-parity/snapshot"
)

// Placeholders recognized in command templates.
const (
	URLPlaceholder    = "{url}"
	SourcePlaceholder = "{source}"
)

// Config is a complete parity profile.
type Config struct {
	SourceURL string   `yaml:"source_url"`
	Fetch     []string `yaml:"fetch"`
	Format    []string `yaml:"format"`
	Actual    []string `yaml:"actual"`
	// WorkDir is where the actual command runs; empty means the current
	// directory.
	WorkDir      string            `yaml:"work_dir"`
	Env          map[string]string `yaml:"env"`
	ComparePaths Paths             `yaml:"compare_paths"`
	VerifyPaths  Paths             `yaml:"verify_paths"`
	Snapshot     SnapshotConfig    `yaml:"snapshot"`
}

// Paths are the per-run export locations.
type Paths struct {
	Source   string `yaml:"source"`
	Expected string `yaml:"expected"`
	Actual   string `yaml:"actual"`
}

// SnapshotConfig controls --write output.
type SnapshotConfig struct {
	Path     string `yaml:"path"`
	Constant string `yaml:"constant"`
	Dialect  string `yaml:"dialect"`
	Package  string `yaml:"package"`
}

// Default returns the built-in profile.
func Default() *Config {
	return &Config{
		SourceURL: "https://oldmanprogrammer.net/projects/tree/doc/tree.1",
		Fetch:     []string{"curl", "-sL", URLPlaceholder},
		Format:    []string{"groff", "-man", "-Tutf8", SourcePlaceholder},
		Actual:    []string{"zig", "build", "run", "--", "man"},
		ComparePaths: Paths{
			Source:   "/tmp/original_tree.1",
			Expected: "/tmp/original_formatted.txt",
			Actual:   "/tmp/current_formatted.txt",
		},
		VerifyPaths: Paths{
			Source:   "/tmp/original_tree.1",
			Expected: "/tmp/expected_man.txt",
			Actual:   "/tmp/actual_man.txt",
		},
		Snapshot: SnapshotConfig{
			Path:     "src/man.zig",
			Constant: snapshot.DefaultName,
			Dialect:  string(snapshot.Zig),
		},
	}
}

// Load reads the YAML profile at path over the defaults and validates it.
// An empty path returns the validated defaults.
//
//nolint:gosec // profile path is explicit operator input.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, parityerr.Wrap(parityerr.ConfigInvalid, "config", "read profile", err)
	}
	if err := Decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode decodes exactly one YAML document from data into cfg.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return parityerr.Wrap(parityerr.ConfigInvalid, "config", "decode profile yaml", err)
	}
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			return parityerr.New(parityerr.ConfigInvalid, "config", "unexpected trailing yaml document")
		}
		return parityerr.Wrap(parityerr.ConfigInvalid, "config", "decode trailing yaml", err)
	}
	return nil
}

// Validate checks that every command and path needed by either mode is set.
func (c *Config) Validate() error {
	if c == nil {
		return parityerr.New(parityerr.ConfigInvalid, "config", "config is nil")
	}
	if strings.TrimSpace(c.SourceURL) == "" {
		return invalid("source_url is required")
	}
	commands := []struct {
		name string
		argv []string
	}{{"fetch", c.Fetch}, {"format", c.Format}, {"actual", c.Actual}}
	for _, cmd := range commands {
		if len(cmd.argv) == 0 || strings.TrimSpace(cmd.argv[0]) == "" {
			return invalid(fmt.Sprintf("%s command is required", cmd.name))
		}
	}
	paths := []struct {
		name string
		p    Paths
	}{{"compare_paths", c.ComparePaths}, {"verify_paths", c.VerifyPaths}}
	for _, entry := range paths {
		name, p := entry.name, entry.p
		if p.Source == "" || p.Expected == "" || p.Actual == "" {
			return invalid(fmt.Sprintf("%s requires source, expected, and actual", name))
		}
		if p.Expected == p.Actual {
			return invalid(fmt.Sprintf("%s expected and actual must differ", name))
		}
	}
	if c.Snapshot.Path == "" {
		return invalid("snapshot.path is required")
	}
	if !snapshot.ValidName(c.Snapshot.Constant) {
		return invalid(fmt.Sprintf("snapshot.constant %q is not an identifier", c.Snapshot.Constant))
	}
	if _, err := snapshot.ParseDialect(c.Snapshot.Dialect); err != nil {
		return invalid(fmt.Sprintf("snapshot.dialect %q is not supported", c.Snapshot.Dialect))
	}
	if c.Snapshot.Package != "" && !snapshot.ValidName(c.Snapshot.Package) {
		return invalid(fmt.Sprintf("snapshot.package %q is not an identifier", c.Snapshot.Package))
	}
	return nil
}

func invalid(msg string) error {
	return parityerr.New(parityerr.ConfigInvalid, "config", msg)
}
