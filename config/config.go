// Package config handles frozenlist.toml benchmark configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "frozenlist.toml"

// Defaults: a 1000-node list traversed 100k times.
const (
	DefaultLength     = 1000
	DefaultIterations = 100_000
	DefaultWarmup     = 1000
)

// Config represents a frozenlist.toml file.
type Config struct {
	Bench Bench `toml:"bench"`
	Store Store `toml:"store"`
	Log   Log   `toml:"log"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Bench configures list length and timing loops.
type Bench struct {
	Length     int      `toml:"length"`
	Iterations int      `toml:"iterations"`
	Warmup     int      `toml:"warmup"`
	Limit      int      `toml:"limit"`
	Paths      []string `toml:"paths"`
}

// Store configures the sqlite results database.
type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns a configuration with no file behind it.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load parses frozenlist.toml from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find frozenlist.toml, then loads it.
// Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) applyDefaults() {
	if c.Bench.Length == 0 {
		c.Bench.Length = DefaultLength
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = DefaultIterations
	}
	if c.Bench.Warmup == 0 {
		c.Bench.Warmup = DefaultWarmup
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(".frozenlist", "runs.db")
	}
}

// Validate rejects settings the harness cannot run with.
func (c *Config) Validate() error {
	if c.Bench.Length <= 0 {
		return fmt.Errorf("bench.length must be positive, got %d", c.Bench.Length)
	}
	if c.Bench.Iterations <= 0 {
		return fmt.Errorf("bench.iterations must be positive, got %d", c.Bench.Iterations)
	}
	if c.Bench.Warmup < 0 {
		return fmt.Errorf("bench.warmup must not be negative, got %d", c.Bench.Warmup)
	}
	return nil
}

// StorePath returns the results database path, resolved against Dir when
// relative.
func (c *Config) StorePath() string {
	if filepath.IsAbs(c.Store.Path) || c.Dir == "" {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}
