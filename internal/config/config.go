// Package config holds the omnitype.yaml configuration and the constants
// shared across commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level omnitype.yaml configuration.
type Config struct {
	// Python is the interpreter used for trace runs. Defaults to python3.
	Python string `yaml:"python,omitempty"`

	// Strict controls whether unresolved type variables fail a check.
	// Defaults to true when omitted.
	Strict *bool `yaml:"strict,omitempty"`

	// Exclude lists directory or file basenames skipped during discovery.
	Exclude []string `yaml:"exclude,omitempty"`

	// Store is the path of the sqlite trace database. Empty disables
	// persistence.
	Store string `yaml:"store,omitempty"`
}

// Default returns the configuration used when no omnitype.yaml exists.
func Default() *Config {
	return &Config{Python: DefaultPython}
}

// Load reads and parses an omnitype.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses omnitype.yaml content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Python == "" {
		cfg.Python = DefaultPython
	}
	return &cfg, nil
}

// Find searches for omnitype.yaml starting from dir and walking up to parent
// directories. Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest config above dir, falling back to defaults
// when none exists.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// IsStrict reports whether unresolved variables should fail a check.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// Interpreter returns the configured Python interpreter.
func (c *Config) Interpreter() string {
	if c.Python == "" {
		return DefaultPython
	}
	return c.Python
}

// Excluded reports whether a path basename is excluded from discovery.
func (c *Config) Excluded(name string) bool {
	for _, e := range c.Exclude {
		if e == name {
			return true
		}
	}
	return false
}
