// Package config loads the user configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultWorkers is the scanner parallelism when none is configured
const DefaultWorkers = 8

var ErrInvalid = errors.New("invalid config")

// Config is the contents of config.yaml. Pointer fields distinguish a
// missing key from an explicit false; ApplyDefaults fills them in.
type Config struct {
	Confirm       *bool    `yaml:"confirm"`         // ask before clearing, default true
	Exclude       []string `yaml:"exclude"`         // gitignore-style patterns
	OneFileSystem *bool    `yaml:"one_file_system"` // default true
	Workers       int      `yaml:"workers"`         // default 8
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills missing fields with their defaults
func (cfg *Config) ApplyDefaults() {
	if cfg.Confirm == nil {
		t := true
		cfg.Confirm = &t
	}
	if cfg.OneFileSystem == nil {
		t := true
		cfg.OneFileSystem = &t
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
}

// Normalize trims patterns and validates the configuration
func (cfg *Config) Normalize() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, cfg.Workers)
	}
	patterns := cfg.Exclude[:0]
	for _, p := range cfg.Exclude {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	cfg.Exclude = patterns
	return nil
}

// ConfirmEnabled returns whether clears ask for confirmation (defaults to true)
func (cfg *Config) ConfirmEnabled() bool {
	return cfg.Confirm == nil || *cfg.Confirm
}

// OneFileSystemEnabled returns whether scans stay on one device (defaults to true)
func (cfg *Config) OneFileSystemEnabled() bool {
	return cfg.OneFileSystem == nil || *cfg.OneFileSystem
}

// Dir returns the config directory.
// Uses DISKPRUNE_CONFIG_DIR if set, then $XDG_CONFIG_HOME/diskprune, then
// ~/.config/diskprune.
func Dir() string {
	if dir := os.Getenv("DISKPRUNE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diskprune")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".diskprune"
	}
	return filepath.Join(home, ".config", "diskprune")
}

// DefaultPaths lists the candidate config files in search order
func DefaultPaths() []string {
	var paths []string
	if dir := os.Getenv("DISKPRUNE_CONFIG_DIR"); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "diskprune", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "diskprune", "config.yaml"))
	}
	return paths
}

// Resolve picks the config file to read. An explicit path always wins;
// otherwise the first existing default is used.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	for _, candidate := range DefaultPaths() {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Load reads and validates the config file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault loads the explicit file, or the first default that exists.
// With neither it returns the defaults.
func LoadDefault(explicit string) (*Config, string, error) {
	path, ok := Resolve(explicit)
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
