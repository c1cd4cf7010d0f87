// Package config loads the flag defaults and saved queries a user keeps
// across invocations, following the same file-resolution and merge rules
// as the teacher's context config loader.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	mylog "github.com/bascanada/yategrep/pkg/log"
)

// EnvConfigPath overrides the config file(s) to load; colon-separated,
// later entries win on key collision.
const EnvConfigPath = "YATEGREP_CONFIG"

// DefaultConfigDir and DefaultConfigFile locate the config file under the
// user's home directory when no explicit path or env var is given.
const (
	DefaultConfigDir  = ".yategrep"
	DefaultConfigFile = "config.yaml"
)

// Sentinel errors so callers can branch with errors.Is.
var (
	ErrConfigParse   = errors.New("invalid config content")
	ErrConfigMissing = errors.New("config file not found")
)

// Defaults holds the flag defaults a config file may override.
type Defaults struct {
	BufferSize int `yaml:"bufferSize"`
	Context    int `yaml:"context"`
	NoNetwork  bool `yaml:"noNetwork"`
	DumpOnFlush bool `yaml:"dumpOnFlush"`
}

// builtinDefaults mirrors the CLI's own flag defaults (-B 300, -C 0).
var builtinDefaults = Defaults{BufferSize: 300, Context: 0}

// Config is the top-level, merged configuration.
type Config struct {
	Defaults Defaults          `yaml:"defaults"`
	Queries  map[string]string `yaml:"queries"`
}

// ResolveConfigPaths determines which configuration files to load, in
// precedence order: explicitPath, then EnvConfigPath (colon-separated),
// then the default path under the user's home directory.
func ResolveConfigPaths(explicitPath string) ([]string, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return []string{explicitPath}, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return strings.Split(env, string(os.PathListSeparator)), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}
	main := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	if _, err := os.Stat(main); err != nil {
		return nil, nil
	}
	return []string{main}, nil
}

// Load resolves and merges config files per ResolveConfigPaths, then
// layers the built-in defaults beneath whatever the files set. A later
// file's non-zero BufferSize or Context replaces an earlier value (zero
// counts as unset), NoNetwork and DumpOnFlush are on if any file sets
// them, and later files' Queries entries shadow earlier ones of the same
// name.
func Load(explicitPath string) (*Config, error) {
	files, err := ResolveConfigPaths(explicitPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Defaults: builtinDefaults, Queries: map[string]string{}}

	explicit := explicitPath != "" || os.Getenv(EnvConfigPath) != ""
	loaded := 0
	for _, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}

		var partial Config
		if err := yaml.Unmarshal(data, &partial); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
		}

		if partial.Defaults.BufferSize > 0 {
			cfg.Defaults.BufferSize = partial.Defaults.BufferSize
		}
		if partial.Defaults.Context > 0 {
			cfg.Defaults.Context = partial.Defaults.Context
		}
		cfg.Defaults.NoNetwork = cfg.Defaults.NoNetwork || partial.Defaults.NoNetwork
		cfg.Defaults.DumpOnFlush = cfg.Defaults.DumpOnFlush || partial.Defaults.DumpOnFlush
		for name, q := range partial.Queries {
			cfg.Queries[name] = q
		}
		loaded++
		mylog.Debug("config: loaded %s", path)
	}

	if loaded == 0 && explicit {
		return nil, ErrConfigMissing
	}

	return cfg, nil
}
