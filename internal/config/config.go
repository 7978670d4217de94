// Package config handles loading compiler configuration from files.
//
// Configuration can be specified in shaderlab.toml, shaderlab.json or
// .shaderlabrc. The config file is searched for in the current directory and
// parent directories. JSON files may contain comments and trailing commas.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"

	"github.com/galacean/engine-sub008/internal/runtime"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// VaryingPolicy is "fragment-reads" (default) or "vertex-writes"
	VaryingPolicy string `json:"varyingPolicy,omitempty" toml:"varyingPolicy,omitempty"`

	// TreeShaking emits only reachable globals (default true)
	TreeShaking *bool `json:"treeShaking,omitempty" toml:"treeShaking,omitempty"`

	// Suggestions adds "did you mean" hints to diagnostics (default true)
	Suggestions *bool `json:"suggestions,omitempty" toml:"suggestions,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"shaderlab.toml",
	"shaderlab.json",
	".shaderlabrc",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path. Files ending in
// .toml are TOML; everything else is JSON with comments allowed.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = unmarshalJSON(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func unmarshalJSON(data []byte, v any) error {
	standard, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(standard, v)
}

// Validate rejects unknown option values.
func (c *Config) Validate() error {
	if c.VaryingPolicy != "" && !runtime.VaryingPolicy(c.VaryingPolicy).Valid() {
		return fmt.Errorf("unknown varyingPolicy %q", c.VaryingPolicy)
	}
	return nil
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// ToOptions converts a Config to runtime.Options, using defaults for unset fields.
func (c *Config) ToOptions() runtime.Options {
	opts := runtime.DefaultOptions()

	if c.VaryingPolicy != "" {
		opts.VaryingPolicy = runtime.VaryingPolicy(c.VaryingPolicy)
	}
	if c.TreeShaking != nil {
		opts.TreeShaking = *c.TreeShaking
	}
	if c.Suggestions != nil {
		opts.Suggestions = *c.Suggestions
	}

	return opts
}

// MergeOptions are caller overrides (nil or empty means not specified).
type MergeOptions struct {
	VaryingPolicy string
	TreeShaking   *bool
	Suggestions   *bool
}

// Merge merges caller overrides with config file options.
// Overrides win when specified.
func (c *Config) Merge(override MergeOptions) runtime.Options {
	opts := c.ToOptions()

	if override.VaryingPolicy != "" {
		opts.VaryingPolicy = runtime.VaryingPolicy(override.VaryingPolicy)
	}
	if override.TreeShaking != nil {
		opts.TreeShaking = *override.TreeShaking
	}
	if override.Suggestions != nil {
		opts.Suggestions = *override.Suggestions
	}

	return opts
}
