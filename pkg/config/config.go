// Package config loads optional TOML configuration for the converter.
// Flags override file values, which override built-in defaults; nothing in
// this package touches global state.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/vale981/klayout-converter/pkg/convert"
	apperrors "github.com/vale981/klayout-converter/pkg/errors"
)

// DefaultFileName is the config file looked up in the working directory
// and under the XDG config home.
const DefaultFileName = "klayout-converter.toml"

// Config mirrors the TOML file layout. Pointer fields distinguish "absent"
// from an explicit zero.
type Config struct {
	// TopCell is the cell to extract.
	TopCell string `toml:"top_cell"`

	// NameProperty is the property key carrying shape names.
	NameProperty string `toml:"name_property"`

	// LengthUnit is the output unit exponent relative to meters.
	LengthUnit *int `toml:"length_unit"`

	// Force overwrites existing output files without asking.
	Force bool `toml:"force"`

	// Strict fails conversions on geometry anomalies.
	Strict bool `toml:"strict"`

	// Layers maps "layer/datatype" keys to symbolic layer names.
	Layers map[string]string `toml:"layers"`

	// Properties maps symbolic property names to numeric GDSII property
	// attributes.
	Properties map[string]int `toml:"properties"`

	// Cache selects the result cache backend.
	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// RedisAddr is the host:port of the Redis instance for the redis
	// backend.
	RedisAddr string `toml:"redis_addr"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot read config %s", path)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot parse config %s", path)
	}
	return &cfg, nil
}

// LoadDefault looks for a config file in the working directory and then
// under the XDG config home. A missing file is not an error; the zero
// Config applies the built-in defaults.
func LoadDefault() (*Config, error) {
	for _, path := range defaultPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(path)
	}
	return &Config{}, nil
}

// defaultPaths lists the config lookup locations in priority order.
func defaultPaths() []string {
	paths := []string{DefaultFileName}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		paths = append(paths, filepath.Join(configHome, "klayout-converter", DefaultFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "klayout-converter", DefaultFileName))
	}
	return paths
}

// ApplyTo copies the set config values onto opts. Fields already set on
// opts are left alone so flag values keep precedence.
func (c *Config) ApplyTo(opts *convert.Options) {
	if opts.TopCell == "" && c.TopCell != "" {
		opts.TopCell = c.TopCell
	}
	if opts.NameProperty == "" && c.NameProperty != "" {
		opts.NameProperty = c.NameProperty
	}
	if c.LengthUnit != nil && !opts.LengthUnitSet() {
		opts.SetLengthUnit(*c.LengthUnit)
	}
	if c.Strict {
		opts.Strict = true
	}
	if opts.LayerNames == nil && len(c.Layers) > 0 {
		opts.LayerNames = c.Layers
	}
	if opts.PropertyAliases == nil && len(c.Properties) > 0 {
		opts.PropertyAliases = c.Properties
	}
}
