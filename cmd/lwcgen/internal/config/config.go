package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/recera/lwcgen/pkg/compiler"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files Load looks for, in order.
var FileNames = []string{"lwcgen.yaml", "lwcgen.yml", "lwcgen.json"}

// Config represents the lwcgen.yaml configuration
type Config struct {
	// Compiler options
	StateType  string `yaml:"stateType" json:"stateType"`
	TypeScript bool   `yaml:"typescript" json:"typescript"`
	Prettier   bool   `yaml:"prettier" json:"prettier"`

	// Build configuration
	OutDir  string   `yaml:"outDir" json:"outDir"`
	Include []string `yaml:"include" json:"include"`
	Jobs    int      `yaml:"jobs" json:"jobs"`

	Cache CacheConfig `yaml:"cache" json:"cache"`
	Serve ServeConfig `yaml:"serve" json:"serve"`
}

// CacheConfig controls the output cache
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir,omitempty" json:"dir,omitempty"`
	// MaxAge is a Go duration string such as "168h"
	MaxAge string `yaml:"maxAge,omitempty" json:"maxAge,omitempty"`
}

// ServeConfig contains playground server configuration
type ServeConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		StateType: string(compiler.StateVariables),
		Prettier:  true,
		OutDir:    "dist",
		Include:   []string{"components"},
		Jobs:      4,
		Cache: CacheConfig{
			Enabled: true,
			MaxAge:  "168h",
		},
		Serve: ServeConfig{
			Host: "localhost",
			Port: 8090,
		},
	}
}

// Load reads the first configuration file found in dir over the defaults.
// It returns the defaults and an empty path when there is none.
func Load(dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		cfg, err := LoadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return DefaultConfig(), "", nil
}

// LoadFile reads one configuration file over the defaults. Keys missing
// from the file keep their default value.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, as JSON when path ends in .json and YAML otherwise.
func Save(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// applyDefaults fills values a file may have cleared
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.StateType == "" {
		cfg.StateType = defaults.StateType
	}
	if cfg.OutDir == "" {
		cfg.OutDir = defaults.OutDir
	}
	if len(cfg.Include) == 0 {
		cfg.Include = defaults.Include
	}
	if cfg.Serve.Host == "" {
		cfg.Serve.Host = defaults.Serve.Host
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = defaults.Serve.Port
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if err := c.CompilerOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Jobs <= 0 {
		errs = append(errs, fmt.Errorf("jobs must be positive, got %d", c.Jobs))
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid serve port %d", c.Serve.Port))
	}
	if c.Cache.MaxAge != "" {
		if _, err := time.ParseDuration(c.Cache.MaxAge); err != nil {
			errs = append(errs, fmt.Errorf("cache maxAge: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CompilerOptions maps the configuration onto compiler options.
func (c *Config) CompilerOptions() compiler.Options {
	opts := compiler.DefaultOptions()
	opts.StateType = compiler.StateType(c.StateType)
	opts.TypeScript = c.TypeScript
	opts.Prettier = c.Prettier
	return opts
}

// CacheMaxAge returns the parsed cache age, zero when unset or invalid.
func (c *Config) CacheMaxAge() time.Duration {
	d, err := time.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0
	}
	return d
}

// Addr is the listen address of the playground server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}
