// Package config loads run configuration files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/scopetrace/internal/logging"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "scopetrace.yaml"

// ModelConfig selects a reference model.
type ModelConfig struct {
	Kind   string         `yaml:"kind" toml:"kind"`
	Params map[string]any `yaml:"params" toml:"params"`
}

// RedisConfig is merged into the options of the redis format.
type RedisConfig struct {
	Addr     string        `yaml:"addr" toml:"addr"`
	Password string        `yaml:"password" toml:"password"`
	DB       int           `yaml:"db" toml:"db"`
	Prefix   string        `yaml:"prefix" toml:"prefix"`
	Timeout  time.Duration `yaml:"timeout" toml:"timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig enables the Prometheus decorator.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// ServeConfig configures the introspection server.
type ServeConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Config is one run of the tracer.
type Config struct {
	Model      ModelConfig    `yaml:"model" toml:"model"`
	Output     string         `yaml:"output" toml:"output"`
	Format     string         `yaml:"format" toml:"format"`
	Steps      uint64         `yaml:"steps" toml:"steps"`
	Start      uint64         `yaml:"start" toml:"start"`
	Increment  uint64         `yaml:"increment" toml:"increment"`
	Timescale  string         `yaml:"timescale" toml:"timescale"`
	Policy     string         `yaml:"policy" toml:"policy"`
	Directives []any          `yaml:"directives" toml:"directives"`
	Sink       map[string]any `yaml:"sink" toml:"sink"`
	Redis      RedisConfig    `yaml:"redis" toml:"redis"`
	Log        LogConfig      `yaml:"log" toml:"log"`
	Metrics    MetricsConfig  `yaml:"metrics" toml:"metrics"`
	Serve      ServeConfig    `yaml:"serve" toml:"serve"`
}

// Default returns the configuration of the reference test bench.
func Default() *Config {
	return &Config{
		Model:     ModelConfig{Kind: "counter"},
		Output:    "simx.vcd",
		Steps:     21,
		Increment: 1,
		Timescale: domain.DefaultTimescale,
		Log:       LogConfig{Level: "info", Format: "text"},
		Serve:     ServeConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads a YAML or TOML file over the defaults. The format follows the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown keys %v", path, undecoded)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config extension %q (use .yaml, .yml or .toml)", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional loads path, or DefaultFile when path is empty and the file exists,
// or the defaults otherwise.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", DefaultFile, err)
	}
	return Default(), nil
}

// Validate checks the fields that do not depend on a model.
func (c *Config) Validate() error {
	var errs []error
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.Steps == 0 {
		errs = append(errs, errors.New("steps must be positive"))
	}
	if c.Policy != "" {
		if _, err := domain.ParsePolicy(c.Policy); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Program(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Program converts the directives list. Entries are either "depth:path" strings
// or {depth, path} tables.
func (c *Config) Program() (domain.Program, error) {
	p := make(domain.Program, 0, len(c.Directives))
	for i, raw := range c.Directives {
		var d domain.Directive
		switch v := raw.(type) {
		case string:
			parsed, err := domain.ParseDirective(v)
			if err != nil {
				return nil, fmt.Errorf("directives[%d]: %w", i, err)
			}
			d = parsed
		default:
			var entry struct {
				Depth int    `mapstructure:"depth"`
				Path  string `mapstructure:"path"`
			}
			dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				WeaklyTypedInput: true,
				ErrorUnused:      true,
				Result:           &entry,
			})
			if err != nil {
				return nil, err
			}
			if err := dec.Decode(v); err != nil {
				return nil, fmt.Errorf("directives[%d]: %w: %v", i, domain.ErrInvalidDirective, err)
			}
			d, err = domain.NewDirective(entry.Depth, entry.Path)
			if err != nil {
				return nil, fmt.Errorf("directives[%d]: %w", i, err)
			}
		}
		p = append(p, d)
	}
	return p, nil
}

// SinkOptions returns the options passed to the format factory. The top-level policy
// and, for the redis format, the redis section are merged in without overriding
// explicit sink keys.
func (c *Config) SinkOptions(format string) map[string]any {
	out := make(map[string]any, len(c.Sink)+6)
	for k, v := range c.Sink {
		out[k] = v
	}
	setDefault := func(k string, v any) {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	if c.Policy != "" {
		setDefault("policy", c.Policy)
	}
	if format == "redis" {
		if c.Redis.Addr != "" {
			setDefault("addr", c.Redis.Addr)
		}
		if c.Redis.Password != "" {
			setDefault("password", c.Redis.Password)
		}
		if c.Redis.DB != 0 {
			setDefault("db", c.Redis.DB)
		}
		if c.Redis.Prefix != "" {
			setDefault("prefix", c.Redis.Prefix)
		}
		if c.Redis.Timeout > 0 {
			setDefault("timeout", c.Redis.Timeout)
		}
	}
	return out
}

// Logger builds the process logger from the log section.
func (c *Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewFor(c.Log.Format, level)
}
