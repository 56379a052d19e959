package cli

import (
	"github.com/aretw0/scopetrace/internal/config"
)

// RunOptions holds the flag values shared by the commands. Zero values leave the
// configuration file untouched.
type RunOptions struct {
	ConfigPath string
	Model      string
	Output     string
	Format     string
	Policy     string
	Steps      uint64
	Directives []string
	LogLevel   string
	LogFormat  string
	Debug      bool
	Metrics    bool
	Quiet      bool
}

// LoadConfig reads the configuration file and applies the flag overrides.
func LoadConfig(opts RunOptions) (*config.Config, error) {
	cfg, err := config.LoadOptional(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Model != "" {
		cfg.Model.Kind = opts.Model
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Policy != "" {
		cfg.Policy = opts.Policy
	}
	if opts.Steps > 0 {
		cfg.Steps = opts.Steps
	}
	if len(opts.Directives) > 0 {
		cfg.Directives = make([]any, len(opts.Directives))
		for i, d := range opts.Directives {
			cfg.Directives[i] = d
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if opts.Metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
