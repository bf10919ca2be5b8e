// Package config handles configuration loading and validation for netrecon.
// Configuration is layered: built-in defaults, then an optional YAML file,
// then flag/environment overrides applied by the CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netrecon/netrecon/internal/engine"
	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/ports"
)

// Config is the complete netrecon configuration.
type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Resolver ResolverConfig `yaml:"resolver"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ScanConfig controls scan behavior.
type ScanConfig struct {
	// Ports is a port expression: comma-separated integers and lo-hi
	// ranges. Empty means the built-in common port list.
	Ports           string        `yaml:"ports"`
	PortTimeout     time.Duration `yaml:"port_timeout" validate:"min=1ms,max=1m"`
	PingTimeout     time.Duration `yaml:"ping_timeout" validate:"min=1ms,max=1m"`
	HostConcurrency int           `yaml:"host_concurrency" validate:"min=1,max=1000"`
	PortConcurrency int           `yaml:"port_concurrency" validate:"min=1,max=10000"`
	PingFirst       bool          `yaml:"ping_first"`
	SkipOffline     bool          `yaml:"skip_offline"`
	GrabBanners     bool          `yaml:"grab_banners"`
	// RateLimit caps host scans per second; 0 disables the limit.
	RateLimit int `yaml:"rate_limit" validate:"min=0,max=100000"`
}

// ResolverConfig controls hostname resolution.
type ResolverConfig struct {
	// Server is an optional explicit DNS server (host or host:port).
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout" validate:"min=0,max=1m"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	Output string `yaml:"output"`
}

// MetricsConfig controls metrics collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Ports:           "",
			PortTimeout:     engine.DefaultPortTimeout,
			PingTimeout:     engine.DefaultPingTimeout,
			HostConcurrency: engine.DefaultHostConcurrency,
			PortConcurrency: engine.DefaultPortConcurrency,
			PingFirst:       true,
			SkipOffline:     false,
			GrabBanners:     false,
			RateLimit:       0,
		},
		Resolver: ResolverConfig{
			Server:  "",
			Timeout: engine.DefaultResolveTimeout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from a YAML file, merged over defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the file when path is non-empty, otherwise returns
// validated defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return errors.ErrConfigInvalid(first.Namespace(), first.Value())
		}
		return errors.WrapConfigError(errors.CodeConfiguration, "config validation failed", err)
	}

	// The port expression is validated by parsing it the same way the
	// scan will.
	if c.Scan.Ports != "" {
		if _, err := ports.Parse(c.Scan.Ports); err != nil {
			return errors.ErrConfigInvalid("scan.ports", c.Scan.Ports)
		}
	}
	return nil
}

// ToOptions converts the scan configuration into engine options.
func (c *Config) ToOptions() (engine.Options, error) {
	opts := engine.Options{
		PortTimeout:     c.Scan.PortTimeout,
		PingTimeout:     c.Scan.PingTimeout,
		HostConcurrency: c.Scan.HostConcurrency,
		PortConcurrency: c.Scan.PortConcurrency,
		PingFirst:       c.Scan.PingFirst,
		SkipOffline:     c.Scan.SkipOffline,
		GrabBanners:     c.Scan.GrabBanners,
		RateLimit:       c.Scan.RateLimit,
		DNSServer:       c.Resolver.Server,
		ResolveTimeout:  c.Resolver.Timeout,
	}

	if c.Scan.Ports == "" {
		opts.Ports = ports.DefaultCommon()
	} else {
		parsed, err := ports.Parse(c.Scan.Ports)
		if err != nil {
			return engine.Options{}, err
		}
		opts.Ports = parsed
	}

	return opts, opts.Validate()
}
