// Package config carries docbind's application configuration: where the
// documentation lives, how the resolver paces itself, and where generated
// output lands. Values load in layers — defaults, a TOML file, then
// DOCBIND_* environment variables — in rising precedence.
package config

import (
	"time"

	"github.com/docbind/docbind/errors"
)

// Config is the root configuration document.
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Registry RegistryConfig `mapstructure:"registry"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
}

// SourceConfig names the documentation to read.
type SourceConfig struct {
	Root    string `mapstructure:"root"`     // entry page: http(s) URL or storage URI
	BaseURL string `mapstructure:"base_url"` // overrides the base relative links resolve against
}

// RegistryConfig tunes the type registry.
type RegistryConfig struct {
	MappingsFile     string `mapstructure:"mappings_file"`     // optional mapping payload (json/yaml/toml)
	PrimaryNamespace string `mapstructure:"primary_namespace"` // widens bare-name link matching (default: Qt)
}

// ResolverConfig paces the dependency resolution service.
type ResolverConfig struct {
	MaxDepth             int     `mapstructure:"max_depth"`              // fixpoint round cap (default: 50)
	MaxConcurrentFetches int     `mapstructure:"max_concurrent_fetches"` // per-round fetch parallelism (default: 8)
	RatePerSecond        float64 `mapstructure:"rate_per_second"`        // network fetch throttle (default: 10)
	FetchTimeoutSeconds  int     `mapstructure:"fetch_timeout_seconds"`  // per-request timeout (default: 30)
}

// OutputConfig places the generated declarations.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`       // output directory or storage URI
	FileName string `mapstructure:"file_name"` // empty derives a name from the root page title
}

// LogConfig mirrors logger.Initialize.
type LogConfig struct {
	JSON      bool `mapstructure:"json"`
	Verbosity int  `mapstructure:"verbosity"`
}

// Validate checks the fields the generate pipeline cannot default its way
// around.
func (c *Config) Validate() error {
	if c.Source.Root == "" {
		return errors.Wrap(errors.ErrConfigLoad, "source.root is required")
	}
	if c.Output.Dir == "" {
		return errors.Wrap(errors.ErrConfigLoad, "output.dir is required")
	}
	if c.Resolver.MaxDepth < 0 {
		return errors.Wrap(errors.ErrConfigLoad, "resolver.max_depth cannot be negative")
	}
	if c.Resolver.MaxConcurrentFetches < 0 {
		return errors.Wrap(errors.ErrConfigLoad, "resolver.max_concurrent_fetches cannot be negative")
	}
	if c.Resolver.FetchTimeoutSeconds <= 0 {
		return errors.Wrap(errors.ErrConfigLoad, "resolver.fetch_timeout_seconds must be positive")
	}
	return nil
}

// FetchTimeout returns the per-request fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Resolver.FetchTimeoutSeconds) * time.Second
}
