package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/docbind/docbind/errors"
)

const (
	// EnvPrefix namespaces environment overrides, e.g.
	// DOCBIND_RESOLVER_MAX_DEPTH.
	EnvPrefix = "DOCBIND"

	// FileName is the project configuration file Load searches for.
	FileName = "docbind.toml"
)

// Load reads configuration from defaults, the nearest docbind.toml up the
// directory tree when one exists, and DOCBIND_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrConfigLoad, "read config file %s: %v", path, err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from an explicit TOML file over the
// defaults. Environment variables are not consulted.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigLoad, "read config file %s: %v", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigLoad, "unmarshal config: %v", err)
	}
	return &cfg, nil
}

// findProjectConfig walks up from the working directory looking for
// docbind.toml and returns the first hit, or "".
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
