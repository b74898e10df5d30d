package config

import "github.com/spf13/viper"

// SetDefaults registers the default value for every configuration key.
// Every key must have a default here so environment-only overrides are
// visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	// Source
	v.SetDefault("source.root", "")
	v.SetDefault("source.base_url", "")

	// Registry
	v.SetDefault("registry.mappings_file", "")
	v.SetDefault("registry.primary_namespace", "Qt")

	// Resolver
	v.SetDefault("resolver.max_depth", 50)
	v.SetDefault("resolver.max_concurrent_fetches", 8)
	v.SetDefault("resolver.rate_per_second", 10.0)
	v.SetDefault("resolver.fetch_timeout_seconds", 30)

	// Output
	v.SetDefault("output.dir", "types")
	v.SetDefault("output.file_name", "")

	// Log
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}
