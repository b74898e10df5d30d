package typemap

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/docbind/docbind/errors"
)

// SupportedConfigConstraint gates the mapping payload versions this build
// understands.
const SupportedConfigConstraint = "^1"

// Format names accepted by ParseMappingConfig.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// MappingConfig is the external mapping payload. Loading is all-or-nothing:
// a payload that fails validation leaves the registry untouched.
type MappingConfig struct {
	Version           string             `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Mappings          []MappingEntry     `json:"mappings,omitempty" yaml:"mappings,omitempty" toml:"mappings,omitempty"`
	TemplateMappings  []TemplateMapping  `json:"templateMappings,omitempty" yaml:"templateMappings,omitempty" toml:"templateMappings,omitempty"`
	NamespaceMappings []NamespaceMapping `json:"namespaceMappings,omitempty" yaml:"namespaceMappings,omitempty" toml:"namespaceMappings,omitempty"`
	CustomRules       []CustomRuleEntry  `json:"customRules,omitempty" yaml:"customRules,omitempty" toml:"customRules,omitempty"`
}

// MappingEntry declares one type definition.
type MappingEntry struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	TargetType  string   `json:"targetType" yaml:"targetType" toml:"targetType"`
	Category    string   `json:"category" yaml:"category" toml:"category"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty" toml:"aliases,omitempty"`
}

// TemplateMapping declares one template substitution rule.
type TemplateMapping struct {
	Pattern     string `json:"pattern" yaml:"pattern" toml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

// NamespaceMapping declares one namespace remapping rule.
type NamespaceMapping struct {
	SourceNamespace string `json:"sourceNamespace" yaml:"sourceNamespace" toml:"sourceNamespace"`
	TargetNamespace string `json:"targetNamespace,omitempty" yaml:"targetNamespace,omitempty" toml:"targetNamespace,omitempty"`
	StripNamespace  bool   `json:"stripNamespace,omitempty" yaml:"stripNamespace,omitempty" toml:"stripNamespace,omitempty"`
}

// CustomRuleEntry declares one prioritized custom rule.
type CustomRuleEntry struct {
	Name     string    `json:"name" yaml:"name" toml:"name"`
	Priority int       `json:"priority" yaml:"priority" toml:"priority"`
	Match    MatchSpec `json:"match" yaml:"match" toml:"match"`
	Rewrite  string    `json:"rewrite" yaml:"rewrite" toml:"rewrite"`
}

// MatchSpec is the serialized form of a rule condition.
type MatchSpec struct {
	Kind  string `json:"kind" yaml:"kind" toml:"kind"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// ParseMappingConfig decodes a payload strictly: unknown keys fail the
// parse in every format, and an unsupported version is rejected before any
// content is inspected.
func ParseMappingConfig(data []byte, format string) (*MappingConfig, error) {
	var cfg MappingConfig
	switch strings.ToLower(format) {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrConfigLoad, "invalid JSON mapping payload: %v", err)
		}
	case FormatYAML, "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrConfigLoad, "invalid YAML mapping payload: %v", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrConfigLoad, "invalid TOML mapping payload: %v", err)
		}
	default:
		return nil, errors.Wrapf(errors.ErrConfigLoad, "unsupported mapping format %q", format)
	}

	if err := validateConfigVersion(cfg.Version); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfigVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigLoad, "invalid mapping config version %q: %v", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedConfigConstraint)
	if err != nil {
		return errors.Wrapf(errors.ErrConfigLoad, "invalid version constraint %q: %v", SupportedConfigConstraint, err)
	}
	if !constraint.Check(v) {
		return errors.Wrapf(errors.ErrConfigLoad,
			"mapping config version %s is not supported (requires %s)", version, SupportedConfigConstraint)
	}
	return nil
}

// LoadMappingConfig applies a payload on top of fresh defaults and swaps
// the result in atomically. Payload template rules take precedence over the
// seeded defaults; definitions override defaults by name. Any invalid entry
// fails the whole load and leaves the registry exactly as it was.
func (r *Registry) LoadMappingConfig(cfg *MappingConfig) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrConfigLoad, "nil mapping config")
	}
	if err := validateConfigVersion(cfg.Version); err != nil {
		return err
	}

	staged := NewRegistry()

	seen := map[string]struct{}{}
	for _, entry := range cfg.Mappings {
		if _, dup := seen[entry.Name]; dup {
			return errors.Wrapf(errors.ErrConfigLoad, "duplicate mapping %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		if entry.Category == "" {
			return errors.Wrapf(errors.ErrConfigLoad, "mapping %q requires a category", entry.Name)
		}
		def := Definition{
			Name:        entry.Name,
			TargetType:  entry.TargetType,
			Category:    entry.Category,
			Aliases:     entry.Aliases,
			Description: entry.Description,
		}
		if err := staged.RegisterType(def); err != nil {
			return err
		}
	}

	templates := make([]TemplateRule, 0, len(cfg.TemplateMappings)+len(staged.templates))
	for _, entry := range cfg.TemplateMappings {
		rule := TemplateRule{
			Pattern:     entry.Pattern,
			Replacement: entry.Replacement,
			Description: entry.Description,
		}
		if err := validateTemplateRule(&rule); err != nil {
			return err
		}
		templates = append(templates, rule)
	}
	templates = append(templates, staged.templates...)
	staged.templates = templates

	for _, entry := range cfg.NamespaceMappings {
		rule := NamespaceRule{
			Source: entry.SourceNamespace,
			Target: entry.TargetNamespace,
			Strip:  entry.StripNamespace,
		}
		if err := staged.AddNamespaceRule(rule); err != nil {
			return err
		}
	}

	for _, entry := range cfg.CustomRules {
		rule := CustomRule{
			Name:     entry.Name,
			Priority: entry.Priority,
			Match:    Match{Kind: entry.Match.Kind, Value: entry.Match.Value},
			Rewrite:  entry.Rewrite,
		}
		if err := staged.AddCustomRule(rule); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.defs = staged.defs
	r.aliases = staged.aliases
	r.templates = staged.templates
	r.namespaces = staged.namespaces
	r.custom = staged.custom
	r.generation++
	r.mu.Unlock()
	r.notifyMutation()
	return nil
}
