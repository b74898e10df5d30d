package commands

import (
	"encoding/json"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/docbind/docbind/typemap"
)

// MappingsCmd groups the type mapping subcommands
var MappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect and validate type mapping files",
	Long: `Inspect and validate the type mapping files docbind loads into its
type registry.

Mapping files declare type definitions, template substitution rules,
namespace remapping rules, and prioritized custom rules, in JSON, YAML or
TOML. Loading is all-or-nothing: a payload that fails validation leaves
the registry untouched.

Examples:
  docbind mappings validate mappings.toml   # Parse and apply to a scratch registry
  docbind mappings show                     # Show the effective built-in registry
  docbind mappings show -m mappings.toml    # Show built-ins plus a mapping file
  docbind mappings show --format json`,
}

var mappingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective type registry",
	Long:  "Display every definition and rule the registry would hold, in mapping file shape",
	RunE:  runMappingsShow,
}

var mappingsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a mapping file",
	Long:  "Parse a mapping file and apply it to a scratch registry, reporting what it declares",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingsValidate,
}

var (
	mappingsFormat string
	mappingsFile   string
)

func init() {
	mappingsShowCmd.Flags().StringVar(&mappingsFormat, "format", "toml", "Output format: toml, json, yaml")
	mappingsShowCmd.Flags().StringVarP(&mappingsFile, "mappings", "m", "", "Mapping file to overlay on the built-in registry")

	MappingsCmd.AddCommand(mappingsShowCmd)
	MappingsCmd.AddCommand(mappingsValidateCmd)
}

func runMappingsValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := typemap.FormatForURL(path)
	if err != nil {
		return err
	}
	data, err := afs.New().DownloadWithURL(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to read mapping file: %w", err)
	}
	cfg, err := typemap.ParseMappingConfig(data, format)
	if err != nil {
		return err
	}
	// Apply to a scratch registry so conflicts with built-ins surface too.
	if err := typemap.NewRegistry().LoadMappingConfig(cfg); err != nil {
		return err
	}

	fmt.Println("✓ Mapping file is valid")
	if cfg.Version != "" {
		fmt.Printf("  Version: %s\n", cfg.Version)
	}
	fmt.Printf("  Mappings: %d\n", len(cfg.Mappings))
	fmt.Printf("  Template rules: %d\n", len(cfg.TemplateMappings))
	fmt.Printf("  Namespace rules: %d\n", len(cfg.NamespaceMappings))
	fmt.Printf("  Custom rules: %d\n", len(cfg.CustomRules))
	return nil
}

func runMappingsShow(cmd *cobra.Command, args []string) error {
	registry := typemap.NewRegistry()
	if mappingsFile != "" {
		if err := typemap.NewLoader(afs.New()).Load(cmd.Context(), mappingsFile, registry); err != nil {
			return err
		}
	}

	doc := snapshotRegistry(registry)

	switch mappingsFormat {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal mappings to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal mappings to YAML: %w", err)
		}
		fmt.Printf("# docbind effective type mappings\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal mappings to TOML: %w", err)
		}
		fmt.Printf("# docbind effective type mappings\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", mappingsFormat)
	}

	return nil
}

// snapshotRegistry renders the registry's effective content in mapping
// file shape, so show output reads like the files users write.
func snapshotRegistry(r *typemap.Registry) *typemap.MappingConfig {
	doc := &typemap.MappingConfig{}
	for _, def := range r.Definitions() {
		doc.Mappings = append(doc.Mappings, typemap.MappingEntry{
			Name:        def.Name,
			TargetType:  def.TargetType,
			Category:    def.Category,
			Description: def.Description,
			Aliases:     def.Aliases,
		})
	}
	for _, rule := range r.TemplateRules() {
		doc.TemplateMappings = append(doc.TemplateMappings, typemap.TemplateMapping{
			Pattern:     rule.Pattern,
			Replacement: rule.Replacement,
			Description: rule.Description,
		})
	}
	for _, rule := range r.NamespaceRules() {
		doc.NamespaceMappings = append(doc.NamespaceMappings, typemap.NamespaceMapping{
			SourceNamespace: rule.Source,
			TargetNamespace: rule.Target,
			StripNamespace:  rule.Strip,
		})
	}
	for _, rule := range r.CustomRules() {
		doc.CustomRules = append(doc.CustomRules, typemap.CustomRuleEntry{
			Name:     rule.Name,
			Priority: rule.Priority,
			Match:    typemap.MatchSpec{Kind: rule.Match.Kind, Value: rule.Match.Value},
			Rewrite:  rule.Rewrite,
		})
	}
	return doc
}
