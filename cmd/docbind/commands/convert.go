package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/docbind/docbind/display"
	"github.com/docbind/docbind/typemap"
)

var convertMappings string

// ConvertCmd represents the convert command
var ConvertCmd = &cobra.Command{
	Use:   "convert <signature>...",
	Short: "Convert raw C++ type signatures to TypeScript",
	Long: `Convert one or more raw C++ type signatures to TypeScript notation.

Each signature goes through the full conversion chain: custom rules, array
unwrapping, template substitution, namespace remapping, and registry
lookup, with cleaned-text fallback for types nothing matched.

Examples:
  docbind convert "const QString &"
  docbind convert "QList<QString>" "QMap<QString, int>"
  docbind convert --mappings mappings.toml "MyCustomType *"
  docbind convert --json "QVariant"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	ConvertCmd.Flags().StringVarP(&convertMappings, "mappings", "m", "", "Type mapping file to load before converting")
	ConvertCmd.Flags().Bool("json", false, "Output conversions as JSON")
}

// conversion pairs one input signature with its TypeScript rendering.
type conversion struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	registry := typemap.NewRegistry()
	if convertMappings != "" {
		loader := typemap.NewLoader(afs.New())
		if err := loader.Load(cmd.Context(), convertMappings, registry); err != nil {
			return err
		}
	}
	converter := typemap.NewConverter(registry)

	conversions := make([]conversion, 0, len(args))
	for _, raw := range args {
		conversions = append(conversions, conversion{Input: raw, Output: converter.Convert(raw)})
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(conversions)
	}
	for _, c := range conversions {
		pterm.Printf("%s → %s\n", pterm.LightCyan(c.Input), pterm.Green(c.Output))
	}
	return nil
}
