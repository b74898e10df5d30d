package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbind/docbind/cmd/docbind/commands"
	"github.com/docbind/docbind/logger"
)

var rootCmd = &cobra.Command{
	Use:   "docbind",
	Short: "docbind - TypeScript declarations from API documentation",
	Long: `docbind - Generate TypeScript declaration files from API documentation.

docbind reads C++/Qt-style API documentation pages, follows cross-reference
links to the types they mention, and emits a TypeScript .d.ts file covering
every declaration it discovered.

Available commands:
  generate - Generate a .d.ts file from a documentation page
  convert  - Convert raw C++ type signatures to TypeScript
  mappings - Inspect and validate type mapping files
  version  - Show version information

Examples:
  docbind generate --root https://doc.qt.io/qt-6/qwidget.html
  docbind generate --config docbind.toml --watch
  docbind convert "const QList<QString> &"
  docbind mappings validate mappings.toml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(logJSON, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit structured JSON logs instead of console output")
	rootCmd.PersistentFlags().Bool("json", false, "Output results in JSON format where supported")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.ConvertCmd)
	rootCmd.AddCommand(commands.MappingsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
