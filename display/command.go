// Package display holds shared CLI output helpers so every command formats
// machine-readable output the same way.
package display

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON reports whether a command should emit JSON. A --json
// flag on the command itself wins; otherwise the root command's persistent
// --json flag decides.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}
	globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return globalFlag
}

// OutputJSON marshals v and prints it to stdout.
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
