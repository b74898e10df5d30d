// Package typemap maps C++/Qt type names to TypeScript notation.
//
// A Registry holds type definitions, aliases and three rule families
// (template substitution, namespace remapping, prioritized custom rules);
// a Converter resolves raw signature strings against it through a layered
// strategy chain, memoized per raw input. Every registry mutation
// invalidates the converter memo before the mutating call returns.
package typemap

// Definition category tags. Categories are informational: resolution never
// branches on them, but mapping files and the CLI report them.
const (
	CategoryPrimitive = "primitive"
	CategoryString    = "string"
	CategoryValue     = "value"
	CategoryContainer = "container"
	CategoryVariant   = "variant"
)

// Definition maps one source type name to its TypeScript target.
type Definition struct {
	// Name is the unique registry key, e.g. "int" or "QString".
	Name string
	// TargetType is the emitted TypeScript notation, e.g. "number".
	TargetType string
	// Category tags the definition (see Category constants).
	Category string
	// Aliases are alternative source spellings. Each alias resolves to
	// exactly one canonical name.
	Aliases []string
	// Description is optional documentation carried from mapping files.
	Description string
}
