// Package render emits TypeScript declaration source for the declarations
// a resolution session collected. Output is deterministic: declarations
// sort by full name, member order follows the documentation.
package render

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/logger"
	"github.com/docbind/docbind/signature"
	"github.com/docbind/docbind/typemap"
)

const fileHeader = `/* eslint-disable */
// AUTO-GENERATED by docbind - DO NOT EDIT
`

// signalHelper is the shape emitted for signal members. It is declared
// once per file, only when some declaration actually has signals.
const signalHelper = `type Signal<T extends (...args: any[]) => void> = {
  connect(slot: T): void;
  disconnect(slot: T): void;
};
`

// Renderer turns declarations into TypeScript source, converting every
// member type through the shared converter.
type Renderer struct {
	converter *typemap.Converter
	log       *zap.SugaredLogger
}

func NewRenderer(converter *typemap.Converter) *Renderer {
	return &Renderer{converter: converter, log: logger.Named("render")}
}

// RenderDeclarations renders a repository snapshot into one TypeScript
// source file. Classes become interfaces (plus a merged namespace block
// for their enums); namespace declarations contribute enum-only blocks.
func (r *Renderer) RenderDeclarations(decls map[string]*decl.Declaration) string {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	hasSignals := false
	var blocks []string
	for _, name := range names {
		d := decls[name]
		if d == nil {
			continue
		}
		if len(d.Signals) > 0 {
			hasSignals = true
		}
		if block := r.renderDeclaration(d); block != "" {
			blocks = append(blocks, block)
		}
	}

	var sb strings.Builder
	sb.WriteString(fileHeader)
	if hasSignals {
		sb.WriteString("\n")
		sb.WriteString(signalHelper)
	}
	for _, block := range blocks {
		sb.WriteString("\n")
		sb.WriteString(block)
	}

	r.log.Debugw("Rendered declarations", "declarations", len(blocks))
	return sb.String()
}

func (r *Renderer) renderDeclaration(d *decl.Declaration) string {
	var sb strings.Builder
	switch {
	case d.Kind == decl.KindNamespace:
		if len(d.Enums) == 0 {
			return ""
		}
		r.renderEnumBlock(&sb, namespacePath(d.FullName), d.Enums, "")
	case d.Namespace != "":
		sb.WriteString(fmt.Sprintf("export namespace %s {\n", namespacePath(d.Namespace)))
		r.renderClass(&sb, d, "  ")
		sb.WriteString("}\n")
	default:
		r.renderClass(&sb, d, "")
	}
	return sb.String()
}

func (r *Renderer) renderClass(sb *strings.Builder, d *decl.Declaration, indent string) {
	sb.WriteString(indent)
	sb.WriteString(fmt.Sprintf("export interface %s", d.Name))
	if ext := r.extendsList(d); len(ext) > 0 {
		sb.WriteString(" extends ")
		sb.WriteString(strings.Join(ext, ", "))
	}
	sb.WriteString(" {\n")

	inner := indent + "  "
	for _, prop := range d.Properties {
		name := memberName(prop.Name)
		if name == "" {
			continue
		}
		modifier := ""
		if prop.ReadOnly {
			modifier = "readonly "
		}
		sb.WriteString(fmt.Sprintf("%s%s%s: %s;\n", inner, modifier, name, r.converter.Convert(prop.Type)))
	}
	for _, m := range d.Methods {
		// Constructors, destructors and operator members have no
		// TypeScript rendering.
		if m.Name == d.Name {
			continue
		}
		name := memberName(m.Name)
		if name == "" {
			continue
		}
		returnType := "void"
		if m.ReturnType != "" {
			returnType = r.converter.Convert(m.ReturnType)
		}
		sb.WriteString(fmt.Sprintf("%s%s(%s): %s;\n", inner, name, r.paramList(m.Params), returnType))
	}
	for _, sig := range d.Signals {
		name := memberName(sig.Name)
		if name == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s%s: Signal<(%s) => void>;\n", inner, name, r.paramList(sig.Params)))
	}

	sb.WriteString(indent)
	sb.WriteString("}\n")

	if len(d.Enums) > 0 {
		sb.WriteString("\n")
		r.renderEnumBlock(sb, d.Name, d.Enums, indent)
	}
}

// renderEnumBlock emits enums inside a namespace block so they merge with
// the interface of the same name.
func (r *Renderer) renderEnumBlock(sb *strings.Builder, owner string, enums []decl.Enum, indent string) {
	sb.WriteString(fmt.Sprintf("%sexport namespace %s {\n", indent, owner))
	inner := indent + "  "
	first := true
	for _, e := range enums {
		if e.Name == "" || !isTSIdentifier(e.Name) {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		r.renderEnum(sb, e, inner)
	}
	sb.WriteString(indent)
	sb.WriteString("}\n")
}

// renderEnum keeps documented value order; implicit members rely on it.
func (r *Renderer) renderEnum(sb *strings.Builder, e decl.Enum, indent string) {
	sb.WriteString(fmt.Sprintf("%sexport enum %s {\n", indent, e.Name))
	inner := indent + "  "
	for _, v := range e.Values {
		if !isTSIdentifier(v.Name) {
			continue
		}
		if v.Value != "" {
			sb.WriteString(fmt.Sprintf("%s%s = %s,\n", inner, v.Name, v.Value))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s,\n", inner, v.Name))
		}
	}
	sb.WriteString(indent)
	sb.WriteString("}\n")
}

func (r *Renderer) paramList(params []decl.Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	used := make(map[string]int)
	for _, param := range params {
		name := paramName(param.Name)
		if name == "" {
			name = fallbackParamName(param.Type)
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s%d", name, n)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, r.converter.Convert(param.Type)))
	}
	return strings.Join(parts, ", ")
}

func (r *Renderer) extendsList(d *decl.Declaration) []string {
	var ext []string
	seen := make(map[string]struct{})
	for _, ref := range d.Inherits {
		converted := r.converter.Convert(ref.Type)
		if !isExtendable(converted) {
			continue
		}
		if _, dup := seen[converted]; dup {
			continue
		}
		seen[converted] = struct{}{}
		ext = append(ext, converted)
	}
	return ext
}

// memberName validates an interface member name. Reserved words are
// quoted; names TypeScript cannot express (operators, destructors) are
// dropped.
func memberName(name string) string {
	if !isTSIdentifier(name) {
		return ""
	}
	if tsReserved[name] {
		return fmt.Sprintf("%q", name)
	}
	return name
}

// paramName validates a parameter name. Quoting is not available in a
// parameter list, so reserved words get an underscore suffix.
func paramName(name string) string {
	if !isTSIdentifier(name) {
		return ""
	}
	if tsReserved[name] {
		return name + "_"
	}
	return name
}

// fallbackParamName derives a readable name for an undocumented parameter
// from its type ("const QString &" -> "qString").
func fallbackParamName(rawType string) string {
	base := signature.StripDecoration(rawType)
	if idx := strings.LastIndexAny(base, ":."); idx >= 0 {
		base = base[idx+1:]
	}
	name := ToCamelCase(base)
	if !isTSIdentifier(name) || tsReserved[name] {
		return "arg"
	}
	return name
}

// namespacePath renders a scope as a TypeScript namespace path.
func namespacePath(scope string) string {
	return strings.ReplaceAll(scope, "::", ".")
}

// isExtendable filters extends targets down to plain type references.
func isExtendable(name string) bool {
	if name == "" || name == "unknown" || name == "any" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || r == '.':
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isTSIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

var tsReserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true,
}
