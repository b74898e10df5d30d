package signature

import "strings"

// Type is the structured form of a C++/Qt type signature.
//
// Qualifiers (const, pointer, reference) are carried as flags and never
// participate in FullName: "const QString &" and "QString" name the same
// logical type.
type Type struct {
	BaseType     string
	Namespace    string
	TemplateArgs []*Type
	IsConst      bool
	IsPointer    bool
	IsReference  bool
	IsArray      bool
}

// FullName renders the canonical name: [Namespace::]BaseType[<args>][[]].
// Parsing a FullName yields a Type whose FullName is identical.
func (t *Type) FullName() string {
	var sb strings.Builder
	if t.Namespace != "" {
		sb.WriteString(t.Namespace)
		sb.WriteString("::")
	}
	sb.WriteString(t.BaseType)
	if len(t.TemplateArgs) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.TemplateArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.FullName())
		}
		sb.WriteByte('>')
	}
	if t.IsArray {
		sb.WriteString("[]")
	}
	return sb.String()
}

var qualifierReplacer = strings.NewReplacer("*", "", "&", "")

// CleanTypeText strips qualifier noise from a raw signature without parsing
// it: const and volatile keywords, pointer and reference markers, collapsed
// whitespace. This is the fallback form used when a signature does not
// parse.
func CleanTypeText(text string) string {
	text = qualifierReplacer.Replace(text)
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, field := range fields {
		if field == "const" || field == "volatile" {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// StripDecoration reduces a raw type string to its bare lookup name:
// qualifiers removed, template arguments and array suffix cut off. This is
// the form builtin detection checks against the registry.
func StripDecoration(text string) string {
	cleaned := CleanTypeText(text)
	if idx := strings.IndexAny(cleaned, "<["); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}
