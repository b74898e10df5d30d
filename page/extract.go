package page

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/docbind/docbind/decl"
)

// Layout conventions recognized by the extractor:
//
//   - The page title names the entity: "QWidget Class", "Qt Namespace",
//     optionally scoped ("QtWebEngine::QWebEnginePage Class") and
//     optionally suffixed ("... | Qt Widgets 6.5").
//   - A paragraph starting with "Inherits:" lists base types, each usually
//     an anchor.
//   - Section headings (h2/h3) group member tables: Properties, Public
//     Functions, Static Public Members, Public Slots, Signals, Public
//     Types. Each table row carries two cells: type (or return type) and
//     name (or call signature). A "(read-only)" marker in a property name
//     cell is recognized and stripped. Enum rows carry "enum" in the first
//     cell and "Name { Value = 0x1, ... }" in the second.

// ExtractDeclaration builds a declaration from a page, or returns nil when
// the page does not document a class or namespace.
func ExtractDeclaration(p *Page) *decl.Declaration {
	name, kind := declTitle(p.Title)
	if name == "" {
		return nil
	}

	fullName := strings.ReplaceAll(name, ".", "::")
	d := &decl.Declaration{FullName: fullName, Kind: kind, SourceURI: p.URI}
	if idx := strings.LastIndex(fullName, "::"); idx >= 0 {
		d.Namespace = fullName[:idx]
		d.Name = fullName[idx+2:]
	} else {
		d.Name = fullName
	}

	section := ""
	walk(p.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.H2, atom.H3:
			section = strings.ToLower(flattenText(n))
		case atom.P:
			text := flattenText(n)
			if rest, ok := strings.CutPrefix(text, "Inherits:"); ok {
				d.Inherits = inheritedRefs(n, rest)
			}
		case atom.Tr:
			extractRow(d, section, n)
		}
	})
	return d
}

// ExtractEnums collects every enumeration table row on a page, regardless
// of section. Namespace pages contribute enums this way.
func ExtractEnums(p *Page) []decl.Enum {
	var enums []decl.Enum
	walk(p.root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Tr {
			return
		}
		cells := rowCells(n)
		if len(cells) < 2 || !isEnumMarker(flattenText(cells[0])) {
			return
		}
		if enum, ok := parseEnumRow(flattenText(cells[1])); ok {
			enums = append(enums, enum)
		}
	})
	return enums
}

// IsNamespacePage reports whether a page documents a namespace rather than
// a class.
func IsNamespacePage(p *Page) bool {
	_, kind := declTitle(p.Title)
	return kind == decl.KindNamespace
}

// declTitle splits "QWidget Class" / "Qt Namespace" style titles into the
// entity name and kind.
func declTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	switch {
	case strings.HasSuffix(title, " Class"):
		return strings.TrimSuffix(title, " Class"), decl.KindClass
	case strings.HasSuffix(title, " Namespace"):
		return strings.TrimSuffix(title, " Namespace"), decl.KindNamespace
	}
	return "", ""
}

// inheritedRefs collects base types from an "Inherits:" paragraph: anchors
// when present, comma-separated text otherwise.
func inheritedRefs(n *html.Node, rest string) []decl.TypedRef {
	var refs []decl.TypedRef
	walk(n, func(c *html.Node) {
		if c.Type != html.ElementNode || c.DataAtom != atom.A {
			return
		}
		text := flattenText(c)
		if text == "" {
			return
		}
		refs = append(refs, decl.TypedRef{Type: text, Href: attrValue(c, "href")})
	})
	if len(refs) > 0 {
		return refs
	}
	for _, part := range strings.Split(rest, ",") {
		if part = strings.TrimSpace(part); part != "" {
			refs = append(refs, decl.TypedRef{Type: part})
		}
	}
	return refs
}

func extractRow(d *decl.Declaration, section string, row *html.Node) {
	cells := rowCells(row)
	if len(cells) < 2 {
		return
	}
	first := flattenText(cells[0])
	second := flattenText(cells[1])
	if first == "" || second == "" {
		return
	}

	switch {
	case strings.Contains(section, "propert"):
		name, readOnly := strings.CutSuffix(second, "(read-only)")
		d.Properties = append(d.Properties, decl.Property{
			Name:     strings.TrimSpace(name),
			Type:     first,
			ReadOnly: readOnly,
		})
	case strings.Contains(section, "signal"):
		name, params, _ := parseSignature(second)
		d.Signals = append(d.Signals, decl.Method{
			Name: name, ReturnType: first, Params: params,
		})
	case strings.Contains(section, "slot"):
		name, params, isConst := parseSignature(second)
		d.Methods = append(d.Methods, decl.Method{
			Name: name, ReturnType: returnType(first), Params: params,
			Kind: decl.MethodKindSlot, Const: isConst,
		})
	case strings.Contains(section, "static"):
		name, params, isConst := parseSignature(second)
		d.Methods = append(d.Methods, decl.Method{
			Name: name, ReturnType: returnType(first), Params: params,
			Kind: decl.MethodKindMethod, Const: isConst, Static: true,
		})
	case strings.Contains(section, "function") || strings.Contains(section, "member"):
		name, params, isConst := parseSignature(second)
		d.Methods = append(d.Methods, decl.Method{
			Name: name, ReturnType: returnType(first), Params: params,
			Kind: decl.MethodKindMethod, Const: isConst,
		})
	case strings.Contains(section, "type"):
		if !isEnumMarker(first) {
			return
		}
		if enum, ok := parseEnumRow(second); ok {
			d.Enums = append(d.Enums, enum)
		}
	}
}

// rowCells returns the td elements directly under a table row.
func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Td {
			cells = append(cells, c)
		}
	}
	return cells
}

func isEnumMarker(text string) bool {
	return text == "enum" || text == "flags"
}

func returnType(text string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, "virtual "))
}

// parseSignature splits "name(type1 arg1, type2 arg2) const" call
// signatures.
func parseSignature(sig string) (string, []decl.Param, bool) {
	sig = strings.TrimSpace(sig)
	isConst := false
	if trimmed, ok := strings.CutSuffix(sig, "const"); ok {
		trimmed = strings.TrimSpace(trimmed)
		if strings.HasSuffix(trimmed, ")") {
			isConst = true
			sig = trimmed
		}
	}

	open := strings.Index(sig, "(")
	if open < 0 {
		return sig, nil, isConst
	}
	closing := strings.LastIndex(sig, ")")
	if closing < open {
		return strings.TrimSpace(sig[:open]), nil, isConst
	}

	name := strings.TrimSpace(sig[:open])
	var params []decl.Param
	for _, part := range splitParams(sig[open+1 : closing]) {
		if param, ok := parseParam(part); ok {
			params = append(params, param)
		}
	}
	return name, params, isConst
}

// splitParams splits a parameter list on commas outside any bracket
// nesting.
func splitParams(text string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range text {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}

// parseParam splits one "const QString &text = QString()" parameter into
// its type text and name. Default values are dropped; a parameter with no
// recognizable trailing identifier keeps its whole text as the type.
func parseParam(text string) (decl.Param, bool) {
	if idx := strings.Index(text, "="); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if text == "" || text == "void" {
		return decl.Param{}, false
	}

	idx := strings.LastIndex(text, " ")
	if idx < 0 {
		return decl.Param{Type: text}, true
	}
	name := text[idx+1:]
	typeText := strings.TrimSpace(text[:idx])
	for name != "" && (name[0] == '*' || name[0] == '&') {
		typeText += " " + name[:1]
		name = name[1:]
	}
	if !isIdentifier(name) {
		return decl.Param{Type: text}, true
	}
	return decl.Param{Name: name, Type: typeText}, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// parseEnumRow splits "Alignment { AlignLeft = 0x1, AlignRight }" cells.
// Scoped names keep only their last segment.
func parseEnumRow(text string) (decl.Enum, bool) {
	name := text
	var body string
	if open := strings.Index(text, "{"); open >= 0 {
		name = strings.TrimSpace(text[:open])
		closing := strings.LastIndex(text, "}")
		if closing > open {
			body = text[open+1 : closing]
		}
	}
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	if name == "" {
		return decl.Enum{}, false
	}

	enum := decl.Enum{Name: name}
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value := decl.EnumValue{Name: part}
		if idx := strings.Index(part, "="); idx >= 0 {
			value.Name = strings.TrimSpace(part[:idx])
			value.Value = strings.TrimSpace(part[idx+1:])
		}
		if value.Name == "" {
			continue
		}
		enum.Values = append(enum.Values, value)
	}
	return enum, true
}
