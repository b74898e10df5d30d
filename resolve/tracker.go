package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/docbind/docbind/decl"
	"github.com/docbind/docbind/fetch"
	"github.com/docbind/docbind/logger"
	"github.com/docbind/docbind/page"
	"github.com/docbind/docbind/signature"
	"github.com/docbind/docbind/typemap"
)

// Usage classifies where in a declaration a type dependency was found.
const (
	UsageProperty     = "property"
	UsageMethodParam  = "method_param"
	UsageMethodReturn = "method_return"
	UsageSignalParam  = "signal_param"
	UsageInheritance  = "inheritance"
)

// TypeDependency is one non-builtin type referenced by a declaration,
// enriched with the cross-reference link discovered for it, if any.
// LinkedHref is resolved against the declaration's source URI, so equal
// hrefs name the same document regardless of which page mentioned them.
type TypeDependency struct {
	TypeName       string
	Namespace      string
	FullName       string
	LinkedHref     string
	SourceLocation string
	Usage          string
}

// Tracker extracts the type dependencies of a declaration and matches them
// against the hyperlinks found on the declaration's originating document.
type Tracker struct {
	registry         *typemap.Registry
	primaryNamespace string
	baseURL          string
	log              *zap.SugaredLogger
}

// NewTracker builds a tracker that skips types the registry knows as
// builtin. primaryNamespace widens link matching for bare type names that
// documentation pages list under their framework namespace.
func NewTracker(registry *typemap.Registry, primaryNamespace string) *Tracker {
	return &Tracker{
		registry:         registry,
		primaryNamespace: strings.ReplaceAll(primaryNamespace, ".", "::"),
		log:              logger.Named("resolve"),
	}
}

// SetBaseURL makes relative cross-reference links resolve against base
// instead of the page they were found on. Useful when pages are read from
// a mirror whose links target the canonical documentation root.
func (t *Tracker) SetBaseURL(base string) {
	t.baseURL = base
}

// Extract walks the typed members of a declaration and returns its
// deduplicated non-builtin dependencies in discovery order. The first
// occurrence of a full name wins, so its usage reflects where the type was
// seen first. When the originating page is available its links are used to
// attach a LinkedHref to each dependency.
func (t *Tracker) Extract(d *decl.Declaration, p *page.Page) []TypeDependency {
	if d == nil {
		return nil
	}

	var deps []TypeDependency
	seen := make(map[string]struct{})
	add := func(raw, usage string) {
		dep, ok := t.dependencyFor(raw, usage, d.SourceURI)
		if !ok {
			return
		}
		if _, dup := seen[dep.FullName]; dup {
			return
		}
		seen[dep.FullName] = struct{}{}
		deps = append(deps, dep)
	}

	for _, ref := range d.Inherits {
		add(ref.Type, UsageInheritance)
	}
	for _, prop := range d.Properties {
		add(prop.Type, UsageProperty)
	}
	for _, m := range d.Methods {
		add(m.ReturnType, UsageMethodReturn)
		for _, param := range m.Params {
			add(param.Type, UsageMethodParam)
		}
	}
	for _, sig := range d.Signals {
		for _, param := range sig.Params {
			add(param.Type, UsageSignalParam)
		}
	}

	if p != nil && len(deps) > 0 {
		t.attachLinks(deps, p)
	}
	if len(deps) > 0 {
		t.log.Debugw("Extracted type dependencies",
			"declaration", d.FullName,
			"count", len(deps))
	}
	return deps
}

// dependencyFor reduces one raw member type to a trackable dependency.
// Builtins, structural literals, and empty leftovers yield no dependency.
func (t *Tracker) dependencyFor(raw, usage, source string) (TypeDependency, bool) {
	cleaned := signature.CleanTypeText(raw)
	if cleaned == "" || strings.HasPrefix(cleaned, "{") {
		return TypeDependency{}, false
	}
	if t.registry.IsBuiltin(cleaned) {
		return TypeDependency{}, false
	}

	namespace, name := splitScoped(signature.StripDecoration(cleaned))
	if name == "" {
		return TypeDependency{}, false
	}

	dep := TypeDependency{
		TypeName:       name,
		Namespace:      namespace,
		FullName:       name,
		SourceLocation: source,
		Usage:          usage,
	}
	if namespace != "" {
		dep.FullName = namespace + "::" + name
	}
	return dep, true
}

// attachLinks matches each dependency against the page's link index and
// stores the first hit, resolved against the declaration's source URI (or
// the configured base URL).
func (t *Tracker) attachLinks(deps []TypeDependency, p *page.Page) {
	index := buildLinkIndex(p)
	if len(index) == 0 {
		return
	}
	for i := range deps {
		base := deps[i].SourceLocation
		if t.baseURL != "" {
			base = t.baseURL
		}
		for _, candidate := range t.linkCandidates(deps[i]) {
			href, ok := index[candidate]
			if !ok {
				continue
			}
			deps[i].LinkedHref = fetch.ResolveRef(base, href)
			break
		}
	}
}

// linkCandidates lists the names a dependency may appear under in page
// links, most specific first.
func (t *Tracker) linkCandidates(dep TypeDependency) []string {
	candidates := []string{dep.FullName, dep.TypeName}
	if t.primaryNamespace != "" && dep.Namespace == "" {
		candidates = append(candidates, t.primaryNamespace+"::"+dep.TypeName)
	}
	if converted := convertSeparators(dep.FullName); converted != dep.FullName {
		candidates = append(candidates, converted)
	}
	return candidates
}

// buildLinkIndex maps type-looking link texts to their hrefs. Both the full
// scoped spelling and the unqualified tail are registered; the first link
// in document order wins on duplicates.
func buildLinkIndex(p *page.Page) map[string]string {
	index := make(map[string]string, len(p.Links))
	register := func(name, href string) {
		if name == "" {
			return
		}
		if _, ok := index[name]; !ok {
			index[name] = href
		}
	}
	for _, link := range p.Links {
		if !looksLikeTypeName(link.Text) {
			continue
		}
		register(link.Text, link.Href)
		if idx := strings.LastIndexAny(link.Text, ":."); idx >= 0 {
			register(link.Text[idx+1:], link.Href)
		}
	}
	return index
}

// looksLikeTypeName reports whether a link text could name a type: an
// identifier optionally scoped with "::" or ".".
func looksLikeTypeName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == ':' || r == '.':
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

// splitScoped splits a bare type name into namespace and final segment,
// treating "." and "::" as the same separator.
func splitScoped(s string) (namespace, name string) {
	s = strings.ReplaceAll(s, ".", "::")
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		return s[:idx], s[idx+2:]
	}
	return "", s
}

// convertSeparators flips a scoped name between "::" and "." spelling.
func convertSeparators(s string) string {
	if strings.Contains(s, "::") {
		return strings.ReplaceAll(s, "::", ".")
	}
	return strings.ReplaceAll(s, ".", "::")
}
