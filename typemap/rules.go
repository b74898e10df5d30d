package typemap

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/docbind/docbind/errors"
)

// TemplateRule substitutes a parametrized type instantiation. The pattern's
// base-type portion (pattern text with regex anchors stripped, cut at the
// first '<') must equal the parsed base type exactly; the pattern is never
// regex-matched against the full generic expression. Each $n placeholder in
// the replacement receives the converted n-th template argument, 1-based.
type TemplateRule struct {
	Pattern     string
	Replacement string
	Description string

	base string
}

// BasePortion returns the base-type name the rule applies to.
func (r *TemplateRule) BasePortion() string {
	if r.base == "" {
		r.base = templateBasePortion(r.Pattern)
	}
	return r.base
}

func templateBasePortion(pattern string) string {
	base := strings.TrimPrefix(pattern, "^")
	base = strings.TrimSuffix(base, "$")
	if idx := strings.Index(base, "<"); idx >= 0 {
		base = base[:idx]
	}
	return strings.TrimSpace(base)
}

// NamespaceRule remaps or strips a namespace prefix. Source is stored in
// canonical "::" form; rules written with the dotted convention are
// normalized at registration.
type NamespaceRule struct {
	Source string
	Target string
	Strip  bool
}

// Match kinds understood by the custom rule interpreter.
const (
	MatchLiteral = "literal"
	MatchPrefix  = "prefix"
	MatchRegex   = "regex"
)

// Match is the serializable condition of a custom rule: a tagged variant
// instead of an arbitrary predicate, so rules can live in mapping files.
type Match struct {
	Kind  string
	Value string

	re *regexp.Regexp
}

func (m *Match) compile() error {
	switch m.Kind {
	case MatchLiteral, MatchPrefix:
		return nil
	case MatchRegex:
		re, err := regexp.Compile(m.Value)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigLoad, "invalid match regex %q: %v", m.Value, err)
		}
		m.re = re
		return nil
	default:
		return errors.Wrapf(errors.ErrConfigLoad, "unknown match kind %q", m.Kind)
	}
}

// captures evaluates the condition against a cleaned type string. On a
// match it returns the capture list for rewrite expansion: index 0 is the
// cleaned input, higher indices are regex groups.
func (m *Match) captures(cleaned string) ([]string, bool) {
	switch m.Kind {
	case MatchLiteral:
		if cleaned == m.Value {
			return []string{cleaned}, true
		}
	case MatchPrefix:
		if strings.HasPrefix(cleaned, m.Value) {
			return []string{cleaned}, true
		}
	case MatchRegex:
		if groups := m.re.FindStringSubmatch(cleaned); groups != nil {
			groups[0] = cleaned
			return groups, true
		}
	}
	return nil, false
}

// CustomRule short-circuits every other resolution strategy when its Match
// condition holds. Rules are evaluated strictly in descending Priority;
// ties keep registration order.
type CustomRule struct {
	Name     string
	Priority int
	Match    Match
	Rewrite  string
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// expandPlaceholders substitutes $n references in a rewrite template.
// Out-of-range references expand to the empty string.
func expandPlaceholders(template string, captures []string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(ref string) string {
		idx, err := strconv.Atoi(ref[1:])
		if err != nil || idx < 0 || idx >= len(captures) {
			return ""
		}
		return captures[idx]
	})
}

// placeholderIndices lists the distinct $n references in a template.
func placeholderIndices(template string) []int {
	var indices []int
	seen := map[int]struct{}{}
	for _, groups := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		idx, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	return indices
}
