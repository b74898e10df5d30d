package typemap

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/docbind/docbind/logger"
	"github.com/docbind/docbind/signature"
)

// UnknownType is emitted when nothing usable remains of a signature after
// cleaning.
const UnknownType = "unknown"

// Converter resolves raw signature strings to TypeScript notation through
// a layered strategy chain: custom rules, array unwrapping, template
// substitution, namespace remapping, direct lookup, cleaned-text fallback.
// Convert never fails.
//
// Results are memoized by the raw input string. The converter registers an
// invalidation hook with its registry, so any mutation empties the memo
// before the mutating call returns; a stale conversion is never served.
type Converter struct {
	registry *Registry
	log      *zap.SugaredLogger

	mu            sync.Mutex
	memo          map[string]string
	hits          uint64
	misses        uint64
	invalidations uint64
}

// NewConverter creates a converter bound to a registry.
func NewConverter(registry *Registry) *Converter {
	c := &Converter{
		registry: registry,
		log:      logger.Named("typemap"),
		memo:     map[string]string{},
	}
	registry.OnMutation(c.Invalidate)
	return c
}

// Convert resolves a raw signature to TypeScript notation. Unknown or
// unparseable input degrades to the cleaned string, or the unknown marker
// when nothing remains after cleaning.
func (c *Converter) Convert(raw string) string {
	if out, ok := c.memoGet(raw); ok {
		return out
	}
	out := c.resolve(raw, map[string]struct{}{})
	c.memoPut(raw, out)
	return out
}

// convertNested resolves recursively converted fragments (template
// arguments, rewrite results, array elements) with the same memo, carrying
// the in-flight set that breaks rewrite cycles.
func (c *Converter) convertNested(raw string, inFlight map[string]struct{}) string {
	if out, ok := c.memoGet(raw); ok {
		return out
	}
	out := c.resolve(raw, inFlight)
	c.memoPut(raw, out)
	return out
}

func (c *Converter) resolve(raw string, inFlight map[string]struct{}) string {
	cleaned := signature.CleanTypeText(raw)
	if _, looping := inFlight[raw]; looping {
		// A rule rewrote a type in terms of itself; stop expanding.
		if cleaned == "" {
			return UnknownType
		}
		return cleaned
	}
	inFlight[raw] = struct{}{}
	defer delete(inFlight, raw)

	parsed, err := signature.Parse(raw)
	if err != nil {
		c.log.Debugw("signature did not parse, converting cleaned text",
			"signature", raw)
	}

	if out, ok := c.applyCustomRules(cleaned, inFlight); ok {
		return out
	}

	if parsed != nil && parsed.IsArray {
		element := *parsed
		element.IsArray = false
		return c.convertNested(element.FullName(), inFlight) + "[]"
	}

	if parsed != nil {
		if out, ok := c.applyTemplateRules(parsed, inFlight); ok {
			return out
		}
		if out, ok := c.applyNamespaceRules(parsed, inFlight); ok {
			return out
		}
	}

	if def, ok := c.registry.Lookup(cleaned); ok {
		return def.TargetType
	}
	if parsed != nil {
		if def, ok := c.registry.Lookup(parsed.FullName()); ok {
			return def.TargetType
		}
	}

	if cleaned == "" {
		return UnknownType
	}
	return cleaned
}

// applyCustomRules evaluates prioritized rules against the cleaned string.
// The first match wins and short-circuits every other strategy; its rewrite
// is re-resolved once when it introduces a nested generic.
func (c *Converter) applyCustomRules(cleaned string, inFlight map[string]struct{}) (string, bool) {
	for _, rule := range c.registry.CustomRules() {
		captures, ok := rule.Match.captures(cleaned)
		if !ok {
			continue
		}
		out := expandPlaceholders(rule.Rewrite, captures)
		if out != cleaned && strings.Contains(out, "<") {
			out = c.convertNested(out, inFlight)
		}
		c.log.Debugw("custom rule applied",
			"rule", rule.Name, "input", cleaned, "output", out)
		return out, true
	}
	return "", false
}

// applyTemplateRules substitutes parametrized instantiations. A rule
// applies when its base portion equals the parsed base type and every $n it
// references has a corresponding argument.
func (c *Converter) applyTemplateRules(parsed *signature.Type, inFlight map[string]struct{}) (string, bool) {
	if len(parsed.TemplateArgs) == 0 {
		return "", false
	}
	for _, rule := range c.registry.TemplateRules() {
		if rule.BasePortion() != parsed.BaseType {
			continue
		}
		out, ok := c.expandTemplateRule(rule, parsed, inFlight)
		if !ok {
			continue
		}
		c.log.Debugw("template rule applied",
			"pattern", rule.Pattern, "type", parsed.FullName(), "output", out)
		return out, true
	}
	return "", false
}

func (c *Converter) expandTemplateRule(rule TemplateRule, parsed *signature.Type, inFlight map[string]struct{}) (string, bool) {
	captures := make([]string, len(parsed.TemplateArgs)+1)
	for _, idx := range placeholderIndices(rule.Replacement) {
		if idx < 1 || idx > len(parsed.TemplateArgs) {
			// The rule references an argument this instantiation lacks.
			return "", false
		}
		captures[idx] = c.convertNested(parsed.TemplateArgs[idx-1].FullName(), inFlight)
	}
	return expandPlaceholders(rule.Replacement, captures), true
}

// applyNamespaceRules remaps or strips a matching namespace prefix and
// converts the remainder through the full chain.
func (c *Converter) applyNamespaceRules(parsed *signature.Type, inFlight map[string]struct{}) (string, bool) {
	if parsed.Namespace == "" {
		return "", false
	}
	for _, rule := range c.registry.NamespaceRules() {
		if rule.Source != parsed.Namespace {
			continue
		}
		remainder := *parsed
		remainder.Namespace = ""
		rest := c.convertNested(remainder.FullName(), inFlight)
		if rule.Strip {
			return rest, true
		}
		return rule.Target + "." + rest, true
	}
	return "", false
}

func (c *Converter) memoGet(raw string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.memo[raw]
	if ok {
		c.hits++
	}
	return out, ok
}

func (c *Converter) memoPut(raw, out string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo[raw] = out
	c.misses++
}

// Invalidate empties the conversion memo. The registry calls this through
// its mutation hook; it is also safe to call directly.
func (c *Converter) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo = make(map[string]string)
	c.invalidations++
}

// CacheStats reports memo behavior for diagnostics.
type CacheStats struct {
	Size          int
	Hits          uint64
	Misses        uint64
	Invalidations uint64
}

// CacheStats returns a snapshot of memo counters.
func (c *Converter) CacheStats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:          len(c.memo),
		Hits:          c.hits,
		Misses:        c.misses,
		Invalidations: c.invalidations,
	}
}
