package typemap

import (
	"sort"
	"strings"
	"sync"

	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/signature"
)

// Registry holds type definitions, aliases and conversion rules. All reads
// and mutations are safe for concurrent use; every mutation bumps the
// generation counter and synchronously notifies invalidation hooks before
// the mutating call returns, so no stale derived cache survives a mutation.
type Registry struct {
	mu         sync.RWMutex
	defs       map[string]*Definition
	aliases    map[string]string
	templates  []TemplateRule
	namespaces []NamespaceRule
	custom     []CustomRule
	generation uint64

	hookMu sync.Mutex
	hooks  []func()
}

// NewRegistry creates a registry seeded with the default C++/Qt
// definitions and container template rules. Defaults are ordinary entries:
// callers and mapping files may override them.
func NewRegistry() *Registry {
	r := &Registry{
		defs:    map[string]*Definition{},
		aliases: map[string]string{},
	}
	for _, def := range defaultDefinitions() {
		if err := r.registerLocked(def); err != nil {
			// The seed table is package-local; a conflict in it is a bug.
			panic(err)
		}
	}
	for _, rule := range defaultTemplateRules() {
		rule.BasePortion()
		r.templates = append(r.templates, rule)
	}
	return r
}

// OnMutation registers a hook invoked synchronously after every registry
// mutation. The converter registers its memo invalidation here.
func (r *Registry) OnMutation(hook func()) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.hooks = append(r.hooks, hook)
}

func (r *Registry) notifyMutation() {
	r.hookMu.Lock()
	hooks := make([]func(), len(r.hooks))
	copy(hooks, r.hooks)
	r.hookMu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// Generation returns the mutation counter. Two equal generations guarantee
// the registry content is unchanged between them.
func (r *Registry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

// RegisterType adds or replaces a definition. Replacing a name drops its
// previous aliases; an alias that already resolves to a different name, or
// that shadows another definition, fails the call.
func (r *Registry) RegisterType(def Definition) error {
	r.mu.Lock()
	err := r.registerLocked(def)
	if err == nil {
		r.generation++
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.notifyMutation()
	return nil
}

func (r *Registry) registerLocked(def Definition) error {
	if def.Name == "" {
		return errors.Wrap(errors.ErrConfigLoad, "type definition requires a name")
	}
	if def.TargetType == "" {
		return errors.Wrapf(errors.ErrConfigLoad, "type definition %q requires a target type", def.Name)
	}
	for _, alias := range def.Aliases {
		if alias == "" {
			return errors.Wrapf(errors.ErrConfigLoad, "type definition %q has an empty alias", def.Name)
		}
		if canonical, ok := r.aliases[alias]; ok && canonical != def.Name {
			return errors.Wrapf(errors.ErrConfigLoad,
				"alias %q already resolves to %q, cannot remap to %q", alias, canonical, def.Name)
		}
		if _, ok := r.defs[alias]; ok {
			return errors.Wrapf(errors.ErrConfigLoad,
				"alias %q of %q shadows an existing definition", alias, def.Name)
		}
	}

	if old, ok := r.defs[def.Name]; ok {
		for _, alias := range old.Aliases {
			delete(r.aliases, alias)
		}
	}
	clone := def
	clone.Aliases = append([]string(nil), def.Aliases...)
	r.defs[def.Name] = &clone
	for _, alias := range clone.Aliases {
		r.aliases[alias] = def.Name
	}
	return nil
}

func validateTemplateRule(rule *TemplateRule) error {
	if rule.BasePortion() == "" {
		return errors.Wrapf(errors.ErrConfigLoad, "template rule pattern %q has no base type", rule.Pattern)
	}
	if rule.Replacement == "" {
		return errors.Wrapf(errors.ErrConfigLoad, "template rule %q requires a replacement", rule.Pattern)
	}
	return nil
}

// AddTemplateRule appends a template substitution rule.
func (r *Registry) AddTemplateRule(rule TemplateRule) error {
	if err := validateTemplateRule(&rule); err != nil {
		return err
	}
	r.mu.Lock()
	r.templates = append(r.templates, rule)
	r.generation++
	r.mu.Unlock()
	r.notifyMutation()
	return nil
}

// AddNamespaceRule appends a namespace remapping rule. Dotted sources are
// normalized to the canonical "::" form.
func (r *Registry) AddNamespaceRule(rule NamespaceRule) error {
	if rule.Source == "" {
		return errors.Wrap(errors.ErrConfigLoad, "namespace rule requires a source namespace")
	}
	if !rule.Strip && rule.Target == "" {
		return errors.Wrapf(errors.ErrConfigLoad,
			"namespace rule for %q requires a target namespace unless it strips", rule.Source)
	}
	rule.Source = strings.ReplaceAll(rule.Source, ".", "::")
	r.mu.Lock()
	r.namespaces = append(r.namespaces, rule)
	r.generation++
	r.mu.Unlock()
	r.notifyMutation()
	return nil
}

// AddCustomRule inserts a prioritized rule. Names are unique; the rule set
// stays sorted by descending priority with registration order breaking
// ties.
func (r *Registry) AddCustomRule(rule CustomRule) error {
	if rule.Name == "" {
		return errors.Wrap(errors.ErrConfigLoad, "custom rule requires a name")
	}
	if rule.Rewrite == "" {
		return errors.Wrapf(errors.ErrConfigLoad, "custom rule %q requires a rewrite", rule.Name)
	}
	if rule.Match.Value == "" {
		return errors.Wrapf(errors.ErrConfigLoad, "custom rule %q requires a match value", rule.Name)
	}
	if rule.Priority < 0 {
		return errors.Wrapf(errors.ErrConfigLoad, "custom rule %q has negative priority %d", rule.Name, rule.Priority)
	}
	if err := rule.Match.compile(); err != nil {
		return errors.Wrapf(err, "custom rule %q", rule.Name)
	}

	r.mu.Lock()
	for _, existing := range r.custom {
		if existing.Name == rule.Name {
			r.mu.Unlock()
			return errors.Wrapf(errors.ErrConfigLoad, "custom rule %q already registered", rule.Name)
		}
	}
	r.custom = append(r.custom, rule)
	sort.SliceStable(r.custom, func(i, j int) bool {
		return r.custom[i].Priority > r.custom[j].Priority
	})
	r.generation++
	r.mu.Unlock()
	r.notifyMutation()
	return nil
}

// Lookup resolves a name to its definition, following aliases.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookupLocked(name)
}

func (r *Registry) lookupLocked(name string) (Definition, bool) {
	if def, ok := r.defs[name]; ok {
		return *def, true
	}
	if canonical, ok := r.aliases[name]; ok {
		if def, ok := r.defs[canonical]; ok {
			return *def, true
		}
	}
	return Definition{}, false
}

// IsBuiltin reports whether a type name, stripped of qualifier, template
// and array decoration, resolves to a registered definition. Detection is
// registry-driven: seeded defaults and mapping-file entries behave
// identically.
func (r *Registry) IsBuiltin(name string) bool {
	stripped := signature.StripDecoration(name)
	if stripped == "" {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.lookupLocked(stripped)
	return ok
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, *def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// TemplateRules returns a copy of the template rule list in registration
// order.
func (r *Registry) TemplateRules() []TemplateRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]TemplateRule(nil), r.templates...)
}

// NamespaceRules returns a copy of the namespace rule list in registration
// order.
func (r *Registry) NamespaceRules() []NamespaceRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]NamespaceRule(nil), r.namespaces...)
}

// CustomRules returns a copy of the custom rule list in evaluation order:
// descending priority, registration order on ties.
func (r *Registry) CustomRules() []CustomRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CustomRule(nil), r.custom...)
}
