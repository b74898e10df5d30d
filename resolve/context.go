package resolve

import (
	"sort"

	"github.com/google/uuid"

	"github.com/docbind/docbind/page"
)

// Context carries the state of one resolution session: which type names
// have been processed, which dependencies wait for the next round, which
// names proved circular, and which namespace documents still owe an
// enumeration pass. It is mutated only by the service driving the session
// and never shared between sessions.
type Context struct {
	SessionID string

	// MaxDepth caps the number of fixpoint rounds for this session.
	// Zero defers to the service default.
	MaxDepth int

	// CurrentDepth is the round the session last worked, starting at 0.
	CurrentDepth int

	visited   map[string]struct{}
	pending   map[string]TypeDependency
	typeLinks map[string]string
	circular  map[string]struct{}

	enumQueued map[string]struct{}
	enumPages  []string

	pages map[string]*page.Page
}

// NewContext creates an empty session with a fresh identifier.
func NewContext(maxDepth int) *Context {
	c := &Context{MaxDepth: maxDepth}
	c.Reset()
	return c
}

// Reset discards all session state and issues a new SessionID. MaxDepth
// survives; everything else starts over.
func (c *Context) Reset() {
	c.SessionID = uuid.New().String()
	c.CurrentDepth = 0
	c.visited = make(map[string]struct{})
	c.pending = make(map[string]TypeDependency)
	c.typeLinks = make(map[string]string)
	c.circular = make(map[string]struct{})
	c.enumQueued = make(map[string]struct{})
	c.enumPages = nil
	c.pages = make(map[string]*page.Page)
}

// MarkVisited records that a type name has been worked, successfully or
// not. Visited names are never scheduled again in this session.
func (c *Context) MarkVisited(fullName string) {
	c.visited[fullName] = struct{}{}
}

// IsVisited reports whether a type name has already been worked.
func (c *Context) IsVisited(fullName string) bool {
	_, ok := c.visited[fullName]
	return ok
}

// Schedule queues a dependency for the next round and reports whether it
// was newly added. Dependencies without a link, already visited, already
// pending, or known circular are refused.
func (c *Context) Schedule(dep TypeDependency) bool {
	if dep.LinkedHref == "" || dep.FullName == "" {
		return false
	}
	if c.IsVisited(dep.FullName) || c.IsCircular(dep.FullName) {
		return false
	}
	if _, ok := c.pending[dep.FullName]; ok {
		return false
	}
	c.pending[dep.FullName] = dep
	return true
}

// PendingCount returns how many dependencies wait for the next round.
func (c *Context) PendingCount() int {
	return len(c.pending)
}

// TakePending drains the pending set and returns it ordered by full name,
// so rounds work a deterministic sequence.
func (c *Context) TakePending() []TypeDependency {
	deps := make([]TypeDependency, 0, len(c.pending))
	for _, dep := range c.pending {
		deps = append(deps, dep)
	}
	c.pending = make(map[string]TypeDependency)
	sort.Slice(deps, func(i, j int) bool { return deps[i].FullName < deps[j].FullName })
	return deps
}

// RecordLink remembers which document a type name resolved through.
func (c *Context) RecordLink(fullName, href string) {
	if fullName == "" || href == "" {
		return
	}
	c.typeLinks[fullName] = href
}

// LinkFor returns the document recorded for a type name.
func (c *Context) LinkFor(fullName string) (string, bool) {
	href, ok := c.typeLinks[fullName]
	return href, ok
}

// MarkCircular records a type name as part of a reference cycle and
// reports whether it is newly recorded. Repeat sightings of the same cycle
// return false so each name is counted once.
func (c *Context) MarkCircular(fullName string) bool {
	if _, ok := c.circular[fullName]; ok {
		return false
	}
	c.circular[fullName] = struct{}{}
	return true
}

// IsCircular reports whether a type name was recorded as circular.
func (c *Context) IsCircular(fullName string) bool {
	_, ok := c.circular[fullName]
	return ok
}

// CircularNames returns the circular type names, sorted.
func (c *Context) CircularNames() []string {
	names := make([]string, 0, len(c.circular))
	for name := range c.circular {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QueueEnumPage defers a namespace document for the enumeration-only pass
// that runs after the fixpoint loop. Returns false if it is already queued.
func (c *Context) QueueEnumPage(uri string) bool {
	if uri == "" {
		return false
	}
	if _, ok := c.enumQueued[uri]; ok {
		return false
	}
	c.enumQueued[uri] = struct{}{}
	c.enumPages = append(c.enumPages, uri)
	return true
}

// TakeEnumPages drains the queued namespace documents in queue order.
func (c *Context) TakeEnumPages() []string {
	pages := c.enumPages
	c.enumPages = nil
	return pages
}

// RegisterPage keeps a parsed document available for dependency link
// re-scanning. Seed pages fetched before the session starts should be
// registered here so their declarations can schedule work.
func (c *Context) RegisterPage(uri string, p *page.Page) {
	if uri == "" || p == nil {
		return
	}
	c.pages[uri] = p
}

// pageFor returns the registered document for a source URI, or nil.
func (c *Context) pageFor(uri string) *page.Page {
	return c.pages[uri]
}
