package decl

import (
	"sort"
	"sync"
)

// Repository is the shared in-memory declaration store a resolution
// session reads and grows. All operations are safe for concurrent use.
type Repository struct {
	mu      sync.RWMutex
	decls   map[string]*Declaration
	links   map[string]struct{}
	visited map[string]struct{}
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		decls:   make(map[string]*Declaration),
		links:   make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// AddDeclaration stores a declaration under fullName. Adding a name that
// already exists merges the newcomer's enumerations into the existing
// entry; existing members are never replaced, so the add is idempotent.
func (r *Repository) AddDeclaration(fullName string, d *Declaration) {
	if d == nil {
		return
	}
	if fullName == "" {
		fullName = d.FullName
	}
	if fullName == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.decls[fullName]
	if !ok {
		r.decls[fullName] = d
		return
	}
	mergeEnums(existing, d.Enums)
}

// mergeEnums folds incoming enumerations into a declaration: new enums are
// appended, values new to an existing enum are appended, nothing is
// overwritten.
func mergeEnums(into *Declaration, enums []Enum) {
	for _, enum := range enums {
		idx := -1
		for i := range into.Enums {
			if into.Enums[i].Name == enum.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			into.Enums = append(into.Enums, enum)
			continue
		}
		known := make(map[string]struct{}, len(into.Enums[idx].Values))
		for _, v := range into.Enums[idx].Values {
			known[v.Name] = struct{}{}
		}
		for _, v := range enum.Values {
			if _, dup := known[v.Name]; dup {
				continue
			}
			into.Enums[idx].Values = append(into.Enums[idx].Values, v)
		}
	}
}

// GetDeclaration retrieves a declaration by full name.
func (r *Repository) GetDeclaration(fullName string) (*Declaration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decls[fullName]
	return d, ok
}

// GetAllDeclarations returns a snapshot copy of the declaration map.
func (r *Repository) GetAllDeclarations() map[string]*Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]*Declaration, len(r.decls))
	for name, d := range r.decls {
		result[name] = d
	}
	return result
}

// AddDiscoveredDocumentLink records a document path seen during resolution.
func (r *Repository) AddDiscoveredDocumentLink(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[path] = struct{}{}
}

// GetDiscoveredDocumentLinks returns the recorded document paths in sorted
// order.
func (r *Repository) GetDiscoveredDocumentLinks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	links := make([]string, 0, len(r.links))
	for link := range r.links {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// MarkVisited records a document URI as fetched.
func (r *Repository) MarkVisited(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visited[uri] = struct{}{}
}

// IsVisited reports whether a document URI was already fetched.
func (r *Repository) IsVisited(uri string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.visited[uri]
	return ok
}

// Len returns the number of stored declarations.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decls)
}

// Reset clears declarations, discovered links and the visited set.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decls = make(map[string]*Declaration)
	r.links = make(map[string]struct{})
	r.visited = make(map[string]struct{})
}
