package generator

import "sync"

// Registry owns the live generators, one per source name, created lazily
// on first subscription. A generator persists for the life of the process.
type Registry struct {
	mu    sync.Mutex
	gens  map[string]*Generator
	order []string // creation order, for stable active_sources listings
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{gens: make(map[string]*Generator)}
}

// GetOrCreate returns the generator for source, constructing it on first
// use. Concurrent first subscriptions to the same source observe a single
// generator: the first creator wins, later callers reuse it.
func (r *Registry) GetOrCreate(source string) *Generator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gens[source]; ok {
		return g
	}
	g := New(source)
	r.gens[source] = g
	r.order = append(r.order, source)
	return g
}

// Sources returns the names of all live generators in creation order.
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of live generators.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gens)
}
