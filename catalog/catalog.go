// Package catalog provides the type catalog: the declarative vertex and
// edge type display configuration the style engine resolves against.
package catalog

import (
	"sync"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/notify"
)

// Catalog is one immutable version of the type display configuration
type Catalog struct {
	Vertices []graph.VertexTypeConfig `json:"vertices" yaml:"vertices"`
	Edges    []graph.EdgeTypeConfig   `json:"edges" yaml:"edges"`
}

// Source is an observable catalog. Subscribers are called with every new
// version; the returned func unsubscribes.
type Source interface {
	Current() Catalog
	Subscribe(fn func(Catalog)) func()
}

// Clone returns a copy that shares no backing arrays with c
func (c Catalog) Clone() Catalog {
	out := Catalog{}
	if c.Vertices != nil {
		out.Vertices = append([]graph.VertexTypeConfig(nil), c.Vertices...)
	}
	if c.Edges != nil {
		out.Edges = append([]graph.EdgeTypeConfig(nil), c.Edges...)
	}
	return out
}

// Validate checks every entry and rejects duplicate type ids
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Vertices))
	for _, v := range c.Vertices {
		if err := v.Validate(); err != nil {
			return err
		}
		if seen[v.Type] {
			return errors.NewInvalidRequestError("duplicate vertex type %q", v.Type)
		}
		seen[v.Type] = true
	}

	seen = make(map[string]bool, len(c.Edges))
	for _, e := range c.Edges {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.Type] {
			return errors.NewInvalidRequestError("duplicate edge type %q", e.Type)
		}
		seen[e.Type] = true
	}
	return nil
}

// VertexType looks up a vertex type config by id
func (c Catalog) VertexType(typeID string) (graph.VertexTypeConfig, bool) {
	for _, v := range c.Vertices {
		if v.Type == typeID {
			return v, true
		}
	}
	return graph.VertexTypeConfig{}, false
}

// EdgeType looks up an edge type config by id
func (c Catalog) EdgeType(typeID string) (graph.EdgeTypeConfig, bool) {
	for _, e := range c.Edges {
		if e.Type == typeID {
			return e, true
		}
	}
	return graph.EdgeTypeConfig{}, false
}

// Static is an in-memory Source. Set publishes a new version.
type Static struct {
	mu      sync.RWMutex
	current Catalog
	subs    notify.Subscribers[Catalog]
}

// NewStatic creates a source holding cat
func NewStatic(cat Catalog) *Static {
	return &Static{current: cat.Clone()}
}

// Current returns the current catalog
func (s *Static) Current() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers fn for future versions
func (s *Static) Subscribe(fn func(Catalog)) func() {
	return s.subs.Add(fn)
}

// Set replaces the catalog and notifies subscribers
func (s *Static) Set(cat Catalog) {
	s.mu.Lock()
	s.current = cat.Clone()
	s.mu.Unlock()
	s.subs.Notify(cat.Clone())
}
