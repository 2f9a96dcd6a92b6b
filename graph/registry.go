package graph

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// renderedSuffix separates a logical edge id from the index of one of its
// rendered copies: "e1::2" is the third visual edge drawn for logical edge "e1".
const renderedSuffix = "::"

// RenderedEdgeID returns the id the canvas uses for the n-th visual copy of
// a logical edge. The first copy (n == 0) uses the logical id unchanged.
func RenderedEdgeID(logicalID string, n int) string {
	if n <= 0 {
		return logicalID
	}
	return logicalID + renderedSuffix + strconv.Itoa(n)
}

// LogicalEdgeID maps a rendered edge id back to its logical edge id.
// Only a trailing "::<digits>" is stripped, so logical ids containing "::"
// elsewhere survive intact.
func LogicalEdgeID(renderedID string) string {
	i := strings.LastIndex(renderedID, renderedSuffix)
	if i < 0 {
		return renderedID
	}
	index := renderedID[i+len(renderedSuffix):]
	if index == "" {
		return renderedID
	}
	if _, err := strconv.Atoi(index); err != nil {
		return renderedID
	}
	return renderedID[:i]
}

// EdgeRegistry is the live set of display edges currently on the canvas.
// The rendering surface keeps it current; the style engine only reads it
// through ResolveDisplayEdge when a deferred label is evaluated.
type EdgeRegistry struct {
	mu    sync.RWMutex
	edges map[string]DisplayEdge
}

// NewEdgeRegistry creates an empty registry
func NewEdgeRegistry() *EdgeRegistry {
	return &EdgeRegistry{edges: make(map[string]DisplayEdge)}
}

// Put adds or replaces display edges by logical id
func (r *EdgeRegistry) Put(edges ...DisplayEdge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		r.edges[e.ID] = e
	}
}

// Replace swaps the whole registry content for edges
func (r *EdgeRegistry) Replace(edges []DisplayEdge) {
	next := make(map[string]DisplayEdge, len(edges))
	for _, e := range edges {
		next[e.ID] = e
	}
	r.mu.Lock()
	r.edges = next
	r.mu.Unlock()
}

// Remove deletes a display edge. Returns false if it was not present.
func (r *EdgeRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.edges[id]; !ok {
		return false
	}
	delete(r.edges, id)
	return true
}

// Get returns the display edge with the given logical id
func (r *EdgeRegistry) Get(id string) (DisplayEdge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.edges[id]
	return e, ok
}

// List returns all display edges sorted by id
func (r *EdgeRegistry) List() []DisplayEdge {
	r.mu.RLock()
	out := make([]DisplayEdge, 0, len(r.edges))
	for _, e := range r.edges {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of display edges
func (r *EdgeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.edges)
}

// ResolveDisplayEdge looks up the logical edge behind a rendered edge id
func (r *EdgeRegistry) ResolveDisplayEdge(renderedID string) (DisplayEdge, bool) {
	return r.Get(LogicalEdgeID(renderedID))
}
