package style

import (
	"encoding/json"

	"github.com/teranos/graphstyle/graph"
)

// MissingLabel is shown for a rendered edge whose logical edge is not in
// the live registry
const MissingLabel = "---"

// EdgeLookup resolves a rendered edge id to its logical display edge.
// graph.EdgeRegistry is the default implementation.
type EdgeLookup interface {
	ResolveDisplayEdge(renderedID string) (graph.DisplayEdge, bool)
}

// DeferredLabel is an edge label evaluated at draw time against the live
// edge registry. Every Resolve call re-reads the registry.
type DeferredLabel struct {
	lookup    EdgeLookup
	edgeType  string
	typeLabel string
}

// NewDeferredLabel binds a label for edges of edgeType to lookup
func NewDeferredLabel(lookup EdgeLookup, edgeType string) *DeferredLabel {
	return &DeferredLabel{
		lookup:    lookup,
		edgeType:  edgeType,
		typeLabel: DefaultEdgeLabel(edgeType),
	}
}

// Resolve returns the display name of the logical edge behind renderedID,
// or MissingLabel. The type label is never substituted here.
func (d *DeferredLabel) Resolve(renderedID string) string {
	if d == nil || d.lookup == nil {
		return MissingLabel
	}
	edge, ok := d.lookup.ResolveDisplayEdge(renderedID)
	if !ok {
		return MissingLabel
	}
	return edge.DisplayName
}

// TypeLabel is the transformed, truncated type id, for legends
func (d *DeferredLabel) TypeLabel() string {
	return d.typeLabel
}

// EdgeType returns the edge type the label was built for
func (d *DeferredLabel) EdgeType() string {
	return d.edgeType
}

type deferredLabelWire struct {
	Deferred  string `json:"deferred" yaml:"deferred"`
	EdgeType  string `json:"edgeType" yaml:"edgeType"`
	TypeLabel string `json:"typeLabel" yaml:"typeLabel"`
	Missing   string `json:"missing" yaml:"missing"`
}

func (d *DeferredLabel) wire() deferredLabelWire {
	return deferredLabelWire{
		Deferred:  "displayName",
		EdgeType:  d.edgeType,
		TypeLabel: d.typeLabel,
		Missing:   MissingLabel,
	}
}

// MarshalJSON encodes a marker telling the consumer to resolve the label
// per rendered edge (GET /api/styles/label)
func (d *DeferredLabel) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

// MarshalYAML encodes the same marker as MarshalJSON
func (d *DeferredLabel) MarshalYAML() (interface{}, error) {
	return d.wire(), nil
}
