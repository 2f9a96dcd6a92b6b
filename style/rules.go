package style

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/teranos/graphstyle/graph"
)

// Style attribute names understood by the rendering surface
const (
	AttrBackgroundImage        = "background-image"
	AttrBackgroundColor        = "background-color"
	AttrBackgroundOpacity      = "background-opacity"
	AttrBorderColor            = "border-color"
	AttrBorderWidth            = "border-width"
	AttrBorderStyle            = "border-style"
	AttrBorderOpacity          = "border-opacity"
	AttrShape                  = "shape"
	AttrWidth                  = "width"
	AttrHeight                 = "height"
	AttrLabel                  = "label"
	AttrColor                  = "color"
	AttrTextBackgroundColor    = "text-background-color"
	AttrTextBackgroundOpacity  = "text-background-opacity"
	AttrTextBorderWidth        = "text-border-width"
	AttrTextBorderColor        = "text-border-color"
	AttrTextBorderStyle        = "text-border-style"
	AttrLineColor              = "line-color"
	AttrLineStyle              = "line-style"
	AttrLineDashPattern        = "line-dash-pattern"
	AttrSourceArrowShape       = "source-arrow-shape"
	AttrTargetArrowShape       = "target-arrow-shape"
	AttrSourceArrowColor       = "source-arrow-color"
	AttrTargetArrowColor       = "target-arrow-color"
	AttrSourceDistanceFromNode = "source-distance-from-node"
	AttrTargetDistanceFromNode = "target-distance-from-node"
)

// NodeSize is the fixed width and height of every vertex
const NodeSize = 24.0

// Selector addresses every element of one type
type Selector string

// NodeSelector returns node[type="T"]
func NodeSelector(typeID string) Selector {
	return Selector(fmt.Sprintf("node[type=%q]", typeID))
}

// EdgeSelector returns edge[type="T"]
func EdgeSelector(typeID string) Selector {
	return Selector(fmt.Sprintf("edge[type=%q]", typeID))
}

// Rule maps style attribute names to values
type Rule map[string]any

// clone copies r; values are immutable so the copy is shallow
func (r Rule) clone() Rule {
	out := make(Rule, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// StyleMap is one published set of rules. It is never modified after
// the engine builds it; consumers receive copies of its rules.
type StyleMap struct {
	rules      map[Selector]Rule
	generation uint64
}

func newStyleMap(rules map[Selector]Rule) *StyleMap {
	return &StyleMap{rules: rules}
}

// Generation is the resolution pass that built the map (0 = never published)
func (m *StyleMap) Generation() uint64 {
	if m == nil {
		return 0
	}
	return m.generation
}

// Len returns the number of selectors
func (m *StyleMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Rule returns a copy of the rule for sel
func (m *StyleMap) Rule(sel Selector) (Rule, bool) {
	if m == nil {
		return nil, false
	}
	r, ok := m.rules[sel]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Selectors returns all selectors, sorted
func (m *StyleMap) Selectors() []Selector {
	if m == nil {
		return nil
	}
	out := make([]Selector, 0, len(m.rules))
	for sel := range m.rules {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EdgeLabel evaluates the deferred label of an edge type for a rendered edge.
// Returns false when the type has no rule.
func (m *StyleMap) EdgeLabel(edgeType, renderedID string) (string, bool) {
	r, ok := m.Rule(EdgeSelector(edgeType))
	if !ok {
		return "", false
	}
	label, ok := r[AttrLabel].(*DeferredLabel)
	if !ok {
		return "", false
	}
	return label.Resolve(renderedID), true
}

// Entry is one selector/style pair of the stylesheet form
type Entry struct {
	Selector Selector `json:"selector" yaml:"selector"`
	Style    Rule     `json:"style" yaml:"style"`
}

// Entries returns the map as a stylesheet sorted by selector
func (m *StyleMap) Entries() []Entry {
	sels := m.Selectors()
	out := make([]Entry, 0, len(sels))
	for _, sel := range sels {
		out = append(out, Entry{Selector: sel, Style: m.rules[sel].clone()})
	}
	return out
}

// MarshalJSON encodes the map as a stylesheet array
func (m *StyleMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// MarshalYAML encodes the map as a stylesheet sequence
func (m *StyleMap) MarshalYAML() (interface{}, error) {
	return m.Entries(), nil
}

func nodeRule(cfg graph.VertexTypeConfig, image string) Rule {
	r := Rule{
		AttrBackgroundOpacity:      cfg.BackgroundOpacity,
		AttrBorderWidth:            cfg.BorderWidth,
		AttrBorderOpacity:          0.0,
		AttrWidth:                  NodeSize,
		AttrHeight:                 NodeSize,
		AttrSourceDistanceFromNode: 0.0,
		AttrTargetDistanceFromNode: 0.0,
	}
	if cfg.BorderWidth > 0 {
		r[AttrBorderOpacity] = 1.0
	}
	setString(r, AttrBackgroundImage, image)
	setString(r, AttrBackgroundColor, cfg.Color)
	setString(r, AttrBorderColor, cfg.BorderColor)
	setString(r, AttrBorderStyle, string(cfg.BorderStyle))
	setString(r, AttrShape, string(cfg.Shape))
	return r
}

func edgeRule(merged graph.MergedEdgeStyle, labelColor string, label *DeferredLabel) Rule {
	r := Rule{
		AttrLabel:                  label,
		AttrColor:                  ContrastText(labelColor),
		AttrTextBackgroundColor:    labelColor,
		AttrTextBackgroundOpacity:  merged.LabelBackgroundOpacity,
		AttrTextBorderWidth:        merged.LabelBorderWidth,
		AttrWidth:                  merged.LineThickness,
		AttrSourceDistanceFromNode: 0.0,
		AttrTargetDistanceFromNode: 0.0,
	}

	// No dotted primitive on the rendering surface: dotted is short dashes
	switch merged.LineStyle {
	case graph.LineStyleDotted:
		r[AttrLineStyle] = string(graph.LineStyleDashed)
		r[AttrLineDashPattern] = []float64{1, 2}
	case graph.LineStyleDashed:
		r[AttrLineStyle] = string(graph.LineStyleDashed)
		r[AttrLineDashPattern] = []float64{5, 6}
	default:
		r[AttrLineStyle] = string(graph.LineStyleSolid)
	}

	setString(r, AttrLineColor, merged.LineColor)
	setString(r, AttrSourceArrowColor, merged.LineColor)
	setString(r, AttrTargetArrowColor, merged.LineColor)
	setString(r, AttrSourceArrowShape, string(merged.SourceArrowStyle))
	setString(r, AttrTargetArrowShape, string(merged.TargetArrowStyle))
	setString(r, AttrTextBorderColor, merged.LabelBorderColor)
	setString(r, AttrTextBorderStyle, string(merged.LabelBorderStyle))
	return r
}

// setString omits empty values so the renderer keeps its own default
func setString(r Rule, key, value string) {
	if value != "" {
		r[key] = value
	}
}
