package graph

import (
	"github.com/teranos/graphstyle/errors"
)

// EdgeTypeConfig holds display metadata for an edge type.
// Owned by the configuration source; overrides are layered on top of it.
type EdgeTypeConfig struct {
	Type         string `json:"type" toml:"type"`                                      // e.g., "knows", "route"
	DisplayLabel string `json:"displayLabel,omitempty" toml:"display_label,omitempty"` // Attribute used as the default label source

	LineColor        string     `json:"lineColor" toml:"line_color"`
	LineStyle        LineStyle  `json:"lineStyle" toml:"line_style"`
	LineThickness    float64    `json:"lineThickness" toml:"line_thickness"`
	SourceArrowStyle ArrowStyle `json:"sourceArrowStyle" toml:"source_arrow_style"`
	TargetArrowStyle ArrowStyle `json:"targetArrowStyle" toml:"target_arrow_style"`

	LabelColor             string    `json:"labelColor" toml:"label_color"`
	LabelBackgroundOpacity float64   `json:"labelBackgroundOpacity" toml:"label_background_opacity"`
	LabelBorderWidth       float64   `json:"labelBorderWidth" toml:"label_border_width"`
	LabelBorderColor       string    `json:"labelBorderColor" toml:"label_border_color"`
	LabelBorderStyle       LineStyle `json:"labelBorderStyle" toml:"label_border_style"`
}

// LineStyle is the stroke style of an edge line or a border.
type LineStyle string

// Line styles. The rendering surface has no native dotted primitive, so the
// style engine expresses dotted lines through a dash pattern.
const (
	LineStyleSolid  LineStyle = "solid"
	LineStyleDashed LineStyle = "dashed"
	LineStyleDotted LineStyle = "dotted"
)

// Valid reports whether s is one of solid, dashed or dotted.
func (s LineStyle) Valid() bool {
	switch s {
	case LineStyleSolid, LineStyleDashed, LineStyleDotted:
		return true
	}
	return false
}

// ArrowStyle is the arrow head drawn at an edge endpoint.
type ArrowStyle string

// Arrow heads supported by the rendering surface.
const (
	ArrowNone              ArrowStyle = "none"
	ArrowTriangle          ArrowStyle = "triangle"
	ArrowTriangleTee       ArrowStyle = "triangle-tee"
	ArrowCircleTriangle    ArrowStyle = "circle-triangle"
	ArrowTriangleCross     ArrowStyle = "triangle-cross"
	ArrowTriangleBackcurve ArrowStyle = "triangle-backcurve"
	ArrowVee               ArrowStyle = "vee"
	ArrowTee               ArrowStyle = "tee"
	ArrowSquare            ArrowStyle = "square"
	ArrowCircle            ArrowStyle = "circle"
	ArrowDiamond           ArrowStyle = "diamond"
	ArrowChevron           ArrowStyle = "chevron"
)

var validArrows = map[ArrowStyle]bool{
	ArrowNone: true, ArrowTriangle: true, ArrowTriangleTee: true,
	ArrowCircleTriangle: true, ArrowTriangleCross: true, ArrowTriangleBackcurve: true,
	ArrowVee: true, ArrowTee: true, ArrowSquare: true, ArrowCircle: true,
	ArrowDiamond: true, ArrowChevron: true,
}

// Valid reports whether a is a known arrow head.
func (a ArrowStyle) Valid() bool {
	return validArrows[a]
}

// DefaultEdgeTypeConfig returns the styling used for an edge type that
// declares nothing beyond its id.
func DefaultEdgeTypeConfig(typeID string) EdgeTypeConfig {
	return EdgeTypeConfig{
		Type:                   typeID,
		LineColor:              defaultLineColor,
		LineStyle:              LineStyleSolid,
		LineThickness:          defaultLineThickness,
		SourceArrowStyle:       ArrowNone,
		TargetArrowStyle:       ArrowTriangle,
		LabelColor:             DefaultLabelColor,
		LabelBackgroundOpacity: defaultLabelBackgroundOpacity,
		LabelBorderWidth:       0,
		LabelBorderColor:       DefaultLabelColor,
		LabelBorderStyle:       LineStyleSolid,
	}
}

// Validate checks an edge type config for values the renderer cannot draw.
func (c EdgeTypeConfig) Validate() error {
	if c.Type == "" {
		return errors.NewInvalidRequestError("edge type id is required")
	}
	if !c.LineStyle.Valid() {
		return errors.NewInvalidRequestError("edge %q: unknown line style %q", c.Type, c.LineStyle)
	}
	if c.LabelBorderStyle != "" && !c.LabelBorderStyle.Valid() {
		return errors.NewInvalidRequestError("edge %q: unknown label border style %q", c.Type, c.LabelBorderStyle)
	}
	if c.LineThickness < 0 {
		return errors.NewInvalidRequestError("edge %q: line thickness must be >= 0, got %v", c.Type, c.LineThickness)
	}
	if c.LabelBorderWidth < 0 {
		return errors.NewInvalidRequestError("edge %q: label border width must be >= 0, got %v", c.Type, c.LabelBorderWidth)
	}
	if c.LabelBackgroundOpacity < 0 || c.LabelBackgroundOpacity > 1 {
		return errors.NewInvalidRequestError("edge %q: label background opacity %v outside 0..1", c.Type, c.LabelBackgroundOpacity)
	}
	if !c.SourceArrowStyle.Valid() {
		return errors.NewInvalidRequestError("edge %q: unknown source arrow %q", c.Type, c.SourceArrowStyle)
	}
	if !c.TargetArrowStyle.Valid() {
		return errors.NewInvalidRequestError("edge %q: unknown target arrow %q", c.Type, c.TargetArrowStyle)
	}
	return nil
}
