package graph

import (
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/internal/util"
)

// EdgeOverride is a user's partial restyling of one edge type.
// A nil field is absent and inherits from the EdgeTypeConfig.
type EdgeOverride struct {
	Type string `json:"type"`

	LabelColor             *string    `json:"labelColor,omitempty"`
	LabelBackgroundOpacity *float64   `json:"labelBackgroundOpacity,omitempty"`
	LabelBorderColor       *string    `json:"labelBorderColor,omitempty"`
	LabelBorderStyle       *LineStyle `json:"labelBorderStyle,omitempty"`
	LabelBorderWidth       *float64   `json:"labelBorderWidth,omitempty"`

	LineColor        *string     `json:"lineColor,omitempty"`
	LineThickness    *float64    `json:"lineThickness,omitempty"`
	LineStyle        *LineStyle  `json:"lineStyle,omitempty"`
	SourceArrowStyle *ArrowStyle `json:"sourceArrowStyle,omitempty"`
	TargetArrowStyle *ArrowStyle `json:"targetArrowStyle,omitempty"`
}

// MergedEdgeStyle is an EdgeTypeConfig with its override applied.
// Ephemeral: recomputed on every resolution pass, never persisted.
type MergedEdgeStyle EdgeTypeConfig

// DisplayEdge is the logical edge record carrying a human-facing name.
// The canvas may draw several rendered edges for one DisplayEdge.
type DisplayEdge struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Source      string `json:"source,omitempty"`
	Target      string `json:"target,omitempty"`
	DisplayName string `json:"displayName"`
}

// Clone returns a deep copy; no pointer is shared with o.
func (o EdgeOverride) Clone() EdgeOverride {
	return EdgeOverride{
		Type:                   o.Type,
		LabelColor:             util.Clone(o.LabelColor),
		LabelBackgroundOpacity: util.Clone(o.LabelBackgroundOpacity),
		LabelBorderColor:       util.Clone(o.LabelBorderColor),
		LabelBorderStyle:       util.Clone(o.LabelBorderStyle),
		LabelBorderWidth:       util.Clone(o.LabelBorderWidth),
		LineColor:              util.Clone(o.LineColor),
		LineThickness:          util.Clone(o.LineThickness),
		LineStyle:              util.Clone(o.LineStyle),
		SourceArrowStyle:       util.Clone(o.SourceArrowStyle),
		TargetArrowStyle:       util.Clone(o.TargetArrowStyle),
	}
}

// Merge returns a new override with every present field of partial laid over o.
// The type id of o is kept; neither input is modified.
func (o EdgeOverride) Merge(partial EdgeOverride) EdgeOverride {
	out := o.Clone()
	util.AssignPtr(&out.LabelColor, partial.LabelColor)
	util.AssignPtr(&out.LabelBackgroundOpacity, partial.LabelBackgroundOpacity)
	util.AssignPtr(&out.LabelBorderColor, partial.LabelBorderColor)
	util.AssignPtr(&out.LabelBorderStyle, partial.LabelBorderStyle)
	util.AssignPtr(&out.LabelBorderWidth, partial.LabelBorderWidth)
	util.AssignPtr(&out.LineColor, partial.LineColor)
	util.AssignPtr(&out.LineThickness, partial.LineThickness)
	util.AssignPtr(&out.LineStyle, partial.LineStyle)
	util.AssignPtr(&out.SourceArrowStyle, partial.SourceArrowStyle)
	util.AssignPtr(&out.TargetArrowStyle, partial.TargetArrowStyle)
	return out
}

// IsEmpty reports whether the override defines no stylable field.
func (o EdgeOverride) IsEmpty() bool {
	return o.LabelColor == nil && o.LabelBackgroundOpacity == nil &&
		o.LabelBorderColor == nil && o.LabelBorderStyle == nil &&
		o.LabelBorderWidth == nil && o.LineColor == nil &&
		o.LineThickness == nil && o.LineStyle == nil &&
		o.SourceArrowStyle == nil && o.TargetArrowStyle == nil
}

// Validate rejects enum values and numbers the renderer cannot draw.
// Only present fields are checked.
func (o EdgeOverride) Validate() error {
	if o.Type == "" {
		return errors.NewInvalidRequestError("edge override type id is required")
	}
	if o.LineStyle != nil && !o.LineStyle.Valid() {
		return errors.NewInvalidRequestError("override %q: unknown line style %q", o.Type, *o.LineStyle)
	}
	if o.LabelBorderStyle != nil && !o.LabelBorderStyle.Valid() {
		return errors.NewInvalidRequestError("override %q: unknown label border style %q", o.Type, *o.LabelBorderStyle)
	}
	if o.SourceArrowStyle != nil && !o.SourceArrowStyle.Valid() {
		return errors.NewInvalidRequestError("override %q: unknown source arrow %q", o.Type, *o.SourceArrowStyle)
	}
	if o.TargetArrowStyle != nil && !o.TargetArrowStyle.Valid() {
		return errors.NewInvalidRequestError("override %q: unknown target arrow %q", o.Type, *o.TargetArrowStyle)
	}
	if o.LineThickness != nil && *o.LineThickness < 0 {
		return errors.NewInvalidRequestError("override %q: line thickness must be >= 0", o.Type)
	}
	if o.LabelBorderWidth != nil && *o.LabelBorderWidth < 0 {
		return errors.NewInvalidRequestError("override %q: label border width must be >= 0", o.Type)
	}
	if o.LabelBackgroundOpacity != nil && (*o.LabelBackgroundOpacity < 0 || *o.LabelBackgroundOpacity > 1) {
		return errors.NewInvalidRequestError("override %q: label background opacity outside 0..1", o.Type)
	}
	return nil
}

// FindOverride returns the override whose type id equals typeID.
// Type ids are unique in a store snapshot, so the first match is the only one.
func FindOverride(overrides []EdgeOverride, typeID string) (EdgeOverride, bool) {
	for _, o := range overrides {
		if o.Type == typeID {
			return o, true
		}
	}
	return EdgeOverride{}, false
}

// MergeEdgeStyle lays the present fields of override over cfg.
// A nil override yields cfg unchanged, field for field.
func MergeEdgeStyle(cfg EdgeTypeConfig, override *EdgeOverride) MergedEdgeStyle {
	merged := MergedEdgeStyle(cfg)
	if override == nil {
		return merged
	}

	util.Assign(&merged.LabelColor, override.LabelColor)
	util.Assign(&merged.LabelBackgroundOpacity, override.LabelBackgroundOpacity)
	util.Assign(&merged.LabelBorderColor, override.LabelBorderColor)
	util.Assign(&merged.LabelBorderStyle, override.LabelBorderStyle)
	util.Assign(&merged.LabelBorderWidth, override.LabelBorderWidth)
	util.Assign(&merged.LineColor, override.LineColor)
	util.Assign(&merged.LineThickness, override.LineThickness)
	util.Assign(&merged.LineStyle, override.LineStyle)
	util.Assign(&merged.SourceArrowStyle, override.SourceArrowStyle)
	util.Assign(&merged.TargetArrowStyle, override.TargetArrowStyle)

	return merged
}
