package graph

import (
	"github.com/teranos/graphstyle/errors"
)

// VertexTypeConfig holds display metadata for a vertex type.
// Owned by the configuration source; the style engine only reads it.
type VertexTypeConfig struct {
	Type              string    `json:"type" toml:"type"`                            // e.g., "Person", "airport"
	Color             string    `json:"color" toml:"color"`                          // Fill color, hex or CSS name
	BackgroundOpacity float64   `json:"backgroundOpacity" toml:"background_opacity"` // 0..1
	BorderColor       string    `json:"borderColor,omitempty" toml:"border_color,omitempty"`
	BorderWidth       float64   `json:"borderWidth" toml:"border_width"` // 0 = no border
	BorderStyle       LineStyle `json:"borderStyle,omitempty" toml:"border_style,omitempty"`
	Shape             Shape     `json:"shape" toml:"shape"`
}

// Shape is the vertex outline drawn by the rendering surface.
type Shape string

// Shapes supported by the rendering surface.
const (
	ShapeEllipse        Shape = "ellipse"
	ShapeTriangle       Shape = "triangle"
	ShapeRectangle      Shape = "rectangle"
	ShapeRoundRectangle Shape = "round-rectangle"
	ShapeBarrel         Shape = "barrel"
	ShapeRhomboid       Shape = "rhomboid"
	ShapeDiamond        Shape = "diamond"
	ShapePentagon       Shape = "pentagon"
	ShapeHexagon        Shape = "hexagon"
	ShapeOctagon        Shape = "octagon"
	ShapeStar           Shape = "star"
	ShapeTag            Shape = "tag"
	ShapeVee            Shape = "vee"
)

var validShapes = map[Shape]bool{
	ShapeEllipse: true, ShapeTriangle: true, ShapeRectangle: true,
	ShapeRoundRectangle: true, ShapeBarrel: true, ShapeRhomboid: true,
	ShapeDiamond: true, ShapePentagon: true, ShapeHexagon: true,
	ShapeOctagon: true, ShapeStar: true, ShapeTag: true, ShapeVee: true,
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return validShapes[s]
}

// DefaultVertexTypeConfig returns the styling used for a vertex type that
// declares nothing beyond its id.
func DefaultVertexTypeConfig(typeID string) VertexTypeConfig {
	return VertexTypeConfig{
		Type:              typeID,
		Color:             defaultVertexColor,
		BackgroundOpacity: defaultBackgroundOpacity,
		BorderColor:       defaultVertexColor,
		BorderWidth:       0,
		BorderStyle:       LineStyleSolid,
		Shape:             ShapeEllipse,
	}
}

// Validate checks a vertex type config for values the renderer cannot draw.
func (c VertexTypeConfig) Validate() error {
	if c.Type == "" {
		return errors.NewInvalidRequestError("vertex type id is required")
	}
	if c.BackgroundOpacity < 0 || c.BackgroundOpacity > 1 {
		return errors.NewInvalidRequestError("vertex %q: background opacity %v outside 0..1", c.Type, c.BackgroundOpacity)
	}
	if c.BorderWidth < 0 {
		return errors.NewInvalidRequestError("vertex %q: border width must be >= 0, got %v", c.Type, c.BorderWidth)
	}
	if c.BorderStyle != "" && !c.BorderStyle.Valid() {
		return errors.NewInvalidRequestError("vertex %q: unknown border style %q", c.Type, c.BorderStyle)
	}
	if !c.Shape.Valid() {
		return errors.NewInvalidRequestError("vertex %q: unknown shape %q", c.Type, c.Shape)
	}
	return nil
}
