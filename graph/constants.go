package graph

const (
	// DefaultLabelColor is the edge label color used when neither the type
	// config nor an override provides one.
	DefaultLabelColor = "#17457b"

	defaultVertexColor            = "#128EE5"
	defaultBackgroundOpacity      = 0.4
	defaultLineColor              = "#b3b3b3"
	defaultLineThickness          = 2.0
	defaultLabelBackgroundOpacity = 0.7
)
