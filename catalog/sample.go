package catalog

import "github.com/teranos/graphstyle/graph"

// Sample returns the starter catalog written by 'graphstyle catalog init'
func Sample() Catalog {
	person := graph.DefaultVertexTypeConfig("Person")
	person.Color = "#112233"

	org := graph.DefaultVertexTypeConfig("Organization")
	org.Color = "#e5a712"
	org.Shape = graph.ShapeRoundRectangle
	org.BorderWidth = 1
	org.BorderColor = "#7a5a08"

	place := graph.DefaultVertexTypeConfig("http://schema.org/Place")
	place.Color = "#2a9d8f"
	place.Shape = graph.ShapeDiamond

	knows := graph.DefaultEdgeTypeConfig("knows")
	knows.LineStyle = graph.LineStyleDotted

	worksAt := graph.DefaultEdgeTypeConfig("worksAt")
	worksAt.LineColor = "#e5a712"
	worksAt.LabelColor = "#fdf0c4"

	locatedIn := graph.DefaultEdgeTypeConfig("located_in")
	locatedIn.LineStyle = graph.LineStyleDashed
	locatedIn.TargetArrowStyle = graph.ArrowVee

	return Catalog{
		Vertices: []graph.VertexTypeConfig{person, org, place},
		Edges:    []graph.EdgeTypeConfig{knows, worksAt, locatedIn},
	}
}
