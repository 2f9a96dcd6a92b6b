package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/util"
)

func TestEncode_EmptyRecord(t *testing.T) {
	data, err := Encode(Preferences{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"edges":[]}`, string(data))
}

func TestDecode(t *testing.T) {
	p, err := Decode([]byte(`{"edges":[{"type":"knows","lineColor":"#ff0000","lineThickness":3}]}`))
	require.NoError(t, err)
	require.Len(t, p.Edges, 1)

	o := p.Edges[0]
	assert.Equal(t, "knows", o.Type)
	require.NotNil(t, o.LineColor)
	assert.Equal(t, "#ff0000", *o.LineColor)
	require.NotNil(t, o.LineThickness)
	assert.Equal(t, 3.0, *o.LineThickness)
	assert.Nil(t, o.LineStyle, "absent fields stay absent")
}

func TestDecode_CollapsesDuplicates(t *testing.T) {
	p, err := Decode([]byte(`{"edges":[
		{"type":"knows","lineColor":"#ff0000","lineThickness":3},
		{"type":"worksAt","lineStyle":"dashed"},
		{"type":"knows","lineColor":"#00ff00"}
	]}`))
	require.NoError(t, err)
	require.Len(t, p.Edges, 2)

	knows, ok := graph.FindOverride(p.Edges, "knows")
	require.True(t, ok)
	assert.Equal(t, "#00ff00", *knows.LineColor, "later entry wins")
	assert.Equal(t, 3.0, *knows.LineThickness, "fields absent from the later entry are kept")
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `edges: []`},
		{"unknown field", `{"edges":[],"vertices":[]}`},
		{"unknown override field", `{"edges":[{"type":"knows","glow":true}]}`},
		{"missing type", `{"edges":[{"lineColor":"#fff"}]}`},
		{"bad line style", `{"edges":[{"type":"knows","lineStyle":"wavy"}]}`},
		{"bad arrow", `{"edges":[{"type":"knows","targetArrowStyle":"harpoon"}]}`},
		{"wrong type", `{"edges":[{"type":"knows","lineThickness":"thick"}]}`},
		{"trailing data", `{"edges":[]} {"edges":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}
}

func TestUpsertAndReset_DoNotMutateInput(t *testing.T) {
	orig := Preferences{Edges: []graph.EdgeOverride{
		{Type: "knows", LineColor: util.Ptr("#ff0000")},
	}}

	next := orig.upsert(graph.EdgeOverride{Type: "knows", LineColor: util.Ptr("#00ff00")})
	assert.Equal(t, "#ff0000", *orig.Edges[0].LineColor)
	assert.Equal(t, "#00ff00", *next.Edges[0].LineColor)

	appended := orig.upsert(graph.EdgeOverride{Type: "worksAt"})
	assert.Len(t, orig.Edges, 1)
	assert.Len(t, appended.Edges, 2)

	cleared := orig.reset("knows")
	assert.Len(t, orig.Edges, 1)
	assert.Empty(t, cleared.Edges)
	assert.NotNil(t, cleared.Edges)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	dotted := graph.LineStyleDotted
	vee := graph.ArrowVee
	p := Preferences{Edges: []graph.EdgeOverride{
		{Type: "knows", LineStyle: &dotted, TargetArrowStyle: &vee, LabelBackgroundOpacity: util.Ptr(0.0)},
	}}

	data, err := Encode(p)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	require.NotNil(t, got.Edges[0].LabelBackgroundOpacity, "explicit zero survives")
}
