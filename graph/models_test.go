package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/teranos/graphstyle/internal/util"
)

var (
	lineStyles  = []LineStyle{LineStyleSolid, LineStyleDashed, LineStyleDotted}
	arrowStyles = []ArrowStyle{ArrowNone, ArrowTriangle, ArrowVee, ArrowCircle, ArrowTee}
	colors      = []string{"#000000", "#ffffff", "#112233", "#17457b", "red", "steelblue"}
)

func edgeConfigGen() *rapid.Generator[EdgeTypeConfig] {
	return rapid.Custom(func(t *rapid.T) EdgeTypeConfig {
		return EdgeTypeConfig{
			Type:                   rapid.StringMatching(`[a-zA-Z_]{1,12}`).Draw(t, "type"),
			LineColor:              rapid.SampledFrom(colors).Draw(t, "lineColor"),
			LineStyle:              rapid.SampledFrom(lineStyles).Draw(t, "lineStyle"),
			LineThickness:          rapid.Float64Range(0, 10).Draw(t, "lineThickness"),
			SourceArrowStyle:       rapid.SampledFrom(arrowStyles).Draw(t, "sourceArrow"),
			TargetArrowStyle:       rapid.SampledFrom(arrowStyles).Draw(t, "targetArrow"),
			LabelColor:             rapid.SampledFrom(colors).Draw(t, "labelColor"),
			LabelBackgroundOpacity: rapid.Float64Range(0, 1).Draw(t, "labelBgOpacity"),
			LabelBorderWidth:       rapid.Float64Range(0, 5).Draw(t, "labelBorderWidth"),
			LabelBorderColor:       rapid.SampledFrom(colors).Draw(t, "labelBorderColor"),
			LabelBorderStyle:       rapid.SampledFrom(lineStyles).Draw(t, "labelBorderStyle"),
		}
	})
}

func maybe[T any](t *rapid.T, label string, gen *rapid.Generator[T]) *T {
	if !rapid.Bool().Draw(t, label+"?") {
		return nil
	}
	v := gen.Draw(t, label)
	return &v
}

func overrideGen(typeID string) *rapid.Generator[EdgeOverride] {
	return rapid.Custom(func(t *rapid.T) EdgeOverride {
		return EdgeOverride{
			Type:                   typeID,
			LabelColor:             maybe(t, "labelColor", rapid.SampledFrom(colors)),
			LabelBackgroundOpacity: maybe(t, "labelBgOpacity", rapid.Float64Range(0, 1)),
			LabelBorderColor:       maybe(t, "labelBorderColor", rapid.SampledFrom(colors)),
			LabelBorderStyle:       maybe(t, "labelBorderStyle", rapid.SampledFrom(lineStyles)),
			LabelBorderWidth:       maybe(t, "labelBorderWidth", rapid.Float64Range(0, 5)),
			LineColor:              maybe(t, "lineColor", rapid.SampledFrom(colors)),
			LineThickness:          maybe(t, "lineThickness", rapid.Float64Range(0, 10)),
			LineStyle:              maybe(t, "lineStyle", rapid.SampledFrom(lineStyles)),
			SourceArrowStyle:       maybe(t, "sourceArrow", rapid.SampledFrom(arrowStyles)),
			TargetArrowStyle:       maybe(t, "targetArrow", rapid.SampledFrom(arrowStyles)),
		}
	})
}

func TestMergeEdgeStyle_NoOverrideIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := edgeConfigGen().Draw(t, "cfg")
		merged := MergeEdgeStyle(cfg, nil)
		if EdgeTypeConfig(merged) != cfg {
			t.Fatalf("merged %+v differs from config %+v", merged, cfg)
		}
	})
}

func TestMergeEdgeStyle_FieldPrecedence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := edgeConfigGen().Draw(t, "cfg")
		o := overrideGen(cfg.Type).Draw(t, "override")
		m := MergeEdgeStyle(cfg, &o)

		check := func(name string, got, want interface{}) {
			if got != want {
				t.Fatalf("%s: got %v, want %v", name, got, want)
			}
		}
		check("LabelColor", m.LabelColor, pick(o.LabelColor, cfg.LabelColor))
		check("LabelBackgroundOpacity", m.LabelBackgroundOpacity, pick(o.LabelBackgroundOpacity, cfg.LabelBackgroundOpacity))
		check("LabelBorderColor", m.LabelBorderColor, pick(o.LabelBorderColor, cfg.LabelBorderColor))
		check("LabelBorderStyle", m.LabelBorderStyle, pick(o.LabelBorderStyle, cfg.LabelBorderStyle))
		check("LabelBorderWidth", m.LabelBorderWidth, pick(o.LabelBorderWidth, cfg.LabelBorderWidth))
		check("LineColor", m.LineColor, pick(o.LineColor, cfg.LineColor))
		check("LineThickness", m.LineThickness, pick(o.LineThickness, cfg.LineThickness))
		check("LineStyle", m.LineStyle, pick(o.LineStyle, cfg.LineStyle))
		check("SourceArrowStyle", m.SourceArrowStyle, pick(o.SourceArrowStyle, cfg.SourceArrowStyle))
		check("TargetArrowStyle", m.TargetArrowStyle, pick(o.TargetArrowStyle, cfg.TargetArrowStyle))
		check("Type", m.Type, cfg.Type)
		check("DisplayLabel", m.DisplayLabel, cfg.DisplayLabel)
	})
}

func pick[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}

// Scenario: thickness override leaves untouched fields inherited.
func TestMergeEdgeStyle_ThicknessOnly(t *testing.T) {
	cfg := EdgeTypeConfig{Type: "knows", LineThickness: 1, LineColor: "#000000"}
	override := EdgeOverride{Type: "knows", LineThickness: util.Ptr(4.0)}

	merged := MergeEdgeStyle(cfg, &override)

	assert.Equal(t, 4.0, merged.LineThickness)
	assert.Equal(t, "#000000", merged.LineColor)
}

func TestEdgeOverride_Merge(t *testing.T) {
	base := EdgeOverride{Type: "knows", LineColor: util.Ptr("#ff0000"), LineThickness: util.Ptr(2.0)}
	partial := EdgeOverride{Type: "ignored", LineThickness: util.Ptr(5.0), LineStyle: util.Ptr(LineStyleDotted)}

	merged := base.Merge(partial)

	assert.Equal(t, "knows", merged.Type, "type id of the receiver is kept")
	assert.Equal(t, "#ff0000", *merged.LineColor)
	assert.Equal(t, 5.0, *merged.LineThickness)
	assert.Equal(t, LineStyleDotted, *merged.LineStyle)

	// Inputs are untouched and share no pointers with the result
	assert.Equal(t, 2.0, *base.LineThickness)
	assert.Nil(t, base.LineStyle)
	*merged.LineColor = "#00ff00"
	assert.Equal(t, "#ff0000", *base.LineColor)
}

func TestEdgeOverride_CloneIsDeep(t *testing.T) {
	o := EdgeOverride{Type: "knows", LabelColor: util.Ptr("#fff")}
	c := o.Clone()
	require.NotSame(t, o.LabelColor, c.LabelColor)
	assert.Equal(t, o, c)
}

func TestEdgeOverride_IsEmpty(t *testing.T) {
	assert.True(t, EdgeOverride{Type: "knows"}.IsEmpty())
	assert.False(t, EdgeOverride{Type: "knows", TargetArrowStyle: util.Ptr(ArrowVee)}.IsEmpty())
}

func TestEdgeOverride_Validate(t *testing.T) {
	tests := []struct {
		name     string
		override EdgeOverride
		wantErr  bool
	}{
		{"type only", EdgeOverride{Type: "knows"}, false},
		{"missing type", EdgeOverride{LineColor: util.Ptr("#000")}, true},
		{"bad line style", EdgeOverride{Type: "knows", LineStyle: util.Ptr(LineStyle("wavy"))}, true},
		{"bad arrow", EdgeOverride{Type: "knows", TargetArrowStyle: util.Ptr(ArrowStyle("harpoon"))}, true},
		{"negative thickness", EdgeOverride{Type: "knows", LineThickness: util.Ptr(-1.0)}, true},
		{"opacity above one", EdgeOverride{Type: "knows", LabelBackgroundOpacity: util.Ptr(1.5)}, true},
		{"full valid", EdgeOverride{
			Type:             "knows",
			LineStyle:        util.Ptr(LineStyleDashed),
			LabelBorderStyle: util.Ptr(LineStyleDotted),
			SourceArrowStyle: util.Ptr(ArrowCircle),
			LineThickness:    util.Ptr(3.0),
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.override.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFindOverride(t *testing.T) {
	overrides := []EdgeOverride{
		{Type: "knows", LineColor: util.Ptr("#111111")},
		{Type: "likes", LineColor: util.Ptr("#222222")},
	}

	o, ok := FindOverride(overrides, "likes")
	require.True(t, ok)
	assert.Equal(t, "#222222", *o.LineColor)

	_, ok = FindOverride(overrides, "Knows")
	assert.False(t, ok, "type ids match exactly")
}
