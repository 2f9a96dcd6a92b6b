package style

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphstyle/catalog"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/notify"
	"github.com/teranos/graphstyle/internal/util"
)

type fakeOverrides struct {
	mu   sync.Mutex
	list []graph.EdgeOverride
	subs notify.Subscribers[[]graph.EdgeOverride]
}

func (f *fakeOverrides) Overrides() []graph.EdgeOverride {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]graph.EdgeOverride(nil), f.list...)
}

func (f *fakeOverrides) Subscribe(fn func([]graph.EdgeOverride)) func() {
	return f.subs.Add(fn)
}

func (f *fakeOverrides) Set(list ...graph.EdgeOverride) {
	f.mu.Lock()
	f.list = list
	f.mu.Unlock()
	f.subs.Notify(list)
}

type rendererFunc func(ctx context.Context, cfg graph.VertexTypeConfig) (string, error)

func (f rendererFunc) Render(ctx context.Context, cfg graph.VertexTypeConfig) (string, error) {
	return f(ctx, cfg)
}

func constRenderer(image string) rendererFunc {
	return func(context.Context, graph.VertexTypeConfig) (string, error) { return image, nil }
}

func newTestEngine(t *testing.T, src catalog.Source, overrides OverrideSource, r AssetRenderer, mutate ...func(*EngineConfig)) *Engine {
	t.Helper()
	cfg := EngineConfig{
		Catalog:   src,
		Overrides: overrides,
		Renderer:  r,
		Lookup:    graph.NewEdgeRegistry(),
		Logger:    zaptest.NewLogger(t).Sugar(),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func resolve(t *testing.T, e *Engine, cat catalog.Catalog, overrides ...graph.EdgeOverride) *StyleMap {
	t.Helper()
	m, err := e.Resolve(context.Background(), cat, overrides)
	require.NoError(t, err)
	return m
}

func mustRule(t *testing.T, m *StyleMap, sel Selector) Rule {
	t.Helper()
	r, ok := m.Rule(sel)
	require.True(t, ok, "no rule for %s", sel)
	return r
}

func TestNewEngine_RequiresInputs(t *testing.T) {
	_, err := NewEngine(EngineConfig{})
	assert.Error(t, err)

	_, err = NewEngine(EngineConfig{
		Catalog:   catalog.NewStatic(catalog.Catalog{}),
		Overrides: &fakeOverrides{},
		Renderer:  constRenderer(""),
		Policy:    "random",
	})
	assert.Error(t, err)
}

// Scenario A
func TestResolve_NodeRule(t *testing.T) {
	person := graph.VertexTypeConfig{Type: "Person", Color: "#112233"}
	renderer := rendererFunc(func(_ context.Context, cfg graph.VertexTypeConfig) (string, error) {
		if cfg.Type == "Person" {
			return "dataA", nil
		}
		return "", errors.New("unexpected type")
	})
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, renderer)

	m := resolve(t, e, catalog.Catalog{Vertices: []graph.VertexTypeConfig{person}})
	r := mustRule(t, m, `node[type="Person"]`)

	assert.Equal(t, "dataA", r[AttrBackgroundImage])
	assert.Equal(t, "#112233", r[AttrBackgroundColor])
	assert.Equal(t, 24.0, r[AttrWidth])
	assert.Equal(t, 24.0, r[AttrHeight])
	assert.Equal(t, 0.0, r[AttrBorderOpacity], "no border width means invisible border")
	assert.Equal(t, 0.0, r[AttrSourceDistanceFromNode])
	assert.Equal(t, 0.0, r[AttrTargetDistanceFromNode])
	assert.NotContains(t, r, AttrBorderColor, "empty values are omitted")
}

func TestResolve_NodeRuleCopiesConfig(t *testing.T) {
	cfg := graph.VertexTypeConfig{
		Type:              "Organization",
		Color:             "#e5a712",
		BackgroundOpacity: 0.4,
		BorderColor:       "#7a5a08",
		BorderWidth:       2,
		BorderStyle:       graph.LineStyleDashed,
		Shape:             graph.ShapeHexagon,
	}
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer("img"))

	r := mustRule(t, resolve(t, e, catalog.Catalog{Vertices: []graph.VertexTypeConfig{cfg}}), NodeSelector("Organization"))

	assert.Equal(t, 0.4, r[AttrBackgroundOpacity])
	assert.Equal(t, "#7a5a08", r[AttrBorderColor])
	assert.Equal(t, 2.0, r[AttrBorderWidth])
	assert.Equal(t, "dashed", r[AttrBorderStyle])
	assert.Equal(t, "hexagon", r[AttrShape])
	assert.Equal(t, 1.0, r[AttrBorderOpacity])
}

func TestResolve_RenderFailureOmitsImage(t *testing.T) {
	renderer := rendererFunc(func(_ context.Context, cfg graph.VertexTypeConfig) (string, error) {
		if cfg.Type == "Broken" {
			return "", errors.New("icon service down")
		}
		return "ok", nil
	})
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, renderer)

	m := resolve(t, e, catalog.Catalog{Vertices: []graph.VertexTypeConfig{
		graph.DefaultVertexTypeConfig("Broken"),
		graph.DefaultVertexTypeConfig("Fine"),
	}})

	assert.NotContains(t, mustRule(t, m, NodeSelector("Broken")), AttrBackgroundImage)
	assert.Equal(t, "ok", mustRule(t, m, NodeSelector("Fine"))[AttrBackgroundImage])
}

func TestResolve_RenderConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	renderer := rendererFunc(func(context.Context, graph.VertexTypeConfig) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return "img", nil
	})
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, renderer,
		func(c *EngineConfig) { c.RenderConcurrency = 2 })

	var vertices []graph.VertexTypeConfig
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		vertices = append(vertices, graph.DefaultVertexTypeConfig(id))
	}
	m := resolve(t, e, catalog.Catalog{Vertices: vertices})

	assert.Equal(t, 6, m.Len())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestResolve_CancelledContext(t *testing.T) {
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer("img"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Resolve(ctx, catalog.Catalog{Vertices: []graph.VertexTypeConfig{graph.DefaultVertexTypeConfig("A")}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// Scenario B
func TestResolve_DottedEdgeNoOverride(t *testing.T) {
	knows := graph.EdgeTypeConfig{Type: "knows", LineColor: "#112233", LineStyle: graph.LineStyleDotted}
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""))

	r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{knows}}), `edge[type="knows"]`)

	assert.Equal(t, "dashed", r[AttrLineStyle])
	assert.Equal(t, []float64{1, 2}, r[AttrLineDashPattern])
	assert.Equal(t, "#112233", r[AttrLineColor])
	assert.Equal(t, "#112233", r[AttrSourceArrowColor])
	assert.Equal(t, "#112233", r[AttrTargetArrowColor])
}

// Scenario C
func TestResolve_ThicknessOverride(t *testing.T) {
	knows := graph.EdgeTypeConfig{Type: "knows", LineThickness: 1, LineColor: "#000000", LineStyle: graph.LineStyleSolid}
	override := graph.EdgeOverride{Type: "knows", LineThickness: util.Ptr(4.0)}
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""))

	r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{knows}}, override), EdgeSelector("knows"))

	assert.Equal(t, 4.0, r[AttrWidth])
	assert.Equal(t, "#000000", r[AttrLineColor])
}

func TestResolve_LineStyleNormalization(t *testing.T) {
	tests := []struct {
		style       graph.LineStyle
		wantStyle   string
		wantPattern []float64
	}{
		{graph.LineStyleDotted, "dashed", []float64{1, 2}},
		{graph.LineStyleDashed, "dashed", []float64{5, 6}},
		{graph.LineStyleSolid, "solid", nil},
	}

	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""))
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			cfg := graph.DefaultEdgeTypeConfig("e")
			cfg.LineStyle = tt.style
			r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}), EdgeSelector("e"))

			assert.Equal(t, tt.wantStyle, r[AttrLineStyle])
			if tt.wantPattern == nil {
				assert.NotContains(t, r, AttrLineDashPattern)
			} else {
				assert.Equal(t, tt.wantPattern, r[AttrLineDashPattern])
			}
		})
	}

	t.Run("override style wins", func(t *testing.T) {
		cfg := graph.DefaultEdgeTypeConfig("e")
		override := graph.EdgeOverride{Type: "e", LineStyle: util.Ptr(graph.LineStyleDotted)}
		r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}, override), EdgeSelector("e"))
		assert.Equal(t, []float64{1, 2}, r[AttrLineDashPattern])
	})
}

func TestResolve_EdgeLabelColors(t *testing.T) {
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""),
		func(c *EngineConfig) { c.DefaultLabelColor = "#fdf0c4" })

	t.Run("config label color", func(t *testing.T) {
		cfg := graph.DefaultEdgeTypeConfig("knows")
		r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}), EdgeSelector("knows"))
		assert.Equal(t, graph.DefaultLabelColor, r[AttrTextBackgroundColor])
		assert.Equal(t, TextOnDark, r[AttrColor])
	})

	t.Run("override label color", func(t *testing.T) {
		cfg := graph.DefaultEdgeTypeConfig("knows")
		override := graph.EdgeOverride{Type: "knows", LabelColor: util.Ptr("#ffffff")}
		r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}, override), EdgeSelector("knows"))
		assert.Equal(t, "#ffffff", r[AttrTextBackgroundColor])
		assert.Equal(t, TextOnLight, r[AttrColor])
	})

	t.Run("missing label color uses configured default", func(t *testing.T) {
		cfg := graph.DefaultEdgeTypeConfig("knows")
		cfg.LabelColor = ""
		r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}), EdgeSelector("knows"))
		assert.Equal(t, "#fdf0c4", r[AttrTextBackgroundColor])
		assert.Equal(t, TextOnLight, r[AttrColor])
	})
}

func TestResolve_EdgeVerbatimFields(t *testing.T) {
	cfg := graph.EdgeTypeConfig{
		Type:                   "worksAt",
		LineColor:              "#e5a712",
		LineStyle:              graph.LineStyleSolid,
		LineThickness:          3,
		SourceArrowStyle:       graph.ArrowCircle,
		TargetArrowStyle:       graph.ArrowVee,
		LabelColor:             "#17457b",
		LabelBackgroundOpacity: 0.5,
		LabelBorderWidth:       1,
		LabelBorderColor:       "#000000",
		LabelBorderStyle:       graph.LineStyleDotted,
	}
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""))
	r := mustRule(t, resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}}), EdgeSelector("worksAt"))

	assert.Equal(t, "circle", r[AttrSourceArrowShape])
	assert.Equal(t, "vee", r[AttrTargetArrowShape])
	assert.Equal(t, 0.5, r[AttrTextBackgroundOpacity])
	assert.Equal(t, 1.0, r[AttrTextBorderWidth])
	assert.Equal(t, "#000000", r[AttrTextBorderColor])
	assert.Equal(t, "dotted", r[AttrTextBorderStyle], "label border style is copied, not normalized")
	assert.Equal(t, 3.0, r[AttrWidth])
	assert.Equal(t, 0.0, r[AttrSourceDistanceFromNode])
}

func TestResolve_DeferredLabel(t *testing.T) {
	registry := graph.NewEdgeRegistry()
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer(""),
		func(c *EngineConfig) { c.Lookup = registry })

	cfg := graph.DefaultEdgeTypeConfig("hasVeryLongRelationshipName")
	m := resolve(t, e, catalog.Catalog{Edges: []graph.EdgeTypeConfig{cfg}})
	r := mustRule(t, m, EdgeSelector(cfg.Type))

	label, ok := r[AttrLabel].(*DeferredLabel)
	require.True(t, ok, "edge label is a deferred resolver, not a string")
	assert.Equal(t, "Has Very Long Rel...", label.TypeLabel())

	t.Run("missing edge yields sentinel, not the type label", func(t *testing.T) {
		assert.Equal(t, MissingLabel, label.Resolve("e1"))
	})

	t.Run("re-evaluated on every call", func(t *testing.T) {
		registry.Put(graph.DisplayEdge{ID: "e1", Type: cfg.Type, DisplayName: "Alice to Bob"})
		assert.Equal(t, "Alice to Bob", label.Resolve("e1"))
		assert.Equal(t, "Alice to Bob", label.Resolve("e1::3"), "rendered copies share the logical edge")

		registry.Put(graph.DisplayEdge{ID: "e1", Type: cfg.Type, DisplayName: "renamed"})
		assert.Equal(t, "renamed", label.Resolve("e1"))

		registry.Remove("e1")
		assert.Equal(t, MissingLabel, label.Resolve("e1"))
	})

	t.Run("style map helper", func(t *testing.T) {
		registry.Put(graph.DisplayEdge{ID: "e2", Type: cfg.Type, DisplayName: "x"})
		got, ok := m.EdgeLabel(cfg.Type, "e2::1")
		require.True(t, ok)
		assert.Equal(t, "x", got)

		_, ok = m.EdgeLabel("unknown", "e2")
		assert.False(t, ok)
	})
}

func TestStyleMap_Encoding(t *testing.T) {
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer("data:image/svg+xml;base64,AA=="))
	m := resolve(t, e, catalog.Sample())

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var entries []struct {
		Selector string                 `json:"selector"`
		Style    map[string]interface{} `json:"style"`
	}
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 6)
	assert.Equal(t, `edge[type="knows"]`, entries[0].Selector, "entries are sorted by selector")

	label, ok := entries[0].Style[AttrLabel].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "displayName", label["deferred"])
	assert.Equal(t, "Knows", label["typeLabel"])
	assert.Equal(t, MissingLabel, label["missing"])

	out, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `Person`)
	assert.Contains(t, string(out), "typeLabel: Knows")
}

func TestStyleMap_RuleIsCopy(t *testing.T) {
	e := newTestEngine(t, catalog.NewStatic(catalog.Catalog{}), &fakeOverrides{}, constRenderer("img"))
	m := resolve(t, e, catalog.Catalog{Vertices: []graph.VertexTypeConfig{graph.DefaultVertexTypeConfig("A")}})

	r := mustRule(t, m, NodeSelector("A"))
	r[AttrBackgroundImage] = "tampered"

	assert.Equal(t, "img", mustRule(t, m, NodeSelector("A"))[AttrBackgroundImage])
}

// gatedRenderer blocks the first pass until released and returns the
// number of the pass that called it as the image descriptor.
type gatedRenderer struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedRenderer() *gatedRenderer {
	return &gatedRenderer{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedRenderer) Render(ctx context.Context, _ graph.VertexTypeConfig) (string, error) {
	n := g.calls.Add(1)
	if n == 1 {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return "first", nil
	}
	return "second", nil
}

func raceOverlappingPasses(t *testing.T, policy PublishPolicy) (*Engine, uint64, bool, uint64, bool) {
	t.Helper()
	renderer := newGatedRenderer()
	src := catalog.NewStatic(catalog.Catalog{Vertices: []graph.VertexTypeConfig{graph.DefaultVertexTypeConfig("A")}})
	e := newTestEngine(t, src, &fakeOverrides{}, renderer, func(c *EngineConfig) { c.Policy = policy })

	type result struct {
		gen       uint64
		published bool
	}
	firstDone := make(chan result, 1)
	go func() {
		gen, ok := e.Recompute(context.Background())
		firstDone <- result{gen, ok}
	}()
	<-renderer.entered

	// The second pass starts later and settles first
	secondGen, secondPublished := e.Recompute(context.Background())
	require.Equal(t, "second", mustRule(t, e.Current(), NodeSelector("A"))[AttrBackgroundImage])

	close(renderer.release)
	first := <-firstDone
	return e, first.gen, first.published, secondGen, secondPublished
}

func TestEngine_OverlappingPasses_LatestPolicy(t *testing.T) {
	e, firstGen, firstPublished, secondGen, secondPublished := raceOverlappingPasses(t, PublishLatest)

	assert.Less(t, firstGen, secondGen)
	assert.True(t, secondPublished)
	assert.False(t, firstPublished, "the older pass settled last and is discarded")
	assert.Equal(t, "second", mustRule(t, e.Current(), NodeSelector("A"))[AttrBackgroundImage])
	assert.Equal(t, secondGen, e.Current().Generation())
}

func TestEngine_OverlappingPasses_LastSettledPolicy(t *testing.T) {
	e, firstGen, firstPublished, secondGen, secondPublished := raceOverlappingPasses(t, PublishLastSettled)

	assert.Less(t, firstGen, secondGen)
	assert.True(t, secondPublished)
	assert.True(t, firstPublished)
	// Whichever pass settled last wins, even though it was triggered first
	assert.Equal(t, "first", mustRule(t, e.Current(), NodeSelector("A"))[AttrBackgroundImage])
	assert.Equal(t, firstGen, e.Current().Generation())
}

func TestEngine_SubscribeReceivesPublishedMaps(t *testing.T) {
	src := catalog.NewStatic(catalog.Catalog{Vertices: []graph.VertexTypeConfig{graph.DefaultVertexTypeConfig("A")}})
	e := newTestEngine(t, src, &fakeOverrides{}, constRenderer("img"))

	var got []uint64
	unsub := e.Subscribe(func(m *StyleMap) { got = append(got, m.Generation()) })

	assert.Equal(t, uint64(0), e.Current().Generation())
	e.Recompute(context.Background())
	e.Recompute(context.Background())
	unsub()
	e.Recompute(context.Background())

	assert.Equal(t, []uint64{1, 2}, got)
	assert.Equal(t, uint64(3), e.Current().Generation())
}

func TestEngine_ConcurrentPassesOverEdgeTypes(t *testing.T) {
	edges := []graph.EdgeTypeConfig{
		graph.DefaultEdgeTypeConfig("worksAtVeryLongCompanyName"),
		graph.DefaultEdgeTypeConfig("http://schema.org/memberOf"),
		graph.DefaultEdgeTypeConfig("located_in"),
	}
	src := catalog.NewStatic(catalog.Catalog{Edges: edges})
	overrides := &fakeOverrides{}
	e := newTestEngine(t, src, overrides, constRenderer("img"), func(c *EngineConfig) { c.Debounce = 0 })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			overrides.Set(graph.EdgeOverride{Type: "located_in", LineThickness: util.Ptr(float64(i%5 + 1))})
		}(i)
		go func() {
			defer wg.Done()
			src.Set(catalog.Catalog{Edges: edges})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		r, ok := e.Current().Rule(EdgeSelector("located_in"))
		return ok && r[AttrWidth] != nil
	}, 2*time.Second, 5*time.Millisecond)
	for typeID, want := range map[string]string{
		"worksAtVeryLongCompanyName": "Works At Very Lon...",
		"http://schema.org/memberOf": "Member Of",
		"located_in":                 "Located In",
	} {
		r, ok := e.Current().Rule(EdgeSelector(typeID))
		require.True(t, ok, typeID)
		label, ok := r[AttrLabel].(*DeferredLabel)
		require.True(t, ok, typeID)
		assert.Equal(t, want, label.TypeLabel())
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngine_RunConverges(t *testing.T) {
	src := catalog.NewStatic(catalog.Catalog{})
	overrides := &fakeOverrides{}
	var renders atomic.Int32
	renderer := rendererFunc(func(context.Context, graph.VertexTypeConfig) (string, error) {
		renders.Add(1)
		return "img", nil
	})
	e := newTestEngine(t, src, overrides, renderer, func(c *EngineConfig) { c.Debounce = 40 * time.Millisecond })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.Current().Generation() >= 1 }, time.Second, 5*time.Millisecond)

	// A burst of catalog changes collapses into one pass over the last one
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		src.Set(catalog.Catalog{Vertices: []graph.VertexTypeConfig{graph.DefaultVertexTypeConfig(id)}})
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool {
		_, ok := e.Current().Rule(NodeSelector("E"))
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, e.Current().Len())
	assert.Less(t, renders.Load(), int32(5), "debounced catalog changes do not render every version")

	// Override changes apply without waiting for the debounce
	src.Set(catalog.Catalog{Edges: []graph.EdgeTypeConfig{graph.DefaultEdgeTypeConfig("knows")}})
	require.Eventually(t, func() bool {
		_, ok := e.Current().Rule(EdgeSelector("knows"))
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	overrides.Set(graph.EdgeOverride{Type: "knows", LineThickness: util.Ptr(7.0)})
	require.Eventually(t, func() bool {
		r, ok := e.Current().Rule(EdgeSelector("knows"))
		return ok && r[AttrWidth] == 7.0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// Stopped engines ignore further triggers
	gen := e.Current().Generation()
	e.Trigger(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, gen, e.Current().Generation())
}
