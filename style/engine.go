// Package style resolves the type catalog, user edge overrides and vertex
// icons into the Style Map the rendering surface draws with.
package style

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/catalog"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/notify"
	"github.com/teranos/graphstyle/logger"
)

// AssetRenderer produces the background-image descriptor of a vertex type.
// Render may block; it is called concurrently from resolution passes.
type AssetRenderer interface {
	Render(ctx context.Context, cfg graph.VertexTypeConfig) (string, error)
}

// OverrideSource is the read side of the preference store
type OverrideSource interface {
	Overrides() []graph.EdgeOverride
	Subscribe(fn func([]graph.EdgeOverride)) func()
}

// PublishPolicy decides what happens when passes overlap
type PublishPolicy string

const (
	// PublishLatest publishes a pass only if it is newer than the last
	// published one. Results of older passes that settle late are dropped.
	PublishLatest PublishPolicy = am.PublishLatest

	// PublishLastSettled publishes whichever pass settles last, even when
	// it started before the currently published one.
	PublishLastSettled PublishPolicy = am.PublishLastSettled
)

// EngineConfig wires the engine to its inputs
type EngineConfig struct {
	Catalog   catalog.Source
	Overrides OverrideSource
	Renderer  AssetRenderer
	Lookup    EdgeLookup

	Debounce          time.Duration // catalog change debounce (0 = none)
	RenderConcurrency int           // 0 = am.DefaultRenderConcurrency
	DefaultLabelColor string        // "" = graph.DefaultLabelColor
	Policy            PublishPolicy // "" = PublishLatest

	Logger *zap.SugaredLogger
}

// Engine recomputes the Style Map whenever the catalog or the overrides change
type Engine struct {
	cfg    EngineConfig
	logger *zap.SugaredLogger

	issued atomic.Uint64 // last generation handed to a pass

	mu           sync.Mutex // serializes publication
	publishedGen uint64
	current      atomic.Pointer[StyleMap]
	subs         notify.Subscribers[*StyleMap]

	runMu    sync.Mutex
	stopped  bool
	passes   sync.WaitGroup
	debounce *time.Timer
}

// NewEngine validates cfg and returns an engine with an empty current map
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("style engine requires a catalog source")
	}
	if cfg.Overrides == nil {
		return nil, errors.New("style engine requires an override source")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("style engine requires an asset renderer")
	}
	if cfg.RenderConcurrency <= 0 {
		cfg.RenderConcurrency = am.DefaultRenderConcurrency
	}
	if cfg.DefaultLabelColor == "" {
		cfg.DefaultLabelColor = graph.DefaultLabelColor
	}
	switch cfg.Policy {
	case "":
		cfg.Policy = PublishLatest
	case PublishLatest, PublishLastSettled:
	default:
		return nil, errors.Newf("unknown publish policy %q", cfg.Policy)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.ComponentLogger("style.engine")
	}

	e := &Engine{cfg: cfg, logger: cfg.Logger}
	e.current.Store(newStyleMap(map[Selector]Rule{}))
	return e, nil
}

// Current returns the last published map. Never nil.
func (e *Engine) Current() *StyleMap {
	return e.current.Load()
}

// Subscribe registers fn for every published map. fn runs while the engine
// holds its publication lock and must not block.
func (e *Engine) Subscribe(fn func(*StyleMap)) func() {
	return e.subs.Add(fn)
}

// Resolve builds a Style Map from explicit inputs without publishing it.
// Vertex renders run concurrently; a failed render leaves its node rule
// without a background image.
func (e *Engine) Resolve(ctx context.Context, cat catalog.Catalog, overrides []graph.EdgeOverride) (*StyleMap, error) {
	images := make([]string, len(cat.Vertices))

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.RenderConcurrency)
	for i, v := range cat.Vertices {
		g.Go(func() error {
			img, err := e.cfg.Renderer.Render(ctx, v)
			if err != nil {
				e.logger.Warnw("Vertex icon render failed, styling without image",
					logger.FieldType, v.Type,
					logger.FieldError, err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "resolution pass cancelled")
	}

	rules := make(map[Selector]Rule, len(cat.Vertices)+len(cat.Edges))
	for i, v := range cat.Vertices {
		rules[NodeSelector(v.Type)] = nodeRule(v, images[i])
	}

	for _, cfg := range cat.Edges {
		var merged graph.MergedEdgeStyle
		if o, ok := graph.FindOverride(overrides, cfg.Type); ok {
			merged = graph.MergeEdgeStyle(cfg, &o)
		} else {
			merged = graph.MergeEdgeStyle(cfg, nil)
		}

		labelColor := merged.LabelColor
		if labelColor == "" {
			labelColor = e.cfg.DefaultLabelColor
		}

		rules[EdgeSelector(cfg.Type)] = edgeRule(merged, labelColor, NewDeferredLabel(e.cfg.Lookup, cfg.Type))
	}

	return newStyleMap(rules), nil
}

// Recompute runs one pass over the current inputs and publishes it subject
// to the publish policy. Returns the pass generation and whether it was
// published.
func (e *Engine) Recompute(ctx context.Context) (uint64, bool) {
	gen := e.issued.Add(1)
	cat := e.cfg.Catalog.Current()
	overrides := e.cfg.Overrides.Overrides()

	m, err := e.Resolve(ctx, cat, overrides)
	if err != nil {
		e.logger.Debugw("Resolution pass abandoned",
			logger.FieldGeneration, gen,
			logger.FieldError, err)
		return gen, false
	}
	return gen, e.publish(gen, m)
}

func (e *Engine) publish(gen uint64, m *StyleMap) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.Policy == PublishLatest && gen <= e.publishedGen {
		e.logger.Debugw("Discarding stale style map",
			logger.FieldGeneration, gen,
			"published_generation", e.publishedGen)
		return false
	}

	m.generation = gen
	e.publishedGen = gen
	e.current.Store(m)

	e.logger.Debugw("Published style map",
		logger.FieldGeneration, gen,
		logger.FieldCount, m.Len())
	e.subs.Notify(m)
	return true
}

// Run resolves once, then follows the catalog and override sources until
// ctx is done. Catalog changes are debounced; override changes start a
// pass immediately. Passes are not cancelled by newer ones. Run returns
// after in-flight passes finish.
func (e *Engine) Run(ctx context.Context) error {
	e.runMu.Lock()
	if e.stopped {
		e.runMu.Unlock()
		return errors.New("style engine already stopped")
	}
	e.runMu.Unlock()

	unsubCatalog := e.cfg.Catalog.Subscribe(func(catalog.Catalog) {
		e.scheduleDebounced(ctx)
	})
	unsubOverrides := e.cfg.Overrides.Subscribe(func([]graph.EdgeOverride) {
		e.startPass(ctx)
	})

	e.startPass(ctx)
	<-ctx.Done()

	unsubCatalog()
	unsubOverrides()

	e.runMu.Lock()
	e.stopped = true
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.runMu.Unlock()

	e.passes.Wait()
	return nil
}

// Trigger starts a pass immediately, as an override change would
func (e *Engine) Trigger(ctx context.Context) {
	e.startPass(ctx)
}

func (e *Engine) startPass(ctx context.Context) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.stopped {
		return
	}
	e.passes.Add(1)
	go func() {
		defer e.passes.Done()
		e.Recompute(ctx)
	}()
}

func (e *Engine) scheduleDebounced(ctx context.Context) {
	if e.cfg.Debounce <= 0 {
		e.startPass(ctx)
		return
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.stopped {
		return
	}
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.debounce = time.AfterFunc(e.cfg.Debounce, func() { e.startPass(ctx) })
}
