// Package icon renders the default vertex glyphs: the vertex shape filled
// with the type color and marked with the type's initial, as an SVG data URI.
package icon

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	svg "github.com/ajstarks/svgo"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/style"
)

// Size is the edge length of the square icon canvas
const Size = 48

const dataURIPrefix = "data:image/svg+xml;base64,"

// Renderer implements style.AssetRenderer. Safe for concurrent use.
type Renderer struct {
	cache  *lru.Cache
	logger *zap.SugaredLogger
}

// NewRenderer creates a renderer caching up to cacheSize icons
// (0 = am.DefaultIconCacheSize)
func NewRenderer(cacheSize int, log *zap.SugaredLogger) (*Renderer, error) {
	if cacheSize <= 0 {
		cacheSize = am.DefaultIconCacheSize
	}
	if log == nil {
		log = logger.ComponentLogger("icon")
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create icon cache")
	}
	return &Renderer{cache: cache, logger: log}, nil
}

// Render returns the icon of cfg as a base64 SVG data URI
func (r *Renderer) Render(ctx context.Context, cfg graph.VertexTypeConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := cacheKey(cfg)
	if v, ok := r.cache.Get(key); ok {
		return v.(string), nil
	}

	data, err := SVG(cfg)
	if err != nil {
		return "", err
	}
	uri := dataURIPrefix + base64.StdEncoding.EncodeToString(data)
	r.cache.Add(key, uri)

	r.logger.Debugw("Rendered vertex icon",
		logger.FieldType, cfg.Type,
		"shape", cfg.Shape,
		"bytes", len(data))
	return uri, nil
}

// Len returns the number of cached icons
func (r *Renderer) Len() int {
	return r.cache.Len()
}

// Purge drops all cached icons
func (r *Renderer) Purge() {
	r.cache.Purge()
}

func cacheKey(cfg graph.VertexTypeConfig) string {
	return fmt.Sprintf("%s|%s|%s|%s|%g|%s",
		cfg.Type, cfg.Color, cfg.Shape, cfg.BorderColor, cfg.BorderWidth, cfg.BorderStyle)
}

// SVG draws the icon document for cfg
func SVG(cfg graph.VertexTypeConfig) ([]byte, error) {
	if cfg.Type == "" {
		return nil, errors.NewInvalidRequestError("icon requires a vertex type id")
	}
	fill, err := style.ParseColor(cfg.Color)
	if err != nil {
		return nil, errors.Wrapf(err, "icon for %q", cfg.Type)
	}

	shapeStyle := "fill:" + fill.Hex()
	if cfg.BorderWidth > 0 {
		stroke := fill.Hex()
		if c, err := style.ParseColor(cfg.BorderColor); err == nil {
			stroke = c.Hex()
		}
		shapeStyle += fmt.Sprintf(";stroke:%s;stroke-width:%g", stroke, cfg.BorderWidth)
		switch cfg.BorderStyle {
		case graph.LineStyleDashed:
			shapeStyle += ";stroke-dasharray:5,6"
		case graph.LineStyleDotted:
			shapeStyle += ";stroke-dasharray:1,2"
		}
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(Size, Size)
	drawShape(canvas, cfg.Shape, shapeStyle)
	canvas.Text(Size/2, Size/2, initial(cfg.Type),
		fmt.Sprintf("fill:%s;font-size:20px;font-family:sans-serif;font-weight:bold;text-anchor:middle;dominant-baseline:central",
			style.ContrastText(fill.Hex())))
	canvas.End()
	return buf.Bytes(), nil
}

// initial is the first rune of the type's display label
func initial(typeID string) string {
	label := style.TransformLabel(typeID)
	if label == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(label)
	return strings.ToUpper(string(r))
}

const (
	margin = 4
	inner  = Size - 2*margin
	center = Size / 2
	radius = inner / 2
)

func drawShape(canvas *svg.SVG, shape graph.Shape, s string) {
	switch shape {
	case graph.ShapeRectangle:
		canvas.Rect(margin, margin, inner, inner, s)
	case graph.ShapeRoundRectangle:
		canvas.Roundrect(margin, margin, inner, inner, 8, 8, s)
	case graph.ShapeBarrel:
		canvas.Roundrect(margin, margin, inner, inner, inner/4, inner/2, s)
	case graph.ShapeTriangle:
		polygon(canvas, regular(3, -90), s)
	case graph.ShapeDiamond:
		polygon(canvas, regular(4, -90), s)
	case graph.ShapePentagon:
		polygon(canvas, regular(5, -90), s)
	case graph.ShapeHexagon:
		polygon(canvas, regular(6, 0), s)
	case graph.ShapeOctagon:
		polygon(canvas, regular(8, 22.5), s)
	case graph.ShapeStar:
		polygon(canvas, star(), s)
	case graph.ShapeRhomboid:
		polygon(canvas, []point{
			{margin + inner/4, margin}, {Size - margin, margin},
			{Size - margin - inner/4, Size - margin}, {margin, Size - margin},
		}, s)
	case graph.ShapeTag:
		polygon(canvas, []point{
			{margin, margin}, {Size - margin - inner/4, margin}, {Size - margin, center},
			{Size - margin - inner/4, Size - margin}, {margin, Size - margin},
		}, s)
	case graph.ShapeVee:
		polygon(canvas, []point{
			{margin, margin}, {center, center - inner/6}, {Size - margin, margin}, {center, Size - margin},
		}, s)
	default:
		canvas.Circle(center, center, radius, s)
	}
}

type point struct{ x, y int }

func polygon(canvas *svg.SVG, pts []point, s string) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.x, p.y
	}
	canvas.Polygon(xs, ys, s)
}

// regular returns the vertices of an n-gon inscribed in the icon circle,
// starting at startDeg
func regular(n int, startDeg float64) []point {
	pts := make([]point, n)
	for i := range pts {
		a := (startDeg + float64(i)*360/float64(n)) * math.Pi / 180
		pts[i] = point{
			x: center + int(math.Round(radius*math.Cos(a))),
			y: center + int(math.Round(radius*math.Sin(a))),
		}
	}
	return pts
}

func star() []point {
	pts := make([]point, 10)
	for i := range pts {
		r := float64(radius)
		if i%2 == 1 {
			r *= 0.45
		}
		a := (-90 + float64(i)*36) * math.Pi / 180
		pts[i] = point{
			x: center + int(math.Round(r*math.Cos(a))),
			y: center + int(math.Round(r*math.Sin(a))),
		}
	}
	return pts
}
