package sink

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

const (
	defaultWidth  = 900
	defaultHeight = 520

	marginLeft   = 80
	marginRight  = 150
	marginTop    = 50
	marginBottom = 50

	pointRadius = 3

	// Popularity axis, padded so 0 and 100 do not sit on the frame.
	valueMin = -2.0
	valueMax = 102.0
)

// SVGOption configures [RenderStripSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height int
	title         string
	colorBy       string
	lanes         jitter.Lanes
}

func WithSize(w, h int) SVGOption      { return func(r *svgRenderer) { r.width, r.height = w, h } }
func WithTitle(s string) SVGOption     { return func(r *svgRenderer) { r.title = s } }
func WithColorBy(key string) SVGOption { return func(r *svgRenderer) { r.colorBy = key } }
func WithLanes(l jitter.Lanes) SVGOption {
	return func(r *svgRenderer) { r.lanes = l }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		width:   defaultWidth,
		height:  defaultHeight,
		colorBy: dataset.MetaGenre,
		lanes:   jitter.Seasons,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.width < marginLeft+marginRight+1 {
		r.width = defaultWidth
	}
	if r.height < marginTop+marginBottom+1 {
		r.height = defaultHeight
	}
	return r
}

// frame maps data coordinates onto the plot area.
type frame struct {
	x0, y0, w, h int
	lanes        int
}

func (f frame) px(x float64) int {
	return f.x0 + int(math.Round((x-valueMin)/(valueMax-valueMin)*float64(f.w)))
}

// py puts lane 0 at the bottom.
func (f frame) py(y float64) int {
	lo, hi := -0.5, float64(f.lanes)-0.5
	return f.y0 + f.h - int(math.Round((y-lo)/(hi-lo)*float64(f.h)))
}

// RenderStripSVG draws positions as a static strip plot.
func RenderStripSVG(positions []jitter.Position, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	f := frame{
		x0:    marginLeft,
		y0:    marginTop,
		w:     r.width - marginLeft - marginRight,
		h:     r.height - marginTop - marginBottom,
		lanes: len(r.lanes),
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(r.width, r.height, `font-family="Helvetica,Arial,sans-serif" font-size="12"`)
	canvas.Rect(0, 0, r.width, r.height, "fill:#ffffff")
	if r.title != "" {
		canvas.Text(r.width/2, marginTop/2, r.title, "text-anchor:middle;font-size:16px;font-weight:bold")
	}

	renderLanes(canvas, f, r.lanes)
	renderGrid(canvas, f)

	groups := jitter.Partition(positions, r.colorBy)
	for i, g := range groups {
		canvas.Gid("series-" + fmt.Sprint(i))
		fill := fmt.Sprintf("fill:%s;fill-opacity:0.7;stroke:none", chart.ColorFor(g.Name, i))
		for _, p := range g.Positions {
			canvas.Circle(f.px(p.X), f.py(p.Y), pointRadius, fill)
		}
		canvas.Gend()
	}
	renderLegend(canvas, r.width-marginRight+20, marginTop, groups)

	canvas.End()
	return buf.Bytes()
}

func renderLanes(canvas *svg.SVG, f frame, lanes jitter.Lanes) {
	laneH := f.h / max(1, len(lanes))
	for i, name := range lanes {
		top := f.py(float64(i) + 0.5)
		if i%2 == 0 {
			canvas.Rect(f.x0, top, f.w, laneH, "fill:#f5f5f5")
		}
		canvas.Text(f.x0-10, f.py(float64(i)), name, "text-anchor:end;dominant-baseline:middle;fill:#333")
	}
	canvas.Text(f.x0+f.w/2, f.y0+f.h+40, "Popularity", "text-anchor:middle;fill:#333")
}

func renderGrid(canvas *svg.SVG, f frame) {
	for v := 0; v <= 100; v += 10 {
		x := f.px(float64(v))
		canvas.Line(x, f.y0, x, f.y0+f.h, "stroke:#dddddd;stroke-width:1")
		canvas.Text(x, f.y0+f.h+18, fmt.Sprint(v), "text-anchor:middle;fill:#666")
	}
	canvas.Rect(f.x0, f.y0, f.w, f.h, "fill:none;stroke:#999999")
}

func renderLegend(canvas *svg.SVG, x, y int, groups []jitter.Group) {
	for i, g := range groups {
		cy := y + i*20
		canvas.Circle(x, cy, 5, "fill:"+chart.ColorFor(g.Name, i))
		label := g.Name
		if label == "" {
			label = "unknown"
		}
		canvas.Text(x+12, cy+4, chart.GenreLabel(label), "fill:#333")
	}
}
