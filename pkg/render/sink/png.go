package sink

import (
	"bytes"
	"image/color"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// PNGOption configures [RenderDensityPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	width, height vg.Length
	title         string
	xLabel        string
}

// WithPNGSize sets the image size in inches (default 8x5).
func WithPNGSize(w, h float64) PNGOption {
	return func(r *pngRenderer) { r.width, r.height = vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch }
}

// WithPNGTitle sets the plot title.
func WithPNGTitle(s string) PNGOption { return func(r *pngRenderer) { r.title = s } }

// WithPNGXLabel sets the x axis label (default "Energy").
func WithPNGXLabel(s string) PNGOption { return func(r *pngRenderer) { r.xLabel = s } }

// RenderDensityPNG draws each series as a line, colored like the dashboard.
func RenderDensityPNG(series []stats.Series, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{width: 8 * vg.Inch, height: 5 * vg.Inch, title: "Energy Distribution by Genre", xLabel: "Energy"}
	for _, opt := range opts {
		opt(&r)
	}

	p := plot.New()
	p.Title.Text = r.title
	p.X.Label.Text = r.xLabel
	p.Y.Label.Text = "Density"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X, xys[j].Y = pt.X, pt.Y
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "plot series %q", s.Name)
		}
		l.Color = hexColor(chart.ColorFor(s.Name, i))
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(chart.GenreLabel(s.Name), l)
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create png writer")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write png")
	}
	return buf.Bytes(), nil
}

// hexColor parses "#rrggbb"; anything else is black.
func hexColor(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.Black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
