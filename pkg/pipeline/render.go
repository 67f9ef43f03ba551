package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
	"github.com/matzehuels/trackdash/pkg/render/sink"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// Render generates output artifacts for opts.Chart in the requested formats.
// positions are only read by the strip plot.
func Render(d *dataset.Dataset, positions []jitter.Position, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if d == nil && opts.Chart != chart.NameStrip {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart %q needs a dataset", opts.Chart)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = renderStripSVG(positions, opts)
		case FormatPNG:
			data, err = renderDensityPNG(d, opts)
		case FormatJSON:
			data, err = renderJSON(d, positions, opts)
		case FormatHTML:
			data, err = renderHTML(d, positions, opts)
		default:
			err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// chartInput converts the render options for the chart builders.
func chartInput(d *dataset.Dataset, positions []jitter.Position, opts Options) chart.Input {
	return chart.Input{
		Data:      d,
		Positions: positions,
		Genre:     opts.Genre,
		Genres:    opts.Genres,
		ColorBy:   opts.ColorBy,
		Width:     fmt.Sprintf("%dpx", opts.Width),
		Height:    fmt.Sprintf("%dpx", opts.Height),
	}
}

func colorKey(colorBy string) string {
	if colorBy == chart.ColorBySubgenre {
		return dataset.MetaSubgenre
	}
	return dataset.MetaGenre
}

func renderStripSVG(positions []jitter.Position, opts Options) []byte {
	return sink.RenderStripSVG(positions,
		sink.WithSize(opts.Width, opts.Height),
		sink.WithTitle("Release Season vs Popularity"),
		sink.WithColorBy(colorKey(opts.ColorBy)),
	)
}

func renderDensityPNG(d *dataset.Dataset, opts Options) ([]byte, error) {
	genres := opts.Genres
	if len(genres) == 0 {
		genres = d.GenreNames()
	}

	var series []stats.Series
	title := "Energy Distribution by Genre"
	if opts.Chart == chart.NameEnergyKDE {
		series = stats.EnergyKDESeries(d, genres, stats.DensityMinTracks, chart.KDEPoints)
		title = "Energy Density by Genre (KDE)"
	} else {
		series = stats.EnergyDensity(d, genres, stats.DensityMinTracks)
	}

	// 96 dpi, matching the browser's px.
	return sink.RenderDensityPNG(series,
		sink.WithPNGSize(float64(opts.Width)/96, float64(opts.Height)/96),
		sink.WithPNGTitle(title),
	)
}

func renderJSON(d *dataset.Dataset, positions []jitter.Position, opts Options) ([]byte, error) {
	if opts.Chart == chart.NameStrip {
		jsonOpts := []sink.JSONOption{sink.WithJSONOptions(opts.JitterOptions())}
		if d != nil {
			jsonOpts = append(jsonOpts, sink.WithJSONDataset(d.Hash()))
		}
		return sink.RenderPositionsJSON(positions, jsonOpts...)
	}

	c, err := chart.Build(opts.Chart, chartInput(d, positions, opts))
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(c.JSON(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode %s options", opts.Chart)
	}
	return data, nil
}

func renderHTML(d *dataset.Dataset, positions []jitter.Position, opts Options) ([]byte, error) {
	c, err := chart.Build(opts.Chart, chartInput(d, positions, opts))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s page", opts.Chart)
	}
	return buf.Bytes(), nil
}
