package chart

import (
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

const stripSymbolSize = 6

// Strip draws jittered positions as a scatter with one series per genre
// (or subgenre). Lanes run along y; the lane labels go into the axis name
// since the axis itself is numeric.
func Strip(in Input) (Chart, error) {
	key := dataset.MetaGenre
	switch in.ColorBy {
	case "", ColorByGenre:
	case ColorBySubgenre:
		key = dataset.MetaSubgenre
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown color-by %q", in.ColorBy)
	}

	lanes := jitter.Seasons
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameStrip, "Release season vs popularity")),
		charts.WithTitleOpts(opts.Title{
			Title:    "Release Season vs Popularity",
			Subtitle: fmt.Sprintf("%s tracks", FormatCount(len(in.Positions))),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Popularity", Type: "value", Min: -1, Max: 101}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: laneAxisName(lanes),
			Type: "value",
			Min:  -0.5,
			Max:  float64(len(lanes)) - 0.5,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)

	for i, g := range jitter.Partition(in.Positions, key) {
		data := make([]opts.ScatterData, len(g.Positions))
		for j, p := range g.Positions {
			data[j] = opts.ScatterData{
				Name:       pointLabel(p),
				Value:      []interface{}{p.X, p.Y},
				Symbol:     "circle",
				SymbolSize: stripSymbolSize,
			}
		}
		scatter.AddSeries(GenreLabel(g.Name), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(g.Name, i)}))
	}
	return scatter, nil
}

// laneAxisName maps axis values to lane names ("0 Winter · 1 Spring ...").
func laneAxisName(lanes jitter.Lanes) string {
	parts := make([]string, len(lanes))
	for i, l := range lanes {
		parts[i] = fmt.Sprintf("%d %s", i, l)
	}
	return strings.Join(parts, " · ")
}

func pointLabel(p jitter.Position) string {
	name := p.Meta[dataset.MetaName]
	if a := p.Meta[dataset.MetaArtist]; a != "" {
		name += " / " + a
	}
	if d := p.Meta[dataset.MetaReleaseDate]; d != "" {
		name += " (" + d + ")"
	}
	return name
}
