package chart

import (
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/stats"
)

// KDEPoints is the grid size of the kernel density chart.
const KDEPoints = 200

// DurationTrend plots mean track duration per year.
func DurationTrend(in Input) (Chart, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameDuration, "Duration trend")),
		charts.WithTitleOpts(opts.Title{Title: "Song Duration Over Time", Subtitle: "popularity >= 60, since 2000"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year", Type: "value", Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Minutes", Type: "value", Min: "dataMin"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	line.AddSeries("duration", pointsToLine(stats.DurationTrend(in.Data)),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary}))
	return line, nil
}

// DanceTempo scatters danceability over tempo, one series per genre, with
// the symbol scaled by popularity.
func DanceTempo(in Input) (Chart, error) {
	groups := stats.DanceTempo(in.Data)
	genres := make([]string, 0, len(groups))
	for g := range groups {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameDanceTempo, "Danceability vs tempo")),
		charts.WithTitleOpts(opts.Title{Title: "Danceability vs Tempo"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Tempo (BPM)", Type: "value", Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Danceability", Type: "value", Min: 0, Max: 1}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	for i, g := range genres {
		points := groups[g]
		data := make([]opts.ScatterData, len(points))
		for j, p := range points {
			data[j] = opts.ScatterData{
				Name:       p.Name,
				Value:      []interface{}{p.Tempo, p.Danceability},
				Symbol:     "circle",
				SymbolSize: popularitySize(p.Popularity),
			}
		}
		scatter.AddSeries(GenreLabel(g), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(g, i)}))
	}
	return scatter, nil
}

// popularitySize maps popularity 0-100 to a symbol size of 3-15.
func popularitySize(pop int) int {
	return 3 + int(math.Round(float64(max(0, min(pop, 100)))*0.12))
}

// EnergyDensity draws the smoothed, popularity-weighted energy histogram of
// each selected genre.
func EnergyDensity(in Input) (Chart, error) {
	series := stats.EnergyDensity(in.Data, genresOrAll(in), stats.DensityMinTracks)
	return densityChart(in, NameEnergyDensity, "Energy Distribution by Genre", series), nil
}

// EnergyKDE is [EnergyDensity] with a kernel density estimate.
func EnergyKDE(in Input) (Chart, error) {
	series := stats.EnergyKDESeries(in.Data, genresOrAll(in), stats.DensityMinTracks, KDEPoints)
	return densityChart(in, NameEnergyKDE, "Energy Density by Genre (KDE)", series), nil
}

func densityChart(in Input, id, heading string, series []stats.Series) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(id, heading)),
		charts.WithTitleOpts(opts.Title{Title: heading, Subtitle: "weighted by popularity"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Energy", Type: "value", Min: 0, Max: 1}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Density", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	for i, s := range series {
		line.AddSeries(GenreLabel(s.Name), pointsToLine(s.Points),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(s.Name, i)}))
	}
	return line
}
