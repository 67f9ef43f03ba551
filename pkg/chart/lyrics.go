package chart

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// PopularThreshold splits the two waffle charts: popular tracks score above
// it.
const PopularThreshold = 60

// Waffle grid size.
const (
	WaffleSquares = 100
	WaffleColumns = 10
)

// Speechiness plots mean and median speechiness of popular tracks per year.
func Speechiness(in Input) (Chart, error) {
	trend := stats.SpeechinessTrend(in.Data)
	means := make([]opts.LineData, len(trend))
	medians := make([]opts.LineData, len(trend))
	for i, p := range trend {
		means[i] = opts.LineData{Value: []interface{}{p.Year, p.Mean}}
		medians[i] = opts.LineData{Value: []interface{}{p.Year, p.Median}}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameSpeechiness, "Speechiness trend")),
		charts.WithTitleOpts(opts.Title{
			Title:    "Speechiness of Popular Songs",
			Subtitle: fmt.Sprintf("popularity > %d", PopularThreshold),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year", Type: "value", Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speechiness", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	line.
		AddSeries("Mean", means, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary})).
		AddSeries("Median", medians, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHighlight}))
	return line, nil
}

// WafflePopular is the speechiness waffle of popular tracks.
func WafflePopular(in Input) (Chart, error) {
	sub := in.Data.PopularAbove(PopularThreshold)
	return waffle(in, NameWafflePopular, fmt.Sprintf("Popular Songs (> %d)", PopularThreshold), sub), nil
}

// WaffleOther is the speechiness waffle of the remaining tracks.
func WaffleOther(in Input) (Chart, error) {
	sub := in.Data.Filter(func(t dataset.Track) bool { return t.Popularity <= PopularThreshold })
	return waffle(in, NameWaffleOther, fmt.Sprintf("Other Songs (<= %d)", PopularThreshold), sub), nil
}

// waffle draws each cell as a square symbol, one series per level so the
// legend names the levels. Row 0 is drawn at the top.
func waffle(in Input, id, heading string, d *dataset.Dataset) Chart {
	cells := stats.Waffle(stats.LevelCounts(d), WaffleSquares, WaffleColumns)
	rows := (WaffleSquares + WaffleColumns - 1) / WaffleColumns

	byLevel := make(map[stats.Level][]opts.ScatterData)
	var empty []opts.ScatterData
	for _, c := range cells {
		point := opts.ScatterData{
			Value:      []interface{}{c.Col, rows - 1 - c.Row},
			Symbol:     "rect",
			SymbolSize: 18,
		}
		if !c.Filled {
			empty = append(empty, point)
			continue
		}
		point.Name = fmt.Sprintf("%s: %.1f%%", c.Level, c.Share)
		byLevel[c.Level] = append(byLevel[c.Level], point)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(id, heading)),
		charts.WithTitleOpts(opts.Title{Title: heading, Subtitle: FormatCount(d.Len()) + " tracks"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: -1, Max: WaffleColumns}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: -1, Max: rows}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	for _, l := range stats.Levels {
		scatter.AddSeries(l.String(), byLevel[l],
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color()}))
	}
	if len(empty) > 0 {
		scatter.AddSeries("empty", empty, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#eeeeee"}))
	}
	return scatter
}
