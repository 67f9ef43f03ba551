package chart

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// HeatmapRows is the number of subgenres shown in the heatmap.
const HeatmapRows = 15

// DefaultRadarGenre is used when no genre is selected.
const DefaultRadarGenre = "pop"

// GenreEvolution draws one line of mean popularity per genre over the years.
func GenreEvolution(in Input) (Chart, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameGenreEvolution, "Genre evolution")),
		charts.WithTitleOpts(opts.Title{Title: "Genre Popularity Over Time"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year", Type: "value", Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean popularity", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	for i, s := range stats.GenreEvolution(in.Data) {
		line.AddSeries(GenreLabel(s.Name), pointsToLine(s.Points),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(s.Name, i)}))
	}
	return line, nil
}

// Growth is a horizontal bar of popularity change per genre; gains are
// green, losses red.
func Growth(in Input) (Chart, error) {
	growth := stats.GenreGrowth(in.Data)
	labels := make([]string, len(growth))
	data := make([]opts.BarData, len(growth))
	for i, g := range growth {
		color := colorPositive
		if g.Delta < 0 {
			color = colorNegative
		}
		labels[i] = GenreLabel(g.Genre)
		data[i] = opts.BarData{
			Name:      fmt.Sprintf("%s -> %s", FormatFloat(g.Early), FormatFloat(g.Late)),
			Value:     g.Delta,
			ItemStyle: &opts.ItemStyle{Color: color},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameGrowth, "Genre growth")),
		charts.WithTitleOpts(opts.Title{
			Title:    "Genre Popularity Growth",
			Subtitle: fmt.Sprintf("%s vs %s", stats.LatePeriod.Label, stats.EarlyPeriod.Label),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Change in mean popularity", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Genre", Type: "category"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)
	bar.SetXAxis(labels).AddSeries("growth", data)
	bar.XYReversal()
	return bar, nil
}

// SubgenreHeatmap shows mean popularity of the top subgenres per period.
func SubgenreHeatmap(in Input) (Chart, error) {
	hm := stats.SubgenreHeatmap(in.Data, stats.DefaultPeriods, HeatmapRows)
	rows := make([]string, len(hm.Rows))
	for i, r := range hm.Rows {
		rows[i] = TitleLabel(r)
	}
	var data []opts.HeatMapData
	for i := range hm.Rows {
		for j := range hm.Columns {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, hm.Values[i][j]}})
		}
	}

	chart := charts.NewHeatMap()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameHeatmap, "Subgenre heatmap")),
		charts.WithTitleOpts(opts.Title{Title: "Subgenre Popularity by Period"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Period", Type: "category", Data: hm.Columns}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Subgenre", Type: "category", Data: rows}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     100,
			InRange: &opts.VisualMapInRange{Color: []string{"#440154", "#21918c", "#fde725"}},
		}),
	)
	chart.SetXAxis(hm.Columns).AddSeries("popularity", data)
	return chart, nil
}

// FeatureRadar compares a genre's audio profile with the whole dataset.
func FeatureRadar(in Input) (Chart, error) {
	genre := in.Genre
	if genre == "" {
		genre = DefaultRadarGenre
	}
	if err := validGenre(in, genre); err != nil {
		return nil, err
	}
	p := stats.FeatureProfile(in.Data, genre, dataset.ProfileFeatures)

	indicators := make([]*opts.Indicator, len(p.Features))
	for i, f := range p.Features {
		indicators[i] = &opts.Indicator{Name: TitleLabel(f), Max: 1}
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameRadar, "Audio profile")),
		charts.WithTitleOpts(opts.Title{Title: "Audio Profile: " + GenreLabel(genre)}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)
	radar.
		AddSeries(GenreLabel(genre), []opts.RadarData{{Name: GenreLabel(genre), Value: p.Selected}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(genre, 0)})).
		AddSeries("Overall", []opts.RadarData{{Name: "Overall", Value: p.Overall}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorOverall}))
	return radar, nil
}

func pointsToLine(points []stats.Point) []opts.LineData {
	out := make([]opts.LineData, len(points))
	for i, p := range points {
		out[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
	}
	return out
}
