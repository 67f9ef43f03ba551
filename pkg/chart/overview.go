package chart

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// PopularityBins is the bin count of the popularity histogram.
const PopularityBins = 20

// GenreShare is a horizontal bar of each genre's share of tracks.
func GenreShare(in Input) (Chart, error) {
	shares := stats.GenreShare(in.Data)
	// Reversed axes draw the first category at the bottom.
	labels := make([]string, len(shares))
	data := make([]opts.BarData, len(shares))
	for i, s := range shares {
		j := len(shares) - 1 - i
		labels[j] = GenreLabel(s.Genre)
		data[j] = opts.BarData{
			Name:      fmt.Sprintf("%s tracks", FormatCount(s.Count)),
			Value:     s.Percent,
			ItemStyle: &opts.ItemStyle{Color: ColorFor(s.Genre, i)},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameGenreShare, "Genre distribution")),
		charts.WithTitleOpts(opts.Title{Title: "Genre Distribution", Subtitle: "Share of tracks (%)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Percent", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Genre", Type: "category"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)
	bar.SetXAxis(labels).AddSeries("share", data)
	bar.XYReversal()
	return bar, nil
}

// Decades is a bar of track counts per release decade.
func Decades(in Input) (Chart, error) {
	buckets := stats.DecadeCounts(in.Data)
	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameDecades, "Songs by decade")),
		charts.WithTitleOpts(opts.Title{Title: "Songs by Decade"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Decade"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Songs", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis(labels).AddSeries("songs", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary}))
	return bar, nil
}

// FeatureMeans is a bar of the mean of each profile feature.
func FeatureMeans(in Input) (Chart, error) {
	means := stats.FeatureMeans(in.Data, dataset.ProfileFeatures)
	labels := make([]string, len(means))
	data := make([]opts.BarData, len(means))
	for i, m := range means {
		labels[i] = TitleLabel(m.Name)
		data[i] = opts.BarData{Value: m.Value}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameFeatureMeans, "Audio features")),
		charts.WithTitleOpts(opts.Title{Title: "Average Audio Features"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Feature"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Mean", Type: "value", Min: 0, Max: 1}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis(labels).AddSeries("mean", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFeature}))
	return bar, nil
}

// Popularity is a histogram of track popularity.
func Popularity(in Input) (Chart, error) {
	bins := stats.PopularityHistogram(in.Data, PopularityBins)
	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%g-%g", b.Lo, b.Hi)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NamePopularity, "Popularity distribution")),
		charts.WithTitleOpts(opts.Title{Title: "Popularity Distribution"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Popularity"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Songs", Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	bar.SetXAxis(labels).AddSeries("songs", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHighlight}))
	return bar, nil
}

// Timeline plots, per year, the song count and mean popularity.
func Timeline(in Input) (Chart, error) {
	years := stats.YearlyOverview(in.Data)
	labels := make([]string, len(years))
	counts := make([]opts.LineData, len(years))
	pops := make([]opts.LineData, len(years))
	diversity := make([]opts.LineData, len(years))
	for i, y := range years {
		labels[i] = fmt.Sprint(y.Year)
		counts[i] = opts.LineData{Value: y.Count}
		pops[i] = opts.LineData{Value: y.MeanPopularity}
		diversity[i] = opts.LineData{Value: y.Genres}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(in.init(NameTimeline, "Music timeline")),
		charts.WithTitleOpts(opts.Title{Title: "Songs and Popularity by Year"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Type: "scroll"}),
	)
	line.SetXAxis(labels).
		AddSeries("Songs", counts, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPrimary})).
		AddSeries("Mean popularity", pops, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorHighlight})).
		AddSeries("Genres", diversity, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorFeature}))
	return line, nil
}
