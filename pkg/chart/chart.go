// Package chart builds the dashboard's interactive charts with go-echarts.
//
// Each builder takes an [Input] and returns a [Chart] that can render itself
// as a standalone HTML page or expose its ECharts option object as JSON for
// the API. Builders are registered by name so that the CLI and the server
// resolve "strip", "genre-share", ... the same way.
package chart

import (
	"io"
	"slices"
	"sort"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

// Chart is a go-echarts chart.
type Chart interface {
	components.Charter
	Render(w io.Writer) error
	JSON() map[string]interface{}
}

// Color-by modes of the strip plot.
const (
	ColorByGenre    = "genre"
	ColorBySubgenre = "subgenre"
)

// Input carries everything a builder may need. Unused fields are ignored.
type Input struct {
	Data      *dataset.Dataset
	Positions []jitter.Position

	// Genre selects the radar genre. Default: pop.
	Genre string
	// Genres selects the energy density series. Default: every genre.
	Genres []string
	// ColorBy is ColorByGenre or ColorBySubgenre. Default: genre.
	ColorBy string

	Width  string
	Height string
}

// Default chart size.
const (
	DefaultWidth  = "900px"
	DefaultHeight = "520px"
)

func (in Input) init(id, pageTitle string) opts.Initialization {
	w, h := in.Width, in.Height
	if w == "" {
		w = DefaultWidth
	}
	if h == "" {
		h = DefaultHeight
	}
	return opts.Initialization{PageTitle: pageTitle, Width: w, Height: h, ChartID: id}
}

// Builder constructs one chart.
type Builder func(Input) (Chart, error)

// Chart names.
const (
	NameStrip          = "strip"
	NameGenreShare     = "genre-share"
	NameDecades        = "decades"
	NameFeatureMeans   = "feature-means"
	NamePopularity     = "popularity"
	NameTimeline       = "timeline"
	NameGenreEvolution = "genre-evolution"
	NameGrowth         = "growth"
	NameHeatmap        = "subgenre-heatmap"
	NameRadar          = "radar"
	NameDuration       = "duration"
	NameDanceTempo     = "dance-tempo"
	NameSpeechiness    = "speechiness"
	NameWafflePopular  = "waffle-popular"
	NameWaffleOther    = "waffle-other"
	NameEnergyDensity  = "energy-density"
	NameEnergyKDE      = "energy-kde"
)

var builders = map[string]Builder{
	NameStrip:          Strip,
	NameGenreShare:     GenreShare,
	NameDecades:        Decades,
	NameFeatureMeans:   FeatureMeans,
	NamePopularity:     Popularity,
	NameTimeline:       Timeline,
	NameGenreEvolution: GenreEvolution,
	NameGrowth:         Growth,
	NameHeatmap:        SubgenreHeatmap,
	NameRadar:          FeatureRadar,
	NameDuration:       DurationTrend,
	NameDanceTempo:     DanceTempo,
	NameSpeechiness:    Speechiness,
	NameWafflePopular:  WafflePopular,
	NameWaffleOther:    WaffleOther,
	NameEnergyDensity:  EnergyDensity,
	NameEnergyKDE:      EnergyKDE,
}

// Names returns every registered chart name, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NeedsPositions reports whether the chart is drawn from jitter positions.
func NeedsPositions(name string) bool { return name == NameStrip }

// Build looks up and runs the named builder.
func Build(name string, in Input) (Chart, error) {
	b, ok := builders[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidChart, "unknown chart %q (available: %v)", name, Names())
	}
	if in.Data == nil && !NeedsPositions(name) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chart %q needs a dataset", name)
	}
	return b(in)
}

// Page renders several charts into one HTML document.
func Page(pageTitle string, cs ...Chart) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	for _, c := range cs {
		page.AddCharts(c)
	}
	return page
}

func genresOrAll(in Input) []string {
	if len(in.Genres) > 0 {
		return in.Genres
	}
	if in.Data == nil {
		return nil
	}
	return in.Data.GenreNames()
}

func validGenre(in Input, g string) error {
	if err := errors.ValidateGenre(g); err != nil {
		return err
	}
	if in.Data != nil && !slices.Contains(in.Data.GenreNames(), g) {
		return errors.New(errors.ErrCodeInvalidGenre, "genre %q not in dataset", g)
	}
	return nil
}
