// Package pipeline provides the dashboard's load → layout → render pipeline.
//
// The CLI and the HTTP server both go through a [Runner], so that loading,
// caching and rendering behave the same regardless of the entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the songs CSV from a path or URL and apply the filters
//  2. Layout: compute strip-plot positions with the jitter engine
//  3. Render: build the requested chart in one or more formats (SVG, PNG, JSON, HTML)
//
// Each stage can be run on its own or as part of [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "spotify_songs.csv",
//	    Chart:   "strip",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultChart is rendered when Options.Chart is empty.
	DefaultChart = chart.NameStrip

	// DefaultWidth and DefaultHeight size static renders in pixels.
	DefaultWidth  = 900
	DefaultHeight = 520
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatHTML = "html"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatHTML}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run. Zero values mean
// "use the default". XJitterMagnitude and Seed are pointers because 0 is a
// valid explicit choice for both; nil selects the default.
type Options struct {
	// Load options
	Source  string   `json:"source"`
	MinYear int      `json:"min_year,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Layout options
	BinSize          float64  `json:"bin_size,omitempty"`
	JitterStep       float64  `json:"jitter_step,omitempty"`
	MaxJitterRange   float64  `json:"max_jitter_range,omitempty"`
	XJitterMagnitude *float64 `json:"x_jitter_magnitude,omitempty"`
	Seed             *uint64  `json:"seed,omitempty"`
	CenterSingletons bool     `json:"center_singletons,omitempty"`

	// Render options
	Chart   string   `json:"chart,omitempty"`
	Formats []string `json:"formats,omitempty"`
	ColorBy string   `json:"color_by,omitempty"`
	Genre   string   `json:"genre,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateForLoad checks the load options and normalizes genre names.
func (o *Options) ValidateForLoad() error {
	if strings.TrimSpace(o.Source) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a dataset path or URL is required")
	}
	if !errors.IsURL(o.Source) {
		if err := errors.ValidatePath(o.Source); err != nil {
			return err
		}
	}
	if o.MinYear < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "min year cannot be negative, got %d", o.MinYear)
	}
	for i, g := range o.Genres {
		if err := errors.ValidateGenre(g); err != nil {
			return err
		}
		o.Genres[i] = strings.ToLower(strings.TrimSpace(g))
	}
	o.setLogger()
	return nil
}

// Ptr returns a pointer to v, for the optional layout fields.
func Ptr[T any](v T) *T { return &v }

// SetLayoutDefaults fills unset layout options from [jitter.DefaultOptions].
func (o *Options) SetLayoutDefaults() {
	d := jitter.DefaultOptions()
	if o.BinSize == 0 {
		o.BinSize = d.BinSize
	}
	if o.JitterStep == 0 {
		o.JitterStep = d.JitterStep
	}
	if o.MaxJitterRange == 0 {
		o.MaxJitterRange = d.MaxJitterRange
	}
	if o.XJitterMagnitude == nil {
		o.XJitterMagnitude = Ptr(d.XJitterMagnitude)
	}
	if o.Seed == nil {
		o.Seed = Ptr(d.Seed)
	}
	o.setLogger()
}

// ValidateForLayout applies the layout defaults and validates the result.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.JitterOptions().Validate()
}

// SetRenderDefaults fills zero render options.
func (o *Options) SetRenderDefaults() {
	if o.Chart == "" {
		o.Chart = DefaultChart
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.ColorBy == "" {
		o.ColorBy = chart.ColorByGenre
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.setLogger()
}

// ValidateForRender applies the render defaults and validates the chart,
// formats and size.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if !slices.Contains(chart.Names(), o.Chart) {
		return errors.New(errors.ErrCodeInvalidChart, "unknown chart %q (must be one of: %s)", o.Chart, strings.Join(chart.Names(), ", "))
	}
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
		if err := checkFormat(o.Chart, f); err != nil {
			return err
		}
	}
	if o.ColorBy != chart.ColorByGenre && o.ColorBy != chart.ColorBySubgenre {
		return errors.New(errors.ErrCodeInvalidInput, "color must be %s or %s, got %q", chart.ColorByGenre, chart.ColorBySubgenre, o.ColorBy)
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "size cannot be negative: %dx%d", o.Width, o.Height)
	}
	return nil
}

// ValidateAndSetDefaults validates and fills every stage's options.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// JitterOptions converts the layout options for the jitter engine. Lanes and
// the value domain always use the dashboard defaults.
func (o *Options) JitterOptions() jitter.Options {
	jo := jitter.DefaultOptions()
	jo.BinSize = o.BinSize
	jo.JitterStep = o.JitterStep
	jo.MaxJitterRange = o.MaxJitterRange
	if o.XJitterMagnitude != nil {
		jo.XJitterMagnitude = *o.XJitterMagnitude
	}
	if o.Seed != nil {
		jo.Seed = *o.Seed
	}
	jo.CenterSingletons = o.CenterSingletons
	return jo
}

// DatasetKeyOpts returns cache key options for dataset summaries.
func (o *Options) DatasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{MinYear: o.MinYear, Genres: o.Genres}
}

// PositionsKeyOpts returns cache key options for the layout stage.
func (o *Options) PositionsKeyOpts() cache.PositionsKeyOpts {
	jo := o.JitterOptions()
	return cache.PositionsKeyOpts{
		BinSize:          jo.BinSize,
		JitterStep:       jo.JitterStep,
		MaxJitterRange:   jo.MaxJitterRange,
		XJitterMagnitude: jo.XJitterMagnitude,
		Seed:             jo.Seed,
		CenterSingletons: jo.CenterSingletons,
		Lanes:            jo.Lanes,
		Genres:           o.Genres,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	color := o.ColorBy
	switch o.Chart {
	case chart.NameRadar:
		color = o.Genre
	case chart.NameEnergyDensity, chart.NameEnergyKDE:
		color = strings.Join(o.Genres, ",")
	}
	return cache.ArtifactKeyOpts{
		Chart:  o.Chart,
		Format: format,
		Color:  color,
		Width:  o.Width,
		Height: o.Height,
	}
}

// checkFormat reports whether chart can be rendered as format. HTML and JSON
// cover every chart; the static renderers only exist for the strip plot (SVG)
// and the energy densities (PNG).
func checkFormat(name, format string) error {
	switch format {
	case FormatSVG:
		if name != chart.NameStrip {
			return errors.New(errors.ErrCodeUnsupported, "svg output is only available for the %s chart", chart.NameStrip)
		}
	case FormatPNG:
		if name != chart.NameEnergyDensity && name != chart.NameEnergyKDE {
			return errors.New(errors.ErrCodeUnsupported, "png output is only available for the %s and %s charts", chart.NameEnergyDensity, chart.NameEnergyKDE)
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result holds the outputs of [Runner.Execute].
type Result struct {
	Data        *dataset.Dataset
	DatasetHash string
	Positions   []jitter.Position
	Artifacts   map[string][]byte
	Stats       Stats
	CacheInfo   CacheInfo
}

// Stats records per-stage timings and counts.
type Stats struct {
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration

	Rows      int
	Skipped   int
	Undated   int
	Positions int
	MaxStack  int
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	LoadHit   bool // the CSV download came from the cache
	LayoutHit bool
	RenderHit bool // every artifact came from the cache
}

// Summary bundles the KPI cards for a dataset.
type Summary struct {
	KPIs        stats.KPIs `json:"kpis"`
	DatasetHash string     `json:"dataset"`
	Skipped     int        `json:"skipped_rows"`
	Undated     int        `json:"undated_tracks"`
}
