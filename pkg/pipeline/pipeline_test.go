package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
	"github.com/matzehuels/trackdash/pkg/observability"
)

const samplePath = "../dataset/testdata/spotify_songs_sample.csv"

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Source: samplePath}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	d := jitter.DefaultOptions()
	if opts.BinSize != d.BinSize || opts.JitterStep != d.JitterStep || *opts.Seed != d.Seed || *opts.XJitterMagnitude != d.XJitterMagnitude {
		t.Errorf("layout defaults not applied: %+v", opts)
	}
	if opts.Chart != DefaultChart {
		t.Errorf("Chart = %q, want %q", opts.Chart, DefaultChart)
	}
	if !reflect.DeepEqual(opts.Formats, []string{FormatSVG}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.ColorBy != chart.ColorByGenre {
		t.Errorf("ColorBy = %q", opts.ColorBy)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Source: samplePath, Genres: []string{" Rock "}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.PositionsKeyOpts(), opts.PositionsKeyOpts()) {
		t.Error("second validation changed the layout options")
	}
	if opts.Genres[0] != "rock" {
		t.Errorf("genre not normalized: %q", opts.Genres[0])
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing source", Options{}, errors.ErrCodeInvalidInput},
		{"bad genre", Options{Source: samplePath, Genres: []string{"<pop>"}}, errors.ErrCodeInvalidGenre},
		{"negative year", Options{Source: samplePath, MinYear: -1}, errors.ErrCodeInvalidInput},
		{"unknown chart", Options{Source: samplePath, Chart: "pie"}, errors.ErrCodeInvalidChart},
		{"unknown format", Options{Source: samplePath, Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"svg for bar chart", Options{Source: samplePath, Chart: chart.NameDecades, Formats: []string{FormatSVG}}, errors.ErrCodeUnsupported},
		{"png for strip", Options{Source: samplePath, Formats: []string{FormatPNG}}, errors.ErrCodeUnsupported},
		{"bad color", Options{Source: samplePath, ColorBy: "artist"}, errors.ErrCodeInvalidInput},
		{"bad layout", Options{Source: samplePath, JitterStep: 0.3, MaxJitterRange: 0.2}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Chart: chart.NameRadar, Genre: "rock", ColorBy: chart.ColorByGenre}
	if got := opts.ArtifactKeyOpts(FormatHTML).Color; got != "rock" {
		t.Errorf("radar key color = %q, want genre", got)
	}
	opts = Options{Chart: chart.NameEnergyKDE, Genres: []string{"pop", "rock"}}
	if got := opts.ArtifactKeyOpts(FormatPNG).Color; got != "pop,rock" {
		t.Errorf("density key color = %q", got)
	}
}

func TestExecuteStripCaches(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Source: samplePath, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	if first.Stats.Positions == 0 || first.Stats.Positions != first.Stats.Rows-first.Stats.Undated {
		t.Errorf("positions = %d, rows = %d, undated = %d", first.Stats.Positions, first.Stats.Rows, first.Stats.Undated)
	}
	if !bytes.Contains(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact is not an svg document")
	}
	if !bytes.Contains(first.Artifacts[FormatJSON], []byte(`"positions"`)) {
		t.Error("json artifact has no positions")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !reflect.DeepEqual(first.Positions, second.Positions) {
		t.Error("cached positions differ from computed positions")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", third.CacheInfo)
	}
}

func TestExecuteSeedChangesLayout(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	a, err := r.Execute(ctx, Options{Source: samplePath, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, Options{Source: samplePath, Formats: []string{FormatJSON}, Seed: Ptr(uint64(7))})
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Positions, b.Positions) {
		t.Error("different seeds should produce different positions")
	}
	c, err := r.Execute(ctx, Options{Source: samplePath, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Positions, c.Positions) {
		t.Error("same seed should reproduce positions")
	}
}

func TestExecuteSkipsLayoutForOtherCharts(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), Options{
		Source:  samplePath,
		Chart:   chart.NameGenreShare,
		Formats: []string{FormatHTML, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Positions != nil || res.Stats.Positions != 0 {
		t.Errorf("layout ran for %s", chart.NameGenreShare)
	}
	if !strings.Contains(string(res.Artifacts[FormatHTML]), "echarts") {
		t.Error("html artifact does not load echarts")
	}
	if len(res.Artifacts[FormatJSON]) == 0 {
		t.Error("json artifact is empty")
	}
}

func TestExecuteDensityPNG(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Source:  samplePath,
		Chart:   chart.NameEnergyDensity,
		Formats: []string{FormatPNG},
		Width:   480,
		Height:  300,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact has no PNG signature")
	}
}

func TestComputePositionsExplicitZeroJitter(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	d, err := r.Load(ctx, Options{Source: samplePath})
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Source: samplePath, XJitterMagnitude: Ptr(0.0), Seed: Ptr(uint64(0))}
	positions, err := r.ComputePositions(ctx, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) == 0 {
		t.Fatal("no positions")
	}
	for i, p := range positions {
		if p.X != p.Value {
			t.Fatalf("position %d: x = %v, want value %v with no horizontal jitter", i, p.X, p.Value)
		}
	}

	jittered, err := r.ComputePositions(ctx, d, Options{Source: samplePath})
	if err != nil {
		t.Fatal(err)
	}
	moved := false
	for _, p := range jittered {
		moved = moved || p.X != p.Value
	}
	if !moved {
		t.Error("unset magnitude should fall back to the default jitter")
	}
}

func TestLoadFilters(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	all, err := r.Load(ctx, Options{Source: samplePath})
	if err != nil {
		t.Fatal(err)
	}

	recent, err := r.Load(ctx, Options{Source: samplePath, MinYear: 2010})
	if err != nil {
		t.Fatal(err)
	}
	if recent.Len() == 0 || recent.Len() >= all.Len() {
		t.Errorf("min year kept %d of %d tracks", recent.Len(), all.Len())
	}
	for _, tr := range recent.Tracks {
		if tr.Year < 2010 {
			t.Errorf("track %s from %d passed min year 2010", tr.ID, tr.Year)
		}
	}

	rock, err := r.Load(ctx, Options{Source: samplePath, Genres: []string{"ROCK"}})
	if err != nil {
		t.Fatal(err)
	}
	if rock.Len() == 0 {
		t.Fatal("no rock tracks loaded")
	}
	for _, tr := range rock.Tracks {
		if tr.Genre != "rock" {
			t.Errorf("track %s has genre %q", tr.ID, tr.Genre)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Load(context.Background(), Options{Source: "testdata/does-not-exist.csv"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadURLCachesDownload(t *testing.T) {
	body, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatal(err)
	}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Source: srv.URL + "/spotify_songs.csv"}

	d, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit || d.Len() == 0 {
		t.Errorf("first load: hit=%v len=%d", hit, d.Len())
	}
	_, hit, err = r.LoadWithCacheInfo(ctx, opts)
	if err != nil || !hit {
		t.Errorf("second load: hit=%v err=%v", hit, err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}

	opts.Refresh = true
	if _, hit, _ = r.LoadWithCacheInfo(ctx, opts); hit {
		t.Error("refresh should download again")
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}
}

func TestSummaryCaches(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Source: samplePath}

	d, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	s, hit, err := r.SummaryWithCacheInfo(ctx, d, opts)
	if err != nil || hit {
		t.Fatalf("first summary: hit=%v err=%v", hit, err)
	}
	if s.KPIs.Songs != d.Len() || s.DatasetHash != d.Hash() {
		t.Errorf("summary = %+v", s)
	}
	cached, hit, err := r.SummaryWithCacheInfo(ctx, d, opts)
	if err != nil || !hit {
		t.Fatalf("second summary: hit=%v err=%v", hit, err)
	}
	if cached != s {
		t.Errorf("cached summary %+v != %+v", cached, s)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	loads, layouts, renders int
}

func (h *recordingHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
	h.loads++
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.layouts++
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {
	h.renders++
}

func TestExecuteFiresHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Source: samplePath}); err != nil {
		t.Fatal(err)
	}
	if h.loads != 1 || h.layouts != 1 || h.renders != 1 {
		t.Errorf("hooks fired load=%d layout=%d render=%d, want 1 each", h.loads, h.layouts, h.renders)
	}
}

func TestRenderWithoutDataset(t *testing.T) {
	_, err := Render(nil, nil, Options{Chart: chart.NameDecades, Formats: []string{FormatHTML}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}

	artifacts, err := Render(nil, []jitter.Position{}, Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(artifacts[FormatJSON], []byte(`"count": 0`)) {
		t.Errorf("empty strip json = %s", artifacts[FormatJSON])
	}
}
