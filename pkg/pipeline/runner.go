package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/httputil"
	"github.com/matzehuels/trackdash/pkg/jitter"
	"github.com/matzehuels/trackdash/pkg/observability"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeHTTP      = "http"
	keyTypeDataset   = "dataset"
	keyTypePositions = "positions"
	keyTypeArtifact  = "artifact"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-type cache TTLs when positive.
	TTL time.Duration

	// HTTPOptions configure the client used for URL sources.
	HTTPOptions []httputil.Option
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close closes the underlying cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs the complete load → layout → render pipeline with caching.
// The layout stage is skipped for charts that don't plot positions.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Data = d
	result.DatasetHash = d.Hash()
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Rows = d.Len()
	result.Stats.Skipped = d.Skipped
	result.Stats.Undated = d.Undated
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded dataset",
		"tracks", d.Len(),
		"skipped", d.Skipped,
		"undated", d.Undated,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	if chart.NeedsPositions(opts.Chart) {
		layoutStart := time.Now()
		positions, layoutHit, err := r.ComputePositionsWithCacheInfo(ctx, d, opts)
		if err != nil {
			return nil, err
		}
		result.Positions = positions
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.Stats.Positions = len(positions)
		result.Stats.MaxStack = opts.JitterOptions().MaxStack()
		result.CacheInfo.LayoutHit = layoutHit

		r.Logger.Info("computed layout",
			"positions", len(positions),
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, result.Positions, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"chart", opts.Chart,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Load
// =============================================================================

// Load reads and filters the dataset.
func (r *Runner) Load(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	d, _, err := r.LoadWithCacheInfo(ctx, opts)
	return d, err
}

// LoadWithCacheInfo reads the dataset from a local path or URL, applies the
// year and genre filters, and reports whether a download came from the
// cache. Local files are always read from disk.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*dataset.Dataset, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Source)
	start := time.Now()

	d, hit, err := r.read(ctx, opts)
	if err == nil {
		if opts.MinYear > 0 {
			d = d.MinYear(opts.MinYear)
		}
		if len(opts.Genres) > 0 {
			d = d.Genres(opts.Genres...)
		}
	}

	var rows, skipped int
	if d != nil {
		rows, skipped = d.Len(), d.Skipped
	}
	hooks.OnLoadComplete(ctx, opts.Source, rows, skipped, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return d, hit, nil
}

func (r *Runner) read(ctx context.Context, opts Options) (*dataset.Dataset, bool, error) {
	if !errors.IsURL(opts.Source) {
		d, err := dataset.LoadFile(opts.Source)
		return d, false, err
	}

	key := r.Keyer.HTTPKey("csv", opts.Source)
	if opts.Refresh {
		_ = r.Cache.Delete(ctx, key)
	}
	client := httputil.NewClient(r.Cache, r.ttl(cache.TTLHTTP),
		append([]httputil.Option{httputil.WithKeyFunc(func(string) string { return key })}, r.HTTPOptions...)...)

	body, hit, err := client.Fetch(ctx, opts.Source)
	if err != nil {
		return nil, false, err
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyTypeHTTP)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyTypeHTTP)
		observability.Cache().OnCacheSet(ctx, keyTypeHTTP, len(body))
	}

	d, err := dataset.Load(bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	return d, hit, nil
}

// SummaryWithCacheInfo computes the KPI cards of a loaded dataset.
func (r *Runner) SummaryWithCacheInfo(ctx context.Context, d *dataset.Dataset, opts Options) (Summary, bool, error) {
	key := r.Keyer.DatasetKey(d.Hash(), opts.DatasetKeyOpts())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, keyTypeDataset, key); ok {
			var s Summary
			if err := json.Unmarshal(data, &s); err == nil {
				return s, true, nil
			}
		}
	}

	s := Summary{
		KPIs:        stats.ComputeKPIs(d),
		DatasetHash: d.Hash(),
		Skipped:     d.Skipped,
		Undated:     d.Undated,
	}
	if data, err := json.Marshal(s); err == nil {
		r.store(ctx, keyTypeDataset, key, data, cache.TTLDataset)
	}
	return s, false, nil
}

// =============================================================================
// Layout
// =============================================================================

// ComputePositions runs the jitter engine over the dated tracks of d.
func (r *Runner) ComputePositions(ctx context.Context, d *dataset.Dataset, opts Options) ([]jitter.Position, error) {
	positions, _, err := r.ComputePositionsWithCacheInfo(ctx, d, opts)
	return positions, err
}

// ComputePositionsWithCacheInfo computes positions with caching and returns
// cache hit info. Positions are keyed on the dataset hash and every layout
// option, so a hit is byte-for-byte what a recomputation would produce.
func (r *Runner) ComputePositionsWithCacheInfo(ctx context.Context, d *dataset.Dataset, opts Options) ([]jitter.Position, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.PositionsKey(d.Hash(), opts.PositionsKeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, keyTypePositions, key); ok {
			var positions []jitter.Position
			if err := json.Unmarshal(data, &positions); err == nil {
				return positions, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached positions", "key", key)
		}
	}

	hooks := observability.Pipeline()
	records := d.JitterRecords()
	hooks.OnLayoutStart(ctx, len(records))
	start := time.Now()

	positions, err := jitter.Compute(records, opts.JitterOptions())
	hooks.OnLayoutComplete(ctx, len(positions), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(positions); err == nil {
		r.store(ctx, keyTypePositions, key, data, cache.TTLPositions)
	}
	return positions, false, nil
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts. The bool reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *dataset.Dataset, positions []jitter.Position, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	inputHash := r.inputHash(d, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	if !opts.Refresh && inputHash != "" {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.lookup(ctx, keyTypeArtifact, key); ok {
				artifacts[format] = data
				continue
			}
			missing = append(missing, format)
		}
	} else {
		missing = opts.Formats
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Chart, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(d, positions, renderOpts)
	hooks.OnRenderComplete(ctx, opts.Chart, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if inputHash != "" {
			key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
			r.store(ctx, keyTypeArtifact, key, data, cache.TTLArtifact)
		}
	}
	return artifacts, false, nil
}

// inputHash identifies what a chart is drawn from: the dataset, plus the
// layout options for the strip plot. Empty means "don't cache".
func (r *Runner) inputHash(d *dataset.Dataset, opts Options) string {
	if d == nil {
		return ""
	}
	if !chart.NeedsPositions(opts.Chart) {
		return d.Hash()
	}
	o := opts
	o.SetLayoutDefaults()
	return cache.Hash([]byte(r.Keyer.PositionsKey(d.Hash(), o.PositionsKeyOpts())))
}

// =============================================================================
// Cache helpers
// =============================================================================

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, r.ttl(ttl)); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
