// Package cache stores derived dashboard data: fetched datasets, computed
// strip-plot positions and rendered artifacts.
//
// Every backend implements [Cache]. The CLI defaults to [FileCache] under the
// XDG cache directory; shared deployments can point several servers at one
// [RedisCache] or [MongoCache]. Keys are produced by a [Keyer] so that all
// backends agree on naming.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A TTL of 0 means the entry never expires.
type Cache interface {
	// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per key type.
const (
	TTLHTTP      = 24 * time.Hour
	TTLDataset   = 7 * 24 * time.Hour
	TTLPositions = 30 * 24 * time.Hour
	TTLArtifact  = 30 * 24 * time.Hour
)

// DatasetKeyOpts identifies a filtered view of a dataset.
type DatasetKeyOpts struct {
	MinYear int      `json:"min_year,omitempty"`
	Genres  []string `json:"genres,omitempty"`
}

// PositionsKeyOpts carries every layout option that affects positions.
type PositionsKeyOpts struct {
	BinSize          float64  `json:"bin_size"`
	JitterStep       float64  `json:"jitter_step"`
	MaxJitterRange   float64  `json:"max_jitter_range"`
	XJitterMagnitude float64  `json:"x_jitter_magnitude"`
	Seed             uint64   `json:"seed"`
	CenterSingletons bool     `json:"center_singletons,omitempty"`
	Lanes            []string `json:"lanes,omitempty"`
	Genres           []string `json:"genres,omitempty"`
}

// ArtifactKeyOpts identifies one rendered output.
type ArtifactKeyOpts struct {
	Chart  string `json:"chart"`
	Format string `json:"format"`
	Color  string `json:"color,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	DatasetKey(source string, opts DatasetKeyOpts) string
	PositionsKey(datasetHash string, opts PositionsKeyOpts) string
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey is readable since namespace and key are already short.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

func (DefaultKeyer) DatasetKey(source string, opts DatasetKeyOpts) string {
	return hashKey("dataset", source, opts)
}

func (DefaultKeyer) PositionsKey(datasetHash string, opts PositionsKeyOpts) string {
	return hashKey("positions", datasetHash, opts)
}

func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string

	Redis RedisOptions
	Mongo MongoOptions
}

// Open constructs the backend named by opts.Backend. An empty backend means
// [BackendFile].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
