// Package config loads trackdash settings from a TOML file.
//
// The file is optional. [Load] looks for it, in order, at the explicit path,
// at $TRACKDASH_CONFIG, and at $XDG_CONFIG_HOME/trackdash/config.toml
// (~/.config/trackdash/config.toml). Keys that are absent keep the value of
// [Default]; command-line flags are applied on top by the caller.
//
//	[data]
//	path = "spotify_songs.csv"
//	min_year = 2000
//
//	[layout]
//	seed = 7
//	center_singletons = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8050"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/jitter"
)

// AppName names the config and cache directories.
const AppName = "trackdash"

// EnvConfig overrides the config file location.
const EnvConfig = "TRACKDASH_CONFIG"

// Config is the decoded config file.
type Config struct {
	Data   Data   `toml:"data"`
	Layout Layout `toml:"layout"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`

	// Source is the file the config was read from; empty for defaults.
	Source string `toml:"-"`
}

// Data selects the input table.
type Data struct {
	Path    string `toml:"path"`
	MinYear int    `toml:"min_year"`
}

// Layout mirrors [jitter.Options].
type Layout struct {
	BinSize          float64 `toml:"bin_size"`
	JitterStep       float64 `toml:"jitter_step"`
	MaxJitterRange   float64 `toml:"max_jitter_range"`
	XJitterMagnitude float64 `toml:"x_jitter_magnitude"`
	Seed             uint64  `toml:"seed"`
	CenterSingletons bool    `toml:"center_singletons"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"` // 0 keeps the per-entry defaults
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// Server configures the dashboard HTTP server.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration decodes TOML strings such as "30s" or "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Server defaults.
const (
	DefaultAddr         = ":8050"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultMinYear      = 2000
)

// Default returns the built-in settings.
func Default() Config {
	o := jitter.DefaultOptions()
	return Config{
		Data: Data{MinYear: DefaultMinYear},
		Layout: Layout{
			BinSize:          o.BinSize,
			JitterStep:       o.JitterStep,
			MaxJitterRange:   o.MaxJitterRange,
			XJitterMagnitude: o.XJitterMagnitude,
			Seed:             o.Seed,
		},
		Cache: Cache{Backend: cache.BackendFile},
		Server: Server{
			Addr:         DefaultAddr,
			ReadTimeout:  Duration{DefaultReadTimeout},
			WriteTimeout: Duration{DefaultWriteTimeout},
		},
	}
}

// Load reads the first config file found, starting from explicit. A missing
// file is not an error unless it was named explicitly.
func Load(explicit string) (Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return LoadFile(env)
	}
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile decodes path over [Default] and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Source = path
	return cfg, cfg.Validate()
}

// DefaultPath is $XDG_CONFIG_HOME/trackdash/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, falling back to
// $XDG_CACHE_HOME/trackdash (~/.cache/trackdash).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// JitterOptions converts the layout section.
func (c Config) JitterOptions() jitter.Options {
	o := jitter.DefaultOptions()
	o.BinSize = c.Layout.BinSize
	o.JitterStep = c.Layout.JitterStep
	o.MaxJitterRange = c.Layout.MaxJitterRange
	o.XJitterMagnitude = c.Layout.XJitterMagnitude
	o.Seed = c.Layout.Seed
	o.CenterSingletons = c.Layout.CenterSingletons
	return o
}

// CacheOptions converts the cache section.
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend: c.Cache.Backend,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
	if opts.Backend == "" || opts.Backend == cache.BackendFile {
		dir, err := c.CacheDir()
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve cache dir")
		}
		opts.Dir = dir
	}
	return opts, nil
}

// Validate checks enums, durations and the layout parameters.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of file, redis, mongo, none (got %q)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must not be negative")
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	if c.Data.MinYear < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "data.min_year must not be negative")
	}
	return c.JitterOptions().Validate()
}
