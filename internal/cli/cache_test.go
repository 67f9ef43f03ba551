package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/config"
)

func TestCacheLocation(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	tests := []struct {
		name  string
		cache config.Cache
		want  string
	}{
		{"default file", config.Cache{}, filepath.Join("/tmp/xdg-cache", appName)},
		{"explicit dir", config.Cache{Backend: cache.BackendFile, Dir: "/srv/cache"}, "/srv/cache"},
		{"redis", config.Cache{Backend: cache.BackendRedis, RedisAddr: "localhost:6379"}, "redis://localhost:6379"},
		{"mongo", config.Cache{Backend: cache.BackendMongo, MongoURI: "mongodb://db:27017"}, "mongodb://db:27017"},
		{"none", config.Cache{Backend: cache.BackendNone}, "(disabled)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache = tt.cache
			if got := cacheLocation(cfg); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClearCacheRemovesEntries(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "positions:abc", []byte("[]"), 0); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Cache.Dir = dir
	if err := clearCache(ctx, cfg); err != nil {
		t.Fatalf("clearCache: %v", err)
	}

	if _, ok, _ := fc.Get(ctx, "positions:abc"); ok {
		t.Error("entry should be gone after clear")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should survive clear: %v", err)
	}
}

func TestClearCacheDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = cache.BackendNone
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Errorf("clearCache with caching disabled: %v", err)
	}
}
