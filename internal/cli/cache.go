package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download, layout and chart cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearCache(cmd.Context(), c.Config)
		},
	}
}

func clearCache(ctx context.Context, cfg config.Config) error {
	opts, err := cfg.CacheOptions()
	if err != nil {
		return err
	}
	if opts.Backend == cache.BackendNone {
		printInfo("Caching is disabled")
		return nil
	}

	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ch.Close()

	clearer, ok := ch.(cache.Clearer)
	if !ok {
		return fmt.Errorf("cache backend %q cannot be cleared", backendName(opts))
	}
	if err := clearer.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	printSuccess("Cleared %s cache", backendName(opts))
	if opts.Dir != "" {
		printFile(opts.Dir)
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cacheLocation(c.Config))
			return nil
		},
	}
}

// cacheLocation is the cache directory for the file backend, or the
// backend's address otherwise.
func cacheLocation(cfg config.Config) string {
	switch cfg.Cache.Backend {
	case cache.BackendRedis:
		return "redis://" + cfg.Cache.RedisAddr
	case cache.BackendMongo:
		return cfg.Cache.MongoURI
	case cache.BackendNone:
		return "(disabled)"
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return "(unknown)"
	}
	return dir
}

func backendName(opts cache.Options) string {
	if opts.Backend == "" {
		return cache.BackendFile
	}
	return opts.Backend
}
