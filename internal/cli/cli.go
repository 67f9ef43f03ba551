// Package cli implements the trackdash command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/buildinfo"
	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/config"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/observability"
	"github.com/matzehuels/trackdash/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and built-in config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.Use(observability.NewLogHooks(c.Logger))
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "trackdash analyzes Spotify song datasets",
		Long:         `trackdash loads a Spotify songs CSV, lays out release-season strip plots with a deterministic jitter, and renders the dashboard charts as SVG, PNG, JSON or interactive HTML.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/trackdash/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.summaryCommand())
	root.AddCommand(c.genresCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "path", cfg.Source)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped to
// the build version, so an upgrade never reads entries written by another
// release.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := c.Config.CacheOptions()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, opts)
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions builds pipeline options from the config for source. An empty
// source falls back to data.path.
func (c *CLI) baseOptions(source string) (pipeline.Options, error) {
	if source == "" {
		source = c.Config.Data.Path
	}
	if source == "" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "no dataset given (pass a CSV path or URL, or set data.path in the config)")
	}
	jo := c.Config.JitterOptions()
	return pipeline.Options{
		Source:           source,
		MinYear:          c.Config.Data.MinYear,
		BinSize:          jo.BinSize,
		JitterStep:       jo.JitterStep,
		MaxJitterRange:   jo.MaxJitterRange,
		XJitterMagnitude: pipeline.Ptr(jo.XJitterMagnitude),
		Seed:             pipeline.Ptr(jo.Seed),
		CenterSingletons: jo.CenterSingletons,
		Logger:           c.Logger,
	}, nil
}

// sourceArg returns the optional positional dataset argument.
func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// dataFlags binds the flags shared by every command that loads a dataset.
func dataFlags(cmd *cobra.Command, minYear *int, genres *string, refresh, noCache *bool) {
	cmd.Flags().IntVar(minYear, "min-year", -1, "drop tracks released before this year (default: data.min_year)")
	cmd.Flags().StringVarP(genres, "genres", "g", "", "keep only these genres (comma-separated)")
	cmd.Flags().BoolVar(refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(noCache, "no-cache", false, "disable caching")
}

// applyDataFlags copies the shared flag values into opts.
func applyDataFlags(opts *pipeline.Options, minYear int, genres string, refresh bool) {
	if minYear >= 0 {
		opts.MinYear = minYear
	}
	opts.Genres = splitList(genres)
	opts.Refresh = refresh
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
