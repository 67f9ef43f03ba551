package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/pipeline"
)

// renderCommand creates the render command for generating chart files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		minYear    int
		genres     string
		refresh    bool
		noCache    bool
		lf         layoutFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [songs.csv|url]",
		Short: "Render a dashboard chart to SVG, PNG, JSON or HTML",
		Long: `Render one dashboard chart.

Every chart can be written as an interactive HTML page or as the JSON of its
chart options. The release-season strip plot also renders to SVG, and the
energy density charts render to PNG.

Charts: ` + strings.Join(chart.Names(), ", ") + `

The --genres flag filters the dataset before rendering; for the energy
density charts it also selects the plotted genres. --genre picks the genre of
the feature radar.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.baseOptions(sourceArg(args))
			if err != nil {
				return err
			}
			applyDataFlags(&base, minYear, genres, refresh)
			lf.apply(cmd.Flags(), &base)
			base.Chart = opts.Chart
			base.Formats = parseFormats(formatsStr)
			base.ColorBy = opts.ColorBy
			base.Genre = strings.ToLower(strings.TrimSpace(opts.Genre))
			base.Width, base.Height = opts.Width, opts.Height
			return c.runRender(cmd.Context(), base, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.Chart, "chart", "c", pipeline.DefaultChart, "chart to render")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, html (comma-separated)")
	cmd.Flags().StringVar(&opts.ColorBy, "color", chart.ColorByGenre, "strip plot coloring: genre, subgenre")
	cmd.Flags().StringVar(&opts.Genre, "genre", "", "genre of the feature radar (default: first genre)")
	cmd.Flags().IntVar(&opts.Width, "width", pipeline.DefaultWidth, "chart width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", pipeline.DefaultHeight, "chart height in pixels")
	dataFlags(cmd, &minYear, &genres, &refresh, &noCache)
	lf.register(cmd.Flags())

	_ = cmd.RegisterFlagCompletionFunc("chart", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return chart.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.Chart))
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered %s (%s)", opts.Chart, strings.Join(opts.Formats, ", "))

	paths, err := writeArtifacts(result.Artifacts, opts, output)
	if err != nil {
		return err
	}

	cached := result.CacheInfo.RenderHit
	printSuccess("Rendered %s", chart.TitleLabel(strings.ReplaceAll(opts.Chart, "-", " ")))
	printStats(result.Stats.Rows, result.Stats.Skipped, result.Stats.Positions, cached)
	for _, p := range paths {
		printFile(p)
	}
	if result.Stats.Undated > 0 && chart.NeedsPositions(opts.Chart) {
		printWarning("%d tracks without a release date are not plotted", result.Stats.Undated)
	}
	return nil
}

// writeArtifacts writes each rendered format and returns the paths in
// format order. A single format goes to output as given; with several,
// output is a base path that gets the format extension.
func writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, output string) ([]string, error) {
	formats := slices.Clone(opts.Formats)
	slices.Sort(formats)

	var paths []string
	for _, format := range formats {
		path := artifactPath(output, opts, format, len(formats) > 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(output string, opts pipeline.Options, format string, multiple bool) string {
	if output == "" {
		return derivedPath(opts.Source, opts.Chart, format)
	}
	if !multiple {
		return output
	}
	if ext := filepath.Ext(output); slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}
