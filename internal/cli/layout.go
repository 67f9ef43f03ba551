package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/trackdash/pkg/pipeline"
	"github.com/matzehuels/trackdash/pkg/render/sink"
)

// layoutFlags holds the jitter overrides shared by layout, render and serve.
// Flags left unset keep the config value.
type layoutFlags struct {
	binSize          float64
	jitterStep       float64
	maxJitterRange   float64
	xJitterMagnitude float64
	seed             uint64
	centerSingletons bool
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.binSize, "bin-size", 0, "popularity bin width (default: layout.bin_size)")
	fs.Float64Var(&f.jitterStep, "jitter-step", 0, "vertical offset between stacked points")
	fs.Float64Var(&f.maxJitterRange, "max-jitter", 0, "largest vertical offset from the lane center")
	fs.Float64Var(&f.xJitterMagnitude, "x-jitter", 0, "horizontal jitter amplitude")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for the horizontal jitter")
	fs.BoolVar(&f.centerSingletons, "center-singletons", false, "keep lone points on the lane center")
}

func (f *layoutFlags) apply(fs *pflag.FlagSet, opts *pipeline.Options) {
	if fs.Changed("bin-size") {
		opts.BinSize = f.binSize
	}
	if fs.Changed("jitter-step") {
		opts.JitterStep = f.jitterStep
	}
	if fs.Changed("max-jitter") {
		opts.MaxJitterRange = f.maxJitterRange
	}
	if fs.Changed("x-jitter") {
		opts.XJitterMagnitude = pipeline.Ptr(f.xJitterMagnitude)
	}
	if fs.Changed("seed") {
		opts.Seed = pipeline.Ptr(f.seed)
	}
	if fs.Changed("center-singletons") {
		opts.CenterSingletons = f.centerSingletons
	}
}

// layoutCommand creates the layout command for computing strip positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		compact bool
		minYear int
		genres  string
		refresh bool
		noCache bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [songs.csv|url]",
		Short: "Compute release-season strip positions",
		Long: `Compute release-season strip positions for a songs CSV.

Each dated track is placed in its season lane, offset vertically so tracks
with similar popularity don't overlap and nudged horizontally by a seeded
jitter. The same input and options always produce the same positions.

The output is a positions JSON document (same format as 'render -c strip -f json').
Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions(sourceArg(args))
			if err != nil {
				return err
			}
			applyDataFlags(&opts, minYear, genres, refresh)
			lf.apply(cmd.Flags(), &opts)
			return c.runLayout(cmd.Context(), opts, output, compact, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.positions.json, - for stdout)")
	cmd.Flags().BoolVar(&compact, "compact", false, "write unindented JSON without the layout options")
	dataFlags(cmd, &minYear, &genres, &refresh, &noCache)
	lf.register(cmd.Flags())

	return cmd
}

// runLayout loads the dataset, computes positions and writes the JSON output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, compact, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Loading tracks...")
	spinner.Start()

	prog := newProgress(c.Logger)
	d, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.Update("Computing layout...")
	prog.restart()
	positions, cached, err := runner.ComputePositionsWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done("Laid out %d tracks", len(positions))

	jsonOpts := []sink.JSONOption{sink.WithJSONDataset(d.Hash())}
	if compact {
		jsonOpts = append(jsonOpts, sink.WithJSONCompact())
	} else {
		jsonOpts = append(jsonOpts, sink.WithJSONOptions(opts.JitterOptions()))
	}
	data, err := sink.RenderPositionsJSON(positions, jsonOpts...)
	if err != nil {
		return err
	}

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = derivedPath(opts.Source, "positions", pipeline.FormatJSON)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Layout computed")
	printStats(d.Len(), d.Skipped, len(positions), cached)
	printFile(output)
	printNextStep("Render the strip plot", fmt.Sprintf("%s render %s -c strip -f svg,html", appName, opts.Source))
	return nil
}

// derivedPath names an output after the input file: songs.csv becomes
// songs.<suffix>.<ext> in the working directory. URLs use their last path
// segment.
func derivedPath(source, suffix, ext string) string {
	base := filepath.Base(source)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = appName
	}
	return base + "." + suffix + "." + ext
}
