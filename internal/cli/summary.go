package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/pipeline"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// summaryCommand creates the summary command that prints the KPI cards.
func (c *CLI) summaryCommand() *cobra.Command {
	var (
		asJSON  bool
		minYear int
		genres  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "summary [songs.csv|url]",
		Short: "Print the dataset KPIs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions(sourceArg(args))
			if err != nil {
				return err
			}
			applyDataFlags(&opts, minYear, genres, refresh)
			return c.runSummary(cmd.Context(), opts, asJSON, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	dataFlags(cmd, &minYear, &genres, &refresh, &noCache)

	return cmd
}

func (c *CLI) runSummary(ctx context.Context, opts pipeline.Options, asJSON, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	summary, cached, err := runner.SummaryWithCacheInfo(ctx, d, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Println(StyleTitle.Render("Spotify Songs Analysis"))
	fmt.Println(kpiTable(summary.KPIs))
	printKeyValue("Dataset", shortHash(summary.DatasetHash))
	printKeyValue("Skipped", fmt.Sprint(summary.Skipped))
	printKeyValue("Undated", fmt.Sprint(summary.Undated))
	for _, s := range stats.GenreShare(d) {
		printKeyValue(chart.GenreLabel(s.Genre), fmt.Sprintf("%s (%s%%)", chart.FormatCount(s.Count), StyleNumber.Render(chart.FormatFloat(s.Percent))))
	}
	printStats(d.Len(), d.Skipped, 0, cached)
	printNextStep("Open the dashboard", fmt.Sprintf("%s serve %s", appName, opts.Source))
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
