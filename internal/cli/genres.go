package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/chart"
	"github.com/matzehuels/trackdash/pkg/pipeline"
	"github.com/matzehuels/trackdash/pkg/stats"
)

// genresCommand lists the genres of a dataset and, with --pick, renders the
// energy density of an interactively chosen subset.
func (c *CLI) genresCommand() *cobra.Command {
	var (
		pick      bool
		chartName string
		output    string
		minYear   int
		genres    string
		refresh   bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "genres [songs.csv|url]",
		Short: "List genres and plot their energy distribution",
		Long: `List the genres of a dataset with their track counts.

With --pick, choose genres in an interactive list and render their energy
distribution as a PNG (energy-density) or as a kernel density estimate
(energy-kde). Genres with fewer than ` + fmt.Sprint(stats.DensityMinTracks) + ` tracks are left out of the plot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions(sourceArg(args))
			if err != nil {
				return err
			}
			applyDataFlags(&opts, minYear, genres, refresh)
			if chartName != chart.NameEnergyDensity && chartName != chart.NameEnergyKDE {
				return fmt.Errorf("--chart must be %s or %s", chart.NameEnergyDensity, chart.NameEnergyKDE)
			}
			opts.Chart = chartName
			return c.runGenres(cmd.Context(), opts, pick, output, noCache)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "pick genres interactively and render their energy distribution")
	cmd.Flags().StringVarP(&chartName, "chart", "c", chart.NameEnergyDensity, "density chart: energy-density, energy-kde")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG output file (default: <input>.<chart>.png)")
	dataFlags(cmd, &minYear, &genres, &refresh, &noCache)

	return cmd
}

func (c *CLI) runGenres(ctx context.Context, opts pipeline.Options, pick bool, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	shares := stats.GenreShare(d)

	if !pick {
		fmt.Println(genreTable(shares))
		printNextStep("Plot their energy distribution", fmt.Sprintf("%s genres %s --pick", appName, opts.Source))
		return nil
	}

	selected, err := pickGenres(shares, opts.Genres)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		printInfo("No genres selected")
		return nil
	}

	opts.Genres = selected
	opts.Formats = []string{pipeline.FormatPNG}
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = derivedPath(opts.Source, opts.Chart, pipeline.FormatPNG)
	}
	if err := os.WriteFile(output, result.Artifacts[pipeline.FormatPNG], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered energy distribution for %d genres", len(selected))
	if sparse := sparseGenres(shares, selected); len(sparse) > 0 {
		printWarning("too few tracks to plot: %v", sparse)
	}
	printFile(output)
	return nil
}

// pickGenres runs the interactive picker on the terminal.
func pickGenres(shares []stats.Share, preselected []string) ([]string, error) {
	final, err := tea.NewProgram(NewGenrePickerModel(genreChoices(shares), preselected), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("genre picker: %w", err)
	}
	m := final.(GenrePickerModel)
	if m.Canceled || !m.Done {
		return nil, nil
	}
	return m.Selection(), nil
}

// sparseGenres returns the selected genres the density charts skip.
func sparseGenres(shares []stats.Share, selected []string) []string {
	var out []string
	for _, s := range shares {
		if s.Count < stats.DensityMinTracks && slices.Contains(selected, s.Genre) {
			out = append(out, s.Genre)
		}
	}
	return out
}

// genreTable renders genre counts and shares.
func genreTable(shares []stats.Share) string {
	rows := make([][]string, len(shares))
	for i, s := range shares {
		rows[i] = []string{chart.GenreLabel(s.Genre), chart.FormatCount(s.Count), chart.FormatFloat(s.Percent) + "%"}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Genre", "Tracks", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if col > 0 {
				return styleTableCell.Align(lipgloss.Right)
			}
			return styleTableCell
		}).
		Render()
}

func genreChoices(shares []stats.Share) []GenreChoice {
	out := make([]GenreChoice, len(shares))
	for i, s := range shares {
		out[i] = GenreChoice{Name: s.Genre, Tracks: s.Count}
	}
	return out
}
