package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackdash/pkg/dashboard"
	"github.com/matzehuels/trackdash/pkg/pipeline"
	"github.com/matzehuels/trackdash/pkg/server"
)

// serveCommand creates the serve command that runs the dashboard.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		tabsFile string
		minYear  int
		genres   string
		refresh  bool
		noCache  bool
		lf       layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [songs.csv|url]",
		Short: "Serve the interactive dashboard",
		Long: `Serve the interactive dashboard over HTTP.

The dataset is loaded and laid out once at startup. Tabs group the charts
as described by the embedded tab file; --tabs replaces it with your own
YAML file of the same shape. Stop the server with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions(sourceArg(args))
			if err != nil {
				return err
			}
			applyDataFlags(&opts, minYear, genres, refresh)
			lf.apply(cmd.Flags(), &opts)

			cfg := c.serverConfig()
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return c.runServe(cmd.Context(), opts, cfg, tabsFile, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: server.addr)")
	cmd.Flags().StringVar(&tabsFile, "tabs", "", "YAML file describing the dashboard tabs")
	dataFlags(cmd, &minYear, &genres, &refresh, &noCache)
	lf.register(cmd.Flags())

	return cmd
}

// serverConfig maps the [server] config section.
func (c *CLI) serverConfig() server.Config {
	return server.Config{
		Addr:         c.Config.Server.Addr,
		ReadTimeout:  c.Config.Server.ReadTimeout.Duration,
		WriteTimeout: c.Config.Server.WriteTimeout.Duration,
	}
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, cfg server.Config, tabsFile string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	options := []server.Option{server.WithLogger(c.Logger), server.WithConfig(cfg)}
	if tabsFile != "" {
		tabs, err := dashboard.LoadFile(tabsFile)
		if err != nil {
			return err
		}
		options = append(options, server.WithTabs(tabs))
	}

	spinner := newSpinner(ctx, "Preparing dashboard...")
	spinner.Start()
	prog := newProgress(c.Logger)
	srv, err := server.New(ctx, runner, opts, options...)
	if err != nil {
		spinner.StopWithError("Dashboard failed to start")
		return err
	}
	spinner.Stop()
	prog.done("Dashboard ready")

	printSuccess("Serving %s", opts.Source)
	printNextStep("Open", "http://"+displayAddr(cfg.Addr))
	return srv.ListenAndServe(ctx)
}

// displayAddr turns ":8050" into "localhost:8050".
func displayAddr(addr string) string {
	if addr == "" {
		addr = server.DefaultAddr
	}
	if addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
