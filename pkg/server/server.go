// Package server serves the dashboard over HTTP.
//
// The dataset is loaded and laid out once when the server is built; every
// request renders from that snapshot, with rendered artifacts going through
// the pipeline cache.
//
// Routes:
//
//	GET /                    tab shell; ?tab= selects the tab
//	GET /tabs/{tab}          go-echarts page with every chart of a tab
//	GET /api/charts/{chart}  ECharts option object of one chart
//	GET /api/positions       strip-plot positions
//	GET /api/kpis            KPI cards
//	GET /healthz             liveness
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/trackdash/pkg/dashboard"
	"github.com/matzehuels/trackdash/pkg/dataset"
	"github.com/matzehuels/trackdash/pkg/jitter"
	"github.com/matzehuels/trackdash/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr           = ":8050"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Config holds the listener settings.
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	tabs   dashboard.Tabs
	logger *log.Logger
	cfg    Config

	data      *dataset.Dataset
	positions []jitter.Position
	summary   pipeline.Summary
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request logger. Default: discard.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithTabs replaces the embedded tabs.
func WithTabs(t dashboard.Tabs) Option { return func(s *Server) { s.tabs = t } }

// WithConfig sets the listener settings.
func WithConfig(c Config) Option { return func(s *Server) { s.cfg = c } }

// New loads the dataset named by opts.Source, computes the strip positions
// and returns a server ready to serve them.
func New(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, options ...Option) (*Server, error) {
	s := &Server{
		runner: runner,
		opts:   opts,
		tabs:   dashboard.Default(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range options {
		opt(s)
	}
	s.cfg.setDefaults()

	if err := s.opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if err := s.opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	s.opts.Chart = pipeline.DefaultChart
	s.opts.SetRenderDefaults()

	d, err := runner.Load(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	positions, err := runner.ComputePositions(ctx, d, s.opts)
	if err != nil {
		return nil, err
	}
	summary, _, err := runner.SummaryWithCacheInfo(ctx, d, s.opts)
	if err != nil {
		return nil, err
	}
	s.data, s.positions, s.summary = d, positions, summary

	s.logger.Info("dataset ready",
		"tracks", d.Len(),
		"positions", len(positions),
		"genres", len(d.GenreNames()))
	return s, nil
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/", s.handleShell)
	r.Get("/tabs/{tab}", s.handleTab)
	r.Route("/api", func(r chi.Router) {
		r.Get("/charts/{chart}", s.handleChart)
		r.Get("/positions", s.handlePositions)
		r.Get("/kpis", s.handleKPIs)
	})
	r.Get("/healthz", s.handleHealth)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving dashboard", "addr", "http://"+ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
