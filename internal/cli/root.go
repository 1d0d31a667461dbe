// Package cli is the tickerscope command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"TickerScope/internal/chart"
	"TickerScope/internal/collector"
	"TickerScope/internal/config"
	"TickerScope/internal/logging"
	"TickerScope/internal/recorder"
	"TickerScope/internal/service"
)

// app carries what every subcommand needs. It is filled by PersistentPreRunE
// unless a service was injected.
type app struct {
	version  string
	cfg      *config.Config
	logger   log.Logger
	svc      service.Service
	registry *prometheus.Registry
	logOut   io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{version: version, logOut: os.Stderr})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tickerscope",
		Short: "TickerScope - stock history charts and insights",
		Long: `TickerScope downloads daily OHLCV history for a ticker, cleans it and derives
summary statistics, charts and insights. It runs as an HTTP API or from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || a.svc != nil {
				return nil
			}
			path, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return a.build(config.ResolvePath(path), debug)
		},
	}

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newPlotCmd(a))
	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newInsightsCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (default $CONFIG_PATH or "+config.DefaultPath+")")

	return rootCmd
}

// build loads configuration and wires provider, fetcher, service and middlewares.
func (a *app) build(path string, debug bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger := logging.New(a.logOut, cfg.Log.Format, cfg.Log.Level)

	provider, err := collector.NewProvider(collector.ProviderOptions{
		Name:    cfg.DataSource.Provider,
		BaseURL: cfg.DataSource.BaseURL,
		APIKey:  cfg.DataSource.APIKey,
		Proxy:   cfg.Proxy,
		Timeout: cfg.DataSource.Timeout,
	})
	if err != nil {
		return fmt.Errorf("init provider: %w", err)
	}
	_ = level.Debug(logger).Log("msg", "data source", "provider", provider.Name())

	fetcher := collector.NewFetcher(provider, logger)
	fetcher.Retries = cfg.DataSource.Retries
	fetcher.Backoff = cfg.DataSource.Backoff

	renderer := chart.NewRenderer(cfg.Chart.Height, cfg.Chart.DateFormat, cfg.Chart.Template)
	var svc service.Service
	svc = service.NewService(fetcher, renderer, recorder.NewFileRecorder(logger), logger)
	svc = service.NewLoggingMiddleware(logger, svc)

	registry := prometheus.NewRegistry()
	svc, err = service.NewPrometheusMiddleware(registry, cfg.Metrics.Namespace, cfg.Metrics.Subsystem, svc)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.svc = svc
	a.registry = registry
	return nil
}
