package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"TickerScope/internal/api"
	"TickerScope/internal/chart"
	"TickerScope/internal/model"
	"TickerScope/internal/notifier"
	"TickerScope/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

// plotAliases maps chart-library trace names onto plot kinds.
var plotAliases = map[string]chart.PlotKind{
	"candlestick": chart.KindClose,
	"bar":         chart.KindVolume,
	"line":        chart.KindMovingAverage,
	"scatter":     chart.KindVolumeWeighted,
}

// resolvePlotKind accepts a plot kind name or one of its aliases.
func resolvePlotKind(name string) (chart.PlotKind, error) {
	if k, ok := plotAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return chart.ParsePlotKind(name)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", "", "Lookback period, e.g. 100d, 6mo, 1y, ytd, max")
	cmd.Flags().String("start", "", "Start date in YYYY-MM-DD format")
	cmd.Flags().String("end", "", "End date in YYYY-MM-DD format")
}

// readArgs validates the ticker argument and the period or range flags.
func (a *app) readArgs(cmd *cobra.Command, args []string) (string, model.Query, error) {
	v := api.GetValidator()
	ticker, err := v.ValidateTicker(args[0])
	if err != nil {
		return "", model.Query{}, err
	}
	period, _ := cmd.Flags().GetString("period")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	q, err := v.ValidateQuery(period, start, end, a.cfg.Defaults.Period)
	if err != nil {
		return "", model.Query{}, err
	}
	return ticker, q, nil
}

// newServeCmd creates the serve command
func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the optional watchlist scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runNow, _ := cmd.Flags().GetBool("run-now")
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, runNow)
		},
	}
	cmd.Flags().Bool("run-now", false, "Run the watchlist snapshot once at startup")
	return cmd
}

func (a *app) serve(ctx context.Context, runNow bool) error {
	cfg := a.cfg
	gin.SetMode(ginMode(cfg.Server.Mode))
	if a.registry != nil {
		a.registry.MustRegister(
			prometheus.NewGoCollector(),
			prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		)
	}

	opts := api.Options{
		DefaultPeriod:   cfg.Defaults.Period,
		DefaultMAWindow: cfg.Defaults.MAWindow,
		RequestTimeout:  cfg.Server.RequestTimeout,
		Version:         a.version,
	}
	if a.registry != nil {
		opts.Gatherer = a.registry
	}
	srv := api.NewHandler(a.svc, a.logger, opts).NewServer(cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		_ = level.Info(a.logger).Log("msg", "http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Schedule.Enabled {
		sched, err := a.startScheduler(ctx, runNow)
		if err != nil {
			_ = srv.Close()
			return err
		}
		defer sched.Stop()
	}

	select {
	case <-ctx.Done():
		_ = level.Info(a.logger).Log("msg", "shutdown signal received, stopping")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	_ = level.Info(a.logger).Log("msg", "tickerscope stopped")
	return nil
}

func (a *app) startScheduler(ctx context.Context, runNow bool) (*scheduler.Scheduler, error) {
	cfg := a.cfg
	var n notifier.Notifier = notifier.Nop{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(notifier.TelegramOptions{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			BaseURL:  cfg.Telegram.BaseURL,
			Proxy:    cfg.Proxy,
			Logger:   a.logger,
		})
		n = tn
	}

	opts := scheduler.Options{
		Watchlist: cfg.Schedule.Watchlist,
		Period:    cfg.Schedule.Period,
	}
	if cfg.Storage.Enabled {
		opts.StorageDir = cfg.Storage.Dir
		opts.StorageFormat = cfg.Storage.Format
	}
	sched := scheduler.NewScheduler(ctx, a.svc, n, a.logger, opts)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return nil, err
	}
	sched.Start()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		_ = level.Info(a.logger).Log("msg", "telegram polling started")
	}
	if runNow {
		go sched.RunNow()
	}
	return sched, nil
}

// ginMode falls back to release for anything gin does not know.
func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}

// newFetchCmd creates the fetch command
func newFetchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [TICKER]",
		Short: "Download, clean and save a ticker's history",
		Long: `Download daily history, clean it and save it to {path}/downloads/{TICKER}_data.{format}.
Example: tickerscope fetch AAPL --period 6mo --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, q, err := a.readArgs(cmd, args)
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("path")
			format, _ := cmd.Flags().GetString("format")
			if dir == "" {
				dir = a.cfg.Storage.Dir
			}
			if format == "" {
				format = a.cfg.Storage.Format
			}
			return a.fetch(cmd.Context(), cmd.OutOrStdout(), ticker, q, dir, format)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("path", "", "Base directory for the downloads folder")
	cmd.Flags().String("format", "", "Output format: csv or json")
	return cmd
}

// fetch saves the series. Save failures are reported but do not fail the command.
func (a *app) fetch(ctx context.Context, out io.Writer, ticker string, q model.Query, dir, format string) error {
	path, err := a.svc.Export(ctx, ticker, q, dir, format)
	if err != nil {
		var formatErr *model.UnsupportedFormatError
		var pathErr *fs.PathError
		if errors.As(err, &formatErr) || errors.As(err, &pathErr) {
			fmt.Fprintf(out, "Error saving data: %v\n", err)
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "Data saved to %s\n", path)
	return nil
}

// newPlotCmd creates the plot command
func newPlotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [TICKER]",
		Short: "Render a chart as a standalone HTML page",
		Long: `Render a chart for a ticker. Types: close, volume, moving_average, volume_weighted
(aliases candlestick, bar, line, scatter).
Example: tickerscope plot NVDA --type line --ma 50 --out nvda.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, q, err := a.readArgs(cmd, args)
			if err != nil {
				return err
			}
			typeName, _ := cmd.Flags().GetString("type")
			kind, err := resolvePlotKind(typeName)
			if err != nil {
				return err
			}
			spec := chart.PlotSpec{Kind: kind, MAWindow: a.cfg.Defaults.MAWindow}
			if cmd.Flags().Changed("ma") {
				ma, _ := cmd.Flags().GetInt("ma")
				if spec.MAWindow, err = api.GetValidator().ValidateMAWindow(&ma, spec.MAWindow); err != nil {
					return err
				}
			}

			doc, err := a.svc.Plot(cmd.Context(), ticker, q, spec)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(cmd.OutOrStdout(), doc)
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("%s_%s.html", ticker, kind)
			}
			if err := writePlotHTML(out, ticker, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart written to %s\n", out)
			return nil
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().String("type", chart.KindClose.String(), "Plot type")
	cmd.Flags().Int("ma", 0, "Moving-average window (default from config)")
	cmd.Flags().String("out", "", "Output HTML file (default {TICKER}_{type}.html)")
	cmd.Flags().Bool("json", false, "Print the chart document as JSON instead of writing HTML")
	return cmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Print summary statistics for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, q, err := a.readArgs(cmd, args)
			if err != nil {
				return err
			}
			summary, err := a.svc.Analyze(cmd.Context(), ticker, q)
			if err != nil {
				return err
			}
			if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
				return nil
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("pretty", false, "Render a styled table instead of JSON")
	return cmd
}

// newInsightsCmd creates the insights command
func newInsightsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights [TICKER]",
		Short: "Print volatility, trend and volume insights for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker, q, err := a.readArgs(cmd, args)
			if err != nil {
				return err
			}
			report, err := a.svc.Insights(cmd.Context(), ticker, q)
			if err != nil {
				return err
			}
			if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
				fmt.Fprintln(cmd.OutOrStdout(), renderInsights(report))
				return nil
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	addQueryFlags(cmd)
	cmd.Flags().Bool("pretty", false, "Render a styled report instead of JSON")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tickerscope %s\n", a.version)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command and exits non-zero on error.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
