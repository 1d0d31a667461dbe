// Package scheduler runs the watchlist snapshot job on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/robfig/cron/v3"

	"TickerScope/internal/model"
	"TickerScope/internal/notifier"
	"TickerScope/internal/service"
)

// sendRetries is how many times a notification is retried.
const sendRetries = 3

// Options configures a Scheduler.
type Options struct {
	Watchlist []string
	Period    string
	// StorageDir enables exporting the cleaned series when non-empty.
	StorageDir    string
	StorageFormat string
}

// Result is the outcome of one ticker in a snapshot run.
type Result struct {
	Ticker string
	Report model.InsightReport
	Path   string
	Err    error
}

// Scheduler manages the snapshot cron task.
type Scheduler struct {
	Cron     *cron.Cron
	Service  service.Service
	Notifier notifier.Notifier
	Logger   log.Logger
	Ctx      context.Context

	opts Options
	spec string
	mu   sync.Mutex
}

// NewScheduler creates a new Scheduler. A nil notifier discards alerts.
func NewScheduler(ctx context.Context, svc service.Service, n notifier.Notifier, logger log.Logger, opts Options) *Scheduler {
	if n == nil {
		n = notifier.Nop{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	watchlist := make([]string, 0, len(opts.Watchlist))
	for _, t := range opts.Watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			watchlist = append(watchlist, t)
		}
	}
	opts.Watchlist = watchlist
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: n,
		Logger:   log.With(logger, "component", "scheduler"),
		Ctx:      ctx,
		opts:     opts,
	}
}

// Register adds the snapshot task under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	s.spec = spec
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	_ = level.Info(s.Logger).Log("msg", "scheduler started", "spec", s.spec, "tickers", len(s.opts.Watchlist))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	_ = level.Info(s.Logger).Log("msg", "scheduler stopped")
}

// RunNow executes the snapshot immediately and returns the per-ticker results.
func (s *Scheduler) RunNow() []Result {
	return s.snapshot(s.Ctx)
}

func (s *Scheduler) snapshotTask() {
	s.snapshot(s.Ctx)
}

// snapshot processes the watchlist sequentially. Runs never overlap.
func (s *Scheduler) snapshot(ctx context.Context) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = level.Info(s.Logger).Log("msg", "running snapshot", "tickers", len(s.opts.Watchlist))
	q := model.PeriodQuery(s.opts.Period)
	results := make([]Result, 0, len(s.opts.Watchlist))
	for _, ticker := range s.opts.Watchlist {
		if ctx.Err() != nil {
			break
		}
		r := s.snapshotTicker(ctx, ticker, q)
		results = append(results, r)
		if r.Err != nil {
			_ = level.Error(s.Logger).Log("msg", "snapshot failed", "ticker", ticker, "err", r.Err)
			s.trySend(ctx, notifier.FormatFailure(ticker, r.Err))
			continue
		}
		if len(r.Report.Anomalies.HighVolumeDates) > 0 {
			s.trySend(ctx, notifier.FormatAnomalyAlert(r.Report))
		}
	}
	return results
}

func (s *Scheduler) snapshotTicker(ctx context.Context, ticker string, q model.Query) Result {
	r := Result{Ticker: ticker}
	report, err := s.Service.Insights(ctx, ticker, q)
	if err != nil {
		r.Err = fmt.Errorf("insights: %w", err)
		return r
	}
	r.Report = report
	if s.opts.StorageDir == "" {
		return r
	}
	path, err := s.Service.Export(ctx, ticker, q, s.opts.StorageDir, s.opts.StorageFormat)
	if err != nil {
		r.Err = fmt.Errorf("export: %w", err)
		return r
	}
	r.Path = path
	return r
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	switch strings.ToLower(fields[0]) {
	case "/insights":
		if len(fields) < 2 {
			return "Usage: /insights TICKER"
		}
		ticker := strings.ToUpper(fields[1])
		report, err := s.Service.Insights(ctx, ticker, model.PeriodQuery(s.opts.Period))
		if err != nil {
			return notifier.FormatFailure(ticker, err)
		}
		return notifier.FormatInsights(report)
	case "/watchlist":
		return notifier.FormatWatchlist(s.opts.Watchlist, s.opts.Period, s.spec)
	case "/snapshot":
		results := s.snapshot(ctx)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		return fmt.Sprintf("Snapshot done: %d tickers, %d failed.", len(results), failed)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		_ = level.Error(s.Logger).Log("msg", "send notification", "err", err)
	}
}
