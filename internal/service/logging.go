package service

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"TickerScope/internal/chart"
	"TickerScope/internal/model"
)

// loggingMiddleware wraps Service and logs request information to the provided logger
type loggingMiddleware struct {
	logger log.Logger
	svc    Service
}

// NewLoggingMiddleware logs every call with its ticker, query, error and latency.
func NewLoggingMiddleware(logger log.Logger, svc Service) Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (s *loggingMiddleware) Plot(ctx context.Context, ticker string, q model.Query, spec chart.PlotSpec) (doc model.ChartDocument, err error) {
	defer func(begin time.Time) {
		_ = s.wrap(err).Log(
			"method", "Plot",
			"ticker", ticker,
			"query", q,
			"plot_type", spec.Kind,
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.Plot(ctx, ticker, q, spec)
}

func (s *loggingMiddleware) Analyze(ctx context.Context, ticker string, q model.Query) (summary model.AnalysisSummary, err error) {
	defer func(begin time.Time) {
		_ = s.wrap(err).Log(
			"method", "Analyze",
			"ticker", ticker,
			"query", q,
			"rows", summary.Rows,
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.Analyze(ctx, ticker, q)
}

func (s *loggingMiddleware) Insights(ctx context.Context, ticker string, q model.Query) (report model.InsightReport, err error) {
	defer func(begin time.Time) {
		_ = s.wrap(err).Log(
			"method", "Insights",
			"ticker", ticker,
			"query", q,
			"anomalies", len(report.Anomalies.HighVolumeDates),
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.Insights(ctx, ticker, q)
}

func (s *loggingMiddleware) Export(ctx context.Context, ticker string, q model.Query, dir, format string) (path string, err error) {
	defer func(begin time.Time) {
		_ = s.wrap(err).Log(
			"method", "Export",
			"ticker", ticker,
			"query", q,
			"format", format,
			"path", path,
			"err", err,
			"elapsed", time.Since(begin),
		)
	}(time.Now())
	return s.svc.Export(ctx, ticker, q, dir, format)
}

func (s *loggingMiddleware) wrap(err error) log.Logger {
	lvl := level.Debug
	if err != nil {
		lvl = level.Error
	}
	return lvl(s.logger)
}
