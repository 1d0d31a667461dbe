// Package service runs the fetch, clean and derive pipeline behind a single interface.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"TickerScope/internal/analytics"
	"TickerScope/internal/chart"
	"TickerScope/internal/cleaner"
	"TickerScope/internal/model"
	"TickerScope/internal/recorder"
)

// Service is the core API consumed by the HTTP and CLI shells.
type Service interface {
	Plot(ctx context.Context, ticker string, q model.Query, spec chart.PlotSpec) (model.ChartDocument, error)
	Analyze(ctx context.Context, ticker string, q model.Query) (model.AnalysisSummary, error)
	Insights(ctx context.Context, ticker string, q model.Query) (model.InsightReport, error)
	Export(ctx context.Context, ticker string, q model.Query, dir, format string) (string, error)
}

// Fetcher retrieves a raw series; *collector.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, q model.Query) (model.RawSeries, error)
}

type service struct {
	fetcher  Fetcher
	renderer *chart.Renderer
	recorder recorder.Recorder
	logger   log.Logger
}

// NewService wires the pipeline stages. A nil recorder disables Export.
func NewService(fetcher Fetcher, renderer *chart.Renderer, rec recorder.Recorder, logger log.Logger) Service {
	if renderer == nil {
		renderer = chart.NewRenderer(0, "", "")
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &service{fetcher: fetcher, renderer: renderer, recorder: rec, logger: logger}
}

// load fetches and cleans a fresh series for one call.
func (s *service) load(ctx context.Context, ticker string, q model.Query) (model.CleanSeries, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return model.CleanSeries{}, model.InvalidInputf("Ticker is required")
	}
	raw, err := s.fetcher.Fetch(ctx, ticker, q)
	if err != nil {
		return model.CleanSeries{}, err
	}
	clean, err := cleaner.Clean(raw)
	if err != nil {
		return model.CleanSeries{}, err
	}
	if dropped := raw.Len() - clean.Len(); dropped > 0 {
		_ = level.Debug(s.logger).Log("msg", "cleaned series", "ticker", ticker, "raw", raw.Len(), "dropped", dropped)
	}
	return clean, nil
}

func (s *service) Plot(ctx context.Context, ticker string, q model.Query, spec chart.PlotSpec) (model.ChartDocument, error) {
	series, err := s.load(ctx, ticker, q)
	if err != nil {
		return model.ChartDocument{}, err
	}
	return s.renderer.Render(series.Ticker, series, spec)
}

func (s *service) Analyze(ctx context.Context, ticker string, q model.Query) (model.AnalysisSummary, error) {
	series, err := s.load(ctx, ticker, q)
	if err != nil {
		return model.AnalysisSummary{}, err
	}
	return analytics.Analyze(series)
}

func (s *service) Insights(ctx context.Context, ticker string, q model.Query) (model.InsightReport, error) {
	series, err := s.load(ctx, ticker, q)
	if err != nil {
		return model.InsightReport{}, err
	}
	report, _, err := analytics.GenerateInsights(series)
	return report, err
}

func (s *service) Export(ctx context.Context, ticker string, q model.Query, dir, format string) (string, error) {
	series, err := s.load(ctx, ticker, q)
	if err != nil {
		return "", err
	}
	path, err := s.recorder.Write(series, dir, format)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", series.Ticker, err)
	}
	return path, nil
}
