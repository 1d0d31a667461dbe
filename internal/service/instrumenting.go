package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"

	"TickerScope/internal/chart"
	"TickerScope/internal/model"
)

var methodError = []string{"method", "error"}

// instrumentingMiddleware wraps Service and enables request metrics
type instrumentingMiddleware struct {
	reqCount    metrics.Counter
	reqDuration metrics.Histogram
	svc         Service
}

// NewInstrumentingMiddleware records a counter and a latency histogram per method.
func NewInstrumentingMiddleware(reqCount metrics.Counter, reqDuration metrics.Histogram, svc Service) Service {
	return &instrumentingMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}

// NewPrometheusMiddleware registers request_count and request_duration_seconds
// with reg and wraps svc.
func NewPrometheusMiddleware(reg prometheus.Registerer, namespace, subsystem string, svc Service) (Service, error) {
	count := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, methodError)
	duration := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Total duration of requests in seconds.",
	}, methodError)
	for _, c := range []prometheus.Collector{count, duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return NewInstrumentingMiddleware(kitprometheus.NewCounter(count), kitprometheus.NewSummary(duration), svc), nil
}

func (s *instrumentingMiddleware) Plot(ctx context.Context, ticker string, q model.Query, spec chart.PlotSpec) (doc model.ChartDocument, err error) {
	defer func(begin time.Time) { s.recordMetrics("Plot", begin, err) }(time.Now())
	return s.svc.Plot(ctx, ticker, q, spec)
}

func (s *instrumentingMiddleware) Analyze(ctx context.Context, ticker string, q model.Query) (summary model.AnalysisSummary, err error) {
	defer func(begin time.Time) { s.recordMetrics("Analyze", begin, err) }(time.Now())
	return s.svc.Analyze(ctx, ticker, q)
}

func (s *instrumentingMiddleware) Insights(ctx context.Context, ticker string, q model.Query) (report model.InsightReport, err error) {
	defer func(begin time.Time) { s.recordMetrics("Insights", begin, err) }(time.Now())
	return s.svc.Insights(ctx, ticker, q)
}

func (s *instrumentingMiddleware) Export(ctx context.Context, ticker string, q model.Query, dir, format string) (path string, err error) {
	defer func(begin time.Time) { s.recordMetrics("Export", begin, err) }(time.Now())
	return s.svc.Export(ctx, ticker, q, dir, format)
}

func (s *instrumentingMiddleware) recordMetrics(method string, startTime time.Time, err error) {
	labels := []string{
		"method", method,
		"error", strconv.FormatBool(err != nil),
	}
	s.reqCount.With(labels...).Add(1)
	s.reqDuration.With(labels...).Observe(time.Since(startTime).Seconds())
}
