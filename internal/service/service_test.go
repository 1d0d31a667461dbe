package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/guregu/null/v6"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerScope/internal/chart"
	"TickerScope/internal/model"
	"TickerScope/internal/recorder"
)

type stubFetcher struct {
	raw   model.RawSeries
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, ticker string, _ model.Query) (model.RawSeries, error) {
	f.calls++
	if f.err != nil {
		return model.RawSeries{}, f.err
	}
	raw := f.raw
	raw.Ticker = ticker
	return raw, nil
}

func rawSeries(n int) model.RawSeries {
	raw := model.RawSeries{}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := float64(100 + i)
		raw.Bars = append(raw.Bars, model.RawBar{
			Date:   start.AddDate(0, 0, i),
			Open:   null.FloatFrom(p),
			High:   null.FloatFrom(p + 1),
			Low:    null.FloatFrom(p - 1),
			Close:  null.FloatFrom(p),
			Volume: null.IntFrom(1000),
		})
	}
	return raw
}

func newTestService(f Fetcher) Service {
	return NewService(f, chart.NewRenderer(0, "", ""), recorder.NewFileRecorder(nil), nil)
}

func TestService_Plot(t *testing.T) {
	f := &stubFetcher{raw: rawSeries(15)}
	svc := newTestService(f)

	doc, err := svc.Plot(context.Background(), " NVDA ", model.PeriodQuery("1mo"), chart.PlotSpec{Kind: chart.KindMovingAverage, MAWindow: 5})

	require.NoError(t, err)
	assert.Len(t, doc.Data, 2)
	assert.Equal(t, "NVDA - 10-Day Moving Average", doc.Layout.Title.Text)
}

func TestService_EmptyTicker(t *testing.T) {
	f := &stubFetcher{raw: rawSeries(3)}
	svc := newTestService(f)

	_, err := svc.Analyze(context.Background(), "  ", model.PeriodQuery("1mo"))

	var ie *model.InvalidInputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, f.calls)
}

func TestService_PropagatesFetchError(t *testing.T) {
	f := &stubFetcher{err: &model.FetchError{Ticker: "ZZZZ", Attempts: 3, Err: errors.New("no data")}}
	svc := newTestService(f)

	_, err := svc.Insights(context.Background(), "ZZZZ", model.PeriodQuery("1mo"))

	var fe *model.FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestService_NoValidData(t *testing.T) {
	f := &stubFetcher{raw: model.RawSeries{Bars: []model.RawBar{{Date: time.Now()}}}}
	svc := newTestService(f)

	_, err := svc.Analyze(context.Background(), "NVDA", model.PeriodQuery("1mo"))

	var nv *model.NoValidDataError
	assert.ErrorAs(t, err, &nv)
}

func TestService_AnalyzeAndInsights(t *testing.T) {
	svc := newTestService(&stubFetcher{raw: rawSeries(10)})

	summary, err := svc.Analyze(context.Background(), "NVDA", model.PeriodQuery("1mo"))
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Rows)

	report, err := svc.Insights(context.Background(), "NVDA", model.PeriodQuery("1mo"))
	require.NoError(t, err)
	assert.Equal(t, model.TrendUpward, report.Trend.Direction)
}

func TestService_Export(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(&stubFetcher{raw: rawSeries(3)})

	path, err := svc.Export(context.Background(), "NVDA", model.PeriodQuery("5d"), dir, "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "downloads", "NVDA_data.json"), path)

	_, err = svc.Export(context.Background(), "NVDA", model.PeriodQuery("5d"), dir, "parquet")
	var ue *model.UnsupportedFormatError
	assert.ErrorAs(t, err, &ue)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)
	svc := NewLoggingMiddleware(logger, newTestService(&stubFetcher{raw: rawSeries(3)}))

	_, err := svc.Plot(context.Background(), "NVDA", model.PeriodQuery("5d"), chart.PlotSpec{Kind: chart.KindVolume})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "method=Plot")
	assert.Contains(t, buf.String(), "ticker=NVDA")
	assert.Contains(t, buf.String(), "plot_type=volume")
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := NewPrometheusMiddleware(reg, "test", "service", newTestService(&stubFetcher{raw: rawSeries(3)}))
	require.NoError(t, err)

	_, _ = svc.Analyze(context.Background(), "NVDA", model.PeriodQuery("5d"))
	_, _ = svc.Analyze(context.Background(), "NVDA", model.PeriodQuery("5d"))
	_, _ = svc.Analyze(context.Background(), "", model.PeriodQuery("5d"))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_service_request_count" {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := ""
			for _, lp := range m.GetLabel() {
				key += lp.GetName() + "=" + lp.GetValue() + " "
			}
			counts[key] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, counts["error=true method=Analyze "])
	assert.Equal(t, 2.0, counts["error=false method=Analyze "])

	_, err = NewPrometheusMiddleware(reg, "test", "service", svc)
	assert.Error(t, err, "duplicate registration")
}

func TestInstrumentingMiddleware_Discard(t *testing.T) {
	svc := NewInstrumentingMiddleware(discard.NewCounter(), discard.NewHistogram(), newTestService(&stubFetcher{raw: rawSeries(3)}))

	_, err := svc.Insights(context.Background(), "NVDA", model.PeriodQuery("5d"))

	assert.NoError(t, err)
}
