package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"TickerScope/internal/chart"
	"TickerScope/internal/config"
	"TickerScope/internal/model"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Plot(ctx context.Context, ticker string, q model.Query, spec chart.PlotSpec) (model.ChartDocument, error) {
	args := m.Called(ticker, q, spec)
	return args.Get(0).(model.ChartDocument), args.Error(1)
}

func (m *MockService) Analyze(ctx context.Context, ticker string, q model.Query) (model.AnalysisSummary, error) {
	args := m.Called(ticker, q)
	return args.Get(0).(model.AnalysisSummary), args.Error(1)
}

func (m *MockService) Insights(ctx context.Context, ticker string, q model.Query) (model.InsightReport, error) {
	args := m.Called(ticker, q)
	return args.Get(0).(model.InsightReport), args.Error(1)
}

func (m *MockService) Export(ctx context.Context, ticker string, q model.Query, dir, format string) (string, error) {
	args := m.Called(ticker, q, dir, format)
	return args.String(0), args.Error(1)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	return cfg
}

// run executes the root command against a mocked service.
func run(t *testing.T, svc *MockService, args ...string) (string, error) {
	t.Helper()
	a := &app{version: "1.2.3", cfg: testConfig(t), logger: log.NewNopLogger(), svc: svc}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleDoc(title string) model.ChartDocument {
	return model.ChartDocument{
		Data:   []model.Trace{{Type: model.TraceCandlestick, Name: "Candlestick", X: []string{"2024-01-02"}}},
		Layout: model.Layout{Title: model.Title{Text: title}, Height: 800},
	}
}

func TestResolvePlotKind(t *testing.T) {
	tests := []struct {
		name string
		want chart.PlotKind
	}{
		{"", chart.KindClose},
		{"close", chart.KindClose},
		{"candlestick", chart.KindClose},
		{"bar", chart.KindVolume},
		{"volume", chart.KindVolume},
		{"Line", chart.KindMovingAverage},
		{"moving_average", chart.KindMovingAverage},
		{"scatter", chart.KindVolumeWeighted},
		{"volume_weighted", chart.KindVolumeWeighted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePlotKind(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolvePlotKind("pie")
	var pe *model.UnsupportedPlotTypeError
	assert.True(t, errors.As(err, &pe))
}

func TestRenderPlotHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPlotHTML(&buf, "AAPL", sampleDoc("AAPL - 2024-01-02 to 2024-01-02")))
	page := buf.String()

	assert.Contains(t, page, "<title>AAPL - 2024-01-02 to 2024-01-02</title>")
	assert.Contains(t, page, `<script src="`+plotlyCDN+`"></script>`)
	assert.Contains(t, page, `Plotly.newPlot("chart", fig.data, fig.layout`)
	assert.Contains(t, page, `"type":"candlestick"`)

	buf.Reset()
	require.NoError(t, renderPlotHTML(&buf, "X", sampleDoc("</script><b>")))
	page = buf.String()
	assert.NotContains(t, page, "</script><b>")
	assert.Contains(t, page, `\u003c/script\u003e\u003cb\u003e`)
	assert.Contains(t, page, "<title>&lt;/script&gt;&lt;b&gt;</title>")
}

func TestPlotCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nvda.html")
	svc := new(MockService)
	spec := chart.PlotSpec{Kind: chart.KindMovingAverage, MAWindow: 50}
	svc.On("Plot", "NVDA", model.PeriodQuery("6mo"), spec).Return(sampleDoc("NVDA - 50-Day Moving Average"), nil)

	stdout, err := run(t, svc, "plot", "NVDA", "--period", "6mo", "--type", "line", "--ma", "50", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Chart written to "+out)

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "NVDA - 50-Day Moving Average")
	svc.AssertExpectations(t)
}

func TestPlotCommandJSON(t *testing.T) {
	svc := new(MockService)
	spec := chart.PlotSpec{Kind: chart.KindClose, MAWindow: 20}
	svc.On("Plot", "AAPL", model.PeriodQuery("100d"), spec).Return(sampleDoc("AAPL"), nil)

	stdout, err := run(t, svc, "plot", "AAPL", "--json")
	require.NoError(t, err)

	var doc model.ChartDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "AAPL", doc.Layout.Title.Text)
}

func TestPlotCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad type", []string{"plot", "AAPL", "--type", "pie"}, "unsupported plot type: pie"},
		{"zero window", []string{"plot", "AAPL", "--ma", "0"}, "ma_window must be a positive integer"},
		{"not both", []string{"plot", "AAPL", "--period", "1y", "--start", "2024-01-01"}, "Provide either period or start/end dates, not both"},
		{"half range", []string{"plot", "AAPL", "--start", "2024-01-01"}, "Start and end dates are required when not using period"},
		{"missing ticker", []string{"plot"}, "accepts 1 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			_, err := run(t, svc, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			svc.AssertNotCalled(t, "Plot", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestFetchCommand(t *testing.T) {
	dir := t.TempDir()
	start, _ := model.ParseDate("2024-01-01")
	end, _ := model.ParseDate("2024-02-01")
	q := model.RangeQuery(start, end)

	t.Run("saved", func(t *testing.T) {
		svc := new(MockService)
		path := filepath.Join(dir, "downloads", "AAPL_data.json")
		svc.On("Export", "AAPL", q, dir, "json").Return(path, nil)

		stdout, err := run(t, svc, "fetch", "AAPL", "--start", "2024-01-01", "--end", "2024-02-01", "--path", dir, "--format", "json")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Data saved to "+path)
	})

	t.Run("defaults from config", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", "AAPL", model.PeriodQuery("100d"), ".", "csv").Return("downloads/AAPL_data.csv", nil)
		_, err := run(t, svc, "fetch", "AAPL")
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("unsupported format is reported", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", "AAPL", model.PeriodQuery("1mo"), dir, "parquet").
			Return("", fmt.Errorf("save AAPL: %w", &model.UnsupportedFormatError{Format: "parquet"}))

		stdout, err := run(t, svc, "fetch", "AAPL", "--period", "1mo", "--path", dir, "--format", "parquet")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Error saving data: save AAPL: unsupported format: parquet")
	})

	t.Run("filesystem error is reported", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", "AAPL", model.PeriodQuery("1mo"), "/ro", "csv").
			Return("", fmt.Errorf("save AAPL: %w", &fs.PathError{Op: "mkdir", Path: "/ro/downloads", Err: fs.ErrPermission}))

		stdout, err := run(t, svc, "fetch", "AAPL", "--period", "1mo", "--path", "/ro")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Error saving data")
	})

	t.Run("fetch failure fails the command", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Export", "ZZZZ", model.PeriodQuery("1mo"), ".", "csv").
			Return("", &model.FetchError{Ticker: "ZZZZ", Attempts: 3, Err: errors.New("no data")})

		_, err := run(t, svc, "fetch", "ZZZZ", "--period", "1mo")
		var fe *model.FetchError
		assert.True(t, errors.As(err, &fe))
	})
}

func TestAnalyzeCommand(t *testing.T) {
	summary := model.AnalysisSummary{
		Ticker:        "AAPL",
		Rows:          2,
		Columns:       []model.Field{model.FieldClose},
		MissingValues: map[model.Field]int{model.FieldClose: 0},
		Statistics:    map[model.Field]*model.FieldStats{model.FieldClose: {Count: 2, Mean: 101, Min: 100, Max: 102}},
		DateRange:     model.DateRange{Start: "2024-01-02", End: "2024-01-03"},
	}
	svc := new(MockService)
	svc.On("Analyze", "AAPL", model.PeriodQuery("100d")).Return(summary, nil)

	stdout, err := run(t, svc, "analyze", "AAPL")
	require.NoError(t, err)
	var got model.AnalysisSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 2, got.Rows)

	stdout, err = run(t, svc, "analyze", "AAPL", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, stdout, "AAPL summary")
	assert.Contains(t, stdout, "2024-01-02 to 2024-01-03")
	assert.Contains(t, stdout, "101.00")
}

func TestInsightsCommand(t *testing.T) {
	report := model.InsightReport{
		Ticker:     "MSFT",
		Volatility: model.VolatilityInsight{AnnualizedPercent: 18.5, Description: "Moderate volatility"},
		Trend:      model.TrendInsight{Direction: model.TrendDownward, Description: "Prices are trending down"},
		Anomalies:  model.AnomalyInsight{HighVolumeDates: []string{}, Description: "No unusual trading volume detected."},
	}
	svc := new(MockService)
	svc.On("Insights", "MSFT", model.PeriodQuery("1y")).Return(report, nil)

	stdout, err := run(t, svc, "insights", "MSFT", "--period", "1y")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"annualized_volatility_percent": 18.5`)

	stdout, err = run(t, svc, "insights", "MSFT", "--period", "1y", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MSFT insights")
	assert.Contains(t, stdout, "Downward")
	assert.Contains(t, stdout, "No unusual trading volume detected.")
}

func TestVersionCommand(t *testing.T) {
	stdout, err := run(t, new(MockService), "version")
	require.NoError(t, err)
	assert.Equal(t, "tickerscope 1.2.3\n", stdout)
}

func TestGinMode(t *testing.T) {
	assert.Equal(t, gin.DebugMode, ginMode("debug"))
	assert.Equal(t, gin.TestMode, ginMode("test"))
	assert.Equal(t, gin.ReleaseMode, ginMode("release"))
	assert.Equal(t, gin.ReleaseMode, ginMode("verbose"))
}
