package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"

	"TickerScope/internal/model"
)

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider implements Provider using the Yahoo Finance chart API.
type YahooProvider struct {
	Client    *resty.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooProvider creates a Yahoo provider with optional proxy support.
func NewYahooProvider(baseURL, proxyURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &YahooProvider{
		Client: client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) yahooSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote values are pointers because Yahoo reports missing values as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchHistory requests daily bars for the whole window in a single call.
func (p *YahooProvider) FetchHistory(ctx context.Context, ticker string, q model.Query) (model.RawSeries, error) {
	params := map[string]string{
		"interval":             "1d",
		"events":               "div,splits",
		"includeAdjustedClose": "true",
	}
	if q.HasRange() {
		params["period1"] = strconv.FormatInt(q.Start.Unix(), 10)
		params["period2"] = strconv.FormatInt(q.End.Unix(), 10)
	} else {
		params["range"] = q.Period
	}

	var chart yahooChart
	resp, err := p.Client.R().
		SetContext(ctx).
		SetPathParam("symbol", p.yahooSymbol(ticker)).
		SetQueryParams(params).
		SetResult(&chart).
		SetError(&chart).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return model.RawSeries{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.RawSeries{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if resp.IsError() {
		return model.RawSeries{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if len(chart.Chart.Result) == 0 {
		return model.RawSeries{Ticker: ticker}, nil
	}

	result := chart.Chart.Result[0]
	series := model.RawSeries{Ticker: ticker, Bars: make([]model.RawBar, 0, len(result.Timestamp))}
	if len(result.Indicators.Quote) == 0 {
		return series, nil
	}
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	for i, ts := range result.Timestamp {
		bar := model.RawBar{
			Date:  calendarDate(ts, result.Meta.GMTOffset),
			Open:  null.FloatFromPtr(at(quote.Open, i)),
			High:  null.FloatFromPtr(at(quote.High, i)),
			Low:   null.FloatFromPtr(at(quote.Low, i)),
			Close: null.FloatFromPtr(at(quote.Close, i)),
		}
		if v := at(quote.Volume, i); v != nil {
			bar.Volume = null.IntFrom(int64(*v))
		}
		if v := at(adj, i); v != nil {
			bar.Extra = map[string]float64{"adjclose": *v}
		}
		series.Bars = append(series.Bars, bar)
	}
	return series, nil
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// calendarDate maps a bar timestamp to its trading date in the exchange's time zone.
func calendarDate(ts, gmtOffset int64) time.Time {
	t := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
