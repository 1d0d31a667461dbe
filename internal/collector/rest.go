package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"

	"TickerScope/internal/model"
)

// RESTProvider implements Provider against a self-hosted bars API that serves
// GET /api/v1/bars/daily?symbol=..&period=.. (or start/end) as a JSON array.
type RESTProvider struct {
	Client *resty.Client
	APIKey string
}

// NewRESTProvider creates a new provider with optional proxy support.
func NewRESTProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RESTProvider{Client: client, APIKey: apiKey}
}

func (p *RESTProvider) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

func (p *RESTProvider) FetchHistory(ctx context.Context, ticker string, q model.Query) (model.RawSeries, error) {
	req := p.Client.R().
		SetContext(ctx).
		SetQueryParam("symbol", ticker)
	if q.HasRange() {
		req.SetQueryParam("start", q.Start.Format(model.DateLayout))
		req.SetQueryParam("end", q.End.Format(model.DateLayout))
	} else {
		req.SetQueryParam("period", q.Period)
	}

	var bars []restBar
	resp, err := req.SetResult(&bars).Get("/api/v1/bars/daily")
	if err != nil {
		return model.RawSeries{}, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.IsError() {
		return model.RawSeries{}, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	series := model.RawSeries{Ticker: ticker, Bars: make([]model.RawBar, 0, len(bars))}
	for _, rb := range bars {
		bar := model.RawBar{
			Date:  calendarDate(rb.Timestamp, 0),
			Open:  null.FloatFromPtr(rb.Open),
			High:  null.FloatFromPtr(rb.High),
			Low:   null.FloatFromPtr(rb.Low),
			Close: null.FloatFromPtr(rb.Close),
		}
		if rb.Volume != nil {
			bar.Volume = null.IntFrom(int64(*rb.Volume))
		}
		series.Bars = append(series.Bars, bar)
	}
	return series, nil
}
