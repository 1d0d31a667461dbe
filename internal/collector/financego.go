package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"TickerScope/internal/model"
)

// FinanceGoProvider implements Provider through the finance-go chart iterator.
// The iterator only understands explicit ranges, so periods are resolved against Now.
type FinanceGoProvider struct {
	Now func() time.Time
}

func NewFinanceGoProvider() *FinanceGoProvider {
	return &FinanceGoProvider{Now: time.Now}
}

func (p *FinanceGoProvider) Name() string { return "finance-go" }

func (p *FinanceGoProvider) FetchHistory(_ context.Context, ticker string, q model.Query) (model.RawSeries, error) {
	start, end := q.Start, q.End
	if !q.HasRange() {
		now := p.Now()
		from, err := model.ParsePeriod(q.Period, now)
		if err != nil {
			return model.RawSeries{}, err
		}
		start, end = from, now
	}

	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	series := model.RawSeries{Ticker: ticker}
	for iter.Next() {
		b := iter.Bar()
		bar := model.RawBar{
			Date:   calendarDate(int64(b.Timestamp), 0),
			Open:   priceFrom(b.Open),
			High:   priceFrom(b.High),
			Low:    priceFrom(b.Low),
			Close:  priceFrom(b.Close),
			Volume: null.IntFrom(int64(b.Volume)),
		}
		if adj, _ := b.AdjClose.Float64(); !b.AdjClose.IsZero() {
			bar.Extra = map[string]float64{"adjclose": adj}
		}
		series.Bars = append(series.Bars, bar)
	}
	if err := iter.Err(); err != nil {
		return model.RawSeries{}, fmt.Errorf("finance-go chart for %s: %w", ticker, err)
	}
	return series, nil
}

// priceFrom treats a zero decimal as a missing quote; finance-go has no null.
func priceFrom(d decimal.Decimal) null.Float {
	if d.IsZero() {
		return null.Float{}
	}
	f, _ := d.Float64()
	return null.FloatFrom(f)
}
