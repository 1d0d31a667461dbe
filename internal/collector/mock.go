package collector

import (
	"context"
	"time"

	"github.com/guregu/null/v6"

	"TickerScope/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	Price float64
	Bars  []model.RawBar
	Err   error
	Now   func() time.Time
}

func NewMockProvider(price float64) *MockProvider {
	return &MockProvider{Price: price, Now: time.Now}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchHistory(_ context.Context, ticker string, q model.Query) (model.RawSeries, error) {
	if m.Err != nil {
		return model.RawSeries{}, m.Err
	}
	if m.Bars != nil {
		bars := make([]model.RawBar, len(m.Bars))
		copy(bars, m.Bars)
		return model.RawSeries{Ticker: ticker, Bars: bars}, nil
	}

	end, start := q.End, q.Start
	if !q.HasRange() {
		now := time.Now()
		if m.Now != nil {
			now = m.Now()
		}
		from, err := model.ParsePeriod(q.Period, now)
		if err != nil {
			return model.RawSeries{}, err
		}
		start, end = from, now
	}
	return model.RawSeries{Ticker: ticker, Bars: generateMockBars(m.Price, start, end)}, nil
}

// generateMockBars produces one bar per weekday in [start, end) drifting gently upward.
func generateMockBars(basePrice float64, start, end time.Time) []model.RawBar {
	var bars []model.RawBar
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; day.Before(end); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001)
		bars = append(bars, model.RawBar{
			Date:   day,
			Open:   null.FloatFrom(p * 0.999),
			High:   null.FloatFrom(p * 1.005),
			Low:    null.FloatFrom(p * 0.995),
			Close:  null.FloatFrom(p),
			Volume: null.IntFrom(1000000),
		})
		i++
	}
	return bars
}
