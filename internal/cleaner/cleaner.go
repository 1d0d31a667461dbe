// Package cleaner turns raw provider output into a canonical daily series.
package cleaner

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"TickerScope/internal/model"
)

// Clean projects raw records onto the canonical OHLCV columns, keeps the first
// record per date, sorts ascending, drops records with every field missing and
// forward-fills the remaining gaps per column. Leading gaps stay missing.
// It returns *model.NoValidDataError when nothing survives.
func Clean(raw model.RawSeries) (model.CleanSeries, error) {
	seen := make(map[string]struct{}, len(raw.Bars))
	bars := make([]model.Bar, 0, len(raw.Bars))
	for _, rb := range raw.Bars {
		b := project(rb)
		key := b.DateString()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if b.Empty() {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return model.CleanSeries{}, &model.NoValidDataError{Ticker: raw.Ticker}
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	forwardFill(bars)

	return model.CleanSeries{Ticker: raw.Ticker, Bars: bars}, nil
}

func project(rb model.RawBar) model.Bar {
	d := rb.Date.UTC()
	return model.Bar{
		Date:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Open:   finite(rb.Open),
		High:   finite(rb.High),
		Low:    finite(rb.Low),
		Close:  finite(rb.Close),
		Volume: rb.Volume,
	}
}

// finite treats NaN and infinities as missing.
func finite(v null.Float) null.Float {
	if !v.Valid {
		return v
	}
	if f := v.ValueOrZero(); math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return v
}

func forwardFill(bars []model.Bar) {
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1]
		b := &bars[i]
		if !b.Open.Valid {
			b.Open = prev.Open
		}
		if !b.High.Valid {
			b.High = prev.High
		}
		if !b.Low.Valid {
			b.Low = prev.Low
		}
		if !b.Close.Valid {
			b.Close = prev.Close
		}
		if !b.Volume.Valid {
			b.Volume = prev.Volume
		}
	}
}
