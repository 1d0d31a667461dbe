// Package analytics derives summaries and insights from a clean series.
package analytics

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"TickerScope/internal/calculator"
	"TickerScope/internal/model"
)

const (
	rsiPeriod      = 14
	smaPeriod      = 20
	anomalySigmas  = 2.0
	rangeLookback  = 0 // whole series
	maxListedDates = 5
)

// Analyze describes every canonical column of the series. It never modifies s.
func Analyze(s model.CleanSeries) (model.AnalysisSummary, error) {
	if s.Len() == 0 {
		return model.AnalysisSummary{}, model.InvalidInputf("no data to analyze for %s", s.Ticker)
	}

	summary := model.AnalysisSummary{
		Ticker:        s.Ticker,
		Rows:          s.Len(),
		Columns:       append([]model.Field(nil), model.Fields...),
		DTypes:        make(map[model.Field]string, len(model.Fields)),
		MissingValues: make(map[model.Field]int, len(model.Fields)),
		Statistics:    make(map[model.Field]*model.FieldStats, len(model.Fields)),
		DateRange: model.DateRange{
			Start: s.Bars[0].DateString(),
			End:   s.Bars[s.Len()-1].DateString(),
		},
	}
	for _, f := range model.Fields {
		values, missing := valid(s.Column(f))
		summary.DTypes[f] = f.DType()
		summary.MissingValues[f] = missing
		if st := calculator.Describe(values); st != nil {
			summary.Statistics[f] = st
		}
	}
	return summary, nil
}

// GenerateInsights computes returns, volatility, trend, volume anomalies, momentum
// and price range. The daily-return column is attached to the returned augmented
// series; s itself is left untouched.
func GenerateInsights(s model.CleanSeries) (model.InsightReport, model.AugmentedSeries, error) {
	if s.Len() == 0 {
		return model.InsightReport{}, model.AugmentedSeries{}, model.InvalidInputf("no data for insights on %s", s.Ticker)
	}

	closes, _ := valid(s.Column(model.FieldClose))
	returns := returnColumn(s)
	aug := model.Augment(s, model.ColumnReturn, returns)

	report := model.InsightReport{
		Ticker:       s.Ticker,
		DailyReturns: model.ReturnsFrom(aug.CleanSeries, returns),
	}

	rets := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r.Valid {
			rets = append(rets, r.ValueOrZero())
		}
	}
	vol := calculator.AnnualizedVolatility(rets)
	report.Volatility = model.VolatilityInsight{AnnualizedPercent: vol, Description: describeVolatility(vol)}

	slope := calculator.Slope(closes)
	dir := calculator.Direction(slope)
	report.Trend = model.TrendInsight{Direction: dir, Slope: slope, Description: describeTrend(dir, slope)}

	report.Anomalies = volumeAnomalies(s)

	rsi, err := calculator.CalculateRSI(closes, rsiPeriod)
	if err != nil {
		return model.InsightReport{}, model.AugmentedSeries{}, fmt.Errorf("rsi: %w", err)
	}
	report.Momentum = model.MomentumInsight{RSI14: rsi, Description: describeMomentum(rsi)}
	// Shorter series simply omit the average.
	if sma, err := calculator.CalculateSMA(closes, smaPeriod); err == nil {
		report.Momentum.SMA20 = sma
	}

	if pr, ok := priceRange(s, closes); ok {
		report.PriceRange = pr
	}
	return report, aug, nil
}

// returnColumn aligns daily returns with the bars; the first close's return is 0.
// Bars without a close carry an invalid return.
func returnColumn(s model.CleanSeries) []null.Float {
	col := s.Column(model.FieldClose)
	closes := make([]float64, 0, len(col))
	pos := make([]int, 0, len(col))
	for i, c := range col {
		if c.Valid {
			closes = append(closes, c.ValueOrZero())
			pos = append(pos, i)
		}
	}

	out := make([]null.Float, len(col))
	for j, r := range calculator.DailyReturns(closes) {
		out[pos[j]] = null.FloatFrom(r)
	}
	return out
}

func volumeAnomalies(s model.CleanSeries) model.AnomalyInsight {
	col := s.Column(model.FieldVolume)
	volumes := make([]float64, 0, len(col))
	pos := make([]int, 0, len(col))
	for i, v := range col {
		if v.Valid {
			volumes = append(volumes, v.ValueOrZero())
			pos = append(pos, i)
		}
	}

	idx, threshold := calculator.VolumeSpikes(volumes, anomalySigmas)
	dates := make([]string, 0, len(idx))
	for _, i := range idx {
		dates = append(dates, s.Bars[pos[i]].DateString())
	}
	return model.AnomalyInsight{
		HighVolumeDates: dates,
		Threshold:       threshold,
		Description:     describeAnomalies(dates),
	}
}

func priceRange(s model.CleanSeries, closes []float64) (model.PriceRangeInsight, bool) {
	highs, lows := validPairs(s.Column(model.FieldHigh), s.Column(model.FieldLow))
	if len(highs) == 0 || len(closes) == 0 {
		return model.PriceRangeInsight{}, false
	}
	high, low, err := calculator.CalculateRange(highs, lows, rangeLookback)
	if err != nil {
		return model.PriceRangeInsight{}, false
	}
	pos, err := calculator.CalculatePosition(closes[len(closes)-1], high, low)
	if err != nil {
		return model.PriceRangeInsight{}, false
	}
	return model.PriceRangeInsight{High: high, Low: low, Position: pos}, true
}

// validPairs keeps the positions where both a and b are present.
func validPairs(a, b []null.Float) ([]float64, []float64) {
	outA := make([]float64, 0, len(a))
	outB := make([]float64, 0, len(b))
	for i := range a {
		if i >= len(b) || !a[i].Valid || !b[i].Valid {
			continue
		}
		outA = append(outA, a[i].ValueOrZero())
		outB = append(outB, b[i].ValueOrZero())
	}
	return outA, outB
}

func valid(col []null.Float) (values []float64, missing int) {
	values = make([]float64, 0, len(col))
	for _, v := range col {
		if !v.Valid {
			missing++
			continue
		}
		values = append(values, v.ValueOrZero())
	}
	return values, missing
}

func describeVolatility(pct float64) string {
	var level string
	switch {
	case pct < 15:
		level = "low price swings"
	case pct < 35:
		level = "moderate price swings"
	case pct < 60:
		level = "high price swings"
	default:
		level = "very high price swings"
	}
	return fmt.Sprintf("Annualized volatility of %.2f%% indicates %s.", pct, level)
}

func describeTrend(dir model.TrendDirection, slope float64) string {
	switch dir {
	case model.TrendUpward:
		return fmt.Sprintf("Closing prices trend upward, rising about %.4f per trading day.", slope)
	case model.TrendDownward:
		return fmt.Sprintf("Closing prices trend downward, falling about %.4f per trading day.", -slope)
	default:
		return "Closing prices show no clear trend over the period."
	}
}

func describeAnomalies(dates []string) string {
	switch n := len(dates); {
	case n == 0:
		return "No unusual trading volume detected."
	case n <= maxListedDates:
		return fmt.Sprintf("Unusually high trading volume on %d day(s): %s.", n, strings.Join(dates, ", "))
	default:
		return fmt.Sprintf("Unusually high trading volume on %d days, including %s.",
			n, strings.Join(dates[:maxListedDates], ", "))
	}
}

func describeMomentum(rsi float64) string {
	switch {
	case rsi >= 70:
		return fmt.Sprintf("RSI(14) of %.1f suggests the stock is overbought.", rsi)
	case rsi <= 30:
		return fmt.Sprintf("RSI(14) of %.1f suggests the stock is oversold.", rsi)
	default:
		return fmt.Sprintf("RSI(14) of %.1f is in the neutral range.", rsi)
	}
}
