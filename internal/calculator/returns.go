package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// DailyReturns returns the fractional close-to-close change; the first return is 0.
// A zero previous close yields 0.
func DailyReturns(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out[i] = (closes[i] - closes[i-1]) / closes[i-1]
	}
	return out
}

// AnnualizedVolatility returns the population standard deviation of returns scaled
// to a year, as a percentage rounded to 2 decimal places.
func AnnualizedVolatility(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	std := talib.StdDev(returns, n, 1.0)[n-1]
	if math.IsNaN(std) || std < 0 {
		std = 0
	}
	pct := std * math.Sqrt(TradingDaysPerYear) * 100
	v, _ := decimal.NewFromFloat(pct).Round(2).Float64()
	return v
}
