package calculator

import (
	"github.com/markcheno/go-talib"

	"TickerScope/internal/model"
)

// Slope returns the least-squares slope of values against a 0-based index.
// A constant series has slope exactly 0; the regression sums would leave
// rounding residue of either sign.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 || constant(values) {
		return 0
	}
	return talib.LinearRegSlope(values, n)[n-1]
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Direction classifies a slope by its sign.
func Direction(slope float64) model.TrendDirection {
	switch {
	case slope > 0:
		return model.TrendUpward
	case slope < 0:
		return model.TrendDownward
	default:
		return model.TrendFlat
	}
}
