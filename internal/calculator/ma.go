package calculator

import (
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/markcheno/go-talib"
)

// CalculateSMA returns the mean of the trailing period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma period %d must be positive", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("sma(%d) needs %d values, got %d", period, period, len(values))
	}
	tail := values[len(values)-period:]
	return talib.Sma(tail, period)[period-1], nil
}

// RollingSMA returns the trailing mean at every position. Positions without a
// full window of valid values are invalid.
func RollingSMA(values []null.Float, period int) []null.Float {
	out := make([]null.Float, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	in := make([]float64, len(values))
	missing := make([]int, len(values)+1) // prefix count of invalid values
	for i, v := range values {
		in[i] = v.ValueOrZero()
		missing[i+1] = missing[i]
		if !v.Valid {
			missing[i+1]++
		}
	}

	sma := talib.Sma(in, period)
	for i := period - 1; i < len(values); i++ {
		if missing[i+1]-missing[i+1-period] > 0 {
			continue
		}
		out[i] = null.FloatFrom(sma[i])
	}
	return out
}
