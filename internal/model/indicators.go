package model

import "github.com/guregu/null/v6"

// FieldStats holds describe-style statistics for one column.
type FieldStats struct {
	Count float64 `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// DateRange is an inclusive range of YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnalysisSummary is a read-only snapshot describing a clean series.
type AnalysisSummary struct {
	Ticker        string                `json:"ticker"`
	Rows          int                   `json:"rows"`
	Columns       []Field               `json:"columns"`
	DTypes        map[Field]string      `json:"dtypes"`
	MissingValues map[Field]int         `json:"missing_values"`
	Statistics    map[Field]*FieldStats `json:"statistics"`
	DateRange     DateRange             `json:"date_range"`
}

// TrendDirection classifies the slope of a closing-price fit.
type TrendDirection string

const (
	TrendUpward   TrendDirection = "Upward"
	TrendDownward TrendDirection = "Downward"
	TrendFlat     TrendDirection = "Flat"
)

// DailyReturn is the fractional close-to-close change for a date.
type DailyReturn struct {
	Date   string  `json:"date"`
	Return float64 `json:"return"`
}

type VolatilityInsight struct {
	AnnualizedPercent float64 `json:"annualized_volatility_percent"`
	Description       string  `json:"description"`
}

type TrendInsight struct {
	Direction   TrendDirection `json:"direction"`
	Slope       float64        `json:"slope"`
	Description string         `json:"description"`
}

type AnomalyInsight struct {
	HighVolumeDates []string `json:"high_volume_dates"`
	Threshold       float64  `json:"threshold"`
	Description     string   `json:"description"`
}

type MomentumInsight struct {
	RSI14       float64 `json:"rsi_14"`
	SMA20       float64 `json:"sma_20,omitempty"` // 0 when fewer than 20 closes
	Description string  `json:"description"`
}

type PriceRangeInsight struct {
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Position float64 `json:"position"` // 0.0 ~ 1.0
}

// InsightReport holds derived insights over a clean series.
type InsightReport struct {
	Ticker       string            `json:"ticker"`
	DailyReturns []DailyReturn     `json:"daily_returns"`
	Volatility   VolatilityInsight `json:"volatility"`
	Trend        TrendInsight      `json:"trend"`
	Anomalies    AnomalyInsight    `json:"anomalies"`
	Momentum     MomentumInsight   `json:"momentum"`
	PriceRange   PriceRangeInsight `json:"price_range"`
}

// ColumnReturn names the derived daily-return column.
const ColumnReturn = "Return"

// ReturnsFrom converts a derived return column into report entries.
func ReturnsFrom(s CleanSeries, returns []null.Float) []DailyReturn {
	out := make([]DailyReturn, 0, len(returns))
	for i, r := range returns {
		if !r.Valid {
			continue
		}
		out = append(out, DailyReturn{Date: s.Bars[i].DateString(), Return: r.ValueOrZero()})
	}
	return out
}
