package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar-date layout used on the wire and in files.
const DateLayout = "2006-01-02"

// Field names one of the canonical OHLCV columns.
type Field string

const (
	FieldOpen   Field = "Open"
	FieldHigh   Field = "High"
	FieldLow    Field = "Low"
	FieldClose  Field = "Close"
	FieldVolume Field = "Volume"
)

// Fields lists the canonical columns in their fixed order.
var Fields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// DType returns the inferred column type label.
func (f Field) DType() string {
	if f == FieldVolume {
		return "int64"
	}
	return "float64"
}

// RawBar is one daily record as returned by a provider. Any field may be missing
// and providers may attach extra columns.
type RawBar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
	Extra  map[string]float64
}

// RawSeries is the untouched provider output for a ticker.
type RawSeries struct {
	Ticker string
	Bars   []RawBar
}

// Len returns the number of raw records.
func (s RawSeries) Len() int { return len(s.Bars) }

// Bar is a canonical daily OHLCV record.
type Bar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

// Value returns the named field as a float and whether it is present.
func (b Bar) Value(f Field) (float64, bool) {
	switch f {
	case FieldOpen:
		return b.Open.ValueOrZero(), b.Open.Valid
	case FieldHigh:
		return b.High.ValueOrZero(), b.High.Valid
	case FieldLow:
		return b.Low.ValueOrZero(), b.Low.Valid
	case FieldClose:
		return b.Close.ValueOrZero(), b.Close.Valid
	case FieldVolume:
		return float64(b.Volume.ValueOrZero()), b.Volume.Valid
	}
	return 0, false
}

// Empty reports whether every canonical field is missing.
func (b Bar) Empty() bool {
	return !b.Open.Valid && !b.High.Valid && !b.Low.Valid && !b.Close.Valid && !b.Volume.Valid
}

// DateString formats the bar date as YYYY-MM-DD.
func (b Bar) DateString() string { return b.Date.Format(DateLayout) }

// CleanSeries is a deduplicated, ascending, gap-filled series of canonical bars.
// Values are never shared between requests; each pipeline run cleans its own copy.
type CleanSeries struct {
	Ticker string
	Bars   []Bar
}

// Len returns the number of bars.
func (s CleanSeries) Len() int { return len(s.Bars) }

// Column returns the values of a field; missing values are reported as invalid.
func (s CleanSeries) Column(f Field) []null.Float {
	out := make([]null.Float, len(s.Bars))
	for i, b := range s.Bars {
		v, ok := b.Value(f)
		out[i] = null.NewFloat(v, ok)
	}
	return out
}

// Dates returns the bar dates formatted as YYYY-MM-DD.
func (s CleanSeries) Dates() []string {
	out := make([]string, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.DateString()
	}
	return out
}

// Clone returns a deep copy of the series.
func (s CleanSeries) Clone() CleanSeries {
	bars := make([]Bar, len(s.Bars))
	copy(bars, s.Bars)
	return CleanSeries{Ticker: s.Ticker, Bars: bars}
}

// AugmentedSeries is a clean series together with derived columns.
// Derived columns have the same length as Bars.
type AugmentedSeries struct {
	CleanSeries
	Columns map[string][]null.Float
}

// Augment copies the series and attaches a derived column to the copy.
func Augment(s CleanSeries, name string, values []null.Float) AugmentedSeries {
	return AugmentedSeries{
		CleanSeries: s.Clone(),
		Columns:     map[string][]null.Float{name: values},
	}
}

// With returns a new augmented series carrying an extra derived column.
func (a AugmentedSeries) With(name string, values []null.Float) AugmentedSeries {
	cols := make(map[string][]null.Float, len(a.Columns)+1)
	for k, v := range a.Columns {
		cols[k] = v
	}
	cols[name] = values
	return AugmentedSeries{CleanSeries: a.CleanSeries, Columns: cols}
}
