// Package chart builds declarative chart documents from clean series.
package chart

import (
	"fmt"

	"github.com/guregu/null/v6"

	"TickerScope/internal/calculator"
	"TickerScope/internal/model"
)

const (
	DefaultHeight     = 800
	DefaultDateFormat = "%Y-%m-%d"
	DefaultTemplate   = "plotly_white"
	DefaultMAWindow   = 20
	MinMAWindow       = 10

	volumeColor = "teal"
	maColor     = "orange"
	vwColor     = "purple"
)

// PlotSpec selects what to draw.
type PlotSpec struct {
	Kind     PlotKind
	MAWindow int // moving_average only; <= 0 means DefaultMAWindow
}

// Renderer holds the layout options shared by every chart.
type Renderer struct {
	Height     int
	DateFormat string
	Template   string
}

// NewRenderer returns a renderer with defaults for zero options.
func NewRenderer(height int, dateFormat, template string) *Renderer {
	r := &Renderer{Height: height, DateFormat: dateFormat, Template: template}
	if r.Height <= 0 {
		r.Height = DefaultHeight
	}
	if r.DateFormat == "" {
		r.DateFormat = DefaultDateFormat
	}
	if r.Template == "" {
		r.Template = DefaultTemplate
	}
	return r
}

// Render builds the chart document for spec.Kind. The series is never modified.
func (r *Renderer) Render(ticker string, s model.CleanSeries, spec PlotSpec) (model.ChartDocument, error) {
	if s.Len() == 0 {
		return model.ChartDocument{}, model.InvalidInputf("no valid data provided for %s", ticker)
	}
	switch spec.Kind {
	case KindClose:
		return r.renderClose(ticker, s), nil
	case KindVolume:
		return r.renderVolume(ticker, s), nil
	case KindMovingAverage:
		return r.renderMovingAverage(ticker, s, spec.MAWindow), nil
	case KindVolumeWeighted:
		return r.renderVolumeWeighted(ticker, s), nil
	default:
		return model.ChartDocument{}, &model.UnsupportedPlotTypeError{PlotType: spec.Kind.String()}
	}
}

func (r *Renderer) renderClose(ticker string, s model.CleanSeries) model.ChartDocument {
	return model.ChartDocument{
		Data:   []model.Trace{candlestick(s)},
		Layout: r.layout(spanTitle(ticker, s), "Price (USD)"),
	}
}

func (r *Renderer) renderVolume(ticker string, s model.CleanSeries) model.ChartDocument {
	trace := model.Trace{
		Type:   model.TraceBar,
		Name:   "Volume",
		X:      s.Dates(),
		Y:      s.Column(model.FieldVolume),
		Marker: &model.Marker{Color: volumeColor},
	}
	return model.ChartDocument{
		Data:   []model.Trace{trace},
		Layout: r.layout(ticker+" Volume", "Volume"),
	}
}

func (r *Renderer) renderMovingAverage(ticker string, s model.CleanSeries, requested int) model.ChartDocument {
	aug, window := MovingAverage(s, requested)
	ma := model.Trace{
		Type: model.TraceScatter,
		Name: maColumn(window),
		Mode: "lines",
		X:    aug.Dates(),
		Y:    aug.Columns[maColumn(window)],
		Line: &model.Line{Color: maColor, Width: 2},
	}
	title := fmt.Sprintf("%s - %d-Day Moving Average", ticker, window)
	return model.ChartDocument{
		Data:   []model.Trace{candlestick(aug.CleanSeries), ma},
		Layout: r.layout(title, "Price (USD)"),
	}
}

func (r *Renderer) renderVolumeWeighted(ticker string, s model.CleanSeries) model.ChartDocument {
	trace := model.Trace{
		Type: model.TraceScatter,
		Name: "Volume Weighted Close",
		Mode: "lines",
		X:    s.Dates(),
		Y:    VolumeWeighted(s),
		Line: &model.Line{Color: vwColor, Width: 2},
	}
	return model.ChartDocument{
		Data:   []model.Trace{trace},
		Layout: r.layout(ticker+" Volume Weighted Close", "Weighted Price (USD)"),
	}
}

func (r *Renderer) layout(title, yTitle string) model.Layout {
	return model.Layout{
		Title: model.Title{Text: title},
		XAxis: model.XAxis{
			Title:       model.Title{Text: "Date"},
			Type:        "date",
			TickFormat:  r.DateFormat,
			RangeSlider: model.RangeSlider{Visible: true},
		},
		YAxis:    model.YAxis{Title: model.Title{Text: yTitle}},
		Template: r.Template,
		Height:   r.Height,
	}
}

func candlestick(s model.CleanSeries) model.Trace {
	return model.Trace{
		Type:  model.TraceCandlestick,
		Name:  "Candlestick",
		X:     s.Dates(),
		Open:  s.Column(model.FieldOpen),
		High:  s.Column(model.FieldHigh),
		Low:   s.Column(model.FieldLow),
		Close: s.Column(model.FieldClose),
	}
}

func spanTitle(ticker string, s model.CleanSeries) string {
	return fmt.Sprintf("%s - %s to %s", ticker, s.Bars[0].DateString(), s.Bars[s.Len()-1].DateString())
}

func maColumn(window int) string { return fmt.Sprintf("MA%d", window) }

// EffectiveWindow caps the requested window at n-1 and floors it at MinMAWindow.
func EffectiveWindow(requested, n int) int {
	w := requested
	if w <= 0 {
		w = DefaultMAWindow
	}
	if w > n-1 {
		w = n - 1
	}
	if w < MinMAWindow {
		w = MinMAWindow
	}
	return w
}

// MovingAverage returns a copy of s carrying the rolling mean of close over the
// effective window, and the window used. Positions without a full window are null.
func MovingAverage(s model.CleanSeries, requested int) (model.AugmentedSeries, int) {
	window := EffectiveWindow(requested, s.Len())
	ma := calculator.RollingSMA(s.Column(model.FieldClose), window)
	return model.Augment(s, maColumn(window), ma), window
}

// VolumeWeighted returns close*volume/sum(volume) per bar. Every value is null
// when the total volume is zero.
func VolumeWeighted(s model.CleanSeries) []null.Float {
	out := make([]null.Float, s.Len())
	total := 0.0
	for _, b := range s.Bars {
		total += float64(b.Volume.ValueOrZero())
	}
	if total == 0 {
		return out
	}
	for i, b := range s.Bars {
		if !b.Close.Valid || !b.Volume.Valid {
			continue
		}
		out[i] = null.FloatFrom(b.Close.ValueOrZero() * float64(b.Volume.ValueOrZero()) / total)
	}
	return out
}
