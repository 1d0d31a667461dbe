package model

import "github.com/guregu/null/v6"

// Trace kinds understood by the chart front end.
const (
	TraceCandlestick = "candlestick"
	TraceBar         = "bar"
	TraceScatter     = "scatter"
)

// Marker styles bar traces.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Line styles line traces.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Trace is one named series of a chart. Candlestick traces use Open/High/Low/Close,
// bar and scatter traces use Y.
type Trace struct {
	Type   string       `json:"type"`
	Name   string       `json:"name"`
	Mode   string       `json:"mode,omitempty"`
	X      []string     `json:"x"`
	Y      []null.Float `json:"y,omitempty"`
	Open   []null.Float `json:"open,omitempty"`
	High   []null.Float `json:"high,omitempty"`
	Low    []null.Float `json:"low,omitempty"`
	Close  []null.Float `json:"close,omitempty"`
	Marker *Marker      `json:"marker,omitempty"`
	Line   *Line        `json:"line,omitempty"`
}

type Title struct {
	Text string `json:"text"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

type XAxis struct {
	Title       Title       `json:"title"`
	Type        string      `json:"type"`
	TickFormat  string      `json:"tickformat"`
	RangeSlider RangeSlider `json:"rangeslider"`
}

type YAxis struct {
	Title Title `json:"title"`
}

// Layout is the shared chart layout metadata.
type Layout struct {
	Title    Title  `json:"title"`
	XAxis    XAxis  `json:"xaxis"`
	YAxis    YAxis  `json:"yaxis"`
	Template string `json:"template"`
	Height   int    `json:"height"`
}

// ChartDocument is a declarative chart: traces plus layout. It is regenerated per request.
type ChartDocument struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}
