package chart

import (
	"strings"

	"TickerScope/internal/model"
)

// PlotKind is one of the supported chart kinds.
type PlotKind int

const (
	KindClose PlotKind = iota
	KindVolume
	KindMovingAverage
	KindVolumeWeighted
)

var kindNames = map[PlotKind]string{
	KindClose:          "close",
	KindVolume:         "volume",
	KindMovingAverage:  "moving_average",
	KindVolumeWeighted: "volume_weighted",
}

func (k PlotKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Kinds lists the supported kinds in wire-name order.
func Kinds() []PlotKind {
	return []PlotKind{KindClose, KindVolume, KindMovingAverage, KindVolumeWeighted}
}

// ParsePlotKind maps a wire name to a PlotKind. An empty name selects close.
func ParsePlotKind(name string) (PlotKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return KindClose, nil
	}
	for k, v := range kindNames {
		if v == n {
			return k, nil
		}
	}
	return 0, &model.UnsupportedPlotTypeError{PlotType: name}
}

// MarshalText encodes the kind as its wire name.
func (k PlotKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a wire name.
func (k *PlotKind) UnmarshalText(b []byte) error {
	parsed, err := ParsePlotKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
