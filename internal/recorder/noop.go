package recorder

import "TickerScope/internal/model"

// NoopRecorder is used when persistence is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Write(_ model.CleanSeries, _, _ string) (string, error) { return "", nil }
