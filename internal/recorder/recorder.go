package recorder

import "TickerScope/internal/model"

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	downloadsDir = "downloads"
)

// Recorder persists a clean series as a flat file and returns the path written.
type Recorder interface {
	Write(series model.CleanSeries, dir, format string) (string, error)
}
