package recorder

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/guregu/null/v6"

	"TickerScope/internal/model"
)

// FileRecorder writes {dir}/downloads/{ticker}_data.{format}.
type FileRecorder struct {
	mu     sync.Mutex
	logger log.Logger
}

// NewFileRecorder creates a file recorder.
func NewFileRecorder(logger log.Logger) *FileRecorder {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &FileRecorder{logger: logger}
}

// jsonRecord is one row of the record-oriented JSON export.
type jsonRecord struct {
	Date   string     `json:"Date"`
	Open   null.Float `json:"Open"`
	High   null.Float `json:"High"`
	Low    null.Float `json:"Low"`
	Close  null.Float `json:"Close"`
	Volume null.Int   `json:"Volume"`
}

// Write serializes series in format (csv or json, case-insensitive; empty means csv),
// creating directories as needed. Missing values become empty CSV cells or JSON null.
func (r *FileRecorder) Write(series model.CleanSeries, dir, format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = FormatCSV
	}
	if f != FormatCSV && f != FormatJSON {
		return "", &model.UnsupportedFormatError{Format: format}
	}

	target := filepath.Join(dir, downloadsDir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	path := filepath.Join(target, fmt.Sprintf("%s_data.%s", series.Ticker, f))

	// Concurrent exports of the same ticker must not interleave.
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	switch f {
	case FormatCSV:
		err = writeCSV(file, series)
	case FormatJSON:
		err = writeJSON(file, series)
	}
	if err != nil {
		return "", err
	}

	_ = level.Info(r.logger).Log("msg", "series saved", "ticker", series.Ticker, "path", path, "rows", series.Len())
	return path, nil
}

func writeCSV(file *os.File, series model.CleanSeries) error {
	w := csv.NewWriter(file)
	header := []string{"Date"}
	for _, f := range model.Fields {
		header = append(header, string(f))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, b := range series.Bars {
		row := []string{
			b.DateString(),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			"",
		}
		if b.Volume.Valid {
			row[5] = strconv.FormatInt(b.Volume.ValueOrZero(), 10)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(file *os.File, series model.CleanSeries) error {
	records := make([]jsonRecord, 0, series.Len())
	for _, b := range series.Bars {
		records = append(records, jsonRecord{
			Date:   b.DateString(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.ValueOrZero(), 'f', -1, 64)
}
