package recorder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerScope/internal/model"
)

func sampleSeries() model.CleanSeries {
	return model.CleanSeries{Ticker: "AAPL", Bars: []model.Bar{
		{
			Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			High:   null.FloatFrom(186.5),
			Low:    null.FloatFrom(184),
			Close:  null.FloatFrom(185.64),
			Volume: null.IntFrom(82488700),
		},
		{
			Date:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Open:   null.FloatFrom(184.22),
			High:   null.FloatFrom(185.88),
			Low:    null.FloatFrom(183.43),
			Close:  null.FloatFrom(184.25),
			Volume: null.IntFrom(58414500),
		},
	}}
}

func TestFileRecorder_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(nil)

	path, err := r.Write(sampleSeries(), dir, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "downloads", "AAPL_data.csv"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Open,High,Low,Close,Volume", lines[0])
	assert.Equal(t, "2024-01-02,,186.5,184,185.64,82488700", lines[1])
	assert.Equal(t, "2024-01-03,184.22,185.88,183.43,184.25,58414500", lines[2])
}

func TestFileRecorder_WritesJSON(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(nil)

	path, err := r.Write(sampleSeries(), dir, "JSON")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "downloads", "AAPL_data.json"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(b, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-02", records[0]["Date"])
	assert.Nil(t, records[0]["Open"])
	assert.Equal(t, 184.25, records[1]["Close"])
	assert.Equal(t, float64(58414500), records[1]["Volume"])
}

func TestFileRecorder_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(nil)

	_, err := r.Write(sampleSeries(), dir, "xml")

	var ue *model.UnsupportedFormatError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "xml", ue.Format)
	_, statErr := os.Stat(filepath.Join(dir, "downloads"))
	assert.True(t, os.IsNotExist(statErr), "nothing written for unsupported format")
}

func TestFileRecorder_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(nil)
	s := sampleSeries()

	_, err := r.Write(s, dir, "csv")
	require.NoError(t, err)
	s.Bars = s.Bars[:1]
	path, err := r.Write(s, dir, "csv")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, len(strings.Split(strings.TrimSpace(string(b)), "\n")))
}

func TestNoopRecorder(t *testing.T) {
	path, err := NewNoopRecorder().Write(sampleSeries(), t.TempDir(), "csv")

	assert.NoError(t, err)
	assert.Empty(t, path)
}
