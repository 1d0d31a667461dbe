package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"TickerScope/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	downStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	alertStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))
)

// renderSummary draws the describe table of an analysis.
func renderSummary(s model.AnalysisSummary) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("%s %d rows, %s to %s\n\n",
		labelStyle.Render("Span:"), s.Rows, s.DateRange.Start, s.DateRange.End))
	content.WriteString(fmt.Sprintf("%-8s %8s %12s %12s %12s %12s %8s\n",
		"Field", "Count", "Mean", "Std", "Min", "Max", "Missing"))
	for _, f := range s.Columns {
		st := s.Statistics[f]
		if st == nil {
			content.WriteString(fmt.Sprintf("%-8s %8s\n", f, "-"))
			continue
		}
		content.WriteString(fmt.Sprintf("%-8s %8.0f %12.2f %12.2f %12.2f %12.2f %8d\n",
			f, st.Count, st.Mean, st.Std, st.Min, st.Max, s.MissingValues[f]))
	}
	return titleStyle.Render(s.Ticker+" summary") + "\n" + panelStyle.Render(strings.TrimRight(content.String(), "\n"))
}

// renderInsights draws the insight report.
func renderInsights(r model.InsightReport) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("%s %.2f%%  %s\n", labelStyle.Render("Volatility:"),
		r.Volatility.AnnualizedPercent, r.Volatility.Description))

	trend := string(r.Trend.Direction)
	switch r.Trend.Direction {
	case model.TrendUpward:
		trend = upStyle.Render(trend)
	case model.TrendDownward:
		trend = downStyle.Render(trend)
	}
	content.WriteString(fmt.Sprintf("%s %s  %s\n", labelStyle.Render("Trend:"), trend, r.Trend.Description))
	content.WriteString(fmt.Sprintf("%s %.0f  %s\n", labelStyle.Render("RSI14:"), r.Momentum.RSI14, r.Momentum.Description))
	content.WriteString(fmt.Sprintf("%s %.2f - %.2f (%.0f%%)\n", labelStyle.Render("Range:"),
		r.PriceRange.Low, r.PriceRange.High, r.PriceRange.Position*100))

	volume := r.Anomalies.Description
	if len(r.Anomalies.HighVolumeDates) > 0 {
		volume = alertStyle.Render(volume)
	}
	content.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Volume:"), volume))

	return titleStyle.Render(r.Ticker+" insights") + "\n" + panelStyle.Render(content.String())
}
