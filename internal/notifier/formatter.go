package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TickerScope/internal/model"
)

// FormatInsights formats an insight report into a Telegram message.
func FormatInsights(r model.InsightReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s insights</b> | %s\n\n", html.EscapeString(r.Ticker), time.Now().Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Volatility: %.2f%%\n", r.Volatility.AnnualizedPercent))
	b.WriteString(fmt.Sprintf("  %s\n", html.EscapeString(r.Volatility.Description)))
	b.WriteString(fmt.Sprintf("Trend: %s (slope %+.4f)\n", r.Trend.Direction, r.Trend.Slope))
	b.WriteString(fmt.Sprintf("RSI14: %.0f | %s\n", r.Momentum.RSI14, html.EscapeString(r.Momentum.Description)))
	b.WriteString(fmt.Sprintf("Range: %.2f - %.2f (position %.0f%%)\n\n",
		r.PriceRange.Low, r.PriceRange.High, r.PriceRange.Position*100))

	b.WriteString("🔔 <b>Volume:</b> ")
	b.WriteString(html.EscapeString(r.Anomalies.Description))
	b.WriteString("\n")
	return b.String()
}

// FormatAnomalyAlert formats a high-volume alert for one ticker.
func FormatAnomalyAlert(r model.InsightReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Volume alert</b> | %s\n\n", html.EscapeString(r.Ticker)))
	b.WriteString(fmt.Sprintf("Threshold: %.0f\n", r.Anomalies.Threshold))
	b.WriteString("Dates:\n")
	for _, d := range r.Anomalies.HighVolumeDates {
		b.WriteString("  • " + d + "\n")
	}
	b.WriteString(fmt.Sprintf("\nTrend: %s | Volatility: %.2f%%\n", r.Trend.Direction, r.Volatility.AnnualizedPercent))
	return b.String()
}

// FormatWatchlist lists the tickers the scheduler snapshots.
func FormatWatchlist(tickers []string, period, spec string) string {
	if len(tickers) == 0 {
		return "Watchlist is empty."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👀 <b>Watchlist</b> (%s, cron <code>%s</code>)\n\n", html.EscapeString(period), html.EscapeString(spec)))
	for _, t := range tickers {
		b.WriteString("  • " + html.EscapeString(t) + "\n")
	}
	return b.String()
}

// FormatFailure reports a ticker the snapshot job could not process.
func FormatFailure(ticker string, err error) string {
	return fmt.Sprintf("❌ %s snapshot failed: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
}

// HelpText lists the bot commands.
const HelpText = "Available commands:\n• /insights TICKER\n• /watchlist\n• /snapshot"
