package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerScope/internal/model"
)

type fakeBot struct {
	mu       sync.Mutex
	failures int
	sent     []map[string]string
	updates  string
	offsets  []string
}

func (f *fakeBot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/botTOKEN/sendMessage":
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.sent = append(f.sent, body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	case "/botTOKEN/getUpdates":
		f.offsets = append(f.offsets, r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(f.updates))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Not Found"}`))
	}
}

func newTestNotifier(t *testing.T, bot *fakeBot) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(bot)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier(TelegramOptions{BotToken: "TOKEN", ChatID: "42", BaseURL: srv.URL + "/"})
	n.Backoff = func(int) time.Duration { return time.Millisecond }
	return n
}

func TestSend(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(t, bot)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, "42", bot.sent[0]["chat_id"])
	assert.Equal(t, "HTML", bot.sent[0]["parse_mode"])
	assert.Equal(t, "<b>hi</b>", bot.sent[0]["text"])
}

func TestSendWithRetry(t *testing.T) {
	t.Run("recovers after failures", func(t *testing.T) {
		bot := &fakeBot{failures: 2}
		n := newTestNotifier(t, bot)
		require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
		assert.Len(t, bot.sent, 1)
	})

	t.Run("exhausted", func(t *testing.T) {
		bot := &fakeBot{failures: 10}
		n := newTestNotifier(t, bot)
		err := n.SendWithRetry(context.Background(), "x", 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all 3 retries exhausted")
		assert.Equal(t, 7, bot.failures)
	})

	t.Run("cancelled", func(t *testing.T) {
		bot := &fakeBot{failures: 10}
		n := newTestNotifier(t, bot)
		n.Backoff = func(int) time.Duration { return time.Hour }
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := n.SendWithRetry(ctx, "x", 3)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestPoll(t *testing.T) {
	bot := &fakeBot{updates: `{"ok":true,"result":[
		{"update_id":7,"message":{"text":" /insights aapl ","chat":{"id":42}}},
		{"update_id":8,"message":{"text":"/snapshot","chat":{"id":99}}},
		{"update_id":9,"message":{"text":"","chat":{"id":42}}},
		{"update_id":10}
	]}`}
	n := newTestNotifier(t, bot)

	var got []string
	next, err := n.Poll(context.Background(), 5, 0, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 11, next)
	assert.Equal(t, []string{"/insights aapl"}, got)
	assert.Equal(t, []string{"5"}, bot.offsets)
	require.Len(t, bot.sent, 1)
	assert.Equal(t, "42", bot.sent[0]["chat_id"])
	assert.Equal(t, "reply to /insights aapl", bot.sent[0]["text"])
}

func TestPollIgnoresOtherChats(t *testing.T) {
	bot := &fakeBot{updates: `{"ok":true,"result":[
		{"update_id":1,"message":{"text":"/snapshot","chat":{"id":99}}},
		{"update_id":2,"message":{"text":"/watchlist"}}
	]}`}
	n := newTestNotifier(t, bot)

	called := false
	next, err := n.Poll(context.Background(), 0, 0, func(context.Context, string) string {
		called = true
		return "x"
	})
	require.NoError(t, err)
	assert.Equal(t, 3, next)
	assert.False(t, called)
	assert.Empty(t, bot.sent)
}

func TestPollError(t *testing.T) {
	bot := &fakeBot{updates: `{"ok":false,"description":"Unauthorized"}`}
	n := newTestNotifier(t, bot)
	next, err := n.Poll(context.Background(), 3, 0, func(context.Context, string) string { return "" })
	require.Error(t, err)
	assert.Equal(t, 3, next)
}

func sampleReport() model.InsightReport {
	return model.InsightReport{
		Ticker:     "AT&T",
		Volatility: model.VolatilityInsight{AnnualizedPercent: 23.456, Description: "Moderate volatility"},
		Trend:      model.TrendInsight{Direction: model.TrendUpward, Slope: 0.5},
		Anomalies: model.AnomalyInsight{
			HighVolumeDates: []string{"2024-03-07"},
			Threshold:       4200,
			Description:     "Unusual trading volume on 2024-03-07",
		},
		Momentum:   model.MomentumInsight{RSI14: 71, Description: "Overbought"},
		PriceRange: model.PriceRangeInsight{High: 110, Low: 90, Position: 0.5},
	}
}

func TestFormatters(t *testing.T) {
	r := sampleReport()

	msg := FormatInsights(r)
	assert.Contains(t, msg, "<b>AT&amp;T insights</b>")
	assert.Contains(t, msg, "Volatility: 23.46%")
	assert.Contains(t, msg, "Trend: Upward")
	assert.Contains(t, msg, "position 50%")

	alert := FormatAnomalyAlert(r)
	assert.Contains(t, alert, "Volume alert")
	assert.Contains(t, alert, "• 2024-03-07")
	assert.Contains(t, alert, "Threshold: 4200")

	assert.Equal(t, "Watchlist is empty.", FormatWatchlist(nil, "6mo", "@daily"))
	wl := FormatWatchlist([]string{"AAPL", "MSFT"}, "6mo", "0 30 22 * * 1-5")
	assert.Contains(t, wl, "• AAPL")
	assert.Contains(t, wl, "<code>0 30 22 * * 1-5</code>")

	assert.Equal(t, "❌ X snapshot failed: a &lt; b", FormatFailure("X", errors.New("a < b")))
}
