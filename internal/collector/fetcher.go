package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"TickerScope/internal/model"
)

const (
	DefaultRetries = 3
	DefaultBackoff = 2 * time.Second
)

// Provider retrieves raw daily history from an upstream market-data source.
type Provider interface {
	FetchHistory(ctx context.Context, ticker string, q model.Query) (model.RawSeries, error)
	Name() string
}

// Sleeper waits between fetch attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// RealSleeper blocks for d or until ctx is done.
var RealSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// Fetcher retrieves a raw series with a bounded number of attempts and a fixed backoff.
// It does not validate the query: an explicit range wins over a period.
type Fetcher struct {
	Provider Provider
	Retries  int
	Backoff  time.Duration
	Sleeper  Sleeper
	Logger   log.Logger
}

// NewFetcher creates a Fetcher with the default retry policy.
func NewFetcher(provider Provider, logger log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Fetcher{
		Provider: provider,
		Retries:  DefaultRetries,
		Backoff:  DefaultBackoff,
		Sleeper:  RealSleeper,
		Logger:   logger,
	}
}

// Fetch returns the untouched provider series. An attempt fails when the provider
// errors or returns no records; after the last failed attempt a *model.FetchError
// wrapping the last cause is returned.
func (f *Fetcher) Fetch(ctx context.Context, ticker string, q model.Query) (model.RawSeries, error) {
	attempts := f.Retries
	if attempts < 1 {
		attempts = 1
	}
	sleeper := f.Sleeper
	if sleeper == nil {
		sleeper = RealSleeper
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := f.Provider.FetchHistory(ctx, ticker, q)
		if err == nil && raw.Len() == 0 {
			err = fmt.Errorf("no data found for %s", ticker)
		}
		if err == nil {
			_ = level.Info(f.Logger).Log("msg", "fetched series", "ticker", ticker,
				"provider", f.Provider.Name(), "rows", raw.Len(), "attempt", attempt)
			return raw, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		_ = level.Warn(f.Logger).Log("msg", "fetch attempt failed, retrying", "ticker", ticker,
			"attempt", attempt, "backoff", f.Backoff, "err", err)
		if serr := sleeper.Sleep(ctx, f.Backoff); serr != nil {
			return model.RawSeries{}, &model.FetchError{Ticker: ticker, Attempts: attempt, Err: lastErr}
		}
	}

	_ = level.Error(f.Logger).Log("msg", "fetch failed", "ticker", ticker, "attempts", attempts, "err", lastErr)
	return model.RawSeries{}, &model.FetchError{Ticker: ticker, Attempts: attempts, Err: lastErr}
}
