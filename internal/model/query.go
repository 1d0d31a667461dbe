package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPeriod is the lookback used when a caller supplies neither a period nor a range.
const DefaultPeriod = "100d"

// Query selects the window of history to fetch: either a relative period
// ("100d", "6mo", "1y") or an explicit [Start, End) date range.
type Query struct {
	Period string
	Start  time.Time
	End    time.Time
}

// PeriodQuery returns a query for a relative lookback.
func PeriodQuery(period string) Query { return Query{Period: period} }

// RangeQuery returns a query for an explicit date range.
func RangeQuery(start, end time.Time) Query { return Query{Start: start, End: end} }

// HasRange reports whether both range dates are set.
func (q Query) HasRange() bool { return !q.Start.IsZero() && !q.End.IsZero() }

func (q Query) String() string {
	if q.HasRange() {
		return fmt.Sprintf("%s to %s", q.Start.Format(DateLayout), q.End.Format(DateLayout))
	}
	return "period=" + q.Period
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParsePeriod resolves a provider-style period into a start date relative to now.
// Supported: Nd, Nwk, Nmo, Ny, ytd and max.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	switch p {
	case "":
		return time.Time{}, fmt.Errorf("empty period")
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}

	for _, unit := range []string{"wk", "mo", "d", "y"} {
		if !strings.HasSuffix(p, unit) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, unit))
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid period %q", period)
		}
		switch unit {
		case "d":
			return now.AddDate(0, 0, -n), nil
		case "wk":
			return now.AddDate(0, 0, -7*n), nil
		case "mo":
			return now.AddDate(0, -n, 0), nil
		case "y":
			return now.AddDate(-n, 0, 0), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid period %q", period)
}
