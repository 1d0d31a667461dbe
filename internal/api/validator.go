package api

import (
	"strings"
	"sync"
	"time"

	"TickerScope/internal/model"
)

const (
	msgTickerRequired = "Ticker is required"
	msgNotBoth        = "Provide either period or start/end dates, not both"
	msgNeedRange      = "Start and end dates are required when not using period"
	maxInputLength    = 100
)

// Validator handles validation logic separate from HTTP concerns.
// Every failure is a *model.InvalidInputError.
type Validator struct {
	now func() time.Time
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{now: time.Now}
	})
	return validatorInstance
}

// ValidateTicker sanitizes and requires a ticker.
func (v *Validator) ValidateTicker(ticker string) (string, error) {
	clean := sanitizeInput(ticker)
	if clean == "" {
		return "", model.InvalidInputf(msgTickerRequired)
	}
	return clean, nil
}

// ValidateQuery enforces that exactly one of period or start+end is given.
// When all three are empty, defaultPeriod is used; pass "" to require input.
func (v *Validator) ValidateQuery(period, start, end, defaultPeriod string) (model.Query, error) {
	period, start, end = sanitizeInput(period), sanitizeInput(start), sanitizeInput(end)

	if period != "" && (start != "" || end != "") {
		return model.Query{}, model.InvalidInputf(msgNotBoth)
	}
	if period == "" && start == "" && end == "" {
		period = defaultPeriod
	}

	if period != "" {
		if _, err := model.ParsePeriod(period, v.now()); err != nil {
			return model.Query{}, model.InvalidInputf("%v", err)
		}
		return model.PeriodQuery(period), nil
	}

	if start == "" || end == "" {
		return model.Query{}, model.InvalidInputf(msgNeedRange)
	}
	from, err := model.ParseDate(start)
	if err != nil {
		return model.Query{}, model.InvalidInputf("%v", err)
	}
	to, err := model.ParseDate(end)
	if err != nil {
		return model.Query{}, model.InvalidInputf("%v", err)
	}
	if !from.Before(to) {
		return model.Query{}, model.InvalidInputf("start date must be before end date")
	}
	return model.RangeQuery(from, to), nil
}

// ValidateMAWindow requires a positive window when one is supplied.
func (v *Validator) ValidateMAWindow(window *int, fallback int) (int, error) {
	if window == nil {
		return fallback, nil
	}
	if *window <= 0 {
		return 0, model.InvalidInputf("ma_window must be a positive integer")
	}
	return *window, nil
}

// sanitizeInput trims whitespace, drops control characters and caps the length in runes.
func sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
	if runes := []rune(input); len(runes) > maxInputLength {
		input = string(runes[:maxInputLength])
	}
	return input
}
