package model

import "fmt"

// FetchError reports that the upstream returned an error or no data on every attempt.
type FetchError struct {
	Ticker   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data for %s after %d attempts: %v", e.Ticker, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NoValidDataError reports that cleaning removed every record.
type NoValidDataError struct {
	Ticker string
}

func (e *NoValidDataError) Error() string {
	return fmt.Sprintf("no valid data for %s after cleaning", e.Ticker)
}

// InvalidInputError reports a request the core cannot act on.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// InvalidInputf builds an InvalidInputError.
func InvalidInputf(format string, args ...any) error {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedPlotTypeError reports an unknown chart kind.
type UnsupportedPlotTypeError struct {
	PlotType string
}

func (e *UnsupportedPlotTypeError) Error() string {
	return fmt.Sprintf("unsupported plot type: %s", e.PlotType)
}

// UnsupportedFormatError reports an unknown persistence format.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Format)
}
