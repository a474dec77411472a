package models

import "fmt"

// DataError reports insufficient or malformed historical input, e.g. a
// revenue series too short to compute a growth rate. Optional market fields
// never produce a DataError; providers recover those with defaults.
type DataError struct {
	Ticker string
	Field  string
	Reason string
}

func (e *DataError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("data error: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("data error: %s: %s: %s", e.Ticker, e.Field, e.Reason)
}
