package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection marks failures to reach the weather API at all.
	ErrConnection = errors.New("weather api connection failed")
	// ErrAPI marks failures reported by, or decoding, the weather API.
	ErrAPI = errors.New("weather api request failed")
)

// DataError is returned when the weather API answered but gave no usable
// snapshot for the requested coordinate.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("weather data unavailable: %s", e.Reason)
}
