package compare

import (
	"fmt"

	"github.com/lox/routeweather/internal/models"
)

// Kind names the stage at which a comparison stopped.
type Kind string

const (
	KindMissingFields      Kind = "missing_fields"
	KindInvalidCoordinates Kind = "invalid_coordinates"
	KindNoConnectivity     Kind = "no_connectivity"
	KindConnection         Kind = "connection_error"
	KindAPI                Kind = "api_error"
	KindData               Kind = "data_error"
	KindUnexpected         Kind = "unexpected_error"
)

// Error is the terminal failure of a comparison. Point is set for KindData
// and for fetch failures attributable to one end of the route.
type Error struct {
	Kind  Kind
	Point models.Point
	Err   error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Point != "" {
		msg += " (" + string(e.Point) + " point)"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
