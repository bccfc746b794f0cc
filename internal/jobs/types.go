package jobs

import "errors"

const (
	// TypeBookingRequested notifies the resource owner of a new pending request.
	TypeBookingRequested = "booking.requested"
	// TypeBookingStatusChanged notifies the booker of a lifecycle transition.
	TypeBookingStatusChanged = "booking.status_changed"
)

var (
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidJobPayload   = errors.New("invalid job payload")
	ErrPayloadTypeMismatch = errors.New("payload type mismatch for job type")
)

func IsValidType(t string) bool {
	switch t {
	case TypeBookingRequested, TypeBookingStatusChanged:
		return true
	default:
		return false
	}
}
