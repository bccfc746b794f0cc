package notifications

import (
	"context"

	"github.com/geocoder89/campushub/internal/jobs"
)

// Kind tells the notifier which message to render.
type Kind string

const (
	KindBookingRequested     Kind = "booking_requested"
	KindBookingStatusChanged Kind = "booking_status_changed"
)

type BookingNotification struct {
	Kind    Kind
	Payload jobs.BookingNotificationPayload
}

type Notifier interface {
	SendBookingNotification(ctx context.Context, n BookingNotification) error
}

// KindForJobType maps a queued job type to its notification kind.
func KindForJobType(t string) (Kind, bool) {
	switch t {
	case jobs.TypeBookingRequested:
		return KindBookingRequested, true
	case jobs.TypeBookingStatusChanged:
		return KindBookingStatusChanged, true
	default:
		return "", false
	}
}
