package lifecycle

import (
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/policy"
)

// decision rules are pure; the manager loads b and r under lock first.

func decideConfirm(a policy.Actor, b booking.Booking, r resource.Resource) error {
	if !policy.CanDecideBooking(a, r) {
		return booking.ErrForbidden
	}
	if !booking.CanTransition(b.Status, booking.StatusConfirmed) {
		return booking.ErrInvalidTransition
	}
	return nil
}

func decideReject(a policy.Actor, b booking.Booking, r resource.Resource) error {
	if !policy.CanDecideBooking(a, r) {
		return booking.ErrForbidden
	}
	if b.Status != booking.StatusPending {
		return booking.ErrInvalidTransition
	}
	return nil
}

func decideCancel(a policy.Actor, b booking.Booking, now time.Time) error {
	if !policy.CanCancelBooking(a, b) {
		return booking.ErrForbidden
	}
	if b.Status.IsTerminal() {
		return booking.ErrInvalidTransition
	}
	if !b.StartTime.After(now) {
		return booking.ErrTooLate
	}
	return nil
}

func decideComplete(a policy.Actor, b booking.Booking, r resource.Resource, now time.Time) error {
	if !policy.CanDecideBooking(a, r) {
		return booking.ErrForbidden
	}
	if !booking.CanTransition(b.Status, booking.StatusCompleted) || b.EndTime.After(now) {
		return booking.ErrInvalidTransition
	}
	return nil
}
