// Package policy maps an actor and an action to allow/deny.
// Decisions are pure; callers fetch the resource or booking they concern.
package policy

import (
	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
)

// Actor is the authenticated identity of the current request.
type Actor struct {
	ID   string
	Role user.Role
}

func (a Actor) Authenticated() bool {
	return a.ID != "" && a.Role.Valid()
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == user.RoleAdmin
}

func CanCreateResource(a Actor) bool {
	return a.Authenticated() && a.Role.AtLeast(user.RoleStaff)
}

// CanEditResource: admins edit anything, staff only what they own.
func CanEditResource(a Actor, r resource.Resource) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Authenticated() && a.Role == user.RoleStaff && r.OwnerID == a.ID
}

// CanDecideBooking covers confirm, reject and complete on r's bookings.
func CanDecideBooking(a Actor, r resource.Resource) bool {
	return CanEditResource(a, r)
}

func CanViewAllPending(a Actor) bool {
	return a.IsAdmin()
}

func CanCancelBooking(a Actor, b booking.Booking) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Authenticated() && b.UserID == a.ID
}

func CanViewBooking(a Actor, b booking.Booking, r resource.Resource) bool {
	return CanAccessThread(a, b, r)
}

// CanAccessThread: the booker and whoever decides on the resource.
func CanAccessThread(a Actor, b booking.Booking, r resource.Resource) bool {
	if !a.Authenticated() {
		return false
	}
	return b.UserID == a.ID || CanDecideBooking(a, r)
}

func CanBook(a Actor) bool {
	return a.Authenticated()
}

func CanReview(a Actor) bool {
	return a.Authenticated()
}

func CanManageUsers(a Actor) bool {
	return a.IsAdmin()
}
