package policy

import (
	"testing"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
)

var (
	student = Actor{ID: "stu", Role: user.RoleStudent}
	owner   = Actor{ID: "own", Role: user.RoleStaff}
	staff   = Actor{ID: "stf", Role: user.RoleStaff}
	admin   = Actor{ID: "adm", Role: user.RoleAdmin}
	anon    = Actor{}
)

func TestResourcePolicies(t *testing.T) {
	r := resource.Resource{ID: "r1", OwnerID: owner.ID}

	tests := []struct {
		name       string
		actor      Actor
		wantCreate bool
		wantEdit   bool
	}{
		{"anonymous", anon, false, false},
		{"student", student, false, false},
		{"staff owner", owner, true, true},
		{"staff non-owner", staff, true, false},
		{"admin", admin, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCreateResource(tt.actor); got != tt.wantCreate {
				t.Fatalf("CanCreateResource = %v, want %v", got, tt.wantCreate)
			}
			if got := CanEditResource(tt.actor, r); got != tt.wantEdit {
				t.Fatalf("CanEditResource = %v, want %v", got, tt.wantEdit)
			}
			if got := CanDecideBooking(tt.actor, r); got != tt.wantEdit {
				t.Fatalf("CanDecideBooking = %v, want %v", got, tt.wantEdit)
			}
		})
	}
}

func TestBookingPolicies(t *testing.T) {
	r := resource.Resource{ID: "r1", OwnerID: owner.ID}
	b := booking.Booking{ID: "b1", ResourceID: r.ID, UserID: student.ID}

	if !CanCancelBooking(student, b) {
		t.Fatalf("booker should be able to cancel own booking")
	}
	if CanCancelBooking(owner, b) {
		t.Fatalf("resource owner cancels through reject, not cancel")
	}
	if !CanCancelBooking(admin, b) {
		t.Fatalf("admin may cancel any booking")
	}

	other := Actor{ID: "other", Role: user.RoleStudent}
	if CanAccessThread(other, b, r) {
		t.Fatalf("unrelated student must not read the thread")
	}
	if !CanAccessThread(student, b, r) || !CanAccessThread(owner, b, r) || !CanAccessThread(admin, b, r) {
		t.Fatalf("booker, owner and admin should access the thread")
	}
	if CanAccessThread(staff, b, r) {
		t.Fatalf("staff not owning the resource must not read the thread")
	}

	if CanViewAllPending(staff) || !CanViewAllPending(admin) {
		t.Fatalf("only admins view all pending bookings")
	}
	if CanBook(anon) || !CanBook(student) {
		t.Fatalf("booking requires authentication")
	}
}

func TestUnknownRoleIsUnauthenticated(t *testing.T) {
	a := Actor{ID: "x", Role: user.Role("root")}
	if a.Authenticated() || CanCreateResource(a) || CanReview(a) {
		t.Fatalf("unknown roles must be denied")
	}
}
