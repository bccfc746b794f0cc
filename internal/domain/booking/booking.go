package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("booking not found")
	ErrInvalidInterval     = errors.New("start time must be before end time")
	ErrStartInPast         = errors.New("cannot book a slot that has already started")
	ErrConflict            = errors.New("time slot conflicts with an existing booking")
	ErrResourceUnavailable = errors.New("resource is not available for booking")
	ErrForbidden           = errors.New("not allowed to perform this action")
	ErrInvalidTransition   = errors.New("invalid booking status transition")
	ErrTooLate             = errors.New("booking has already started")

	// ErrWriteConflict marks a storage-level race (unique, exclusion or
	// serialization failure) that is worth one retry of the whole unit.
	ErrWriteConflict = errors.New("concurrent booking write")
)

type Booking struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ResourceID string    `json:"resourceId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Status     Status    `json:"status"`
	Purpose    string    `json:"purpose,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) DurationHours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

// IsActive: confirmed and now within [start, end].
func (b Booking) IsActive(now time.Time) bool {
	return b.Status == StatusConfirmed && !now.Before(b.StartTime) && !now.After(b.EndTime)
}

func (b Booking) IsUpcoming(now time.Time) bool {
	return b.Status == StatusConfirmed && b.StartTime.After(now)
}

func (b Booking) IsPast(now time.Time) bool {
	return b.EndTime.Before(now)
}

func (b Booking) CanBeCancelled(now time.Time) bool {
	return b.Status.IsActive() && b.StartTime.After(now)
}

// EffectiveStatus reports completed for confirmed bookings whose interval has
// elapsed, even before the completion sweep has persisted it.
func (b Booking) EffectiveStatus(now time.Time) Status {
	if b.Status == StatusConfirmed && !b.EndTime.After(now) {
		return StatusCompleted
	}
	return b.Status
}

// View is the API representation with derived predicates resolved at read time.
type View struct {
	Booking
	EffectiveStatus Status  `json:"effectiveStatus"`
	DurationHours   float64 `json:"durationHours"`
	IsActive        bool    `json:"isActive"`
	IsUpcoming      bool    `json:"isUpcoming"`
	IsPast          bool    `json:"isPast"`
	CanBeCancelled  bool    `json:"canBeCancelled"`
}

func (b Booking) ViewAt(now time.Time) View {
	return View{
		Booking:         b,
		EffectiveStatus: b.EffectiveStatus(now),
		DurationHours:   b.DurationHours(),
		IsActive:        b.IsActive(now),
		IsUpcoming:      b.IsUpcoming(now),
		IsPast:          b.IsPast(now),
		CanBeCancelled:  b.CanBeCancelled(now),
	}
}

func ViewsAt(items []Booking, now time.Time) []View {
	out := make([]View, 0, len(items))
	for _, b := range items {
		out = append(out, b.ViewAt(now))
	}
	return out
}

// FeedEntry is what the calendar feed exposes for a confirmed booking.
type FeedEntry struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Purpose   string    `json:"purpose,omitempty"`
}

type CreateRequest struct {
	ResourceID string    `json:"resourceId" binding:"required,uuid"`
	StartTime  time.Time `json:"startTime" binding:"required"`
	EndTime    time.Time `json:"endTime" binding:"required"`
	Purpose    string    `json:"purpose" binding:"omitempty,max=1000"`
}

type StatusRequest struct {
	Status Status `json:"status" binding:"required,bookingstatus"`
}

func New(req CreateRequest, userID string, now time.Time) Booking {
	return Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResourceID: req.ResourceID,
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		Status:     StatusPending,
		Purpose:    req.Purpose,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
