package lifecycle

import (
	"context"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
)

// Tx is the set of reads and writes a booking mutation needs inside one
// atomic unit. Implementations must make LockResource serialize concurrent
// units touching the same resource.
type Tx interface {
	LockResource(ctx context.Context, resourceID string) (resource.Resource, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	HasConflict(ctx context.Context, q booking.ConflictQuery) (bool, error)
	InsertBooking(ctx context.Context, b booking.Booking) error
	GetBookingForUpdate(ctx context.Context, id string) (booking.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status booking.Status, at time.Time) (booking.Booking, error)
	EnqueueJob(ctx context.Context, req job.CreateRequest) error
}

type Store interface {
	// InTx runs fn atomically: either everything fn wrote is committed or
	// nothing is.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	HasConflict(ctx context.Context, q booking.ConflictQuery) (bool, error)
}

// OutcomeRecorder receives one observation per lifecycle operation.
type OutcomeRecorder interface {
	ObserveBookingOp(op, outcome string)
}
