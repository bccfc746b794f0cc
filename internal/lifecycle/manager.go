package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/jobs"
	"github.com/geocoder89/campushub/internal/policy"
)

const maxAttempts = 2

type Manager struct {
	store   Store
	now     func() time.Time
	log     *slog.Logger
	metrics OutcomeRecorder
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func WithMetrics(rec OutcomeRecorder) Option {
	return func(m *Manager) { m.metrics = rec }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HasConflict reports whether an active booking (or one in statuses, when
// given) on resourceID overlaps [start, end).
func (m *Manager) HasConflict(ctx context.Context, resourceID string, start, end time.Time, statuses ...booking.Status) (bool, error) {
	iv, err := booking.NewInterval(start, end)
	if err != nil {
		return false, err
	}

	return m.store.HasConflict(ctx, booking.ConflictQuery{
		ResourceID: resourceID,
		Interval:   iv,
		Statuses:   statuses,
	})
}

// Create inserts a pending booking after the availability and conflict checks,
// all inside one unit of work together with the owner notification.
func (m *Manager) Create(ctx context.Context, actor policy.Actor, req booking.CreateRequest) (created booking.Booking, err error) {
	defer func() { m.observe("create", err) }()

	if !policy.CanBook(actor) {
		return booking.Booking{}, booking.ErrForbidden
	}

	iv, err := booking.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return booking.Booking{}, err
	}

	now := m.now()
	if !iv.Start.After(now) {
		return booking.Booking{}, booking.ErrStartInPast
	}

	err = m.inTxWithRetry(ctx, "create", func(ctx context.Context, tx Tx) error {
		res, err := tx.LockResource(ctx, req.ResourceID)
		if err != nil {
			return err
		}

		if !res.IsAvailable {
			return booking.ErrResourceUnavailable
		}

		conflict, err := tx.HasConflict(ctx, booking.ConflictQuery{
			ResourceID: res.ID,
			Interval:   iv,
			Statuses:   booking.ActiveStatuses,
		})
		if err != nil {
			return err
		}
		if conflict {
			return booking.ErrConflict
		}

		b := booking.New(req, actor.ID, now)
		b.StartTime, b.EndTime = iv.Start, iv.End

		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}

		owner, err := tx.GetUser(ctx, res.OwnerID)
		if err != nil {
			return err
		}

		if err := m.enqueue(ctx, tx, jobs.TypeBookingRequested, "booking:requested:"+b.ID, b, res, owner, actor.ID); err != nil {
			return err
		}

		created = b
		return nil
	})

	if err != nil {
		return booking.Booking{}, err
	}
	return created, nil
}

// Confirm approves a pending booking. Another overlapping request may have
// been confirmed first, so confirmed bookings are re-checked under lock.
func (m *Manager) Confirm(ctx context.Context, bookingID string, actor policy.Actor) (booking.Booking, error) {
	return m.transition(ctx, "confirm", bookingID, actor, func(ctx context.Context, tx Tx, b booking.Booking, r resource.Resource, _ time.Time) (booking.Status, error) {
		if err := decideConfirm(actor, b, r); err != nil {
			return "", err
		}

		conflict, err := tx.HasConflict(ctx, booking.ConflictQuery{
			ResourceID: b.ResourceID,
			Interval:   b.Interval(),
			Statuses:   []booking.Status{booking.StatusConfirmed},
			ExcludeID:  b.ID,
		})
		if err != nil {
			return "", err
		}
		if conflict {
			return "", booking.ErrConflict
		}
		return booking.StatusConfirmed, nil
	})
}

// Reject turns down a pending request. Unlike Cancel it has no start-time
// cutoff, so stale requests can always be cleared by a decider.
func (m *Manager) Reject(ctx context.Context, bookingID string, actor policy.Actor) (booking.Booking, error) {
	return m.transition(ctx, "reject", bookingID, actor, rejectStep(actor))
}

func (m *Manager) Cancel(ctx context.Context, bookingID string, actor policy.Actor) (booking.Booking, error) {
	return m.transition(ctx, "cancel", bookingID, actor, cancelStep(actor))
}

func rejectStep(actor policy.Actor) decideFunc {
	return func(_ context.Context, _ Tx, b booking.Booking, r resource.Resource, _ time.Time) (booking.Status, error) {
		if err := decideReject(actor, b, r); err != nil {
			return "", err
		}
		return booking.StatusCancelled, nil
	}
}

func cancelStep(actor policy.Actor) decideFunc {
	return func(_ context.Context, _ Tx, b booking.Booking, _ resource.Resource, now time.Time) (booking.Status, error) {
		if err := decideCancel(actor, b, now); err != nil {
			return "", err
		}
		return booking.StatusCancelled, nil
	}
}

func (m *Manager) Complete(ctx context.Context, bookingID string, actor policy.Actor) (booking.Booking, error) {
	return m.transition(ctx, "complete", bookingID, actor, func(_ context.Context, _ Tx, b booking.Booking, r resource.Resource, now time.Time) (booking.Status, error) {
		if err := decideComplete(actor, b, r, now); err != nil {
			return "", err
		}
		return booking.StatusCompleted, nil
	})
}

// SetStatus dispatches a requested target status to the matching operation.
// Cancelling a pending request as its decider (owning staff or admin) is a
// reject; otherwise the booker or an admin cancels.
func (m *Manager) SetStatus(ctx context.Context, bookingID string, to booking.Status, actor policy.Actor) (booking.Booking, error) {
	switch to {
	case booking.StatusConfirmed:
		return m.Confirm(ctx, bookingID, actor)
	case booking.StatusCompleted:
		return m.Complete(ctx, bookingID, actor)
	case booking.StatusCancelled:
		reject, cancel := rejectStep(actor), cancelStep(actor)
		return m.transition(ctx, "set_cancelled", bookingID, actor, func(ctx context.Context, tx Tx, b booking.Booking, r resource.Resource, now time.Time) (booking.Status, error) {
			if b.Status == booking.StatusPending && policy.CanDecideBooking(actor, r) {
				return reject(ctx, tx, b, r, now)
			}
			if policy.CanCancelBooking(actor, b) {
				return cancel(ctx, tx, b, r, now)
			}
			return reject(ctx, tx, b, r, now)
		})
	default:
		// nothing transitions into pending
		return booking.Booking{}, booking.ErrInvalidTransition
	}
}

type decideFunc func(ctx context.Context, tx Tx, b booking.Booking, r resource.Resource, now time.Time) (booking.Status, error)

func (m *Manager) transition(ctx context.Context, op, bookingID string, actor policy.Actor, decide decideFunc) (updated booking.Booking, err error) {
	defer func() { m.observe(op, err) }()

	if !actor.Authenticated() {
		return booking.Booking{}, booking.ErrForbidden
	}

	err = m.inTxWithRetry(ctx, op, func(ctx context.Context, tx Tx) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		res, err := tx.LockResource(ctx, b.ResourceID)
		if err != nil {
			return err
		}

		now := m.now()

		to, err := decide(ctx, tx, b, res, now)
		if err != nil {
			return err
		}

		u, err := tx.UpdateBookingStatus(ctx, b.ID, to, now)
		if err != nil {
			return err
		}

		booker, err := tx.GetUser(ctx, u.UserID)
		if err != nil {
			return err
		}

		key := "booking:status:" + u.ID + ":" + string(u.Status)
		if err := m.enqueue(ctx, tx, jobs.TypeBookingStatusChanged, key, u, res, booker, actor.ID); err != nil {
			return err
		}

		updated = u
		return nil
	})

	if err != nil {
		return booking.Booking{}, err
	}
	return updated, nil
}

// inTxWithRetry re-runs the whole unit once when storage reports a
// concurrent write; a second failure surfaces as a plain conflict.
func (m *Manager) inTxWithRetry(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = m.store.InTx(ctx, fn)
		if !errors.Is(err, booking.ErrWriteConflict) {
			return err
		}
		m.log.WarnContext(ctx, "booking write conflict", "op", op, "attempt", attempt, "err", err)
	}

	return booking.ErrConflict
}

func (m *Manager) enqueue(ctx context.Context, tx Tx, jobType, key string, b booking.Booking, r resource.Resource, recipient user.User, actorID string) error {
	raw, err := jobs.EncodePayload(jobType, jobs.BookingNotificationPayload{
		BookingID:      b.ID,
		ResourceID:     r.ID,
		ResourceName:   r.Name,
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.FullName(),
		Status:         string(b.Status),
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		ActorID:        actorID,
		RequestedAt:    m.now(),
	})
	if err != nil {
		return err
	}

	bookingID := b.ID
	return tx.EnqueueJob(ctx, job.CreateRequest{
		Type:           jobType,
		Payload:        raw,
		RunAt:          m.now(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
		BookingID:      &bookingID,
	})
}

func (m *Manager) observe(op string, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveBookingOp(op, Outcome(err))
}

// Outcome classifies a lifecycle error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, booking.ErrConflict):
		return "conflict"
	case errors.Is(err, booking.ErrResourceUnavailable):
		return "unavailable"
	case errors.Is(err, booking.ErrForbidden):
		return "forbidden"
	case errors.Is(err, booking.ErrTooLate):
		return "too_late"
	case errors.Is(err, booking.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, booking.ErrInvalidInterval), errors.Is(err, booking.ErrStartInPast):
		return "invalid"
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, resource.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
