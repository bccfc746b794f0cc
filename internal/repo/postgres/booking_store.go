package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/lifecycle"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingStore backs lifecycle.Manager. Every unit runs in a read committed
// transaction; the resource row lock serializes units on one resource.
type BookingStore struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

var _ lifecycle.Store = (*BookingStore)(nil)

func NewBookingStore(pool *pgxpool.Pool, prom *observability.Prom) *BookingStore {
	return &BookingStore{pool: pool, prom: prom}
}

func (s *BookingStore) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (s *BookingStore) InTx(ctx context.Context, fn func(ctx context.Context, tx lifecycle.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(ctx, &pgBookingTx{tx: tx, observe: s.observe}); err != nil {
		return asWriteConflict(err)
	}

	return asWriteConflict(tx.Commit(ctx))
}

func (s *BookingStore) HasConflict(ctx context.Context, q booking.ConflictQuery) (bool, error) {
	return hasConflict(ctx, s.pool, s.observe, "bookings.has_conflict", q)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func hasConflict(ctx context.Context, db querier, observe func(string, func() error) error, op string, q booking.ConflictQuery) (bool, error) {
	if err := q.Interval.Validate(); err != nil {
		return false, err
	}

	var exists bool

	// half-open overlap: existing.start < new.end AND existing.end > new.start
	err := observe(op, func() error {
		return db.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM bookings
				WHERE resource_id = $1
				  AND status = ANY($2)
				  AND start_time < $4
				  AND end_time > $3
				  AND id::text <> $5
			)`,
			q.ResourceID, booking.StatusStrings(q.StatusSet()), q.Interval.Start, q.Interval.End, q.ExcludeID,
		).Scan(&exists)
	})

	return exists, err
}

type pgBookingTx struct {
	tx      pgx.Tx
	observe func(op string, fn func() error) error
}

func (t *pgBookingTx) LockResource(ctx context.Context, resourceID string) (resource.Resource, error) {
	var r resource.Resource

	err := t.observe("bookings.tx.lock_resource", func() error {
		var err error
		r, err = scanResource(t.tx.QueryRow(ctx, `
			SELECT `+resourceColumns+`
			FROM resources
			WHERE id = $1
			FOR UPDATE`, resourceID))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return resource.Resource{}, resource.ErrNotFound
	}
	return r, err
}

func (t *pgBookingTx) GetUser(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := t.observe("bookings.tx.get_user", func() error {
		var err error
		u, err = scanUser(t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (t *pgBookingTx) HasConflict(ctx context.Context, q booking.ConflictQuery) (bool, error) {
	return hasConflict(ctx, t.tx, t.observe, "bookings.tx.has_conflict", q)
}

func (t *pgBookingTx) InsertBooking(ctx context.Context, b booking.Booking) error {
	err := t.observe("bookings.tx.insert", func() error {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO bookings (id, user_id, resource_id, start_time, end_time, status, purpose, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			b.ID, b.UserID, b.ResourceID, b.StartTime, b.EndTime, string(b.Status), b.Purpose, b.CreatedAt, b.UpdatedAt,
		)
		return err
	})

	if IsForeignKeyViolation(err) {
		return resource.ErrNotFound
	}
	return asWriteConflict(err)
}

func (t *pgBookingTx) GetBookingForUpdate(ctx context.Context, id string) (booking.Booking, error) {
	var b booking.Booking

	err := t.observe("bookings.tx.get_for_update", func() error {
		var err error
		b, err = scanBooking(t.tx.QueryRow(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings
			WHERE id = $1
			FOR UPDATE`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, err
}

func (t *pgBookingTx) UpdateBookingStatus(ctx context.Context, id string, status booking.Status, at time.Time) (booking.Booking, error) {
	var b booking.Booking

	err := t.observe("bookings.tx.update_status", func() error {
		var err error
		b, err = scanBooking(t.tx.QueryRow(ctx, `
			UPDATE bookings
			SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING `+bookingColumns, id, string(status), at))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, asWriteConflict(err)
}

func (t *pgBookingTx) EnqueueJob(ctx context.Context, req job.CreateRequest) error {
	_, err := insertJob(ctx, t.tx, t.observe, "jobs.create_tx", req)
	return err
}
