package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingsRepo is the read side of bookings plus the completion sweep.
// Lifecycle writes go through BookingStore.
type BookingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBookingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *BookingsRepo {
	return &BookingsRepo{pool: pool, prom: prom}
}

func (r *BookingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	var b booking.Booking

	err := r.observe("bookings.get_by_id", func() error {
		var err error
		b, err = scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return booking.Booking{}, booking.ErrNotFound
		}
		return booking.Booking{}, err
	}
	return b, nil
}

func (r *BookingsRepo) list(ctx context.Context, op, sql string, args ...any) ([]booking.Booking, error) {
	var rows pgx.Rows

	err := r.observe(op, func() error {
		var err error
		rows, err = r.pool.Query(ctx, sql, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListByUser returns the user's bookings, newest start first.
func (r *BookingsRepo) ListByUser(ctx context.Context, userID string) ([]booking.Booking, error) {
	return r.list(ctx, "bookings.list_by_user", `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1
		ORDER BY start_time DESC, id ASC`, userID)
}

// ListPending returns pending requests, oldest first. A non-nil ownerID
// restricts them to resources that user owns.
func (r *BookingsRepo) ListPending(ctx context.Context, ownerID *string) ([]booking.Booking, error) {
	if ownerID == nil {
		return r.list(ctx, "bookings.list_pending", `
			SELECT `+bookingColumns+`
			FROM bookings
			WHERE status = 'pending'
			ORDER BY created_at ASC, id ASC`)
	}

	return r.list(ctx, "bookings.list_pending_owned", `
		SELECT b.id, b.user_id, b.resource_id, b.start_time, b.end_time, b.status, b.purpose,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN resources r ON r.id = b.resource_id
		WHERE b.status = 'pending' AND r.owner_id = $1
		ORDER BY b.created_at ASC, b.id ASC`, *ownerID)
}

// ConfirmedFeed returns every confirmed booking of a resource by start time.
func (r *BookingsRepo) ConfirmedFeed(ctx context.Context, resourceID string) ([]booking.Booking, error) {
	return r.list(ctx, "bookings.confirmed_feed", `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE resource_id = $1 AND status = 'confirmed'
		ORDER BY start_time ASC, id ASC`, resourceID)
}

func (r *BookingsRepo) UpcomingForResource(ctx context.Context, resourceID string, now time.Time, limit int) ([]booking.Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.list(ctx, "bookings.upcoming_for_resource", `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE resource_id = $1 AND status = 'confirmed' AND start_time > $2
		ORDER BY start_time ASC, id ASC
		LIMIT $3`, resourceID, now, limit)
}

// IsOccupied reports whether a confirmed booking covers now.
func (r *BookingsRepo) IsOccupied(ctx context.Context, resourceID string, now time.Time) (bool, error) {
	var occupied bool

	err := r.observe("bookings.is_occupied", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM bookings
				WHERE resource_id = $1
				  AND status = 'confirmed'
				  AND start_time <= $2
				  AND end_time > $2
			)`, resourceID, now).Scan(&occupied)
	})

	return occupied, err
}

// CompleteElapsed persists confirmed -> completed for every booking whose
// interval ended at or before now.
func (r *BookingsRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	var n int64

	err := r.observe("bookings.complete_elapsed", func() error {
		tag, err := r.pool.Exec(ctx, `
			UPDATE bookings
			SET status = 'completed', updated_at = $1
			WHERE status = 'confirmed' AND end_time <= $1`, now)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})

	return n, err
}

func (r *BookingsRepo) CountByStatus(ctx context.Context) (map[booking.Status]int, error) {
	var rows pgx.Rows

	err := r.observe("bookings.count_by_status", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[booking.Status]int{}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[booking.Status(st)] = n
	}
	return out, rows.Err()
}
