package postgres

import (
	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const (
	userColumns = `id, email, password_hash, first_name, last_name, role, is_active,
		created_at, updated_at, last_login_at`

	resourceColumns = `id, name, description, resource_type, location, capacity,
		hourly_rate, is_available, owner_id, created_at, updated_at`

	bookingColumns = `id, user_id, resource_id, start_time, end_time, status, purpose,
		created_at, updated_at`

	jobColumns = `id, type, payload, status, attempts, max_attempts, run_at,
		locked_at, locked_by, last_error, idempotency_key, booking_id,
		created_at, updated_at`
)

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var role string

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt,
	)
	u.Role = user.Role(role)
	return u, err
}

func scanResource(row pgx.Row) (resource.Resource, error) {
	var r resource.Resource
	var typ string

	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &typ, &r.Location, &r.Capacity,
		&r.HourlyRate, &r.IsAvailable, &r.OwnerID, &r.CreatedAt, &r.UpdatedAt,
	)
	r.Type = resource.Type(typ)
	return r, err
}

func scanBooking(row pgx.Row) (booking.Booking, error) {
	var b booking.Booking
	var status string

	err := row.Scan(
		&b.ID, &b.UserID, &b.ResourceID, &b.StartTime, &b.EndTime, &status, &b.Purpose,
		&b.CreatedAt, &b.UpdatedAt,
	)
	b.Status = booking.Status(status)
	b.StartTime, b.EndTime = b.StartTime.UTC(), b.EndTime.UTC()
	return b, err
}

func scanJob(row pgx.Row) (job.Job, error) {
	var j job.Job
	var status string

	err := row.Scan(
		&j.ID, &j.Type, &j.Payload, &status, &j.Attempts, &j.MaxAttempts, &j.RunAt,
		&j.LockedAt, &j.LockedBy, &j.LastError, &j.IdempotencyKey, &j.BookingID,
		&j.CreatedAt, &j.UpdatedAt,
	)
	j.Status = job.Status(status)
	return j, err
}

func collectBookings(rows pgx.Rows) ([]booking.Booking, error) {
	defer rows.Close()

	out := make([]booking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func collectResources(rows pgx.Rows) ([]resource.Resource, error) {
	defer rows.Close()

	out := make([]resource.Resource, 0)
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
