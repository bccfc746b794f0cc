package postgres

import (
	"context"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/message"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMessagesRepo(pool *pgxpool.Pool, prom *observability.Prom) *MessagesRepo {
	return &MessagesRepo{pool: pool, prom: prom}
}

func (r *MessagesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MessagesRepo) Create(ctx context.Context, m message.Message) (message.Message, error) {
	err := r.observe("messages.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO messages (id, booking_id, sender_id, content, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			m.ID, m.BookingID, m.SenderID, m.Content, m.CreatedAt,
		)
		return err
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return message.Message{}, booking.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

// ListByBooking returns the thread in posting order.
func (r *MessagesRepo) ListByBooking(ctx context.Context, bookingID string) ([]message.Message, error) {
	var rows pgx.Rows

	err := r.observe("messages.list_by_booking", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `
			SELECT id, booking_id, sender_id, content, created_at
			FROM messages
			WHERE booking_id = $1
			ORDER BY created_at ASC, id ASC`, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]message.Message, 0)
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
