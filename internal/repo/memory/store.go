package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/lifecycle"
)

// Store is an in-process lifecycle.Store. A single mutex held for the whole
// unit gives serializable semantics; writes are applied on a copy and only
// published when the unit succeeds.
type Store struct {
	mu        sync.Mutex
	users     map[string]user.User
	resources map[string]resource.Resource
	bookings  map[string]booking.Booking
	jobs      []job.Job

	failInserts int
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]user.User),
		resources: make(map[string]resource.Resource),
		bookings:  make(map[string]booking.Booking),
	}
}

func (s *Store) PutUser(u user.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *Store) PutResource(r resource.Resource) {
	s.mu.Lock()
	s.resources[r.ID] = r
	s.mu.Unlock()
}

func (s *Store) PutBooking(b booking.Booking) {
	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()
}

func (s *Store) Booking(id string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Bookings returns every booking ordered by start time.
func (s *Store) Bookings() []booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedBookings(s.bookings)
}

func (s *Store) Jobs() []job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]job.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// FailNextInserts makes the next n booking inserts report a concurrent write,
// the way an exclusion constraint violation surfaces from PostgreSQL.
func (s *Store) FailNextInserts(n int) {
	s.mu.Lock()
	s.failInserts = n
	s.mu.Unlock()
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx lifecycle.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:        s,
		bookings: make(map[string]booking.Booking, len(s.bookings)),
		jobs:     append([]job.Job(nil), s.jobs...),
	}
	for id, b := range s.bookings {
		tx.bookings[id] = b
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.bookings = tx.bookings
	s.jobs = tx.jobs
	return nil
}

func (s *Store) HasConflict(_ context.Context, q booking.ConflictQuery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return booking.HasConflict(sortedBookings(s.bookings), q), nil
}

type memTx struct {
	s        *Store
	bookings map[string]booking.Booking
	jobs     []job.Job
}

func (t *memTx) LockResource(_ context.Context, resourceID string) (resource.Resource, error) {
	r, ok := t.s.resources[resourceID]
	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}
	return r, nil
}

func (t *memTx) GetUser(_ context.Context, id string) (user.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (t *memTx) HasConflict(_ context.Context, q booking.ConflictQuery) (bool, error) {
	return booking.HasConflict(sortedBookings(t.bookings), q), nil
}

func (t *memTx) InsertBooking(_ context.Context, b booking.Booking) error {
	if t.s.failInserts > 0 {
		t.s.failInserts--
		return fmt.Errorf("%w: simulated exclusion violation", booking.ErrWriteConflict)
	}

	// mirror the storage exclusion constraint on active bookings
	if booking.HasConflict(sortedBookings(t.bookings), booking.ConflictQuery{ResourceID: b.ResourceID, Interval: b.Interval()}) {
		return fmt.Errorf("%w: overlapping active booking", booking.ErrWriteConflict)
	}

	t.bookings[b.ID] = b
	return nil
}

func (t *memTx) GetBookingForUpdate(_ context.Context, id string) (booking.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

func (t *memTx) UpdateBookingStatus(_ context.Context, id string, status booking.Status, at time.Time) (booking.Booking, error) {
	b, ok := t.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = at
	t.bookings[id] = b
	return b, nil
}

func (t *memTx) EnqueueJob(_ context.Context, req job.CreateRequest) error {
	if req.IdempotencyKey != nil {
		for _, j := range t.jobs {
			if j.IdempotencyKey != nil && *j.IdempotencyKey == *req.IdempotencyKey {
				return nil
			}
		}
	}
	t.jobs = append(t.jobs, job.New(req))
	return nil
}

func sortedBookings(m map[string]booking.Booking) []booking.Booking {
	out := make([]booking.Booking, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
