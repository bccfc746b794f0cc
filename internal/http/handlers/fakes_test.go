package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/actorctx"
	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/message"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

// asActor stands in for the auth middleware.
func asActor(a policy.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.Authenticated() {
			c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), a))
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return env
}

// Fake repository implementations of the handler interfaces

type fakeResourcesRepo struct {
	createFn   func(ctx context.Context, res resource.Resource) (resource.Resource, error)
	getFn      func(ctx context.Context, id string) (resource.Resource, error)
	listFn     func(ctx context.Context, f resource.ListFilter) ([]resource.Resource, int, error)
	updateFn   func(ctx context.Context, id string, req resource.UpdateRequest) (resource.Resource, error)
	setAvailFn func(ctx context.Context, id string, available bool) (resource.Resource, error)
	listAllFn  func(ctx context.Context) ([]resource.Resource, error)
	listCalls  int
}

func (f *fakeResourcesRepo) Create(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	if f.createFn != nil {
		return f.createFn(ctx, res)
	}
	return res, nil
}

func (f *fakeResourcesRepo) GetByID(ctx context.Context, id string) (resource.Resource, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return resource.Resource{}, resource.ErrNotFound
}

func (f *fakeResourcesRepo) List(ctx context.Context, filter resource.ListFilter) ([]resource.Resource, int, error) {
	f.listCalls++
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []resource.Resource{}, 0, nil
}

func (f *fakeResourcesRepo) Update(ctx context.Context, id string, req resource.UpdateRequest) (resource.Resource, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return resource.Resource{ID: id, Name: req.Name}, nil
}

func (f *fakeResourcesRepo) SetAvailability(ctx context.Context, id string, available bool) (resource.Resource, error) {
	if f.setAvailFn != nil {
		return f.setAvailFn(ctx, id, available)
	}
	return resource.Resource{ID: id, IsAvailable: available}, nil
}

func (f *fakeResourcesRepo) ListAll(ctx context.Context) ([]resource.Resource, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return []resource.Resource{}, nil
}

type fakeBookingsRepo struct {
	getFn      func(ctx context.Context, id string) (booking.Booking, error)
	byUserFn   func(ctx context.Context, userID string) ([]booking.Booking, error)
	pendingFn  func(ctx context.Context, ownerID *string) ([]booking.Booking, error)
	feedFn     func(ctx context.Context, resourceID string) ([]booking.Booking, error)
	upcomingFn func(ctx context.Context, resourceID string, now time.Time, limit int) ([]booking.Booking, error)
	occupiedFn func(ctx context.Context, resourceID string, now time.Time) (bool, error)
	countFn    func(ctx context.Context) (map[booking.Status]int, error)
}

func (f *fakeBookingsRepo) GetByID(ctx context.Context, id string) (booking.Booking, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (f *fakeBookingsRepo) ListByUser(ctx context.Context, userID string) ([]booking.Booking, error) {
	if f.byUserFn != nil {
		return f.byUserFn(ctx, userID)
	}
	return []booking.Booking{}, nil
}

func (f *fakeBookingsRepo) ListPending(ctx context.Context, ownerID *string) ([]booking.Booking, error) {
	if f.pendingFn != nil {
		return f.pendingFn(ctx, ownerID)
	}
	return []booking.Booking{}, nil
}

func (f *fakeBookingsRepo) ConfirmedFeed(ctx context.Context, resourceID string) ([]booking.Booking, error) {
	if f.feedFn != nil {
		return f.feedFn(ctx, resourceID)
	}
	return []booking.Booking{}, nil
}

func (f *fakeBookingsRepo) UpcomingForResource(ctx context.Context, resourceID string, now time.Time, limit int) ([]booking.Booking, error) {
	if f.upcomingFn != nil {
		return f.upcomingFn(ctx, resourceID, now, limit)
	}
	return []booking.Booking{}, nil
}

func (f *fakeBookingsRepo) IsOccupied(ctx context.Context, resourceID string, now time.Time) (bool, error) {
	if f.occupiedFn != nil {
		return f.occupiedFn(ctx, resourceID, now)
	}
	return false, nil
}

func (f *fakeBookingsRepo) CountByStatus(ctx context.Context) (map[booking.Status]int, error) {
	if f.countFn != nil {
		return f.countFn(ctx)
	}
	return map[booking.Status]int{}, nil
}

type fakeReviewsRepo struct {
	createFn  func(ctx context.Context, rv review.Review) (review.Review, error)
	listFn    func(ctx context.Context, resourceID string) ([]review.Review, error)
	summaryFn func(ctx context.Context, resourceID string) (review.Summary, error)
}

func (f *fakeReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rv)
	}
	return rv, nil
}

func (f *fakeReviewsRepo) ListByResource(ctx context.Context, resourceID string) ([]review.Review, error) {
	if f.listFn != nil {
		return f.listFn(ctx, resourceID)
	}
	return []review.Review{}, nil
}

func (f *fakeReviewsRepo) Summary(ctx context.Context, resourceID string) (review.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx, resourceID)
	}
	return review.Summary{}, nil
}

type fakeMessagesRepo struct {
	created []message.Message
}

func (f *fakeMessagesRepo) Create(_ context.Context, m message.Message) (message.Message, error) {
	f.created = append(f.created, m)
	return m, nil
}

func (f *fakeMessagesRepo) ListByBooking(_ context.Context, bookingID string) ([]message.Message, error) {
	out := []message.Message{}
	for _, m := range f.created {
		if m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	return out, nil
}
