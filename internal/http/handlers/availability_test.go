package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/http/handlers"
	"github.com/geocoder89/campushub/internal/lifecycle"
	"github.com/geocoder89/campushub/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newAvailabilityRouter(store *memory.Store, resources *fakeResourcesRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewAvailabilityHandler(lifecycle.NewManager(store), resources)

	r := gin.New()
	r.GET("/resources/:id/availability", h.Check)
	return r
}

func availabilityPath(id string, start, end time.Time) string {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	return "/resources/" + id + "/availability?" + q.Encode()
}

func TestAvailability_Check(t *testing.T) {
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	store := memory.NewStore()
	store.PutBooking(booking.Booking{
		ID:         uuid.NewString(),
		ResourceID: roomID,
		UserID:     uuid.NewString(),
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		Status:     booking.StatusConfirmed,
	})
	store.PutBooking(booking.Booking{
		ID:         uuid.NewString(),
		ResourceID: roomID,
		UserID:     uuid.NewString(),
		StartTime:  start.Add(4 * time.Hour),
		EndTime:    start.Add(5 * time.Hour),
		Status:     booking.StatusCancelled,
	})

	closed := testRoom
	closed.ID = uuid.NewString()
	closed.IsAvailable = false

	resources := &fakeResourcesRepo{getFn: func(_ context.Context, id string) (resource.Resource, error) {
		switch id {
		case roomID:
			return testRoom, nil
		case closed.ID:
			return closed, nil
		}
		return resource.Resource{}, resource.ErrNotFound
	}}
	r := newAvailabilityRouter(store, resources)

	tests := []struct {
		name         string
		id           string
		from, to     time.Time
		wantConflict bool
		wantBookable bool
	}{
		{"overlap", roomID, start.Add(time.Hour), start.Add(3 * time.Hour), true, false},
		{"touching end", roomID, start.Add(2 * time.Hour), start.Add(3 * time.Hour), false, true},
		{"over cancelled", roomID, start.Add(4 * time.Hour), start.Add(5 * time.Hour), false, true},
		{"in the past", roomID, start.Add(-96 * time.Hour), start.Add(-95 * time.Hour), false, false},
		{"unavailable resource", closed.ID, start.Add(2 * time.Hour), start.Add(3 * time.Hour), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, availabilityPath(tt.id, tt.from, tt.to), nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}

			var body struct {
				Conflict bool `json:"conflict"`
				Bookable bool `json:"bookable"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Conflict != tt.wantConflict || body.Bookable != tt.wantBookable {
				t.Fatalf("got conflict=%v bookable=%v, want %v/%v", body.Conflict, body.Bookable, tt.wantConflict, tt.wantBookable)
			}
		})
	}
}

func TestAvailability_BadInput(t *testing.T) {
	resources := &fakeResourcesRepo{getFn: func(context.Context, string) (resource.Resource, error) {
		return testRoom, nil
	}}
	r := newAvailabilityRouter(memory.NewStore(), resources)
	start := time.Now().UTC().Add(24 * time.Hour)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing start", "/resources/" + roomID + "/availability?end=" + url.QueryEscape(start.Format(time.RFC3339)), http.StatusBadRequest},
		{"bad id", availabilityPath("not-a-uuid", start, start.Add(time.Hour)), http.StatusBadRequest},
		{"reversed interval", availabilityPath(roomID, start, start.Add(-time.Hour)), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodGet, tt.path, nil); w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestAvailability_UnknownResource(t *testing.T) {
	r := newAvailabilityRouter(memory.NewStore(), &fakeResourcesRepo{})
	start := time.Now().UTC().Add(24 * time.Hour)

	w := doJSON(t, r, http.MethodGet, availabilityPath(uuid.NewString(), start, start.Add(time.Hour)), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

