package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/handlers"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMessages_ThreadAccess(t *testing.T) {
	bookerID := uuid.NewString()
	b := booking.Booking{ID: uuid.NewString(), UserID: bookerID, ResourceID: roomID, Status: booking.StatusPending,
		StartTime: time.Now().UTC().Add(time.Hour), EndTime: time.Now().UTC().Add(2 * time.Hour)}

	bookings := &fakeBookingsRepo{getFn: func(context.Context, string) (booking.Booking, error) { return b, nil }}
	resources := &fakeResourcesRepo{getFn: func(context.Context, string) (resource.Resource, error) { return testRoom, nil }}
	repo := &fakeMessagesRepo{}
	h := handlers.NewMessagesHandler(repo, bookings, resources)

	route := func(a policy.Actor) *gin.Engine {
		r := gin.New()
		r.Use(asActor(a))
		r.GET("/bookings/:id/messages", h.List)
		r.POST("/bookings/:id/messages", h.Create)
		return r
	}

	booker := route(policy.Actor{ID: bookerID, Role: user.RoleStudent})
	owner := route(policy.Actor{ID: ownerID, Role: user.RoleStaff})
	stranger := route(policy.Actor{ID: uuid.NewString(), Role: user.RoleStudent})
	path := "/bookings/" + b.ID + "/messages"

	if w := doJSON(t, booker, http.MethodPost, path, map[string]string{"content": "Can we start at 10?"}); w.Code != http.StatusCreated {
		t.Fatalf("booker post: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, owner, http.MethodPost, path, map[string]string{"content": "Sure"}); w.Code != http.StatusCreated {
		t.Fatalf("owner post: %d", w.Code)
	}
	if w := doJSON(t, stranger, http.MethodPost, path, map[string]string{"content": "hi"}); w.Code != http.StatusForbidden {
		t.Fatalf("stranger post: %d", w.Code)
	}
	if w := doJSON(t, booker, http.MethodPost, path, map[string]string{"content": "   "}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank post: %d", w.Code)
	}

	w := doJSON(t, owner, http.MethodGet, path, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Count != 2 {
		t.Fatalf("list body %s", w.Body.String())
	}
	if repo.created[0].SenderID != bookerID || repo.created[1].SenderID != ownerID {
		t.Fatalf("senders not taken from the actor")
	}

	if w := doJSON(t, stranger, http.MethodGet, path, nil); w.Code != http.StatusForbidden {
		t.Fatalf("stranger list: %d", w.Code)
	}
}

func TestReviews(t *testing.T) {
	resources := &fakeResourcesRepo{getFn: func(context.Context, string) (resource.Resource, error) { return testRoom, nil }}
	reviewed := map[string]bool{}
	repo := &fakeReviewsRepo{
		createFn: func(_ context.Context, rv review.Review) (review.Review, error) {
			key := rv.UserID + "/" + rv.ResourceID
			if reviewed[key] {
				return review.Review{}, review.ErrAlreadyReviewed
			}
			reviewed[key] = true
			return rv, nil
		},
	}
	h := handlers.NewReviewsHandler(repo, resources)

	student := policy.Actor{ID: uuid.NewString(), Role: user.RoleStudent}
	r := gin.New()
	r.Use(asActor(student))
	r.GET("/resources/:id/reviews", h.List)
	r.POST("/resources/:id/reviews", h.Create)

	path := "/resources/" + roomID + "/reviews"

	if w := doJSON(t, r, http.MethodPost, path, map[string]any{"rating": 6}); w.Code != http.StatusBadRequest {
		t.Fatalf("rating 6: %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, path, map[string]any{"rating": 5, "comment": "Quiet and bright"}); w.Code != http.StatusCreated {
		t.Fatalf("first review: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, path, map[string]any{"rating": 3})
	if w.Code != http.StatusConflict || decodeError(t, w).Error.Code != "already_reviewed" {
		t.Fatalf("second review: %d %s", w.Code, w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, path, nil); w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
}

func TestReviews_AnonymousCannotPost(t *testing.T) {
	resources := &fakeResourcesRepo{getFn: func(context.Context, string) (resource.Resource, error) { return testRoom, nil }}
	h := handlers.NewReviewsHandler(&fakeReviewsRepo{}, resources)

	r := gin.New()
	r.POST("/resources/:id/reviews", h.Create)

	if w := doJSON(t, r, http.MethodPost, "/resources/"+roomID+"/reviews", map[string]any{"rating": 4}); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}
