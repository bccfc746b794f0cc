package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/campushub/internal/cache"
	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/geocoder89/campushub/internal/utils"
	"github.com/gin-gonic/gin"
)

const upcomingLimit = 5

type ResourcesRepo interface {
	Create(ctx context.Context, res resource.Resource) (resource.Resource, error)
	GetByID(ctx context.Context, id string) (resource.Resource, error)
	List(ctx context.Context, f resource.ListFilter) ([]resource.Resource, int, error)
	Update(ctx context.Context, id string, req resource.UpdateRequest) (resource.Resource, error)
	SetAvailability(ctx context.Context, id string, available bool) (resource.Resource, error)
}

// ResourceBookings is the read side the resource pages need.
type ResourceBookings interface {
	UpcomingForResource(ctx context.Context, resourceID string, now time.Time, limit int) ([]booking.Booking, error)
	IsOccupied(ctx context.Context, resourceID string, now time.Time) (bool, error)
	ConfirmedFeed(ctx context.Context, resourceID string) ([]booking.Booking, error)
}

type ReviewsReader interface {
	ListByResource(ctx context.Context, resourceID string) ([]review.Review, error)
	Summary(ctx context.Context, resourceID string) (review.Summary, error)
}

type ResourcesHandler struct {
	repo     ResourcesRepo
	bookings ResourceBookings
	reviews  ReviewsReader
	cache    cache.Store
	now      func() time.Time
}

// NewResourcesHandler accepts a nil cache store; listings are then always
// read from the repository.
func NewResourcesHandler(repo ResourcesRepo, bookings ResourceBookings, reviews ReviewsReader, c cache.Store) *ResourcesHandler {
	return &ResourcesHandler{
		repo:     repo,
		bookings: bookings,
		reviews:  reviews,
		cache:    c,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type resourceDetail struct {
	Resource      resource.Resource     `json:"resource"`
	Availability  resource.Availability `json:"availability"`
	Reviews       []review.Review       `json:"reviews"`
	ReviewSummary review.Summary        `json:"reviewSummary"`
	Upcoming      []booking.FeedEntry   `json:"upcomingBookings"`
}

// GET /resources?type=&search=&page=&perPage=
func (h *ResourcesHandler) List(ctx *gin.Context) {
	page, perPage, err := utils.ParsePage(ctx.Query("page"), ctx.Query("perPage"), resource.DefaultPerPage, resource.MaxPerPage)
	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return
	}

	f := resource.ListFilter{OnlyAvailable: true, Page: page, PerPage: perPage}

	if raw := strings.TrimSpace(ctx.Query("type")); raw != "" {
		t := resource.Type(strings.ToLower(raw))
		if !t.Valid() {
			RespondBadRequest(ctx, "type must be one of room, equipment, space", gin.H{"field": "type"})
			return
		}
		f.Type = &t
	}

	if s := strings.TrimSpace(ctx.Query("search")); s != "" {
		f.Search = &s
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	key := utils.BuildResourcesListCacheKey(f)

	if h.cache != nil {
		var cached resource.Page
		hit, err := cache.GetJSON(cctx, h.cache, key, &cached)
		if err != nil {
			slog.WarnContext(cctx, "resource list cache read failed", "key", key, "err", err)
		}
		if hit {
			ctx.Header("X-Cache", "HIT")
			RespondJSONWithETag(ctx, http.StatusOK, cached)
			return
		}
	}

	items, total, err := h.repo.List(cctx, f)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list resources")
		return
	}

	out := resource.NewPage(items, f, total)

	if h.cache != nil {
		if err := cache.SetJSON(cctx, h.cache, key, out); err != nil {
			slog.WarnContext(cctx, "resource list cache write failed", "key", key, "err", err)
		}
		ctx.Header("X-Cache", "MISS")
	}

	RespondJSONWithETag(ctx, http.StatusOK, out)
}

// GET /resources/:id
func (h *ResourcesHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	res, err := h.repo.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return
	}

	now := h.now()

	occupied, err := h.bookings.IsOccupied(cctx, id, now)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return
	}

	upcoming, err := h.bookings.UpcomingForResource(cctx, id, now, upcomingLimit)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return
	}

	reviews, err := h.reviews.ListByResource(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return
	}

	summary, err := h.reviews.Summary(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return
	}

	ctx.JSON(http.StatusOK, resourceDetail{
		Resource:      res,
		Availability:  res.AvailabilityAt(occupied),
		Reviews:       reviews,
		ReviewSummary: summary,
		Upcoming:      feedEntries(upcoming),
	})
}

// GET /resources/:id/bookings is the public calendar feed of confirmed slots.
func (h *ResourcesHandler) Feed(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	if _, err := h.repo.GetByID(cctx, id); err != nil {
		RespondDomainError(ctx, err, "Could not load bookings")
		return
	}

	items, err := h.bookings.ConfirmedFeed(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not load bookings")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, feedEntries(items))
}

// POST /resources (staff and admin)
func (h *ResourcesHandler) Create(ctx *gin.Context) {
	actor := middlewares.ActorFromContext(ctx)
	if !policy.CanCreateResource(actor) {
		RespondForbidden(ctx, "Only staff can create resources")
		return
	}

	var req resource.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	created, err := h.repo.Create(cctx, resource.NewFromCreateRequest(req, actor.ID))
	if err != nil {
		RespondDomainError(ctx, err, "Could not create resource")
		return
	}

	h.invalidateListings(cctx)
	ctx.JSON(http.StatusCreated, created)
}

// PUT /resources/:id
func (h *ResourcesHandler) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req resource.UpdateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	if !h.authorizeEdit(ctx, cctx, id) {
		return
	}

	updated, err := h.repo.Update(cctx, id, req)
	if err != nil {
		RespondDomainError(ctx, err, "Could not update resource")
		return
	}

	h.invalidateListings(cctx)
	ctx.JSON(http.StatusOK, updated)
}

// PATCH /resources/:id/availability
func (h *ResourcesHandler) SetAvailability(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req resource.AvailabilityRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	if !h.authorizeEdit(ctx, cctx, id) {
		return
	}

	updated, err := h.repo.SetAvailability(cctx, id, *req.IsAvailable)
	if err != nil {
		RespondDomainError(ctx, err, "Could not update availability")
		return
	}

	h.invalidateListings(cctx)
	ctx.JSON(http.StatusOK, updated)
}

func (h *ResourcesHandler) authorizeEdit(ctx *gin.Context, cctx context.Context, id string) bool {
	res, err := h.repo.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch resource")
		return false
	}

	if !policy.CanEditResource(middlewares.ActorFromContext(ctx), res) {
		RespondForbidden(ctx, "You can only manage resources you own")
		return false
	}
	return true
}

// invalidateListings drops every cached page; a stale listing only lives
// until the cache TTL if this fails.
func (h *ResourcesHandler) invalidateListings(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeletePrefix(ctx, utils.ResourcesCachePrefix); err != nil {
		slog.WarnContext(ctx, "resource list cache invalidation failed", "err", err)
	}
}

func feedEntries(items []booking.Booking) []booking.FeedEntry {
	out := make([]booking.FeedEntry, 0, len(items))
	for _, b := range items {
		out = append(out, booking.FeedEntry{StartTime: b.StartTime, EndTime: b.EndTime, Purpose: b.Purpose})
	}
	return out
}
