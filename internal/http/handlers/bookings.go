package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

// BookingManager is the lifecycle surface; every call carries the actor.
type BookingManager interface {
	Create(ctx context.Context, actor policy.Actor, req booking.CreateRequest) (booking.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor policy.Actor) (booking.Booking, error)
	SetStatus(ctx context.Context, bookingID string, to booking.Status, actor policy.Actor) (booking.Booking, error)
}

type BookingsReader interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]booking.Booking, error)
	ListPending(ctx context.Context, ownerID *string) ([]booking.Booking, error)
}

type BookingsHandler struct {
	manager   BookingManager
	bookings  BookingsReader
	resources ResourceGetter
	now       func() time.Time
}

func NewBookingsHandler(manager BookingManager, bookings BookingsReader, resources ResourceGetter) *BookingsHandler {
	return &BookingsHandler{
		manager:   manager,
		bookings:  bookings,
		resources: resources,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type bookingDetail struct {
	Booking  booking.View      `json:"booking"`
	Resource resource.Resource `json:"resource"`
}

// POST /bookings
func (h *BookingsHandler) Create(ctx *gin.Context) {
	var req booking.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	b, err := h.manager.Create(cctx, middlewares.ActorFromContext(ctx), req)
	if err != nil {
		RespondDomainError(ctx, err, "Could not create booking")
		return
	}

	ctx.Set(middlewares.CtxBookingID, b.ID)
	ctx.JSON(http.StatusCreated, b.ViewAt(h.now()))
}

// GET /bookings lists the caller's own bookings, newest slot first.
func (h *BookingsHandler) ListMine(ctx *gin.Context) {
	actor := middlewares.ActorFromContext(ctx)

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.bookings.ListByUser(cctx, actor.ID)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list bookings")
		return
	}

	views := booking.ViewsAt(items, h.now())
	ctx.JSON(http.StatusOK, gin.H{
		"items": views,
		"count": len(views),
	})
}

// GET /bookings/pending: admins see every pending request, staff only those
// on resources they own.
func (h *BookingsHandler) ListPending(ctx *gin.Context) {
	actor := middlewares.ActorFromContext(ctx)

	var owner *string
	if !policy.CanViewAllPending(actor) {
		if actor.Role != user.RoleStaff {
			RespondForbidden(ctx, "Only staff can review pending bookings")
			return
		}
		owner = &actor.ID
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	items, err := h.bookings.ListPending(cctx, owner)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list pending bookings")
		return
	}

	views := booking.ViewsAt(items, h.now())
	ctx.JSON(http.StatusOK, gin.H{
		"items": views,
		"count": len(views),
	})
}

// GET /bookings/:id
func (h *BookingsHandler) Get(ctx *gin.Context) {
	id, ok := bookingPathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	b, res, ok := loadBookingFor(ctx, cctx, h.bookings, h.resources, id, policy.CanViewBooking)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, bookingDetail{Booking: b.ViewAt(h.now()), Resource: res})
}

// POST /bookings/:id/cancel
func (h *BookingsHandler) Cancel(ctx *gin.Context) {
	id, ok := bookingPathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	b, err := h.manager.Cancel(cctx, id, middlewares.ActorFromContext(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "Could not cancel booking")
		return
	}

	ctx.JSON(http.StatusOK, b.ViewAt(h.now()))
}

// PATCH /bookings/:id/status {status}
func (h *BookingsHandler) SetStatus(ctx *gin.Context) {
	id, ok := bookingPathID(ctx)
	if !ok {
		return
	}

	var req booking.StatusRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	b, err := h.manager.SetStatus(cctx, id, req.Status, middlewares.ActorFromContext(ctx))
	if err != nil {
		RespondDomainError(ctx, err, "Could not update booking")
		return
	}

	ctx.JSON(http.StatusOK, b.ViewAt(h.now()))
}

type bookingCheck func(a policy.Actor, b booking.Booking, r resource.Resource) bool

// loadBookingFor fetches a booking with its resource and applies allow. It
// writes the error response itself and reports false on any failure.
func loadBookingFor(ctx *gin.Context, cctx context.Context, bookings BookingsReader, resources ResourceGetter, id string, allow bookingCheck) (booking.Booking, resource.Resource, bool) {
	b, err := bookings.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch booking")
		return booking.Booking{}, resource.Resource{}, false
	}

	res, err := resources.GetByID(cctx, b.ResourceID)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch booking")
		return booking.Booking{}, resource.Resource{}, false
	}

	if !allow(middlewares.ActorFromContext(ctx), b, res) {
		RespondForbidden(ctx, "You do not have access to this booking")
		return booking.Booking{}, resource.Resource{}, false
	}

	return b, res, true
}
