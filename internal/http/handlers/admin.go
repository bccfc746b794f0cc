package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

type AdminBookings interface {
	ListPending(ctx context.Context, ownerID *string) ([]booking.Booking, error)
	CountByStatus(ctx context.Context) (map[booking.Status]int, error)
}

type AdminResources interface {
	ListAll(ctx context.Context) ([]resource.Resource, error)
}

type AdminUsers interface {
	UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error)
	CountByRole(ctx context.Context) (map[user.Role]int, error)
}

type AdminJobs interface {
	GetByID(ctx context.Context, id string) (job.Job, error)
	RetryFailed(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[job.Status]int, error)
}

type AdminHandler struct {
	bookings  AdminBookings
	resources AdminResources
	users     AdminUsers
	jobs      AdminJobs
}

func NewAdminHandler(bookings AdminBookings, resources AdminResources, users AdminUsers, jobs AdminJobs) *AdminHandler {
	return &AdminHandler{
		bookings:  bookings,
		resources: resources,
		users:     users,
		jobs:      jobs,
	}
}

type dashboard struct {
	PendingBookings []booking.Booking      `json:"pendingBookings"`
	Resources       []resource.Resource    `json:"resources"`
	BookingCounts   map[booking.Status]int `json:"bookingCounts"`
	UserCounts      map[user.Role]int      `json:"userCounts"`
	JobCounts       map[job.Status]int     `json:"jobCounts"`
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(ctx *gin.Context) {
	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	var (
		out dashboard
		err error
	)

	if out.PendingBookings, err = h.bookings.ListPending(cctx, nil); err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}
	if out.Resources, err = h.resources.ListAll(cctx); err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}
	if out.BookingCounts, err = h.bookings.CountByStatus(cctx); err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}
	if out.UserCounts, err = h.users.CountByRole(cctx); err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}
	if out.JobCounts, err = h.jobs.CountByStatus(cctx); err != nil {
		RespondDomainError(ctx, err, "Could not load dashboard")
		return
	}

	ctx.JSON(http.StatusOK, out)
}

// PATCH /admin/users/:id/role. The user's existing session keeps its old
// role until the next login or token refresh.
func (h *AdminHandler) UpdateUserRole(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	actor := middlewares.ActorFromContext(ctx)
	if !policy.CanManageUsers(actor) {
		RespondForbidden(ctx, "Only admins can change roles")
		return
	}

	var req user.UpdateRoleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if id == actor.ID && req.Role != user.RoleAdmin {
		RespondConflict(ctx, "self_demotion", "Admins cannot remove their own admin role")
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	u, err := h.users.UpdateRole(cctx, id, req.Role)
	if err != nil {
		RespondDomainError(ctx, err, "Could not update role")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// GET /admin/jobs/:id
func (h *AdminHandler) GetJob(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	j, err := h.jobs.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not fetch job")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, j)
}

// POST /admin/jobs/:id/retry
func (h *AdminHandler) RetryJob(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	if err := h.jobs.RetryFailed(cctx, id); err != nil {
		RespondDomainError(ctx, err, "Could not retry job")
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"id": id, "status": job.StatusPending})
}
