package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/gin-gonic/gin"
)

type ConflictChecker interface {
	HasConflict(ctx context.Context, resourceID string, start, end time.Time, statuses ...booking.Status) (bool, error)
}

type AvailabilityHandler struct {
	checker   ConflictChecker
	resources ResourceGetter
	now       func() time.Time
}

func NewAvailabilityHandler(checker ConflictChecker, resources ResourceGetter) *AvailabilityHandler {
	return &AvailabilityHandler{
		checker:   checker,
		resources: resources,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type availabilityResponse struct {
	ResourceID string    `json:"resourceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Conflict   bool      `json:"conflict"`
	Bookable   bool      `json:"bookable"`
}

// GET /resources/:id/availability?start=&end= answers whether a request for
// [start, end) would currently be accepted. Times are RFC 3339.
func (h *AvailabilityHandler) Check(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, ctx.Query("start"))
	if err != nil {
		RespondBadRequest(ctx, "invalid_time", gin.H{"param": "start", "format": "RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, ctx.Query("end"))
	if err != nil {
		RespondBadRequest(ctx, "invalid_time", gin.H{"param": "end", "format": "RFC3339"})
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	res, err := h.resources.GetByID(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not check availability")
		return
	}

	conflict, err := h.checker.HasConflict(cctx, res.ID, start, end)
	if err != nil {
		RespondDomainError(ctx, err, "Could not check availability")
		return
	}

	ctx.JSON(http.StatusOK, availabilityResponse{
		ResourceID: res.ID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Conflict:   conflict,
		Bookable:   res.IsAvailable && !conflict && start.After(h.now()),
	})
}
