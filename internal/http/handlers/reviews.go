package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

type ReviewsRepo interface {
	ReviewsReader
	Create(ctx context.Context, rv review.Review) (review.Review, error)
}

type ResourceGetter interface {
	GetByID(ctx context.Context, id string) (resource.Resource, error)
}

type ReviewsHandler struct {
	repo      ReviewsRepo
	resources ResourceGetter
}

func NewReviewsHandler(repo ReviewsRepo, resources ResourceGetter) *ReviewsHandler {
	return &ReviewsHandler{repo: repo, resources: resources}
}

// GET /resources/:id/reviews
func (h *ReviewsHandler) List(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	if _, err := h.resources.GetByID(cctx, id); err != nil {
		RespondDomainError(ctx, err, "Could not list reviews")
		return
	}

	items, err := h.repo.ListByResource(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list reviews")
		return
	}

	summary, err := h.repo.Summary(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list reviews")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items":   items,
		"summary": summary,
	})
}

// POST /resources/:id/reviews; a second review by the same user is a 409.
func (h *ReviewsHandler) Create(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	actor := middlewares.ActorFromContext(ctx)
	if !policy.CanReview(actor) {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req review.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	if _, err := h.resources.GetByID(cctx, id); err != nil {
		RespondDomainError(ctx, err, "Could not create review")
		return
	}

	created, err := h.repo.Create(cctx, review.New(actor.ID, id, req))
	if err != nil {
		RespondDomainError(ctx, err, "Could not create review")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}
