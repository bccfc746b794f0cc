package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/geocoder89/campushub/internal/domain/message"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

type MessagesRepo interface {
	Create(ctx context.Context, m message.Message) (message.Message, error)
	ListByBooking(ctx context.Context, bookingID string) ([]message.Message, error)
}

// MessagesHandler serves the thread attached to each booking.
type MessagesHandler struct {
	repo      MessagesRepo
	bookings  BookingsReader
	resources ResourceGetter
}

func NewMessagesHandler(repo MessagesRepo, bookings BookingsReader, resources ResourceGetter) *MessagesHandler {
	return &MessagesHandler{repo: repo, bookings: bookings, resources: resources}
}

// GET /bookings/:id/messages, oldest first.
func (h *MessagesHandler) List(ctx *gin.Context) {
	id, ok := bookingPathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestCtx(ctx, readTimeout)
	defer cancel()

	if _, _, ok := loadBookingFor(ctx, cctx, h.bookings, h.resources, id, policy.CanAccessThread); !ok {
		return
	}

	items, err := h.repo.ListByBooking(cctx, id)
	if err != nil {
		RespondDomainError(ctx, err, "Could not list messages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// POST /bookings/:id/messages
func (h *MessagesHandler) Create(ctx *gin.Context) {
	id, ok := bookingPathID(ctx)
	if !ok {
		return
	}

	var req message.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		RespondBadRequest(ctx, "Message content is required", gin.H{"field": "content"})
		return
	}

	cctx, cancel := requestCtx(ctx, writeTimeout)
	defer cancel()

	if _, _, ok := loadBookingFor(ctx, cctx, h.bookings, h.resources, id, policy.CanAccessThread); !ok {
		return
	}

	created, err := h.repo.Create(cctx, message.New(id, middlewares.ActorFromContext(ctx).ID, content))
	if err != nil {
		RespondDomainError(ctx, err, "Could not send message")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}
