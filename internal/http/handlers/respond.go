package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/campushub/internal/domain/booking"
	"github.com/geocoder89/campushub/internal/domain/job"
	"github.com/geocoder89/campushub/internal/domain/message"
	"github.com/geocoder89/campushub/internal/domain/resource"
	"github.com/geocoder89/campushub/internal/domain/review"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

// RespondForbidden tells the client where to send the user instead.
func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, "forbidden", message, gin.H{"redirect": middlewares.ForbiddenRedirect})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// RespondDomainError maps domain sentinels onto the API error envelope.
// Anything unrecognised is logged and answered with fallback as a 500.
func RespondDomainError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, booking.ErrInvalidInterval), errors.Is(err, booking.ErrStartInPast), errors.Is(err, user.ErrInvalidRole):
		RespondBadRequest(ctx, err.Error(), nil)
	case errors.Is(err, booking.ErrForbidden):
		RespondForbidden(ctx, "You are not allowed to perform this action")
	case errors.Is(err, booking.ErrConflict):
		RespondConflict(ctx, "conflict", "The requested time slot is already booked")
	case errors.Is(err, booking.ErrResourceUnavailable):
		RespondConflict(ctx, "resource_unavailable", "This resource is not available for booking")
	case errors.Is(err, booking.ErrInvalidTransition):
		RespondConflict(ctx, "invalid_transition", "The booking cannot move to that status")
	case errors.Is(err, booking.ErrTooLate):
		RespondConflict(ctx, "too_late", "The booking has already started")
	case errors.Is(err, review.ErrAlreadyReviewed):
		RespondConflict(ctx, "already_reviewed", "You have already reviewed this resource")
	case errors.Is(err, job.ErrJobNotFailed):
		RespondConflict(ctx, "job_not_failed", "Only failed jobs can be retried")
	case errors.Is(err, user.ErrEmailAlreadyUsed):
		RespondConflict(ctx, "email_taken", "Email is already in use")
	case errors.Is(err, booking.ErrNotFound):
		RespondNotFound(ctx, "Booking not found")
	case errors.Is(err, resource.ErrNotFound):
		RespondNotFound(ctx, "Resource not found")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, message.ErrNotFound):
		RespondNotFound(ctx, "Message not found")
	case errors.Is(err, job.ErrJobNotFound):
		RespondNotFound(ctx, "Job not found")
	default:
		slog.ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"err", err,
		)
		RespondInternal(ctx, fallback)
	}
}
