package review

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// one review per (user, resource)
var ErrAlreadyReviewed = errors.New("resource already reviewed by this user")

type Review struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ResourceID string    `json:"resourceId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

type Summary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

func New(userID, resourceID string, req CreateRequest) Review {
	return Review{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResourceID: resourceID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  time.Now().UTC(),
	}
}
