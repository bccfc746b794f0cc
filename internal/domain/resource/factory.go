package resource

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateRequest, ownerID string) Resource {
	now := time.Now().UTC()

	return Resource{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Location:    req.Location,
		Capacity:    req.Capacity,
		HourlyRate:  req.HourlyRate,
		IsAvailable: true,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
