package resource

import (
	"errors"
	"time"
)

type Type string

const (
	TypeRoom      Type = "room"
	TypeEquipment Type = "equipment"
	TypeSpace     Type = "space"
)

func (t Type) Valid() bool {
	switch t {
	case TypeRoom, TypeEquipment, TypeSpace:
		return true
	default:
		return false
	}
}

// Availability is the read-time status shown on the resource detail view.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityOccupied    Availability = "occupied"
	AvailabilityUnavailable Availability = "unavailable"
)

var ErrNotFound = errors.New("resource not found")

type Resource struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        Type      `json:"type"`
	Location    string    `json:"location,omitempty"`
	Capacity    int       `json:"capacity"`
	HourlyRate  float64   `json:"hourlyRate"`
	IsAvailable bool      `json:"isAvailable"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AvailabilityAt derives the availability status given whether a confirmed
// booking currently occupies the resource.
func (r Resource) AvailabilityAt(occupied bool) Availability {
	if !r.IsAvailable {
		return AvailabilityUnavailable
	}
	if occupied {
		return AvailabilityOccupied
	}
	return AvailabilityAvailable
}

const (
	DefaultPerPage = 12
	MaxPerPage     = 50
)

// with pointers if optional, it will be nil
type ListFilter struct {
	Type   *Type
	Search *string
	// OnlyAvailable restricts the listing to bookable resources (public browse).
	OnlyAvailable bool
	Page          int
	PerPage       int
}

func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}

type Page struct {
	Items      []Resource `json:"items"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

func NewPage(items []Resource, f ListFilter, total int) Page {
	pages := 0
	if f.PerPage > 0 {
		pages = (total + f.PerPage - 1) / f.PerPage
	}
	return Page{
		Items:      items,
		Page:       f.Page,
		PerPage:    f.PerPage,
		Total:      total,
		TotalPages: pages,
	}
}

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Type        Type    `json:"type" binding:"required,resourcetype"`
	Location    string  `json:"location" binding:"omitempty,max=100"`
	Capacity    int     `json:"capacity" binding:"required,min=1,max=10000"`
	HourlyRate  float64 `json:"hourlyRate" binding:"omitempty,min=0"`
}

// a full update payload, availability has its own endpoint.
type UpdateRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	Type        Type    `json:"type" binding:"required,resourcetype"`
	Location    string  `json:"location" binding:"omitempty,max=100"`
	Capacity    int     `json:"capacity" binding:"required,min=1,max=10000"`
	HourlyRate  float64 `json:"hourlyRate" binding:"omitempty,min=0"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}
