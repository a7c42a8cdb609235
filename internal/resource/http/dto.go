package http

import (
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/request"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	Query       string `form:"q"`
	MaxCapacity int    `form:"capacity" binding:"omitempty,min=1"`
	Tag         string `form:"tag"`
}

type ResourceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	Amenities []string  `json:"amenities"`
	Tags      []string  `json:"tags"`
	Images    []string  `json:"images"`
	CreatedBy string    `json:"created_by"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		Capacity:  r.Capacity,
		Amenities: r.Amenities,
		Tags:      r.Tags,
		Images:    r.Images,
		CreatedBy: r.CreatedBy,
		Available: r.Available,
		CreatedAt: r.CreatedAt,
	}
}

// ResourceTag is a brief representation of a resource embedded in other responses.
type ResourceTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

type CreateResourceRequest struct {
	Name      string   `json:"name" binding:"required"`
	Location  string   `json:"location" binding:"required"`
	Capacity  int      `json:"capacity" binding:"required,min=1"`
	Amenities []string `json:"amenities"`
	Tags      []string `json:"tags"`
	Images    []string `json:"images"`
}

type UpdateResourceRequest struct {
	Name      *string   `json:"name"`
	Location  *string   `json:"location"`
	Capacity  *int      `json:"capacity" binding:"omitempty,min=1"`
	Amenities *[]string `json:"amenities"`
	Tags      *[]string `json:"tags"`
	Images    *[]string `json:"images"`
}
