package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusbook/classroom-booking-backend/internal/audit"
	"github.com/campusbook/classroom-booking-backend/internal/auth"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/response"
	"github.com/campusbook/classroom-booking-backend/internal/resource"
)

type Handler struct {
	service  resource.Service
	recorder audit.Recorder
}

func NewHandler(service resource.Service, recorder audit.Recorder) *Handler {
	return &Handler{service: service, recorder: recorder}
}

func (h *Handler) List(c *gin.Context) {
	var req ListResourcesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	filter := resource.Filter{
		Query:       req.Query,
		MaxCapacity: req.MaxCapacity,
		Tag:         req.Tag,
		Page:        req.Page,
		PageSize:    req.PageSize,
	}

	resources, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resources"})
		return
	}

	items := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		items[i] = NewResourceResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == resource.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get resource"})
		return
	}

	c.JSON(http.StatusOK, NewResourceResponse(r))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)

	r, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		Name:      body.Name,
		Location:  body.Location,
		Capacity:  body.Capacity,
		Amenities: body.Amenities,
		Tags:      body.Tags,
		Images:    body.Images,
		CreatedBy: userID,
	})
	if err != nil {
		switch err {
		case resource.ErrEmptyName, resource.ErrEmptyLocation, resource.ErrInvalidCapacity:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
		}
		return
	}

	h.recorder.Record("create_resource", userID, audit.TargetResource, r.ID, nil)

	c.JSON(http.StatusCreated, NewResourceResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	r, err := h.service.Update(c.Request.Context(), id, resource.UpdateRequest{
		Name:      body.Name,
		Location:  body.Location,
		Capacity:  body.Capacity,
		Amenities: body.Amenities,
		Tags:      body.Tags,
		Images:    body.Images,
	})
	if err != nil {
		switch err {
		case resource.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		case resource.ErrEmptyName, resource.ErrEmptyLocation, resource.ErrInvalidCapacity:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resource"})
		}
		return
	}

	h.recorder.Record("update_resource", auth.GetUserID(c), audit.TargetResource, id, nil)

	c.JSON(http.StatusOK, NewResourceResponse(r))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if err == resource.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resource"})
		return
	}

	h.recorder.Record("delete_resource", auth.GetUserID(c), audit.TargetResource, id, nil)

	c.Status(http.StatusNoContent)
}
