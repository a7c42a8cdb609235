package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/classroom-booking-backend/internal/report"
)

type Handler struct {
	service report.Service
}

func NewHandler(service report.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Usage(c *gin.Context) {
	var req UsageReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	from, to := report.DefaultPeriod(time.Now().UTC())
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}

	result, err := h.service.Usage(c.Request.Context(), report.Query{
		From:       from,
		To:         to,
		ResourceID: req.ResourceID,
	})
	if err != nil {
		if errors.Is(err, report.ErrInvalidPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build usage report"})
		return
	}

	if req.Format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="usage-report.csv"`)
		c.Status(http.StatusOK)
		if err := h.service.WriteCSV(c.Writer, result); err != nil {
			// Headers are already out; nothing useful left to send.
			_ = c.Error(err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
