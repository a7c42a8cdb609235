package http

import (
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/audit"
	"github.com/campusbook/classroom-booking-backend/internal/pkg/request"
)

// ListAuditRequest defines query parameters for listing audit entries.
type ListAuditRequest struct {
	request.ListParams
	ActorUserID string `form:"actor_user_id" binding:"omitempty,uuid"`
	Action      string `form:"action"`
	TargetType  string `form:"target_type" binding:"omitempty,oneof=user resource booking system"`
}

type AuditEntryResponse struct {
	ID          string         `json:"id"`
	Action      string         `json:"action"`
	ActorUserID string         `json:"actor_user_id"`
	TargetType  string         `json:"target_type,omitempty"`
	TargetID    string         `json:"target_id,omitempty"`
	Meta        map[string]any `json:"meta"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewAuditEntryResponse(e *audit.Entry) AuditEntryResponse {
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	return AuditEntryResponse{
		ID:          e.ID,
		Action:      e.Action,
		ActorUserID: e.ActorUserID,
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		Meta:        meta,
		CreatedAt:   e.CreatedAt,
	}
}
