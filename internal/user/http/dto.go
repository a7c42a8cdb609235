package http

import (
	"time"

	"github.com/campusbook/classroom-booking-backend/internal/pkg/request"
	"github.com/campusbook/classroom-booking-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Username string `form:"username"`
	Role     string `form:"role" binding:"omitempty,oneof=admin staff student"`
	Active   *bool  `form:"active"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserTag is a brief representation of a user embedded in other responses.
type UserTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateUserRequest is the payload for PATCH /v1/users/:id (admin only).
type UpdateUserRequest struct {
	Name      *string `json:"name"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin staff student"`
	AvatarURL *string `json:"avatar_url"`
	Active    *bool   `json:"active"`
}
