package api

import (
	"time"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string  `json:"email"     validate:"required,email,max=255"`
	Password string  `json:"password"  validate:"required,min=8,max=72"`
	FullName *string `json:"full_name" validate:"omitnil,max=255"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	// RefreshToken is the JWT refresh token to be used to obtain a new token pair
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by register, login and refresh.
type TokenResponse struct {
	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain future access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "bearer"
	TokenType string `json:"token_type"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// UserResponse describes the authenticated user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID  *int64  `json:"assignee_id" validate:"omitnil,gt=0"`
}

// UpdateTaskRequest defines the payload for a partial task update. Status is
// decoded only so that a request trying to change it can be rejected.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitnil,max=255"`
	Description *string `json:"description" validate:"omitnil,max=5000"`
	Priority    *string `json:"priority"    validate:"omitnil,oneof=low medium high urgent"`
	Status      *string `json:"status"`
}

// AssignTaskRequest sets or, with a null or missing assignee_id, clears the assignee.
type AssignTaskRequest struct {
	AssigneeID *int64 `json:"assignee_id" validate:"omitnil,gt=0"`
}

// TransitionTaskRequest moves a task to another workflow state.
type TransitionTaskRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

// BulkTransitionRequest moves several tasks to the same workflow state.
// The upper bound on task_ids is enforced by the service from configuration.
type BulkTransitionRequest struct {
	TaskIDs []int64 `json:"task_ids" validate:"required,min=1,dive,gt=0"`
	Status  string  `json:"status"   validate:"required,oneof=todo in_progress done"`
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Items []*domain.TaskView `json:"items"`
	Meta  PageMeta           `json:"meta"`
}

// PageMeta describes the position of a page within the full result.
type PageMeta struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func newPageMeta(page, perPage, total int) PageMeta {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return PageMeta{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}
