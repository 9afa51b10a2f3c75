package dto

import (
	"time"

	"github.com/spec-kit/session-gateway/internal/domain"
)

// CreateUserRequest payload for new users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     int16  `json:"role"`
}

// UserResponse is the public view of a credential record.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      int16     `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps a domain user, dropping the password hash.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Role:      int16(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}
