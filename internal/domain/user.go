package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record for an account that can open a session.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserFilter narrows user listings.
type UserFilter struct {
	Keyword string
	Offset  int
	Limit   int
}
