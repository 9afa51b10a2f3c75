package dto

import "time"

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RenewResponse reports the new session expiry.
type RenewResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// ClaimsResponse describes the authenticated caller.
type ClaimsResponse struct {
	Subject   string     `json:"subject"`
	Role      int16      `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
