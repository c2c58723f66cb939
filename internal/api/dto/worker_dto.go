package dto

import (
	"time"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// RegisterWorkerRequest payload.
type RegisterWorkerRequest struct {
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	Password    string            `json:"password"`
	Role        domain.WorkerRole `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse wraps a worker plus their access token.
type AuthResponse struct {
	Worker    WorkerResponse `json:"worker"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// WorkerResponse is the wire form of a worker account.
type WorkerResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	Role        domain.WorkerRole `json:"role"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UpdateLocationRequest payload for worker position reports.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
