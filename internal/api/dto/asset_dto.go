package dto

import (
	"time"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// RegisterAssetRequest payload.
type RegisterAssetRequest struct {
	AssetID     string     `json:"asset_id"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	InstalledAt *time.Time `json:"installed_at,omitempty"`
}

// UpdateAssetStatusRequest payload.
type UpdateAssetStatusRequest struct {
	Status domain.AssetStatus `json:"status"`
}

// AssetResponse is the wire form of a streetlight.
type AssetResponse struct {
	ID           string             `json:"id"`
	AssetID      string             `json:"asset_id"`
	Status       domain.AssetStatus `json:"status"`
	Location     CoordinateResponse `json:"location"`
	InstalledAt  time.Time          `json:"installed_at"`
	RegisteredBy *string            `json:"registered_by,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AssetStatusResponse pairs the updated asset with any ticket opened for it.
type AssetStatusResponse struct {
	Asset  AssetResponse   `json:"asset"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}
