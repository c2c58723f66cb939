package dto

import (
	"time"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// TicketResponse is the wire form of a dispatch ticket.
type TicketResponse struct {
	ID                 string              `json:"id"`
	ExternalKey        string              `json:"external_key"`
	AssetRef           string              `json:"asset_ref"`
	AssetExternalID    string              `json:"asset_external_id"`
	Status             domain.TicketStatus `json:"status"`
	Location           CoordinateResponse  `json:"location"`
	AssignedWorkerID   *string             `json:"assigned_worker_id,omitempty"`
	AssignedWorkerName *string             `json:"assigned_worker_name,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	ResolvedAt         *time.Time          `json:"resolved_at,omitempty"`
}

// NearbyTicketResponse pairs a ticket with its distance from the caller.
type NearbyTicketResponse struct {
	TicketResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// AssignTicketRequest payload for dispatcher-driven assignment.
type AssignTicketRequest struct {
	WorkerID string `json:"worker_id"`
}

// TicketHistoryResponse is one audit log entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ChangedBy  *string                 `json:"changed_by,omitempty"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// CoordinateResponse is a WGS84 point.
type CoordinateResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
