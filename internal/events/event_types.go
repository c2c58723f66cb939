package events

import (
	"time"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClaimed      EventType = "ticket_claimed"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventTicketResolved     EventType = "ticket_resolved"
	EventAssetStatusChanged EventType = "asset_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	AssetID   string      `json:"asset_id,omitempty"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	AssetRef        string            `json:"asset_ref"`
	AssetExternalID string            `json:"asset_external_id"`
	Location        domain.Coordinate `json:"location"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	AssetRef   string `json:"asset_ref"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	WorkerID   string  `json:"worker_id"`
	WorkerName string  `json:"worker_name"`
	AssignedBy *string `json:"assigned_by,omitempty"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	AssetRef   string    `json:"asset_ref"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// AssetStatusChangedPayload payload.
type AssetStatusChangedPayload struct {
	OldStatus domain.AssetStatus `json:"old_status"`
	NewStatus domain.AssetStatus `json:"new_status"`
}
