package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeCreated  TicketChangeType = "CREATED"
	ChangeTypeClaimed  TicketChangeType = "CLAIMED"
	ChangeTypeAssigned TicketChangeType = "ASSIGNED"
	ChangeTypeResolved TicketChangeType = "RESOLVED"
)

// TicketHistory is an immutable audit trail entry recorded alongside each
// ticket transition.
type TicketHistory struct {
	ID         string
	TicketID   string
	ChangedBy  *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
