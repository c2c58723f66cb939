package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "Open"
	TicketStatusAssigned TicketStatus = "Assigned"
	TicketStatusResolved TicketStatus = "Resolved"
)

// Ticket is a maintenance work item tracking a fault from report to
// resolution. AssetExternalID, Location and AssignedWorkerName are snapshots
// copied at write time for display; they are not kept in sync with the source
// records afterwards.
type Ticket struct {
	ID                 string
	ExternalKey        string
	AssetRef           string
	AssetExternalID    string
	Status             TicketStatus
	Location           Coordinate
	AssignedWorkerID   *string
	AssignedWorkerName *string
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:     {TicketStatusAssigned},
	TicketStatusAssigned: {TicketStatusResolved},
	TicketStatusResolved: {},
}

// CanTransition reports whether the ticket state machine permits moving from
// current to next. Resolved is terminal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidTicketStatus reports whether s is a known ticket status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusResolved:
		return true
	}
	return false
}
