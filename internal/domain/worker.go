package domain

import "time"

// WorkerRole enumerates directory roles.
type WorkerRole string

const (
	WorkerRoleLineman WorkerRole = "lineman"
	WorkerRoleAdmin   WorkerRole = "admin"
)

// Worker is a directory entry: a field lineman or a dispatcher admin.
// LastKnownLocation is refreshed periodically by the device-side location
// tracker and may be absent for workers that never reported a position.
// Availability is a free-form status string; the dispatch engine does not
// consult it.
type Worker struct {
	ID                string
	DisplayName       string
	Email             string
	PasswordHash      string
	Role              WorkerRole
	LastKnownLocation *Coordinate
	LocationUpdatedAt *time.Time
	Availability      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidWorkerRole reports whether r is a known role.
func ValidWorkerRole(r WorkerRole) bool {
	return r == WorkerRoleLineman || r == WorkerRoleAdmin
}
