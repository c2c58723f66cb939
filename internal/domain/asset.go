package domain

import "time"

// AssetStatus enumerates physical streetlight states.
type AssetStatus string

const (
	AssetStatusWorking     AssetStatus = "working"
	AssetStatusFaulty      AssetStatus = "faulty"
	AssetStatusUnderRepair AssetStatus = "under repair"
)

// Asset is a managed streetlight unit. AssetID is the stable external code
// printed on the physical QR tag; ID is the internal record reference.
type Asset struct {
	ID           string
	AssetID      string
	Status       AssetStatus
	Location     Coordinate
	InstalledAt  time.Time
	RegisteredBy *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// ValidAssetStatus reports whether s is a known asset status.
func ValidAssetStatus(s AssetStatus) bool {
	switch s {
	case AssetStatusWorking, AssetStatusFaulty, AssetStatusUnderRepair:
		return true
	}
	return false
}
