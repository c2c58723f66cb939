// Package geo computes great-circle distances and filters dispatch
// candidates by radius. All functions are pure.
package geo

import (
	"math"
	"sort"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// DefaultSearchRadiusMeters bounds the nearby-task search when the caller
// does not supply a radius.
const DefaultSearchRadiusMeters = 10000

const earthRadiusMeters = 6371000

// ValidateCoordinate rejects coordinates outside the WGS84 domain and NaN
// values.
func ValidateCoordinate(c domain.Coordinate) error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return apperrors.NewInvalidCoordinate(c.Latitude, c.Longitude)
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return apperrors.NewInvalidCoordinate(c.Latitude, c.Longitude)
	}
	return nil
}

// DistanceMeters returns the haversine great-circle distance between two
// coordinates in meters.
func DistanceMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Candidate pairs a ticket with its distance from the search origin.
type Candidate struct {
	Ticket         domain.Ticket
	DistanceMeters float64
}

// Nearby keeps tickets within radiusMeters of origin, sorted ascending by
// distance. Ties are broken by CreatedAt ascending so repeated evaluations
// of the same snapshot are deterministic.
func Nearby(origin domain.Coordinate, tickets []domain.Ticket, radiusMeters float64) ([]Candidate, error) {
	if err := ValidateCoordinate(origin); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultSearchRadiusMeters
	}

	candidates := make([]Candidate, 0, len(tickets))
	for _, ticket := range tickets {
		if err := ValidateCoordinate(ticket.Location); err != nil {
			return nil, err
		}
		distance := DistanceMeters(origin, ticket.Location)
		if distance <= radiusMeters {
			candidates = append(candidates, Candidate{Ticket: ticket, DistanceMeters: distance})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceMeters != candidates[j].DistanceMeters {
			return candidates[i].DistanceMeters < candidates[j].DistanceMeters
		}
		return candidates[i].Ticket.CreatedAt.Before(candidates[j].Ticket.CreatedAt)
	})
	return candidates, nil
}
