package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// ticketAt builds an open ticket offset north of the equator by roughly
// meters. One degree of latitude is ~111.32 km everywhere.
func ticketAt(id string, meters float64, created time.Time) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Status:    domain.TicketStatusOpen,
		Location:  domain.Coordinate{Latitude: meters / 111320.0, Longitude: 0},
		CreatedAt: created,
	}
}

func TestDistanceMeters(t *testing.T) {
	a := domain.Coordinate{Latitude: 0, Longitude: 0}
	b := domain.Coordinate{Latitude: 0, Longitude: 1}
	// one degree of longitude on the equator is ~111.32 km
	assert.InDelta(t, 111320, DistanceMeters(a, b), 200)
	assert.Zero(t, DistanceMeters(a, a))

	blr := domain.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	near := domain.Coordinate{Latitude: 12.9726, Longitude: 77.5946}
	assert.InDelta(t, 111, DistanceMeters(blr, near), 2)
}

func TestNearbyRadiusAndOrdering(t *testing.T) {
	origin := domain.Coordinate{Latitude: 0, Longitude: 0}
	base := time.Now()
	tickets := []domain.Ticket{
		ticketAt("far", 20000, base),
		ticketAt("mid", 5000, base),
		ticketAt("close", 100, base),
	}

	got, err := Nearby(origin, tickets, 10000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "close", got[0].Ticket.ID)
	assert.Equal(t, "mid", got[1].Ticket.ID)
	assert.InDelta(t, 100, got[0].DistanceMeters, 5)
	assert.InDelta(t, 5000, got[1].DistanceMeters, 50)
}

func TestNearbyTieBreakByCreatedAt(t *testing.T) {
	origin := domain.Coordinate{Latitude: 0, Longitude: 0}
	base := time.Now()
	newer := ticketAt("newer", 1000, base.Add(time.Minute))
	older := ticketAt("older", 1000, base)

	got, err := Nearby(origin, []domain.Ticket{newer, older}, 5000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "older", got[0].Ticket.ID)
	assert.Equal(t, "newer", got[1].Ticket.ID)
}

func TestNearbyDefaultRadius(t *testing.T) {
	origin := domain.Coordinate{Latitude: 0, Longitude: 0}
	inside := ticketAt("inside", 9000, time.Now())
	outside := ticketAt("outside", 11000, time.Now())

	got, err := Nearby(origin, []domain.Ticket{inside, outside}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "inside", got[0].Ticket.ID)
}

func TestValidateCoordinate(t *testing.T) {
	require.NoError(t, ValidateCoordinate(domain.Coordinate{Latitude: -90, Longitude: 180}))

	bad := []domain.Coordinate{
		{Latitude: 91, Longitude: 0},
		{Latitude: -90.001, Longitude: 0},
		{Latitude: 0, Longitude: 181},
		{Latitude: 0, Longitude: -180.5},
	}
	for _, c := range bad {
		err := ValidateCoordinate(c)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCoordinate))
	}

	_, err := Nearby(domain.Coordinate{Latitude: 100, Longitude: 0}, nil, 1000)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCoordinate))
}
