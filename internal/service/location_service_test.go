package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/repository/memory"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

func newLocationService(store *memory.Store, ttl time.Duration) *LocationService {
	// nil cache exercises the directory fallback path
	return NewLocationService(store.Workers(), nil, ttl, zap.NewNop())
}

func TestUpdateAndCurrentLocation(t *testing.T) {
	store := memory.NewStore()
	svc := newLocationService(store, 10*time.Minute)
	ctx := context.Background()
	worker := seedWorker(t, store, "Ravi", domain.WorkerRoleLineman)

	loc := domain.Coordinate{Latitude: 28.6139, Longitude: 77.2090}
	require.NoError(t, svc.UpdateLocation(ctx, worker.ID, loc))

	got, err := svc.CurrentLocation(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, loc, got)
}

func TestCurrentLocationNeverReported(t *testing.T) {
	store := memory.NewStore()
	svc := newLocationService(store, 10*time.Minute)
	worker := seedWorker(t, store, "Ravi", domain.WorkerRoleLineman)

	_, err := svc.CurrentLocation(context.Background(), worker.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeLocationUnavailable))
}

func TestCurrentLocationStale(t *testing.T) {
	store := memory.NewStore()
	svc := newLocationService(store, time.Minute)
	ctx := context.Background()
	worker := seedWorker(t, store, "Ravi", domain.WorkerRoleLineman)

	stale := time.Now().Add(-2 * time.Minute)
	require.NoError(t, store.Workers().SetLocation(ctx, worker.ID, domain.Coordinate{Latitude: 28.6, Longitude: 77.2}, stale))

	_, err := svc.CurrentLocation(ctx, worker.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeLocationUnavailable))
}

func TestUpdateLocationRejectsBadCoordinate(t *testing.T) {
	store := memory.NewStore()
	svc := newLocationService(store, time.Minute)
	worker := seedWorker(t, store, "Ravi", domain.WorkerRoleLineman)

	err := svc.UpdateLocation(context.Background(), worker.ID, domain.Coordinate{Latitude: -91, Longitude: 0})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidCoordinate))
}

func TestUpdateLocationUnknownWorker(t *testing.T) {
	store := memory.NewStore()
	svc := newLocationService(store, time.Minute)

	err := svc.UpdateLocation(context.Background(), "missing", domain.Coordinate{Latitude: 28.6, Longitude: 77.2})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
