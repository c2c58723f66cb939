package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/geo"
	"github.com/gridpulse/streetlight-dispatch/internal/persistence"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

const locationKeyPrefix = "worker:location:"

// LocationService tracks the last reported position of each field worker.
// Fresh positions live in Redis under a TTL; every update is also written
// through to the worker directory so a cold cache still has a usable
// last-known position.
type LocationService struct {
	workers repository.WorkerRepository
	cache   *persistence.Redis
	ttl     time.Duration
	logger  *zap.Logger
}

// NewLocationService constructs the service. A nil cache degrades to
// directory-only reads.
func NewLocationService(workers repository.WorkerRepository, cache *persistence.Redis, ttl time.Duration, logger *zap.Logger) *LocationService {
	return &LocationService{workers: workers, cache: cache, ttl: ttl, logger: logger}
}

type cachedLocation struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateLocation records a new position report for the worker.
func (s *LocationService) UpdateLocation(ctx context.Context, workerID string, loc domain.Coordinate) error {
	if err := geo.ValidateCoordinate(loc); err != nil {
		return err
	}

	now := time.Now()
	if err := s.workers.SetLocation(ctx, workerID, loc, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return apperrors.MapError(err)
	}

	if s.cache != nil && s.cache.Client != nil {
		payload, err := json.Marshal(cachedLocation{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			UpdatedAt: now,
		})
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if err := s.cache.Client.Set(ctx, locationKeyPrefix+workerID, payload, s.ttl).Err(); err != nil {
			// The directory write already succeeded, so a cache failure
			// only costs freshness.
			s.logger.Warn("failed to cache worker location", zap.String("worker_id", workerID), zap.Error(err))
		}
	}
	return nil
}

// CurrentLocation returns the worker's freshest known position. It prefers
// the cache, falls back to the directory's last-known position when that
// position is still within the TTL, and otherwise fails with
// LOCATION_UNAVAILABLE so callers can demand an explicit position instead
// of dispatching against stale data.
func (s *LocationService) CurrentLocation(ctx context.Context, workerID string) (domain.Coordinate, error) {
	if s.cache != nil && s.cache.Client != nil {
		raw, err := s.cache.Client.Get(ctx, locationKeyPrefix+workerID).Bytes()
		switch {
		case err == nil:
			var cached cachedLocation
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return domain.Coordinate{Latitude: cached.Latitude, Longitude: cached.Longitude}, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("location cache read failed", zap.String("worker_id", workerID), zap.Error(err))
		}
	}

	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Coordinate{}, apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return domain.Coordinate{}, apperrors.MapError(err)
	}
	if worker.LastKnownLocation == nil || worker.LocationUpdatedAt == nil {
		return domain.Coordinate{}, apperrors.NewLocationUnavailable(workerID)
	}
	if time.Since(*worker.LocationUpdatedAt) > s.ttl {
		return domain.Coordinate{}, apperrors.NewLocationUnavailable(workerID)
	}
	return *worker.LastKnownLocation, nil
}
