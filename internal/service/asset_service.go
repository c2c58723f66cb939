package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/events"
	"github.com/gridpulse/streetlight-dispatch/internal/geo"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// AssetService manages the streetlight registry. Marking a streetlight
// faulty hands off to the dispatch engine, which opens a ticket for it.
type AssetService struct {
	assets     repository.AssetRepository
	dispatch   *DispatchService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository, dispatch *DispatchService, dispatcher events.Dispatcher, logger *zap.Logger) *AssetService {
	return &AssetService{assets: assets, dispatch: dispatch, dispatcher: dispatcher, logger: logger}
}

// RegisterAssetInput carries the fields for a new streetlight.
type RegisterAssetInput struct {
	AssetID      string
	Location     domain.Coordinate
	InstalledAt  time.Time
	RegisteredBy *string
}

// RegisterAsset adds a streetlight to the registry. New assets start as
// working; faults are reported through UpdateAssetStatus.
func (s *AssetService) RegisterAsset(ctx context.Context, input RegisterAssetInput) (*domain.Asset, error) {
	if input.AssetID == "" {
		return nil, apperrors.NewValidationError("asset_id is required", nil)
	}
	if err := geo.ValidateCoordinate(input.Location); err != nil {
		return nil, err
	}

	if existing, err := s.assets.GetByAssetID(ctx, input.AssetID); err == nil && existing != nil {
		return nil, apperrors.NewConflict("asset already registered", map[string]any{"asset_id": input.AssetID})
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	asset := &domain.Asset{
		AssetID:      input.AssetID,
		Status:       domain.AssetStatusWorking,
		Location:     input.Location,
		InstalledAt:  input.InstalledAt,
		RegisteredBy: input.RegisteredBy,
	}
	if asset.InstalledAt.IsZero() {
		asset.InstalledAt = time.Now()
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// GetAsset fetches one streetlight by record ID.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_record_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// ListAssets returns the full registry.
func (s *AssetService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assets, nil
}

// UpdateAssetStatus transitions a streetlight's operational status. Moving
// to faulty opens (or reuses) a dispatch ticket; under repair and working
// are normally driven by the ticket lifecycle but remain settable for
// manual correction.
func (s *AssetService) UpdateAssetStatus(ctx context.Context, id string, status domain.AssetStatus) (*domain.Asset, *domain.Ticket, error) {
	if !domain.ValidAssetStatus(status) {
		return nil, nil, apperrors.NewValidationError("unknown asset status", map[string]any{"status": status})
	}

	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("asset", map[string]any{"asset_record_id": id})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if asset.Status == status {
		return asset, nil, nil
	}

	oldStatus := asset.Status
	if err := s.assets.SetStatus(ctx, asset.ID, status); err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	asset.Status = status

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAssetStatusChanged,
			AssetID:   asset.ID,
			Timestamp: time.Now(),
			Payload:   events.AssetStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
		})
	}

	var ticket *domain.Ticket
	if status == domain.AssetStatusFaulty && s.dispatch != nil {
		ticket, err = s.dispatch.CreateTicketForFault(ctx, asset.ID)
		if err != nil {
			s.logger.Error("failed to open ticket for faulty asset",
				zap.String("asset_record_id", asset.ID), zap.Error(err))
			return nil, nil, err
		}
	}
	return asset, ticket, nil
}
