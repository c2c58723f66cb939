package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/events"
	"github.com/gridpulse/streetlight-dispatch/internal/geo"
	"github.com/gridpulse/streetlight-dispatch/internal/repository"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// DispatchService is the ticket dispatch engine: it turns fault transitions
// into tickets, computes nearby open work for field crews, and arbitrates the
// claim/assign/resolve transitions. Claim and resolve run inside the store's
// atomic transaction so the ticket and the streetlight never move
// independently.
type DispatchService struct {
	tickets      repository.TicketRepository
	assets       repository.AssetRepository
	workers      repository.WorkerRepository
	history      repository.HistoryRepository
	atomic       repository.Atomic
	dispatcher   events.Dispatcher
	searchRadius float64
}

// DispatchDependencies bundles stores for the engine.
type DispatchDependencies struct {
	TicketRepo   repository.TicketRepository
	AssetRepo    repository.AssetRepository
	WorkerRepo   repository.WorkerRepository
	HistoryRepo  repository.HistoryRepository
	Atomic       repository.Atomic
	Dispatcher   events.Dispatcher
	SearchRadius float64
}

// NewDispatchService constructs the engine.
func NewDispatchService(deps DispatchDependencies) *DispatchService {
	radius := deps.SearchRadius
	if radius <= 0 {
		radius = geo.DefaultSearchRadiusMeters
	}
	return &DispatchService{
		tickets:      deps.TicketRepo,
		assets:       deps.AssetRepo,
		workers:      deps.WorkerRepo,
		history:      deps.HistoryRepo,
		atomic:       deps.Atomic,
		dispatcher:   deps.Dispatcher,
		searchRadius: radius,
	}
}

// CreateTicketForFault opens a ticket for the asset, snapshotting its
// current location. When the asset already has an Open or Assigned ticket
// that ticket is returned unchanged, so a flaky sensor toggling the fault
// status repeatedly cannot flood the queue with duplicates.
func (s *DispatchService) CreateTicketForFault(ctx context.Context, assetRecordID string) (*domain.Ticket, error) {
	asset, err := s.assets.GetByID(ctx, assetRecordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_record_id": assetRecordID})
		}
		return nil, apperrors.MapError(err)
	}

	existing, err := s.tickets.FindActiveByAsset(ctx, asset.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return existing, nil
	}

	ticket := &domain.Ticket{
		ExternalKey:     generateTicketKey(),
		AssetRef:        asset.ID,
		AssetExternalID: asset.AssetID,
		Status:          domain.TicketStatusOpen,
		Location:        asset.Location,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordChange(ctx, s.history, ticket.ID, nil, domain.ChangeTypeCreated,
		nil,
		map[string]any{"status": ticket.Status, "asset_ref": ticket.AssetRef},
	); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		AssetID:  asset.ID,
		Payload: events.TicketCreatedPayload{
			AssetRef:        asset.ID,
			AssetExternalID: asset.AssetID,
			Location:        asset.Location,
		},
	})
	return ticket, nil
}

// GetTicket fetches one ticket by record ID.
func (s *DispatchService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns all tickets in the given status, newest first.
func (s *DispatchService) ListTickets(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	tickets, err := s.tickets.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAssignedTickets returns the worker's active task list, newest first.
func (s *DispatchService) ListAssignedTickets(ctx context.Context, workerID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAssignedToWorker(ctx, workerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListNearbyOpenTickets returns Open tickets within radiusMeters of origin,
// closest first. A non-positive radius selects the configured default.
// Cancellation between the store read and the filter surfaces the context
// error rather than a partial result.
func (s *DispatchService) ListNearbyOpenTickets(ctx context.Context, origin domain.Coordinate, radiusMeters float64) ([]geo.Candidate, error) {
	if err := geo.ValidateCoordinate(origin); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = s.searchRadius
	}

	open, err := s.tickets.ListByStatus(ctx, domain.TicketStatusOpen)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return geo.Nearby(origin, open, radiusMeters)
}

// ClaimTicket atomically moves an Open ticket to Assigned for the worker and
// the referenced streetlight to under repair. Under concurrent claims the
// store transaction guarantees at most one caller commits; everyone else
// gets TICKET_NOT_AVAILABLE and no state change.
func (s *DispatchService) ClaimTicket(ctx context.Context, ticketID, workerID string) error {
	worker, err := s.lineman(ctx, workerID)
	if err != nil {
		return err
	}

	var claimed domain.Ticket
	err = s.atomic.RunAtomic(ctx, func(ctx context.Context, tx repository.Stores) error {
		ticket, err := tx.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if ticket.Status != domain.TicketStatusOpen {
			return apperrors.NewTicketNotAvailable(ticketID)
		}

		ticket.Status = domain.TicketStatusAssigned
		ticket.AssignedWorkerID = &worker.ID
		name := worker.DisplayName
		ticket.AssignedWorkerName = &name
		if err := tx.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := tx.Assets.SetStatus(ctx, ticket.AssetRef, domain.AssetStatusUnderRepair); err != nil {
			return err
		}
		if err := s.recordChange(ctx, tx.History, ticket.ID, &worker.ID, domain.ChangeTypeClaimed,
			map[string]any{"status": domain.TicketStatusOpen},
			map[string]any{"status": ticket.Status, "assigned_worker_id": worker.ID},
		); err != nil {
			return err
		}
		claimed = *ticket
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: claimed.ID,
		AssetID:  claimed.AssetRef,
		ActorID:  &worker.ID,
		Payload: events.TicketClaimedPayload{
			WorkerID:   worker.ID,
			WorkerName: worker.DisplayName,
			AssetRef:   claimed.AssetRef,
		},
	})
	return nil
}

// AssignTicketDirectly is the dispatcher-initiated assignment: no geospatial
// involvement and no contention expected, but it still flips the streetlight
// to under repair in the same transaction so a directly assigned ticket
// looks exactly like a claimed one.
func (s *DispatchService) AssignTicketDirectly(ctx context.Context, ticketID, workerID string, assignedBy *string) error {
	worker, err := s.lineman(ctx, workerID)
	if err != nil {
		return err
	}

	var assigned domain.Ticket
	err = s.atomic.RunAtomic(ctx, func(ctx context.Context, tx repository.Stores) error {
		ticket, err := tx.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if !domain.CanTransition(ticket.Status, domain.TicketStatusAssigned) {
			return apperrors.NewInvalidTransition(ticketID, string(ticket.Status), string(domain.TicketStatusAssigned))
		}

		ticket.Status = domain.TicketStatusAssigned
		ticket.AssignedWorkerID = &worker.ID
		name := worker.DisplayName
		ticket.AssignedWorkerName = &name
		if err := tx.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := tx.Assets.SetStatus(ctx, ticket.AssetRef, domain.AssetStatusUnderRepair); err != nil {
			return err
		}
		if err := s.recordChange(ctx, tx.History, ticket.ID, assignedBy, domain.ChangeTypeAssigned,
			map[string]any{"status": domain.TicketStatusOpen},
			map[string]any{"status": ticket.Status, "assigned_worker_id": worker.ID},
		); err != nil {
			return err
		}
		assigned = *ticket
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: assigned.ID,
		AssetID:  assigned.AssetRef,
		ActorID:  assignedBy,
		Payload: events.TicketAssignedPayload{
			WorkerID:   worker.ID,
			WorkerName: worker.DisplayName,
			AssignedBy: assignedBy,
		},
	})
	return nil
}

// ResolveTicket atomically moves an Assigned ticket to Resolved and the
// streetlight back to working. Resolved is terminal; repeated calls fail
// with INVALID_TRANSITION.
func (s *DispatchService) ResolveTicket(ctx context.Context, ticketID string) error {
	var resolved domain.Ticket
	err := s.atomic.RunAtomic(ctx, func(ctx context.Context, tx repository.Stores) error {
		ticket, err := tx.Tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if !domain.CanTransition(ticket.Status, domain.TicketStatusResolved) {
			return apperrors.NewInvalidTransition(ticketID, string(ticket.Status), string(domain.TicketStatusResolved))
		}

		now := time.Now()
		ticket.Status = domain.TicketStatusResolved
		ticket.ResolvedAt = &now
		if err := tx.Tickets.Update(ctx, ticket); err != nil {
			return err
		}
		if err := tx.Assets.SetStatus(ctx, ticket.AssetRef, domain.AssetStatusWorking); err != nil {
			return err
		}
		if err := s.recordChange(ctx, tx.History, ticket.ID, ticket.AssignedWorkerID, domain.ChangeTypeResolved,
			map[string]any{"status": domain.TicketStatusAssigned},
			map[string]any{"status": ticket.Status, "resolved_at": now},
		); err != nil {
			return err
		}
		resolved = *ticket
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: resolved.ID,
		AssetID:  resolved.AssetRef,
		ActorID:  resolved.AssignedWorkerID,
		Payload: events.TicketResolvedPayload{
			AssetRef:   resolved.AssetRef,
			ResolvedAt: *resolved.ResolvedAt,
		},
	})
	return nil
}

// GetTicketHistory returns the ticket's audit trail, oldest first.
func (s *DispatchService) GetTicketHistory(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *DispatchService) lineman(ctx context.Context, workerID string) (*domain.Worker, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("worker", map[string]any{"worker_id": workerID})
		}
		return nil, apperrors.MapError(err)
	}
	if worker.Role != domain.WorkerRoleLineman {
		return nil, apperrors.NewForbidden("assignee must be a lineman")
	}
	return worker, nil
}

func (s *DispatchService) recordChange(ctx context.Context, history repository.HistoryRepository, ticketID string, actorID *string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if history == nil {
		return nil
	}
	return history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticketID,
		ChangedBy:  actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func (s *DispatchService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
