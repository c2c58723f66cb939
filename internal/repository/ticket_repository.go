package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetByIDForUpdate reads the ticket while holding a write lock for the
	// remainder of the enclosing transaction. Outside a transaction it
	// behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	// ListByStatus returns tickets in the given status ordered by
	// created_at descending.
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	// FindActiveByAsset returns the Open or Assigned ticket for the asset,
	// or nil when the asset has no active ticket.
	FindActiveByAsset(ctx context.Context, assetRef string) (*domain.Ticket, error)
	// ListAssignedToWorker returns the worker's Assigned tickets ordered by
	// created_at descending.
	ListAssignedToWorker(ctx context.Context, workerID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, external_key, asset_ref, asset_external_id, status,
               latitude, longitude, assigned_worker_id, assigned_worker_name,
               created_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, asset_ref, asset_external_id, status, latitude, longitude)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.AssetRef,
		ticket.AssetExternalID,
		ticket.Status,
		ticket.Location.Latitude,
		ticket.Location.Longitude,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, assigned_worker_id=$2, assigned_worker_name=$3, resolved_at=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		ticket.Status,
		ticket.AssignedWorkerID,
		ticket.AssignedWorkerName,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id)
}

func (r *ticketRepository) FindActiveByAsset(ctx context.Context, assetRef string) (*domain.Ticket, error) {
	ticket, err := r.fetchSingle(ctx, `SELECT `+ticketColumns+`
        FROM tickets WHERE asset_ref=$1 AND status IN ('Open','Assigned') LIMIT 1`, assetRef)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ticket, err
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.AssetRef,
		&ticket.AssetExternalID,
		&ticket.Status,
		&ticket.Location.Latitude,
		&ticket.Location.Longitude,
		&ticket.AssignedWorkerID,
		&ticket.AssignedWorkerName,
		&ticket.CreatedAt,
		&ticket.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE status=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListAssignedToWorker(ctx context.Context, workerID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE assigned_worker_id=$1 AND status='Assigned' ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ExternalKey,
			&ticket.AssetRef,
			&ticket.AssetExternalID,
			&ticket.Status,
			&ticket.Location.Latitude,
			&ticket.Location.Longitude,
			&ticket.AssignedWorkerID,
			&ticket.AssignedWorkerName,
			&ticket.CreatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
