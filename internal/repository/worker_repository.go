package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// WorkerRepository defines persistence access for directory entries.
type WorkerRepository interface {
	Create(ctx context.Context, worker *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	ListByRole(ctx context.Context, role domain.WorkerRole) ([]domain.Worker, error)
	SetLocation(ctx context.Context, id string, loc domain.Coordinate, at time.Time) error
}

type workerRepository struct {
	db DBTX
}

// NewWorkerRepository returns a Postgres-backed implementation.
func NewWorkerRepository(db DBTX) WorkerRepository {
	return &workerRepository{db: db}
}

const workerColumns = `id, display_name, email, password_hash, role,
               last_lat, last_lon, location_updated_at, availability, created_at, updated_at`

func (r *workerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	const query = `
        INSERT INTO workers (display_name, email, password_hash, role, availability)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		worker.DisplayName,
		worker.Email,
		worker.PasswordHash,
		worker.Role,
		worker.Availability,
	).Scan(&worker.ID, &worker.CreatedAt, &worker.UpdatedAt)
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	return r.fetchSingle(ctx, `SELECT `+workerColumns+` FROM workers WHERE id=$1`, id)
}

func (r *workerRepository) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	return r.fetchSingle(ctx, `SELECT `+workerColumns+` FROM workers WHERE email=$1`, email)
}

func (r *workerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Worker, error) {
	var (
		worker   domain.Worker
		lat, lon *float64
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&worker.ID,
		&worker.DisplayName,
		&worker.Email,
		&worker.PasswordHash,
		&worker.Role,
		&lat,
		&lon,
		&worker.LocationUpdatedAt,
		&worker.Availability,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		worker.LastKnownLocation = &domain.Coordinate{Latitude: *lat, Longitude: *lon}
	}
	return &worker, nil
}

func (r *workerRepository) ListByRole(ctx context.Context, role domain.WorkerRole) ([]domain.Worker, error) {
	const query = `SELECT ` + workerColumns + ` FROM workers WHERE role=$1 ORDER BY display_name`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Worker
	for rows.Next() {
		var (
			worker   domain.Worker
			lat, lon *float64
		)
		if err := rows.Scan(
			&worker.ID,
			&worker.DisplayName,
			&worker.Email,
			&worker.PasswordHash,
			&worker.Role,
			&lat,
			&lon,
			&worker.LocationUpdatedAt,
			&worker.Availability,
			&worker.CreatedAt,
			&worker.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			worker.LastKnownLocation = &domain.Coordinate{Latitude: *lat, Longitude: *lon}
		}
		result = append(result, worker)
	}
	return result, rows.Err()
}

func (r *workerRepository) SetLocation(ctx context.Context, id string, loc domain.Coordinate, at time.Time) error {
	const query = `
        UPDATE workers SET last_lat=$1, last_lon=$2, location_updated_at=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.db.Exec(ctx, query, loc.Latitude, loc.Longitude, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
