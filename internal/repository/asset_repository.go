package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// AssetRepository encapsulates streetlight persistence.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	GetByAssetID(ctx context.Context, assetID string) (*domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
	SetStatus(ctx context.Context, id string, status domain.AssetStatus) error
}

type assetRepository struct {
	db DBTX
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(db DBTX) AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, asset_id, status, latitude, longitude, installed_at,
               registered_by, created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO streetlights (asset_id, status, latitude, longitude, installed_at, registered_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		asset.AssetID,
		asset.Status,
		asset.Location.Latitude,
		asset.Location.Longitude,
		asset.InstalledAt,
		asset.RegisteredBy,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	return r.fetchSingle(ctx, `SELECT `+assetColumns+` FROM streetlights WHERE id=$1`, id)
}

func (r *assetRepository) GetByAssetID(ctx context.Context, assetID string) (*domain.Asset, error) {
	return r.fetchSingle(ctx, `SELECT `+assetColumns+` FROM streetlights WHERE asset_id=$1`, assetID)
}

func (r *assetRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&asset.ID,
		&asset.AssetID,
		&asset.Status,
		&asset.Location.Latitude,
		&asset.Location.Longitude,
		&asset.InstalledAt,
		&asset.RegisteredBy,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	const query = `SELECT ` + assetColumns + ` FROM streetlights ORDER BY installed_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(
			&asset.ID,
			&asset.AssetID,
			&asset.Status,
			&asset.Location.Latitude,
			&asset.Location.Longitude,
			&asset.InstalledAt,
			&asset.RegisteredBy,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func (r *assetRepository) SetStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	const query = `UPDATE streetlights SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
