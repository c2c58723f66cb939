package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx execution methods shared by pgxpool.Pool and
// pgx.Tx, so the same repository code serves pooled and transactional
// access.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores bundles the transactional views handed to a RunAtomic callback.
// Writes through these views commit together or not at all.
type Stores struct {
	Tickets TicketRepository
	Assets  AssetRepository
	History HistoryRepository
}

// Atomic is the multi-record transaction primitive. The callback reads and
// conditionally writes through tx; any error aborts the whole transaction.
// Claim and resolve depend on this for their all-or-nothing guarantee.
type Atomic interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

type pgAtomic struct {
	pool *pgxpool.Pool
}

// NewAtomic returns a Postgres-backed Atomic. Conflict detection comes from
// row locks taken by GetByIDForUpdate inside the transaction.
func NewAtomic(pool *pgxpool.Pool) Atomic {
	return &pgAtomic{pool: pool}
}

func (a *pgAtomic) RunAtomic(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	return pgx.BeginTxFunc(ctx, a.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, Stores{
			Tickets: NewTicketRepository(tx),
			Assets:  NewAssetRepository(tx),
			History: NewHistoryRepository(tx),
		})
	})
}
