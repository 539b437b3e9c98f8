package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs standalone or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles all repositories plus the transactional boundary. Multi-step
// writes that must be atomic (approve + post consumption) go through WithTx,
// which hands the closure a Store whose repositories are bound to one
// database transaction.
type Store interface {
	Users() UserRepository
	Properties() PropertyRepository
	SupplyItems() SupplyItemRepository
	Tasks() TaskRepository
	SupplyUsages() SupplyUsageRepository
	Inventory() InventoryRepository
	Leads() LeadRepository
	Reports() MaintenanceReportRepository

	// WithTx runs fn against transaction-bound repositories. Commit on nil
	// return, rollback otherwise. Nested calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool // nil when this store is transaction-bound
	db   DB
}

func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Users() UserRepository                { return &userRepo{db: s.db} }
func (s *pgStore) Properties() PropertyRepository       { return &propertyRepo{db: s.db} }
func (s *pgStore) SupplyItems() SupplyItemRepository    { return &supplyItemRepo{db: s.db} }
func (s *pgStore) Tasks() TaskRepository                { return &taskRepo{db: s.db} }
func (s *pgStore) SupplyUsages() SupplyUsageRepository  { return &supplyUsageRepo{db: s.db} }
func (s *pgStore) Inventory() InventoryRepository       { return &inventoryRepo{db: s.db} }
func (s *pgStore) Leads() LeadRepository                { return &leadRepo{db: s.db} }
func (s *pgStore) Reports() MaintenanceReportRepository { return &maintenanceReportRepo{db: s.db} }

func (s *pgStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		// Already inside a transaction.
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
