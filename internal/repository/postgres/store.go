package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements domain.Transactor on top of a pgx pool
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool and verifies it with a ping
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// WithinTx runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(store domain.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Warn().Err(err).Msg("Failed to roll back transaction")
		}
	}()

	if err := fn(&txStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type txStore struct {
	q querier
}

func (s *txStore) Users() domain.UserRepository {
	return &UserRepository{q: s.q}
}

func (s *txStore) Accounts() domain.AccountRepository {
	return &AccountRepository{q: s.q}
}

func (s *txStore) Categories() domain.CategoryRepository {
	return &CategoryRepository{q: s.q}
}

func (s *txStore) Transactions() domain.TransactionRepository {
	return &TransactionRepository{q: s.q}
}

func (s *txStore) Budgets() domain.BudgetRepository {
	return &BudgetRepository{q: s.q}
}

func (s *txStore) BudgetSnapshots() domain.BudgetSnapshotRepository {
	return &BudgetSnapshotRepository{q: s.q}
}

// isPgUniqueViolation checks if an error is a PostgreSQL unique constraint violation
func isPgUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// PostgreSQL unique violation error code is 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// notFoundOr maps pgx.ErrNoRows to a domain not-found error
func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError(entity, id)
	}
	return err
}
