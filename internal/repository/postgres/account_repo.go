package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	q querier
}

const accountColumns = `id, display_name, type, currency, owner_id, is_active, created_at`

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO accounts (id, display_name, type, currency, owner_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		account.ID, account.DisplayName, string(account.Type), account.Currency, account.OwnerID, account.IsActive,
	)
	created, err := scanAccount(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("%w: account '%s'", domain.ErrAlreadyExists, account.ID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an account by id, active or not
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, notFoundOr(err, "Account", id)
	}
	return account, nil
}

// List retrieves accounts matching the filter, shared accounts first
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY owner_id NULLS FIRST, display_name, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a   domain.Account
		typ string
	)
	if err := row.Scan(&a.ID, &a.DisplayName, &typ, &a.Currency, &a.OwnerID, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(typ)
	return &a, nil
}
