package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	q querier
}

const transactionColumns = `id, created_at, effective_at, user_id, type, amount, currency, category_id,
	description, merchant, payment_method, from_account_id, to_account_id, note, status, correction_of, metadata`

// Create inserts a transaction. Rows are never updated afterwards except for their status.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	var paymentMethod *string
	if t.PaymentMethod != nil {
		pm := string(*t.PaymentMethod)
		paymentMethod = &pm
	}
	var metadata any
	if len(t.Metadata) > 0 {
		metadata = t.Metadata
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO transactions (
			id, effective_at, user_id, type, amount, currency, category_id,
			description, merchant, payment_method, from_account_id, to_account_id,
			note, status, correction_of, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+transactionColumns,
		t.ID, t.EffectiveAt, t.UserID, string(t.Type), t.Amount, t.Currency, t.CategoryID,
		t.Description, t.Merchant, paymentMethod, t.FromAccountID, t.ToAccountID,
		t.Note, string(t.Status), t.CorrectionOf, metadata,
	)
	created, err := scanTransaction(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("%w: transaction '%s'", domain.ErrAlreadyExists, t.ID)
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction by id
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFoundOr(err, "Transaction", id)
	}
	return t, nil
}

// UpdateStatus changes the status of a transaction
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) (*domain.Transaction, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE transactions SET status = $2
		WHERE id = $1
		RETURNING `+transactionColumns,
		id, string(status),
	)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFoundOr(err, "Transaction", id)
	}
	return t, nil
}

// List retrieves one page of matching transactions, newest effective time first
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	where, args := transactionWhere(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY effective_at DESC, created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Count returns the number of matching transactions, ignoring paging
func (r *TransactionRepository) Count(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	where, args := transactionWhere(filter)
	var count int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count)
	return count, err
}

// SumAmount returns the summed amount of matching transactions
func (r *TransactionRepository) SumAmount(ctx context.Context, filter domain.TransactionFilter) (int64, error) {
	where, args := transactionWhere(filter)
	var sum int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)::bigint FROM transactions`+where, args...).Scan(&sum)
	return sum, err
}

// BalanceComponents sums the posted credits and debits of one account
func (r *TransactionRepository) BalanceComponents(ctx context.Context, accountID string) (domain.BalanceComponents, error) {
	var b domain.BalanceComponents
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE to_account_id = $1 AND type IN ('income', 'transfer', 'adjustment')), 0)::bigint,
			COALESCE(SUM(amount) FILTER (WHERE from_account_id = $1 AND type IN ('expense', 'transfer')), 0)::bigint,
			COALESCE(SUM(amount) FILTER (WHERE from_account_id = $1 AND type = 'adjustment'), 0)::bigint
		FROM transactions
		WHERE status = 'posted' AND (from_account_id = $1 OR to_account_id = $1)`,
		accountID,
	).Scan(&b.Credits, &b.Debits, &b.AdjustmentDebits)
	return b, err
}

// transactionWhere renders the filter predicates as a WHERE clause
func transactionWhere(f domain.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.Type != nil {
		add("type = $%d", string(*f.Type))
	}
	if f.From != nil {
		add("effective_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("effective_at < $%d", *f.To)
	}
	if len(f.CategoryIDs) > 0 {
		add("category_id = ANY($%d)", f.CategoryIDs)
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(from_account_id = $%d OR to_account_id = $%d)", n, n))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(description ILIKE $%d OR merchant ILIKE $%d OR note ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t             domain.Transaction
		typ, status   string
		paymentMethod *string
	)
	err := row.Scan(
		&t.ID, &t.CreatedAt, &t.EffectiveAt, &t.UserID, &typ, &t.Amount, &t.Currency, &t.CategoryID,
		&t.Description, &t.Merchant, &paymentMethod, &t.FromAccountID, &t.ToAccountID,
		&t.Note, &status, &t.CorrectionOf, &t.Metadata,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TransactionType(typ)
	t.Status = domain.TransactionStatus(status)
	if paymentMethod != nil {
		pm := domain.PaymentMethod(*paymentMethod)
		t.PaymentMethod = &pm
	}
	return &t, nil
}
