package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cashAccountColumns = `id, branch_id, name, kind, balance, is_default, is_active, created_at, updated_at`

func scanCashAccount(row interface{ Scan(...any) error }) (CashAccount, error) {
	var i CashAccount
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Name,
		&i.Kind,
		&i.Balance,
		&i.IsDefault,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCashAccounts = `-- name: ListCashAccounts :many
SELECT ` + cashAccountColumns + ` FROM cash_accounts
WHERE branch_id = $1 AND is_active = true
ORDER BY is_default DESC, kind, name`

func (q *Queries) ListCashAccounts(ctx context.Context, branchID uuid.UUID) ([]CashAccount, error) {
	rows, err := q.db.Query(ctx, listCashAccounts, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CashAccount{}
	for rows.Next() {
		i, err := scanCashAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCashAccount = `-- name: GetCashAccount :one
SELECT ` + cashAccountColumns + ` FROM cash_accounts
WHERE id = $1 AND branch_id = $2`

type GetCashAccountParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetCashAccount(ctx context.Context, arg GetCashAccountParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, getCashAccount, arg.ID, arg.BranchID))
}

const getCashAccountForUpdate = `-- name: GetCashAccountForUpdate :one
SELECT ` + cashAccountColumns + ` FROM cash_accounts
WHERE id = $1 AND branch_id = $2
FOR UPDATE`

type GetCashAccountForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetCashAccountForUpdate(ctx context.Context, arg GetCashAccountForUpdateParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, getCashAccountForUpdate, arg.ID, arg.BranchID))
}

const getDefaultCashAccountForUpdate = `-- name: GetDefaultCashAccountForUpdate :one
SELECT ` + cashAccountColumns + ` FROM cash_accounts
WHERE branch_id = $1 AND kind = $2 AND is_default = true AND is_active = true
FOR UPDATE`

type GetDefaultCashAccountForUpdateParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Kind     string    `json:"kind"`
}

func (q *Queries) GetDefaultCashAccountForUpdate(ctx context.Context, arg GetDefaultCashAccountForUpdateParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, getDefaultCashAccountForUpdate, arg.BranchID, arg.Kind))
}

const createCashAccount = `-- name: CreateCashAccount :one
INSERT INTO cash_accounts (branch_id, name, kind, balance)
VALUES ($1, $2, $3, $4)
RETURNING ` + cashAccountColumns

type CreateCashAccountParams struct {
	BranchID uuid.UUID      `json:"branch_id"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Balance  pgtype.Numeric `json:"balance"`
}

func (q *Queries) CreateCashAccount(ctx context.Context, arg CreateCashAccountParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, createCashAccount, arg.BranchID, arg.Name, arg.Kind, arg.Balance))
}

const ensureDefaultCashAccount = `-- name: EnsureDefaultCashAccount :execrows
INSERT INTO cash_accounts (branch_id, name, kind, is_default)
VALUES ($1, $2, $3, true)
ON CONFLICT (branch_id, kind) WHERE is_default DO NOTHING`

type EnsureDefaultCashAccountParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
}

// EnsureDefaultCashAccount returns the number of rows inserted (0 when the
// branch already has a default account of that kind).
func (q *Queries) EnsureDefaultCashAccount(ctx context.Context, arg EnsureDefaultCashAccountParams) (int64, error) {
	result, err := q.db.Exec(ctx, ensureDefaultCashAccount, arg.BranchID, arg.Name, arg.Kind)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateCashAccount = `-- name: UpdateCashAccount :one
UPDATE cash_accounts SET name = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + cashAccountColumns

type UpdateCashAccountParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
}

func (q *Queries) UpdateCashAccount(ctx context.Context, arg UpdateCashAccountParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, updateCashAccount, arg.ID, arg.BranchID, arg.Name))
}

const deactivateCashAccount = `-- name: DeactivateCashAccount :one
UPDATE cash_accounts SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + cashAccountColumns

type DeactivateCashAccountParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeactivateCashAccount(ctx context.Context, arg DeactivateCashAccountParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, deactivateCashAccount, arg.ID, arg.BranchID))
}

const addCashAccountBalance = `-- name: AddCashAccountBalance :one
UPDATE cash_accounts SET balance = balance + $2, updated_at = now()
WHERE id = $1
RETURNING ` + cashAccountColumns

type AddCashAccountBalanceParams struct {
	ID     uuid.UUID      `json:"id"`
	Amount pgtype.Numeric `json:"amount"`
}

// AddCashAccountBalance applies a signed delta. The balance CHECK constraint
// rejects updates that would go below zero.
func (q *Queries) AddCashAccountBalance(ctx context.Context, arg AddCashAccountBalanceParams) (CashAccount, error) {
	return scanCashAccount(q.db.QueryRow(ctx, addCashAccountBalance, arg.ID, arg.Amount))
}

const sumCashBalances = `-- name: SumCashBalances :one
SELECT COALESCE(SUM(balance), 0)::numeric FROM cash_accounts
WHERE branch_id = $1 AND is_active = true`

func (q *Queries) SumCashBalances(ctx context.Context, branchID uuid.UUID) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumCashBalances, branchID).Scan(&total)
	return total, err
}
