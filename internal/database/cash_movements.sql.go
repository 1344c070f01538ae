package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cashMovementColumns = `id, branch_id, account_id, direction, category, amount, balance_after, description, reference_type, reference_id, created_by, created_at`

func scanCashMovement(row interface{ Scan(...any) error }) (CashMovement, error) {
	var i CashMovement
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.AccountID,
		&i.Direction,
		&i.Category,
		&i.Amount,
		&i.BalanceAfter,
		&i.Description,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createCashMovement = `-- name: CreateCashMovement :one
INSERT INTO cash_movements (
    branch_id, account_id, direction, category, amount, balance_after,
    description, reference_type, reference_id, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + cashMovementColumns

type CreateCashMovementParams struct {
	BranchID      uuid.UUID      `json:"branch_id"`
	AccountID     uuid.UUID      `json:"account_id"`
	Direction     string         `json:"direction"`
	Category      string         `json:"category"`
	Amount        pgtype.Numeric `json:"amount"`
	BalanceAfter  pgtype.Numeric `json:"balance_after"`
	Description   pgtype.Text    `json:"description"`
	ReferenceType pgtype.Text    `json:"reference_type"`
	ReferenceID   pgtype.UUID    `json:"reference_id"`
	CreatedBy     pgtype.UUID    `json:"created_by"`
}

func (q *Queries) CreateCashMovement(ctx context.Context, arg CreateCashMovementParams) (CashMovement, error) {
	return scanCashMovement(q.db.QueryRow(ctx, createCashMovement,
		arg.BranchID,
		arg.AccountID,
		arg.Direction,
		arg.Category,
		arg.Amount,
		arg.BalanceAfter,
		arg.Description,
		arg.ReferenceType,
		arg.ReferenceID,
		arg.CreatedBy,
	))
}

const listCashMovements = `-- name: ListCashMovements :many
SELECT ` + cashMovementColumns + ` FROM cash_movements
WHERE branch_id = $1
  AND ($2::uuid IS NULL OR account_id = $2)
  AND ($3::text IS NULL OR category = $3)
  AND ($4::date IS NULL OR (created_at AT TIME ZONE 'Asia/Jakarta')::date >= $4)
  AND ($5::date IS NULL OR (created_at AT TIME ZONE 'Asia/Jakarta')::date <= $5)
ORDER BY created_at DESC, id
LIMIT $6 OFFSET $7`

type ListCashMovementsParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	AccountID pgtype.UUID `json:"account_id"`
	Category  pgtype.Text `json:"category"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListCashMovements(ctx context.Context, arg ListCashMovementsParams) ([]CashMovement, error) {
	rows, err := q.db.Query(ctx, listCashMovements,
		arg.BranchID,
		arg.AccountID,
		arg.Category,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CashMovement{}
	for rows.Next() {
		i, err := scanCashMovement(rows)
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

const listMovementsByReference = `-- name: ListMovementsByReference :many
SELECT ` + cashMovementColumns + ` FROM cash_movements
WHERE reference_type = $1 AND reference_id = $2
ORDER BY created_at, id`

type ListMovementsByReferenceParams struct {
	ReferenceType pgtype.Text `json:"reference_type"`
	ReferenceID   pgtype.UUID `json:"reference_id"`
}

func (q *Queries) ListMovementsByReference(ctx context.Context, arg ListMovementsByReferenceParams) ([]CashMovement, error) {
	rows, err := q.db.Query(ctx, listMovementsByReference, arg.ReferenceType, arg.ReferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CashMovement{}
	for rows.Next() {
		i, err := scanCashMovement(rows)
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
