package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const transactionColumns = `id, branch_id, transaction_number, customer_id, cashier_id, status,
    subtotal, discount_type, discount_value, discount_amount, total,
    cash_amount, bank_amount, qris_amount, cash_received, change_amount,
    idempotency_key, notes, transaction_date, void_reason, voided_by, voided_at, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.TransactionNumber,
		&i.CustomerID,
		&i.CashierID,
		&i.Status,
		&i.Subtotal,
		&i.DiscountType,
		&i.DiscountValue,
		&i.DiscountAmount,
		&i.Total,
		&i.CashAmount,
		&i.BankAmount,
		&i.QrisAmount,
		&i.CashReceived,
		&i.ChangeAmount,
		&i.IdempotencyKey,
		&i.Notes,
		&i.TransactionDate,
		&i.VoidReason,
		&i.VoidedBy,
		&i.VoidedAt,
		&i.CreatedAt,
	)
	return i, err
}

func collectTransactions(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close()
}) ([]Transaction, error) {
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		i, err := scanTransaction(rows)
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

const getNextTransactionSeq = `-- name: GetNextTransactionSeq :one
SELECT (COUNT(*) + 1)::int FROM transactions
WHERE branch_id = $1 AND transaction_date = $2`

type GetNextTransactionSeqParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	TransactionDate pgtype.Date `json:"transaction_date"`
}

func (q *Queries) GetNextTransactionSeq(ctx context.Context, arg GetNextTransactionSeqParams) (int32, error) {
	var seq int32
	err := q.db.QueryRow(ctx, getNextTransactionSeq, arg.BranchID, arg.TransactionDate).Scan(&seq)
	return seq, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    branch_id, transaction_number, customer_id, cashier_id,
    subtotal, discount_type, discount_value, discount_amount, total,
    cash_amount, bank_amount, qris_amount, cash_received, change_amount,
    idempotency_key, notes, transaction_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	BranchID          uuid.UUID      `json:"branch_id"`
	TransactionNumber string         `json:"transaction_number"`
	CustomerID        pgtype.UUID    `json:"customer_id"`
	CashierID         uuid.UUID      `json:"cashier_id"`
	Subtotal          pgtype.Numeric `json:"subtotal"`
	DiscountType      pgtype.Text    `json:"discount_type"`
	DiscountValue     pgtype.Numeric `json:"discount_value"`
	DiscountAmount    pgtype.Numeric `json:"discount_amount"`
	Total             pgtype.Numeric `json:"total"`
	CashAmount        pgtype.Numeric `json:"cash_amount"`
	BankAmount        pgtype.Numeric `json:"bank_amount"`
	QrisAmount        pgtype.Numeric `json:"qris_amount"`
	CashReceived      pgtype.Numeric `json:"cash_received"`
	ChangeAmount      pgtype.Numeric `json:"change_amount"`
	IdempotencyKey    pgtype.Text    `json:"idempotency_key"`
	Notes             pgtype.Text    `json:"notes"`
	TransactionDate   pgtype.Date    `json:"transaction_date"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, createTransaction,
		arg.BranchID,
		arg.TransactionNumber,
		arg.CustomerID,
		arg.CashierID,
		arg.Subtotal,
		arg.DiscountType,
		arg.DiscountValue,
		arg.DiscountAmount,
		arg.Total,
		arg.CashAmount,
		arg.BankAmount,
		arg.QrisAmount,
		arg.CashReceived,
		arg.ChangeAmount,
		arg.IdempotencyKey,
		arg.Notes,
		arg.TransactionDate,
	))
}

const createTransactionItem = `-- name: CreateTransactionItem :one
INSERT INTO transaction_items (
    transaction_id, catalog_item_id, barber_id, item_name, kind,
    quantity, unit_price, subtotal, commission_rate, commission_amount
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, transaction_id, catalog_item_id, barber_id, item_name, kind,
    quantity, unit_price, subtotal, commission_rate, commission_amount`

type CreateTransactionItemParams struct {
	TransactionID    uuid.UUID      `json:"transaction_id"`
	CatalogItemID    uuid.UUID      `json:"catalog_item_id"`
	BarberID         pgtype.UUID    `json:"barber_id"`
	ItemName         string         `json:"item_name"`
	Kind             string         `json:"kind"`
	Quantity         int32          `json:"quantity"`
	UnitPrice        pgtype.Numeric `json:"unit_price"`
	Subtotal         pgtype.Numeric `json:"subtotal"`
	CommissionRate   pgtype.Numeric `json:"commission_rate"`
	CommissionAmount pgtype.Numeric `json:"commission_amount"`
}

func scanTransactionItem(row interface{ Scan(...any) error }) (TransactionItem, error) {
	var i TransactionItem
	err := row.Scan(
		&i.ID,
		&i.TransactionID,
		&i.CatalogItemID,
		&i.BarberID,
		&i.ItemName,
		&i.Kind,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
		&i.CommissionRate,
		&i.CommissionAmount,
	)
	return i, err
}

func (q *Queries) CreateTransactionItem(ctx context.Context, arg CreateTransactionItemParams) (TransactionItem, error) {
	return scanTransactionItem(q.db.QueryRow(ctx, createTransactionItem,
		arg.TransactionID,
		arg.CatalogItemID,
		arg.BarberID,
		arg.ItemName,
		arg.Kind,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
		arg.CommissionRate,
		arg.CommissionAmount,
	))
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = $1 AND branch_id = $2`

type GetTransactionParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetTransaction(ctx context.Context, arg GetTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransaction, arg.ID, arg.BranchID))
}

const getTransactionForUpdate = `-- name: GetTransactionForUpdate :one
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = $1 AND branch_id = $2
FOR UPDATE`

type GetTransactionForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetTransactionForUpdate(ctx context.Context, arg GetTransactionForUpdateParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionForUpdate, arg.ID, arg.BranchID))
}

const getTransactionByIdempotencyKey = `-- name: GetTransactionByIdempotencyKey :one
SELECT ` + transactionColumns + ` FROM transactions
WHERE branch_id = $1 AND idempotency_key = $2`

type GetTransactionByIdempotencyKeyParams struct {
	BranchID       uuid.UUID   `json:"branch_id"`
	IdempotencyKey pgtype.Text `json:"idempotency_key"`
}

func (q *Queries) GetTransactionByIdempotencyKey(ctx context.Context, arg GetTransactionByIdempotencyKeyParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, getTransactionByIdempotencyKey, arg.BranchID, arg.IdempotencyKey))
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + ` FROM transactions
WHERE branch_id = $1
  AND ($2::date IS NULL OR transaction_date >= $2)
  AND ($3::date IS NULL OR transaction_date <= $3)
  AND ($4::text IS NULL OR status = $4)
ORDER BY created_at DESC, id
LIMIT $5 OFFSET $6`

type ListTransactionsParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Status    pgtype.Text `json:"status"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactions,
		arg.BranchID,
		arg.StartDate,
		arg.EndDate,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

const listTransactionItems = `-- name: ListTransactionItems :many
SELECT id, transaction_id, catalog_item_id, barber_id, item_name, kind,
    quantity, unit_price, subtotal, commission_rate, commission_amount
FROM transaction_items
WHERE transaction_id = $1
ORDER BY item_name, id`

func (q *Queries) ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]TransactionItem, error) {
	rows, err := q.db.Query(ctx, listTransactionItems, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TransactionItem{}
	for rows.Next() {
		i, err := scanTransactionItem(rows)
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

const voidTransaction = `-- name: VoidTransaction :one
UPDATE transactions
SET status = 'VOIDED', void_reason = $2, voided_by = $3, voided_at = now()
WHERE id = $1 AND status = 'COMPLETED'
RETURNING ` + transactionColumns

type VoidTransactionParams struct {
	ID         uuid.UUID   `json:"id"`
	VoidReason pgtype.Text `json:"void_reason"`
	VoidedBy   pgtype.UUID `json:"voided_by"`
}

func (q *Queries) VoidTransaction(ctx context.Context, arg VoidTransactionParams) (Transaction, error) {
	return scanTransaction(q.db.QueryRow(ctx, voidTransaction, arg.ID, arg.VoidReason, arg.VoidedBy))
}

const countPaidPeriodsForTransaction = `-- name: CountPaidPeriodsForTransaction :one
SELECT COUNT(*) FROM salary_periods sp
WHERE sp.status = 'PAID'
  AND sp.start_date <= $2 AND sp.end_date >= $2
  AND sp.barber_id IN (
    SELECT ti.barber_id FROM transaction_items ti
    WHERE ti.transaction_id = $1 AND ti.barber_id IS NOT NULL
  )`

type CountPaidPeriodsForTransactionParams struct {
	TransactionID   uuid.UUID   `json:"transaction_id"`
	TransactionDate pgtype.Date `json:"transaction_date"`
}

// CountPaidPeriodsForTransaction counts PAID salary periods of the
// transaction's barbers that cover its date.
func (q *Queries) CountPaidPeriodsForTransaction(ctx context.Context, arg CountPaidPeriodsForTransactionParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countPaidPeriodsForTransaction, arg.TransactionID, arg.TransactionDate).Scan(&count)
	return count, err
}
