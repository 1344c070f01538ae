package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDailySalesSummary = `-- name: GetDailySalesSummary :one
SELECT
    COUNT(*)::int AS transaction_count,
    COALESCE(SUM(total), 0)::numeric AS total_sales,
    COALESCE(SUM(cash_amount), 0)::numeric AS cash_sales,
    COALESCE(SUM(bank_amount), 0)::numeric AS bank_sales,
    COALESCE(SUM(qris_amount), 0)::numeric AS qris_sales
FROM transactions
WHERE branch_id = $1 AND transaction_date = $2 AND status = 'COMPLETED'`

type GetDailySalesSummaryParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	TransactionDate pgtype.Date `json:"transaction_date"`
}

type GetDailySalesSummaryRow struct {
	TransactionCount int32          `json:"transaction_count"`
	TotalSales       pgtype.Numeric `json:"total_sales"`
	CashSales        pgtype.Numeric `json:"cash_sales"`
	BankSales        pgtype.Numeric `json:"bank_sales"`
	QrisSales        pgtype.Numeric `json:"qris_sales"`
}

func (q *Queries) GetDailySalesSummary(ctx context.Context, arg GetDailySalesSummaryParams) (GetDailySalesSummaryRow, error) {
	var i GetDailySalesSummaryRow
	err := q.db.QueryRow(ctx, getDailySalesSummary, arg.BranchID, arg.TransactionDate).Scan(
		&i.TransactionCount,
		&i.TotalSales,
		&i.CashSales,
		&i.BankSales,
		&i.QrisSales,
	)
	return i, err
}

const dailyClosingColumns = `id, branch_id, closing_date, transaction_count, total_sales, cash_sales,
    bank_sales, qris_sales, total_expenses, closing_balance, notes, closed_by, created_at`

func scanDailyClosing(row interface{ Scan(...any) error }) (DailyClosing, error) {
	var i DailyClosing
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.ClosingDate,
		&i.TransactionCount,
		&i.TotalSales,
		&i.CashSales,
		&i.BankSales,
		&i.QrisSales,
		&i.TotalExpenses,
		&i.ClosingBalance,
		&i.Notes,
		&i.ClosedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createDailyClosing = `-- name: CreateDailyClosing :one
INSERT INTO daily_closings (
    branch_id, closing_date, transaction_count, total_sales, cash_sales,
    bank_sales, qris_sales, total_expenses, closing_balance, notes, closed_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + dailyClosingColumns

type CreateDailyClosingParams struct {
	BranchID         uuid.UUID      `json:"branch_id"`
	ClosingDate      pgtype.Date    `json:"closing_date"`
	TransactionCount int32          `json:"transaction_count"`
	TotalSales       pgtype.Numeric `json:"total_sales"`
	CashSales        pgtype.Numeric `json:"cash_sales"`
	BankSales        pgtype.Numeric `json:"bank_sales"`
	QrisSales        pgtype.Numeric `json:"qris_sales"`
	TotalExpenses    pgtype.Numeric `json:"total_expenses"`
	ClosingBalance   pgtype.Numeric `json:"closing_balance"`
	Notes            pgtype.Text    `json:"notes"`
	ClosedBy         pgtype.UUID    `json:"closed_by"`
}

func (q *Queries) CreateDailyClosing(ctx context.Context, arg CreateDailyClosingParams) (DailyClosing, error) {
	return scanDailyClosing(q.db.QueryRow(ctx, createDailyClosing,
		arg.BranchID,
		arg.ClosingDate,
		arg.TransactionCount,
		arg.TotalSales,
		arg.CashSales,
		arg.BankSales,
		arg.QrisSales,
		arg.TotalExpenses,
		arg.ClosingBalance,
		arg.Notes,
		arg.ClosedBy,
	))
}

const getDailyClosingByDate = `-- name: GetDailyClosingByDate :one
SELECT ` + dailyClosingColumns + ` FROM daily_closings
WHERE branch_id = $1 AND closing_date = $2`

type GetDailyClosingByDateParams struct {
	BranchID    uuid.UUID   `json:"branch_id"`
	ClosingDate pgtype.Date `json:"closing_date"`
}

func (q *Queries) GetDailyClosingByDate(ctx context.Context, arg GetDailyClosingByDateParams) (DailyClosing, error) {
	return scanDailyClosing(q.db.QueryRow(ctx, getDailyClosingByDate, arg.BranchID, arg.ClosingDate))
}

const listDailyClosings = `-- name: ListDailyClosings :many
SELECT ` + dailyClosingColumns + ` FROM daily_closings
WHERE branch_id = $1
  AND ($2::date IS NULL OR closing_date >= $2)
  AND ($3::date IS NULL OR closing_date <= $3)
ORDER BY closing_date DESC
LIMIT $4 OFFSET $5`

type ListDailyClosingsParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
	Offset    int32       `json:"offset"`
}

func (q *Queries) ListDailyClosings(ctx context.Context, arg ListDailyClosingsParams) ([]DailyClosing, error) {
	rows, err := q.db.Query(ctx, listDailyClosings, arg.BranchID, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DailyClosing{}
	for rows.Next() {
		i, err := scanDailyClosing(rows)
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
