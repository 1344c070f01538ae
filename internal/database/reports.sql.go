package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listDailySales = `-- name: ListDailySales :many
SELECT
    transaction_date,
    COUNT(*)::int AS transaction_count,
    COALESCE(SUM(total), 0)::numeric AS total_sales,
    COALESCE(SUM(cash_amount), 0)::numeric AS cash_sales,
    COALESCE(SUM(bank_amount), 0)::numeric AS bank_sales,
    COALESCE(SUM(qris_amount), 0)::numeric AS qris_sales
FROM transactions
WHERE branch_id = $1 AND status = 'COMPLETED'
  AND transaction_date >= $2 AND transaction_date <= $3
GROUP BY transaction_date
ORDER BY transaction_date`

type ListDailySalesParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

type ListDailySalesRow struct {
	TransactionDate  pgtype.Date    `json:"transaction_date"`
	TransactionCount int32          `json:"transaction_count"`
	TotalSales       pgtype.Numeric `json:"total_sales"`
	CashSales        pgtype.Numeric `json:"cash_sales"`
	BankSales        pgtype.Numeric `json:"bank_sales"`
	QrisSales        pgtype.Numeric `json:"qris_sales"`
}

func (q *Queries) ListDailySales(ctx context.Context, arg ListDailySalesParams) ([]ListDailySalesRow, error) {
	rows, err := q.db.Query(ctx, listDailySales, arg.BranchID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListDailySalesRow{}
	for rows.Next() {
		var i ListDailySalesRow
		if err := rows.Scan(
			&i.TransactionDate,
			&i.TransactionCount,
			&i.TotalSales,
			&i.CashSales,
			&i.BankSales,
			&i.QrisSales,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBarberPerformance = `-- name: ListBarberPerformance :many
SELECT
    b.id AS barber_id,
    b.name AS barber_name,
    COALESCE(SUM(ti.quantity), 0)::bigint AS service_count,
    COALESCE(SUM(ti.subtotal), 0)::numeric AS revenue,
    COALESCE(SUM(ti.commission_amount), 0)::numeric AS commission
FROM barbers b
LEFT JOIN transaction_items ti ON ti.barber_id = b.id AND ti.kind = 'SERVICE'
    AND EXISTS (
        SELECT 1 FROM transactions t
        WHERE t.id = ti.transaction_id
          AND t.status = 'COMPLETED'
          AND t.transaction_date >= $2 AND t.transaction_date <= $3
    )
WHERE b.branch_id = $1
GROUP BY b.id, b.name
ORDER BY revenue DESC, b.name
LIMIT $4`

type ListBarberPerformanceParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Limit     int32       `json:"limit"`
}

type ListBarberPerformanceRow struct {
	BarberID     uuid.UUID      `json:"barber_id"`
	BarberName   string         `json:"barber_name"`
	ServiceCount int64          `json:"service_count"`
	Revenue      pgtype.Numeric `json:"revenue"`
	Commission   pgtype.Numeric `json:"commission"`
}

func (q *Queries) ListBarberPerformance(ctx context.Context, arg ListBarberPerformanceParams) ([]ListBarberPerformanceRow, error) {
	rows, err := q.db.Query(ctx, listBarberPerformance, arg.BranchID, arg.StartDate, arg.EndDate, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListBarberPerformanceRow{}
	for rows.Next() {
		var i ListBarberPerformanceRow
		if err := rows.Scan(
			&i.BarberID,
			&i.BarberName,
			&i.ServiceCount,
			&i.Revenue,
			&i.Commission,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
