package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const salaryPeriodColumns = `id, branch_id, barber_id, start_date, end_date, status, base_salary,
    commission_total, bonus_total, deduction_total, debt_deduction, net_amount,
    paid_at, paid_by, created_at, updated_at`

func scanSalaryPeriod(row interface{ Scan(...any) error }) (SalaryPeriod, error) {
	var i SalaryPeriod
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.BarberID,
		&i.StartDate,
		&i.EndDate,
		&i.Status,
		&i.BaseSalary,
		&i.CommissionTotal,
		&i.BonusTotal,
		&i.DeductionTotal,
		&i.DebtDeduction,
		&i.NetAmount,
		&i.PaidAt,
		&i.PaidBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// ---------------------------------------------------------------------------
// Periods
// ---------------------------------------------------------------------------

const countOverlappingPeriods = `-- name: CountOverlappingPeriods :one
SELECT COUNT(*) FROM salary_periods
WHERE barber_id = $1 AND start_date <= $3 AND end_date >= $2`

type CountOverlappingPeriodsParams struct {
	BarberID  uuid.UUID   `json:"barber_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) CountOverlappingPeriods(ctx context.Context, arg CountOverlappingPeriodsParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countOverlappingPeriods, arg.BarberID, arg.StartDate, arg.EndDate).Scan(&count)
	return count, err
}

const createSalaryPeriod = `-- name: CreateSalaryPeriod :one
INSERT INTO salary_periods (branch_id, barber_id, start_date, end_date, base_salary)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + salaryPeriodColumns

type CreateSalaryPeriodParams struct {
	BranchID   uuid.UUID      `json:"branch_id"`
	BarberID   uuid.UUID      `json:"barber_id"`
	StartDate  pgtype.Date    `json:"start_date"`
	EndDate    pgtype.Date    `json:"end_date"`
	BaseSalary pgtype.Numeric `json:"base_salary"`
}

func (q *Queries) CreateSalaryPeriod(ctx context.Context, arg CreateSalaryPeriodParams) (SalaryPeriod, error) {
	return scanSalaryPeriod(q.db.QueryRow(ctx, createSalaryPeriod,
		arg.BranchID,
		arg.BarberID,
		arg.StartDate,
		arg.EndDate,
		arg.BaseSalary,
	))
}

const getSalaryPeriod = `-- name: GetSalaryPeriod :one
SELECT ` + salaryPeriodColumns + ` FROM salary_periods
WHERE id = $1 AND branch_id = $2`

type GetSalaryPeriodParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetSalaryPeriod(ctx context.Context, arg GetSalaryPeriodParams) (SalaryPeriod, error) {
	return scanSalaryPeriod(q.db.QueryRow(ctx, getSalaryPeriod, arg.ID, arg.BranchID))
}

const getSalaryPeriodForUpdate = `-- name: GetSalaryPeriodForUpdate :one
SELECT ` + salaryPeriodColumns + ` FROM salary_periods
WHERE id = $1 AND branch_id = $2
FOR UPDATE`

func (q *Queries) GetSalaryPeriodForUpdate(ctx context.Context, arg GetSalaryPeriodParams) (SalaryPeriod, error) {
	return scanSalaryPeriod(q.db.QueryRow(ctx, getSalaryPeriodForUpdate, arg.ID, arg.BranchID))
}

const listSalaryPeriods = `-- name: ListSalaryPeriods :many
SELECT ` + salaryPeriodColumns + ` FROM salary_periods
WHERE branch_id = $1
  AND ($2::uuid IS NULL OR barber_id = $2)
  AND ($3::text IS NULL OR status = $3)
ORDER BY start_date DESC, created_at DESC
LIMIT $4 OFFSET $5`

type ListSalaryPeriodsParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	BarberID pgtype.UUID `json:"barber_id"`
	Status   pgtype.Text `json:"status"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListSalaryPeriods(ctx context.Context, arg ListSalaryPeriodsParams) ([]SalaryPeriod, error) {
	rows, err := q.db.Query(ctx, listSalaryPeriods, arg.BranchID, arg.BarberID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SalaryPeriod{}
	for rows.Next() {
		i, err := scanSalaryPeriod(rows)
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

const deleteOpenSalaryPeriod = `-- name: DeleteOpenSalaryPeriod :one
DELETE FROM salary_periods
WHERE id = $1 AND branch_id = $2 AND status = 'OPEN'
RETURNING id`

type DeleteOpenSalaryPeriodParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeleteOpenSalaryPeriod(ctx context.Context, arg DeleteOpenSalaryPeriodParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteOpenSalaryPeriod, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}

const markSalaryPeriodPaid = `-- name: MarkSalaryPeriodPaid :one
UPDATE salary_periods SET
    status = 'PAID',
    commission_total = $2,
    bonus_total = $3,
    deduction_total = $4,
    debt_deduction = $5,
    net_amount = $6,
    paid_by = $7,
    paid_at = now(),
    updated_at = now()
WHERE id = $1 AND status = 'OPEN'
RETURNING ` + salaryPeriodColumns

type MarkSalaryPeriodPaidParams struct {
	ID              uuid.UUID      `json:"id"`
	CommissionTotal pgtype.Numeric `json:"commission_total"`
	BonusTotal      pgtype.Numeric `json:"bonus_total"`
	DeductionTotal  pgtype.Numeric `json:"deduction_total"`
	DebtDeduction   pgtype.Numeric `json:"debt_deduction"`
	NetAmount       pgtype.Numeric `json:"net_amount"`
	PaidBy          pgtype.UUID    `json:"paid_by"`
}

func (q *Queries) MarkSalaryPeriodPaid(ctx context.Context, arg MarkSalaryPeriodPaidParams) (SalaryPeriod, error) {
	return scanSalaryPeriod(q.db.QueryRow(ctx, markSalaryPeriodPaid,
		arg.ID,
		arg.CommissionTotal,
		arg.BonusTotal,
		arg.DeductionTotal,
		arg.DebtDeduction,
		arg.NetAmount,
		arg.PaidBy,
	))
}

// ---------------------------------------------------------------------------
// Adjustments
// ---------------------------------------------------------------------------

const createSalaryAdjustment = `-- name: CreateSalaryAdjustment :one
INSERT INTO salary_adjustments (period_id, kind, amount, description)
VALUES ($1, $2, $3, $4)
RETURNING id, period_id, kind, amount, description, created_at`

type CreateSalaryAdjustmentParams struct {
	PeriodID    uuid.UUID      `json:"period_id"`
	Kind        string         `json:"kind"`
	Amount      pgtype.Numeric `json:"amount"`
	Description string         `json:"description"`
}

func (q *Queries) CreateSalaryAdjustment(ctx context.Context, arg CreateSalaryAdjustmentParams) (SalaryAdjustment, error) {
	var i SalaryAdjustment
	err := q.db.QueryRow(ctx, createSalaryAdjustment, arg.PeriodID, arg.Kind, arg.Amount, arg.Description).Scan(
		&i.ID,
		&i.PeriodID,
		&i.Kind,
		&i.Amount,
		&i.Description,
		&i.CreatedAt,
	)
	return i, err
}

const listSalaryAdjustments = `-- name: ListSalaryAdjustments :many
SELECT id, period_id, kind, amount, description, created_at
FROM salary_adjustments WHERE period_id = $1
ORDER BY created_at`

func (q *Queries) ListSalaryAdjustments(ctx context.Context, periodID uuid.UUID) ([]SalaryAdjustment, error) {
	rows, err := q.db.Query(ctx, listSalaryAdjustments, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SalaryAdjustment{}
	for rows.Next() {
		var i SalaryAdjustment
		if err := rows.Scan(
			&i.ID,
			&i.PeriodID,
			&i.Kind,
			&i.Amount,
			&i.Description,
			&i.CreatedAt,
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

const deleteSalaryAdjustment = `-- name: DeleteSalaryAdjustment :one
DELETE FROM salary_adjustments WHERE id = $1 AND period_id = $2
RETURNING id`

type DeleteSalaryAdjustmentParams struct {
	ID       uuid.UUID `json:"id"`
	PeriodID uuid.UUID `json:"period_id"`
}

func (q *Queries) DeleteSalaryAdjustment(ctx context.Context, arg DeleteSalaryAdjustmentParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteSalaryAdjustment, arg.ID, arg.PeriodID).Scan(&id)
	return id, err
}

// ---------------------------------------------------------------------------
// Commission
// ---------------------------------------------------------------------------

const sumBarberCommission = `-- name: SumBarberCommission :one
SELECT
    COALESCE(SUM(ti.commission_amount), 0)::numeric AS commission,
    COALESCE(SUM(ti.quantity) FILTER (WHERE ti.kind = 'SERVICE'), 0)::bigint AS service_count,
    COALESCE(SUM(ti.subtotal), 0)::numeric AS revenue,
    COUNT(DISTINCT t.id) AS transaction_count
FROM transaction_items ti
JOIN transactions t ON t.id = ti.transaction_id
WHERE ti.barber_id = $1
  AND t.status = 'COMPLETED'
  AND t.transaction_date >= $2 AND t.transaction_date <= $3`

type SumBarberCommissionParams struct {
	BarberID  uuid.UUID   `json:"barber_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

type SumBarberCommissionRow struct {
	Commission       pgtype.Numeric `json:"commission"`
	ServiceCount     int64          `json:"service_count"`
	Revenue          pgtype.Numeric `json:"revenue"`
	TransactionCount int64          `json:"transaction_count"`
}

func (q *Queries) SumBarberCommission(ctx context.Context, arg SumBarberCommissionParams) (SumBarberCommissionRow, error) {
	var i SumBarberCommissionRow
	err := q.db.QueryRow(ctx, sumBarberCommission, arg.BarberID, arg.StartDate, arg.EndDate).Scan(
		&i.Commission,
		&i.ServiceCount,
		&i.Revenue,
		&i.TransactionCount,
	)
	return i, err
}

// ---------------------------------------------------------------------------
// Debts (kasbon)
// ---------------------------------------------------------------------------

const salaryDebtColumns = `id, branch_id, barber_id, account_id, amount, remaining, description, debt_date, status, created_by, created_at`

func scanSalaryDebt(row interface{ Scan(...any) error }) (SalaryDebt, error) {
	var i SalaryDebt
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.BarberID,
		&i.AccountID,
		&i.Amount,
		&i.Remaining,
		&i.Description,
		&i.DebtDate,
		&i.Status,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createSalaryDebt = `-- name: CreateSalaryDebt :one
INSERT INTO salary_debts (branch_id, barber_id, account_id, amount, remaining, description, debt_date, created_by)
VALUES ($1, $2, $3, $4, $4, $5, $6, $7)
RETURNING ` + salaryDebtColumns

type CreateSalaryDebtParams struct {
	BranchID    uuid.UUID      `json:"branch_id"`
	BarberID    uuid.UUID      `json:"barber_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Amount      pgtype.Numeric `json:"amount"`
	Description pgtype.Text    `json:"description"`
	DebtDate    pgtype.Date    `json:"debt_date"`
	CreatedBy   uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateSalaryDebt(ctx context.Context, arg CreateSalaryDebtParams) (SalaryDebt, error) {
	return scanSalaryDebt(q.db.QueryRow(ctx, createSalaryDebt,
		arg.BranchID,
		arg.BarberID,
		arg.AccountID,
		arg.Amount,
		arg.Description,
		arg.DebtDate,
		arg.CreatedBy,
	))
}

const listSalaryDebts = `-- name: ListSalaryDebts :many
SELECT ` + salaryDebtColumns + ` FROM salary_debts
WHERE branch_id = $1
  AND ($2::uuid IS NULL OR barber_id = $2)
  AND ($3::text IS NULL OR status = $3)
ORDER BY debt_date DESC, created_at DESC`

type ListSalaryDebtsParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	BarberID pgtype.UUID `json:"barber_id"`
	Status   pgtype.Text `json:"status"`
}

func (q *Queries) ListSalaryDebts(ctx context.Context, arg ListSalaryDebtsParams) ([]SalaryDebt, error) {
	rows, err := q.db.Query(ctx, listSalaryDebts, arg.BranchID, arg.BarberID, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSalaryDebts(rows)
}

const listOpenDebtsForUpdate = `-- name: ListOpenDebtsForUpdate :many
SELECT ` + salaryDebtColumns + ` FROM salary_debts
WHERE barber_id = $1 AND status = 'OPEN'
ORDER BY debt_date, created_at
FOR UPDATE`

func (q *Queries) ListOpenDebtsForUpdate(ctx context.Context, barberID uuid.UUID) ([]SalaryDebt, error) {
	rows, err := q.db.Query(ctx, listOpenDebtsForUpdate, barberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSalaryDebts(rows)
}

func collectSalaryDebts(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]SalaryDebt, error) {
	items := []SalaryDebt{}
	for rows.Next() {
		i, err := scanSalaryDebt(rows)
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

const sumOutstandingDebt = `-- name: SumOutstandingDebt :one
SELECT COALESCE(SUM(remaining), 0)::numeric FROM salary_debts
WHERE barber_id = $1 AND status = 'OPEN'`

func (q *Queries) SumOutstandingDebt(ctx context.Context, barberID uuid.UUID) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumOutstandingDebt, barberID).Scan(&total)
	return total, err
}

const applyDebtRepayment = `-- name: ApplyDebtRepayment :one
UPDATE salary_debts SET
    remaining = remaining - $2,
    status = CASE WHEN remaining - $2 = 0 THEN 'SETTLED' ELSE 'OPEN' END
WHERE id = $1 AND status = 'OPEN'
RETURNING ` + salaryDebtColumns

type ApplyDebtRepaymentParams struct {
	ID     uuid.UUID      `json:"id"`
	Amount pgtype.Numeric `json:"amount"`
}

func (q *Queries) ApplyDebtRepayment(ctx context.Context, arg ApplyDebtRepaymentParams) (SalaryDebt, error) {
	return scanSalaryDebt(q.db.QueryRow(ctx, applyDebtRepayment, arg.ID, arg.Amount))
}

const createDebtRepayment = `-- name: CreateDebtRepayment :one
INSERT INTO debt_repayments (debt_id, period_id, amount)
VALUES ($1, $2, $3)
RETURNING id, debt_id, period_id, amount, created_at`

type CreateDebtRepaymentParams struct {
	DebtID   uuid.UUID      `json:"debt_id"`
	PeriodID uuid.UUID      `json:"period_id"`
	Amount   pgtype.Numeric `json:"amount"`
}

func (q *Queries) CreateDebtRepayment(ctx context.Context, arg CreateDebtRepaymentParams) (DebtRepayment, error) {
	var i DebtRepayment
	err := q.db.QueryRow(ctx, createDebtRepayment, arg.DebtID, arg.PeriodID, arg.Amount).Scan(
		&i.ID,
		&i.DebtID,
		&i.PeriodID,
		&i.Amount,
		&i.CreatedAt,
	)
	return i, err
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

const createSalaryPayment = `-- name: CreateSalaryPayment :one
INSERT INTO salary_payments (period_id, account_id, amount, paid_by)
VALUES ($1, $2, $3, $4)
RETURNING id, period_id, account_id, amount, paid_by, paid_at`

type CreateSalaryPaymentParams struct {
	PeriodID  uuid.UUID      `json:"period_id"`
	AccountID uuid.UUID      `json:"account_id"`
	Amount    pgtype.Numeric `json:"amount"`
	PaidBy    uuid.UUID      `json:"paid_by"`
}

func (q *Queries) CreateSalaryPayment(ctx context.Context, arg CreateSalaryPaymentParams) (SalaryPayment, error) {
	var i SalaryPayment
	err := q.db.QueryRow(ctx, createSalaryPayment, arg.PeriodID, arg.AccountID, arg.Amount, arg.PaidBy).Scan(
		&i.ID,
		&i.PeriodID,
		&i.AccountID,
		&i.Amount,
		&i.PaidBy,
		&i.PaidAt,
	)
	return i, err
}

const getSalaryPaymentByPeriod = `-- name: GetSalaryPaymentByPeriod :one
SELECT id, period_id, account_id, amount, paid_by, paid_at
FROM salary_payments WHERE period_id = $1`

func (q *Queries) GetSalaryPaymentByPeriod(ctx context.Context, periodID uuid.UUID) (SalaryPayment, error) {
	var i SalaryPayment
	err := q.db.QueryRow(ctx, getSalaryPaymentByPeriod, periodID).Scan(
		&i.ID,
		&i.PeriodID,
		&i.AccountID,
		&i.Amount,
		&i.PaidBy,
		&i.PaidAt,
	)
	return i, err
}

const sumSalaryPaid = `-- name: SumSalaryPaid :one
SELECT COALESCE(SUM(sp.amount), 0)::numeric
FROM salary_payments sp
JOIN salary_periods p ON p.id = sp.period_id
WHERE p.branch_id = $1 AND sp.paid_at >= $2 AND sp.paid_at < $3`

type SumSalaryPaidParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

func (q *Queries) SumSalaryPaid(ctx context.Context, arg SumSalaryPaidParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumSalaryPaid, arg.BranchID, arg.From, arg.To).Scan(&total)
	return total, err
}
