package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const expenseCategoryColumns = `id, branch_id, name, keywords, is_active, created_at`

func scanExpenseCategory(row interface{ Scan(...any) error }) (ExpenseCategory, error) {
	var i ExpenseCategory
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Name,
		&i.Keywords,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const listExpenseCategories = `-- name: ListExpenseCategories :many
SELECT ` + expenseCategoryColumns + ` FROM expense_categories
WHERE branch_id = $1 AND is_active = true
ORDER BY name`

func (q *Queries) ListExpenseCategories(ctx context.Context, branchID uuid.UUID) ([]ExpenseCategory, error) {
	rows, err := q.db.Query(ctx, listExpenseCategories, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ExpenseCategory{}
	for rows.Next() {
		i, err := scanExpenseCategory(rows)
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

const getExpenseCategory = `-- name: GetExpenseCategory :one
SELECT ` + expenseCategoryColumns + ` FROM expense_categories
WHERE id = $1 AND branch_id = $2 AND is_active = true`

type GetExpenseCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetExpenseCategory(ctx context.Context, arg GetExpenseCategoryParams) (ExpenseCategory, error) {
	return scanExpenseCategory(q.db.QueryRow(ctx, getExpenseCategory, arg.ID, arg.BranchID))
}

const createExpenseCategory = `-- name: CreateExpenseCategory :one
INSERT INTO expense_categories (branch_id, name, keywords)
VALUES ($1, $2, $3)
RETURNING ` + expenseCategoryColumns

type CreateExpenseCategoryParams struct {
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
	Keywords []string  `json:"keywords"`
}

func (q *Queries) CreateExpenseCategory(ctx context.Context, arg CreateExpenseCategoryParams) (ExpenseCategory, error) {
	return scanExpenseCategory(q.db.QueryRow(ctx, createExpenseCategory, arg.BranchID, arg.Name, arg.Keywords))
}

const updateExpenseCategory = `-- name: UpdateExpenseCategory :one
UPDATE expense_categories SET name = $3, keywords = $4
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + expenseCategoryColumns

type UpdateExpenseCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
	Name     string    `json:"name"`
	Keywords []string  `json:"keywords"`
}

func (q *Queries) UpdateExpenseCategory(ctx context.Context, arg UpdateExpenseCategoryParams) (ExpenseCategory, error) {
	return scanExpenseCategory(q.db.QueryRow(ctx, updateExpenseCategory, arg.ID, arg.BranchID, arg.Name, arg.Keywords))
}

const deactivateExpenseCategory = `-- name: DeactivateExpenseCategory :one
UPDATE expense_categories SET is_active = false
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id`

type DeactivateExpenseCategoryParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeactivateExpenseCategory(ctx context.Context, arg DeactivateExpenseCategoryParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deactivateExpenseCategory, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}

const expenseColumns = `id, branch_id, category_id, account_id, amount, description, expense_date, created_by, created_at`

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.CategoryID,
		&i.AccountID,
		&i.Amount,
		&i.Description,
		&i.ExpenseDate,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (branch_id, category_id, account_id, amount, description, expense_date, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	BranchID    uuid.UUID      `json:"branch_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Amount      pgtype.Numeric `json:"amount"`
	Description string         `json:"description"`
	ExpenseDate pgtype.Date    `json:"expense_date"`
	CreatedBy   uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, createExpense,
		arg.BranchID,
		arg.CategoryID,
		arg.AccountID,
		arg.Amount,
		arg.Description,
		arg.ExpenseDate,
		arg.CreatedBy,
	))
}

const getExpenseForUpdate = `-- name: GetExpenseForUpdate :one
SELECT ` + expenseColumns + ` FROM expenses
WHERE id = $1 AND branch_id = $2
FOR UPDATE`

type GetExpenseForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetExpenseForUpdate(ctx context.Context, arg GetExpenseForUpdateParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, getExpenseForUpdate, arg.ID, arg.BranchID))
}

const deleteExpense = `-- name: DeleteExpense :exec
DELETE FROM expenses WHERE id = $1`

func (q *Queries) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteExpense, id)
	return err
}

const listExpenses = `-- name: ListExpenses :many
SELECT e.id, e.branch_id, e.category_id, e.account_id, e.amount, e.description,
    e.expense_date, e.created_by, e.created_at,
    c.name AS category_name, a.name AS account_name
FROM expenses e
JOIN expense_categories c ON c.id = e.category_id
JOIN cash_accounts a ON a.id = e.account_id
WHERE e.branch_id = $1
  AND ($2::date IS NULL OR e.expense_date >= $2)
  AND ($3::date IS NULL OR e.expense_date <= $3)
  AND ($4::uuid IS NULL OR e.category_id = $4)
ORDER BY e.expense_date DESC, e.created_at DESC
LIMIT $5 OFFSET $6`

type ListExpensesParams struct {
	BranchID   uuid.UUID   `json:"branch_id"`
	StartDate  pgtype.Date `json:"start_date"`
	EndDate    pgtype.Date `json:"end_date"`
	CategoryID pgtype.UUID `json:"category_id"`
	Limit      int32       `json:"limit"`
	Offset     int32       `json:"offset"`
}

type ListExpensesRow struct {
	ID           uuid.UUID      `json:"id"`
	BranchID     uuid.UUID      `json:"branch_id"`
	CategoryID   uuid.UUID      `json:"category_id"`
	AccountID    uuid.UUID      `json:"account_id"`
	Amount       pgtype.Numeric `json:"amount"`
	Description  string         `json:"description"`
	ExpenseDate  pgtype.Date    `json:"expense_date"`
	CreatedBy    uuid.UUID      `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	CategoryName string         `json:"category_name"`
	AccountName  string         `json:"account_name"`
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]ListExpensesRow, error) {
	rows, err := q.db.Query(ctx, listExpenses,
		arg.BranchID,
		arg.StartDate,
		arg.EndDate,
		arg.CategoryID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListExpensesRow{}
	for rows.Next() {
		var i ListExpensesRow
		if err := rows.Scan(
			&i.ID,
			&i.BranchID,
			&i.CategoryID,
			&i.AccountID,
			&i.Amount,
			&i.Description,
			&i.ExpenseDate,
			&i.CreatedBy,
			&i.CreatedAt,
			&i.CategoryName,
			&i.AccountName,
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

const sumExpenses = `-- name: SumExpenses :one
SELECT COALESCE(SUM(amount), 0)::numeric FROM expenses
WHERE branch_id = $1 AND expense_date >= $2 AND expense_date <= $3`

type SumExpensesParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) SumExpenses(ctx context.Context, arg SumExpensesParams) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, sumExpenses, arg.BranchID, arg.StartDate, arg.EndDate).Scan(&total)
	return total, err
}
