package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, branch_id, name, phone, notes, visit_count, last_visit_at, is_active, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Name,
		&i.Phone,
		&i.Notes,
		&i.VisitCount,
		&i.LastVisitAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCustomers = `-- name: ListCustomers :many
SELECT ` + customerColumns + ` FROM customers
WHERE branch_id = $1 AND is_active = true
  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
ORDER BY name
LIMIT $3 OFFSET $4`

type ListCustomersParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	Search   pgtype.Text `json:"search"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, arg.BranchID, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		i, err := scanCustomer(rows)
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

const getCustomer = `-- name: GetCustomer :one
SELECT ` + customerColumns + ` FROM customers
WHERE id = $1 AND branch_id = $2 AND is_active = true`

type GetCustomerParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetCustomer(ctx context.Context, arg GetCustomerParams) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, getCustomer, arg.ID, arg.BranchID))
}

const createCustomer = `-- name: CreateCustomer :one
INSERT INTO customers (branch_id, name, phone, notes)
VALUES ($1, $2, $3, $4)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	Name     string      `json:"name"`
	Phone    pgtype.Text `json:"phone"`
	Notes    pgtype.Text `json:"notes"`
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, createCustomer, arg.BranchID, arg.Name, arg.Phone, arg.Notes))
}

const updateCustomer = `-- name: UpdateCustomer :one
UPDATE customers SET name = $3, phone = $4, notes = $5, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	ID       uuid.UUID   `json:"id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Name     string      `json:"name"`
	Phone    pgtype.Text `json:"phone"`
	Notes    pgtype.Text `json:"notes"`
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, updateCustomer, arg.ID, arg.BranchID, arg.Name, arg.Phone, arg.Notes))
}

const softDeleteCustomer = `-- name: SoftDeleteCustomer :one
UPDATE customers SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id`

type SoftDeleteCustomerParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) SoftDeleteCustomer(ctx context.Context, arg SoftDeleteCustomerParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteCustomer, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}

const touchCustomerVisit = `-- name: TouchCustomerVisit :exec
UPDATE customers SET visit_count = visit_count + 1, last_visit_at = now(), updated_at = now()
WHERE id = $1 AND branch_id = $2`

type TouchCustomerVisitParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) TouchCustomerVisit(ctx context.Context, arg TouchCustomerVisitParams) error {
	_, err := q.db.Exec(ctx, touchCustomerVisit, arg.ID, arg.BranchID)
	return err
}
