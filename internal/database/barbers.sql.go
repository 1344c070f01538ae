package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const barberColumns = `id, branch_id, name, phone, base_salary, commission_rate, is_active, created_at, updated_at`

func scanBarber(row interface{ Scan(...any) error }) (Barber, error) {
	var i Barber
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Name,
		&i.Phone,
		&i.BaseSalary,
		&i.CommissionRate,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBarbers = `-- name: ListBarbers :many
SELECT ` + barberColumns + ` FROM barbers
WHERE branch_id = $1 AND ($2::boolean OR is_active)
ORDER BY name`

type ListBarbersParams struct {
	BranchID        uuid.UUID `json:"branch_id"`
	IncludeInactive bool      `json:"include_inactive"`
}

func (q *Queries) ListBarbers(ctx context.Context, arg ListBarbersParams) ([]Barber, error) {
	rows, err := q.db.Query(ctx, listBarbers, arg.BranchID, arg.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Barber{}
	for rows.Next() {
		i, err := scanBarber(rows)
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

const getBarber = `-- name: GetBarber :one
SELECT ` + barberColumns + ` FROM barbers
WHERE id = $1 AND branch_id = $2`

type GetBarberParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetBarber(ctx context.Context, arg GetBarberParams) (Barber, error) {
	return scanBarber(q.db.QueryRow(ctx, getBarber, arg.ID, arg.BranchID))
}

const getBarberForUpdate = `-- name: GetBarberForUpdate :one
SELECT ` + barberColumns + ` FROM barbers
WHERE id = $1 AND branch_id = $2
FOR UPDATE`

func (q *Queries) GetBarberForUpdate(ctx context.Context, arg GetBarberParams) (Barber, error) {
	return scanBarber(q.db.QueryRow(ctx, getBarberForUpdate, arg.ID, arg.BranchID))
}

const createBarber = `-- name: CreateBarber :one
INSERT INTO barbers (branch_id, name, phone, base_salary, commission_rate)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + barberColumns

type CreateBarberParams struct {
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Phone          pgtype.Text    `json:"phone"`
	BaseSalary     pgtype.Numeric `json:"base_salary"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
}

func (q *Queries) CreateBarber(ctx context.Context, arg CreateBarberParams) (Barber, error) {
	return scanBarber(q.db.QueryRow(ctx, createBarber,
		arg.BranchID,
		arg.Name,
		arg.Phone,
		arg.BaseSalary,
		arg.CommissionRate,
	))
}

const updateBarber = `-- name: UpdateBarber :one
UPDATE barbers
SET name = $3, phone = $4, base_salary = $5, commission_rate = $6, is_active = $7, updated_at = now()
WHERE id = $1 AND branch_id = $2
RETURNING ` + barberColumns

type UpdateBarberParams struct {
	ID             uuid.UUID      `json:"id"`
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Phone          pgtype.Text    `json:"phone"`
	BaseSalary     pgtype.Numeric `json:"base_salary"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
	IsActive       bool           `json:"is_active"`
}

func (q *Queries) UpdateBarber(ctx context.Context, arg UpdateBarberParams) (Barber, error) {
	return scanBarber(q.db.QueryRow(ctx, updateBarber,
		arg.ID,
		arg.BranchID,
		arg.Name,
		arg.Phone,
		arg.BaseSalary,
		arg.CommissionRate,
		arg.IsActive,
	))
}

const deactivateBarber = `-- name: DeactivateBarber :one
UPDATE barbers SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id`

type DeactivateBarberParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeactivateBarber(ctx context.Context, arg DeactivateBarberParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deactivateBarber, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}
