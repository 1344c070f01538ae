package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const branchColumns = `id, name, address, phone, is_active, created_at, updated_at`

func scanBranch(row interface{ Scan(...any) error }) (Branch, error) {
	var i Branch
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Address,
		&i.Phone,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createBranch = `-- name: CreateBranch :one
INSERT INTO branches (name, address, phone)
VALUES ($1, $2, $3)
RETURNING ` + branchColumns

type CreateBranchParams struct {
	Name    string      `json:"name"`
	Address pgtype.Text `json:"address"`
	Phone   pgtype.Text `json:"phone"`
}

func (q *Queries) CreateBranch(ctx context.Context, arg CreateBranchParams) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx, createBranch, arg.Name, arg.Address, arg.Phone))
}

const getBranch = `-- name: GetBranch :one
SELECT ` + branchColumns + ` FROM branches WHERE id = $1`

func (q *Queries) GetBranch(ctx context.Context, id uuid.UUID) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx, getBranch, id))
}

const listBranches = `-- name: ListBranches :many
SELECT ` + branchColumns + ` FROM branches
WHERE ($1::boolean OR is_active)
ORDER BY name`

func (q *Queries) ListBranches(ctx context.Context, includeInactive bool) ([]Branch, error) {
	rows, err := q.db.Query(ctx, listBranches, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Branch{}
	for rows.Next() {
		i, err := scanBranch(rows)
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

const updateBranch = `-- name: UpdateBranch :one
UPDATE branches
SET name = $2, address = $3, phone = $4, is_active = $5, updated_at = now()
WHERE id = $1
RETURNING ` + branchColumns

type UpdateBranchParams struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Address  pgtype.Text `json:"address"`
	Phone    pgtype.Text `json:"phone"`
	IsActive bool        `json:"is_active"`
}

func (q *Queries) UpdateBranch(ctx context.Context, arg UpdateBranchParams) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx, updateBranch,
		arg.ID,
		arg.Name,
		arg.Address,
		arg.Phone,
		arg.IsActive,
	))
}
