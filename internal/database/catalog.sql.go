package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const catalogItemColumns = `id, branch_id, name, kind, price, commission_rate, is_active, created_at, updated_at`

func scanCatalogItem(row interface{ Scan(...any) error }) (CatalogItem, error) {
	var i CatalogItem
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Name,
		&i.Kind,
		&i.Price,
		&i.CommissionRate,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listCatalogItems = `-- name: ListCatalogItems :many
SELECT ` + catalogItemColumns + ` FROM catalog_items
WHERE branch_id = $1
  AND ($2::text IS NULL OR kind = $2)
  AND ($3::boolean OR is_active)
ORDER BY kind DESC, name`

type ListCatalogItemsParams struct {
	BranchID        uuid.UUID   `json:"branch_id"`
	Kind            pgtype.Text `json:"kind"`
	IncludeInactive bool        `json:"include_inactive"`
}

func (q *Queries) ListCatalogItems(ctx context.Context, arg ListCatalogItemsParams) ([]CatalogItem, error) {
	rows, err := q.db.Query(ctx, listCatalogItems, arg.BranchID, arg.Kind, arg.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CatalogItem{}
	for rows.Next() {
		i, err := scanCatalogItem(rows)
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

const getCatalogItem = `-- name: GetCatalogItem :one
SELECT ` + catalogItemColumns + ` FROM catalog_items
WHERE id = $1 AND branch_id = $2`

type GetCatalogItemParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetCatalogItem(ctx context.Context, arg GetCatalogItemParams) (CatalogItem, error) {
	return scanCatalogItem(q.db.QueryRow(ctx, getCatalogItem, arg.ID, arg.BranchID))
}

const createCatalogItem = `-- name: CreateCatalogItem :one
INSERT INTO catalog_items (branch_id, name, kind, price, commission_rate)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + catalogItemColumns

type CreateCatalogItemParams struct {
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	Price          pgtype.Numeric `json:"price"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
}

func (q *Queries) CreateCatalogItem(ctx context.Context, arg CreateCatalogItemParams) (CatalogItem, error) {
	return scanCatalogItem(q.db.QueryRow(ctx, createCatalogItem,
		arg.BranchID,
		arg.Name,
		arg.Kind,
		arg.Price,
		arg.CommissionRate,
	))
}

const updateCatalogItem = `-- name: UpdateCatalogItem :one
UPDATE catalog_items
SET name = $3, kind = $4, price = $5, commission_rate = $6, is_active = $7, updated_at = now()
WHERE id = $1 AND branch_id = $2
RETURNING ` + catalogItemColumns

type UpdateCatalogItemParams struct {
	ID             uuid.UUID      `json:"id"`
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	Price          pgtype.Numeric `json:"price"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
	IsActive       bool           `json:"is_active"`
}

func (q *Queries) UpdateCatalogItem(ctx context.Context, arg UpdateCatalogItemParams) (CatalogItem, error) {
	return scanCatalogItem(q.db.QueryRow(ctx, updateCatalogItem,
		arg.ID,
		arg.BranchID,
		arg.Name,
		arg.Kind,
		arg.Price,
		arg.CommissionRate,
		arg.IsActive,
	))
}

const deactivateCatalogItem = `-- name: DeactivateCatalogItem :one
UPDATE catalog_items SET is_active = false, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id`

type DeactivateCatalogItemParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) DeactivateCatalogItem(ctx context.Context, arg DeactivateCatalogItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deactivateCatalogItem, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}
