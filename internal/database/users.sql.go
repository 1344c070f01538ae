package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, branch_id, email, hashed_password, full_name, role, pin, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Email,
		&i.HashedPassword,
		&i.FullName,
		&i.Role,
		&i.Pin,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT ` + userColumns + ` FROM users
WHERE email = $1 AND is_active = true`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByBranchAndPin = `-- name: GetUserByBranchAndPin :one
SELECT ` + userColumns + ` FROM users
WHERE branch_id = $1 AND pin = $2 AND is_active = true`

type GetUserByBranchAndPinParams struct {
	BranchID uuid.UUID   `json:"branch_id"`
	Pin      pgtype.Text `json:"pin"`
}

func (q *Queries) GetUserByBranchAndPin(ctx context.Context, arg GetUserByBranchAndPinParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByBranchAndPin, arg.BranchID, arg.Pin))
}

const getUserByID = `-- name: GetUserByID :one
SELECT ` + userColumns + ` FROM users
WHERE id = $1 AND is_active = true`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUser = `-- name: GetUser :one
SELECT ` + userColumns + ` FROM users
WHERE id = $1 AND branch_id = $2 AND is_active = true`

type GetUserParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) GetUser(ctx context.Context, arg GetUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUser, arg.ID, arg.BranchID))
}

const listUsersByBranch = `-- name: ListUsersByBranch :many
SELECT ` + userColumns + ` FROM users
WHERE branch_id = $1 AND is_active = true
ORDER BY full_name`

func (q *Queries) ListUsersByBranch(ctx context.Context, branchID uuid.UUID) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsersByBranch, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
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

const createUser = `-- name: CreateUser :one
INSERT INTO users (branch_id, email, hashed_password, full_name, role, pin)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

type CreateUserParams struct {
	BranchID       uuid.UUID   `json:"branch_id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"hashed_password"`
	FullName       string      `json:"full_name"`
	Role           string      `json:"role"`
	Pin            pgtype.Text `json:"pin"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, createUser,
		arg.BranchID,
		arg.Email,
		arg.HashedPassword,
		arg.FullName,
		arg.Role,
		arg.Pin,
	))
}

const updateUser = `-- name: UpdateUser :one
UPDATE users
SET email = $3, full_name = $4, role = $5, pin = $6, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING ` + userColumns

type UpdateUserParams struct {
	ID       uuid.UUID   `json:"id"`
	BranchID uuid.UUID   `json:"branch_id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     string      `json:"role"`
	Pin      pgtype.Text `json:"pin"`
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUser,
		arg.ID,
		arg.BranchID,
		arg.Email,
		arg.FullName,
		arg.Role,
		arg.Pin,
	))
}

const updateUserPassword = `-- name: UpdateUserPassword :exec
UPDATE users SET hashed_password = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true`

type UpdateUserPasswordParams struct {
	ID             uuid.UUID `json:"id"`
	BranchID       uuid.UUID `json:"branch_id"`
	HashedPassword string    `json:"hashed_password"`
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx, updateUserPassword, arg.ID, arg.BranchID, arg.HashedPassword)
	return err
}

const softDeleteUser = `-- name: SoftDeleteUser :one
UPDATE users SET is_active = false, pin = NULL, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active = true
RETURNING id`

type SoftDeleteUserParams struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
}

func (q *Queries) SoftDeleteUser(ctx context.Context, arg SoftDeleteUserParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteUser, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}
