package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const attendanceColumns = `id, branch_id, barber_id, attendance_date, status, check_in, check_out, notes, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (Attendance, error) {
	var i Attendance
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.BarberID,
		&i.AttendanceDate,
		&i.Status,
		&i.CheckIn,
		&i.CheckOut,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAttendance = `-- name: GetAttendance :one
SELECT ` + attendanceColumns + ` FROM attendances
WHERE barber_id = $1 AND attendance_date = $2`

type GetAttendanceParams struct {
	BarberID       uuid.UUID   `json:"barber_id"`
	AttendanceDate pgtype.Date `json:"attendance_date"`
}

func (q *Queries) GetAttendance(ctx context.Context, arg GetAttendanceParams) (Attendance, error) {
	return scanAttendance(q.db.QueryRow(ctx, getAttendance, arg.BarberID, arg.AttendanceDate))
}

const createCheckIn = `-- name: CreateCheckIn :one
INSERT INTO attendances (branch_id, barber_id, attendance_date, status, check_in)
VALUES ($1, $2, $3, 'PRESENT', $4)
RETURNING ` + attendanceColumns

type CreateCheckInParams struct {
	BranchID       uuid.UUID   `json:"branch_id"`
	BarberID       uuid.UUID   `json:"barber_id"`
	AttendanceDate pgtype.Date `json:"attendance_date"`
	CheckIn        time.Time   `json:"check_in"`
}

func (q *Queries) CreateCheckIn(ctx context.Context, arg CreateCheckInParams) (Attendance, error) {
	return scanAttendance(q.db.QueryRow(ctx, createCheckIn, arg.BranchID, arg.BarberID, arg.AttendanceDate, arg.CheckIn))
}

const setCheckOut = `-- name: SetCheckOut :one
UPDATE attendances SET check_out = $2, updated_at = now()
WHERE id = $1 AND check_in IS NOT NULL AND check_out IS NULL
RETURNING ` + attendanceColumns

type SetCheckOutParams struct {
	ID       uuid.UUID `json:"id"`
	CheckOut time.Time `json:"check_out"`
}

func (q *Queries) SetCheckOut(ctx context.Context, arg SetCheckOutParams) (Attendance, error) {
	return scanAttendance(q.db.QueryRow(ctx, setCheckOut, arg.ID, arg.CheckOut))
}

const upsertAttendance = `-- name: UpsertAttendance :one
INSERT INTO attendances (branch_id, barber_id, attendance_date, status, notes)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (barber_id, attendance_date)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = now()
RETURNING ` + attendanceColumns

type UpsertAttendanceParams struct {
	BranchID       uuid.UUID   `json:"branch_id"`
	BarberID       uuid.UUID   `json:"barber_id"`
	AttendanceDate pgtype.Date `json:"attendance_date"`
	Status         string      `json:"status"`
	Notes          pgtype.Text `json:"notes"`
}

func (q *Queries) UpsertAttendance(ctx context.Context, arg UpsertAttendanceParams) (Attendance, error) {
	return scanAttendance(q.db.QueryRow(ctx, upsertAttendance,
		arg.BranchID,
		arg.BarberID,
		arg.AttendanceDate,
		arg.Status,
		arg.Notes,
	))
}

const listAttendances = `-- name: ListAttendances :many
SELECT ` + attendanceColumns + ` FROM attendances
WHERE branch_id = $1
  AND attendance_date >= $2 AND attendance_date <= $3
  AND ($4::uuid IS NULL OR barber_id = $4)
ORDER BY attendance_date DESC, barber_id`

type ListAttendancesParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	BarberID  pgtype.UUID `json:"barber_id"`
}

func (q *Queries) ListAttendances(ctx context.Context, arg ListAttendancesParams) ([]Attendance, error) {
	rows, err := q.db.Query(ctx, listAttendances, arg.BranchID, arg.StartDate, arg.EndDate, arg.BarberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Attendance{}
	for rows.Next() {
		i, err := scanAttendance(rows)
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

const summarizeAttendance = `-- name: SummarizeAttendance :many
SELECT b.id AS barber_id, b.name AS barber_name,
    COUNT(a.id) FILTER (WHERE a.status = 'PRESENT') AS present,
    COUNT(a.id) FILTER (WHERE a.status = 'LEAVE') AS leave,
    COUNT(a.id) FILTER (WHERE a.status = 'SICK') AS sick,
    COUNT(a.id) FILTER (WHERE a.status = 'ABSENT') AS absent
FROM barbers b
LEFT JOIN attendances a ON a.barber_id = b.id
    AND a.attendance_date >= $2 AND a.attendance_date <= $3
WHERE b.branch_id = $1 AND b.is_active = true
GROUP BY b.id, b.name
ORDER BY b.name`

type SummarizeAttendanceParams struct {
	BranchID  uuid.UUID   `json:"branch_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

type SummarizeAttendanceRow struct {
	BarberID   uuid.UUID `json:"barber_id"`
	BarberName string    `json:"barber_name"`
	Present    int64     `json:"present"`
	Leave      int64     `json:"leave"`
	Sick       int64     `json:"sick"`
	Absent     int64     `json:"absent"`
}

func (q *Queries) SummarizeAttendance(ctx context.Context, arg SummarizeAttendanceParams) ([]SummarizeAttendanceRow, error) {
	rows, err := q.db.Query(ctx, summarizeAttendance, arg.BranchID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SummarizeAttendanceRow{}
	for rows.Next() {
		var i SummarizeAttendanceRow
		if err := rows.Scan(
			&i.BarberID,
			&i.BarberName,
			&i.Present,
			&i.Leave,
			&i.Sick,
			&i.Absent,
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

const countPresentDays = `-- name: CountPresentDays :one
SELECT COUNT(*) FROM attendances
WHERE barber_id = $1 AND status = 'PRESENT'
  AND attendance_date >= $2 AND attendance_date <= $3`

type CountPresentDaysParams struct {
	BarberID  uuid.UUID   `json:"barber_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) CountPresentDays(ctx context.Context, arg CountPresentDaysParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countPresentDays, arg.BarberID, arg.StartDate, arg.EndDate).Scan(&count)
	return count, err
}
