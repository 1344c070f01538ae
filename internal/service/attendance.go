package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const attendanceConstraint = "attendances_barber_id_attendance_date_key"

// Errors returned by the attendance service.
var (
	ErrAlreadyCheckedIn        = errors.New("barber sudah absen masuk hari ini")
	ErrNotCheckedIn            = errors.New("barber belum absen masuk hari ini")
	ErrAlreadyCheckedOut       = errors.New("barber sudah absen pulang hari ini")
	ErrInvalidAttendanceStatus = errors.New("status absensi harus PRESENT, LEAVE, SICK, atau ABSENT")
)

// AttendanceStore defines the DB methods needed for attendance.
// Satisfied by *database.Queries.
type AttendanceStore interface {
	GetBarber(ctx context.Context, arg database.GetBarberParams) (database.Barber, error)
	GetAttendance(ctx context.Context, arg database.GetAttendanceParams) (database.Attendance, error)
	CreateCheckIn(ctx context.Context, arg database.CreateCheckInParams) (database.Attendance, error)
	SetCheckOut(ctx context.Context, arg database.SetCheckOutParams) (database.Attendance, error)
	UpsertAttendance(ctx context.Context, arg database.UpsertAttendanceParams) (database.Attendance, error)
}

type NewAttendanceStore func(db database.DBTX) AttendanceStore

type AttendanceService struct {
	pool      TxBeginner
	newStore  NewAttendanceStore
	publisher Publisher
	now       func() time.Time
}

func NewAttendanceService(pool TxBeginner, newStore NewAttendanceStore, publisher Publisher) *AttendanceService {
	return &AttendanceService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

// CheckIn records today's arrival of a barber.
func (s *AttendanceService) CheckIn(ctx context.Context, branchID, barberID uuid.UUID) (database.Attendance, error) {
	return s.run(ctx, branchID, barberID, func(store AttendanceStore, barber database.Barber, now time.Time) (database.Attendance, error) {
		today := bizdate.Of(now)
		_, err := store.GetAttendance(ctx, database.GetAttendanceParams{
			BarberID:       barber.ID,
			AttendanceDate: today,
		})
		switch {
		case err == nil:
			return database.Attendance{}, ErrAlreadyCheckedIn
		case !errors.Is(err, pgx.ErrNoRows):
			return database.Attendance{}, fmt.Errorf("get attendance: %w", err)
		}

		att, err := store.CreateCheckIn(ctx, database.CreateCheckInParams{
			BranchID:       branchID,
			BarberID:       barber.ID,
			AttendanceDate: today,
			CheckIn:        now,
		})
		if err != nil {
			if sqlerr.IsUniqueViolation(err, attendanceConstraint) {
				return database.Attendance{}, ErrAlreadyCheckedIn
			}
			return database.Attendance{}, fmt.Errorf("create check-in: %w", err)
		}
		return att, nil
	})
}

// CheckOut records today's departure of a checked-in barber.
func (s *AttendanceService) CheckOut(ctx context.Context, branchID, barberID uuid.UUID) (database.Attendance, error) {
	return s.run(ctx, branchID, barberID, func(store AttendanceStore, barber database.Barber, now time.Time) (database.Attendance, error) {
		att, err := store.GetAttendance(ctx, database.GetAttendanceParams{
			BarberID:       barber.ID,
			AttendanceDate: bizdate.Of(now),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Attendance{}, ErrNotCheckedIn
			}
			return database.Attendance{}, fmt.Errorf("get attendance: %w", err)
		}
		if !att.CheckIn.Valid {
			return database.Attendance{}, ErrNotCheckedIn
		}
		if att.CheckOut.Valid {
			return database.Attendance{}, ErrAlreadyCheckedOut
		}

		att, err = store.SetCheckOut(ctx, database.SetCheckOutParams{ID: att.ID, CheckOut: now})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Attendance{}, ErrAlreadyCheckedOut
			}
			return database.Attendance{}, fmt.Errorf("set check-out: %w", err)
		}
		return att, nil
	})
}

type UpsertAttendanceRequest struct {
	BranchID uuid.UUID
	BarberID uuid.UUID
	Date     pgtype.Date
	Status   string
	Notes    string
}

// Upsert sets the status of a barber's day, overriding whatever was there.
func (s *AttendanceService) Upsert(ctx context.Context, req UpsertAttendanceRequest) (database.Attendance, error) {
	switch req.Status {
	case enum.AttendancePresent, enum.AttendanceLeave, enum.AttendanceSick, enum.AttendanceAbsent:
	default:
		return database.Attendance{}, ErrInvalidAttendanceStatus
	}

	return s.run(ctx, req.BranchID, req.BarberID, func(store AttendanceStore, barber database.Barber, _ time.Time) (database.Attendance, error) {
		att, err := store.UpsertAttendance(ctx, database.UpsertAttendanceParams{
			BranchID:       req.BranchID,
			BarberID:       barber.ID,
			AttendanceDate: req.Date,
			Status:         req.Status,
			Notes:          textOrNull(req.Notes),
		})
		if err != nil {
			return database.Attendance{}, fmt.Errorf("upsert attendance: %w", err)
		}
		return att, nil
	})
}

// run wraps fn in a transaction after checking the barber belongs to the
// branch, then publishes the resulting row.
func (s *AttendanceService) run(ctx context.Context, branchID, barberID uuid.UUID, fn func(AttendanceStore, database.Barber, time.Time) (database.Attendance, error)) (database.Attendance, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Attendance{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	barber, err := store.GetBarber(ctx, database.GetBarberParams{ID: barberID, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Attendance{}, ErrBarberNotFound
		}
		return database.Attendance{}, fmt.Errorf("get barber: %w", err)
	}
	if !barber.IsActive {
		return database.Attendance{}, ErrBarberNotFound
	}

	att, err := fn(store, barber, s.now())
	if err != nil {
		return database.Attendance{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return database.Attendance{}, fmt.Errorf("commit: %w", err)
	}

	s.publisher.Publish(branchID, ws.EventAttendanceUpdated, att)
	return att, nil
}
