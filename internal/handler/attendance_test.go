package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/handler"
	"github.com/barberkas/api/internal/middleware"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// mockAttendanceService keeps one row per barber and mimics the
// check-in/out state machine.
type mockAttendanceService struct {
	rows      map[uuid.UUID]database.Attendance
	barbers   map[uuid.UUID]bool
	lastUpser service.UpsertAttendanceRequest
}

func newMockAttendanceService(barbers ...uuid.UUID) *mockAttendanceService {
	m := &mockAttendanceService{rows: map[uuid.UUID]database.Attendance{}, barbers: map[uuid.UUID]bool{}}
	for _, b := range barbers {
		m.barbers[b] = true
	}
	return m
}

var clockTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func (m *mockAttendanceService) CheckIn(_ context.Context, branchID, barberID uuid.UUID) (database.Attendance, error) {
	if !m.barbers[barberID] {
		return database.Attendance{}, service.ErrBarberNotFound
	}
	if _, ok := m.rows[barberID]; ok {
		return database.Attendance{}, service.ErrAlreadyCheckedIn
	}
	att := database.Attendance{
		ID:             uuid.New(),
		BranchID:       branchID,
		BarberID:       barberID,
		AttendanceDate: pgtype.Date{Time: clockTime, Valid: true},
		Status:         enum.AttendancePresent,
		CheckIn:        pgtype.Timestamptz{Time: clockTime, Valid: true},
	}
	m.rows[barberID] = att
	return att, nil
}

func (m *mockAttendanceService) CheckOut(_ context.Context, _, barberID uuid.UUID) (database.Attendance, error) {
	if !m.barbers[barberID] {
		return database.Attendance{}, service.ErrBarberNotFound
	}
	att, ok := m.rows[barberID]
	if !ok {
		return database.Attendance{}, service.ErrNotCheckedIn
	}
	if att.CheckOut.Valid {
		return database.Attendance{}, service.ErrAlreadyCheckedOut
	}
	att.CheckOut = pgtype.Timestamptz{Time: clockTime.Add(9 * time.Hour), Valid: true}
	m.rows[barberID] = att
	return att, nil
}

func (m *mockAttendanceService) Upsert(_ context.Context, req service.UpsertAttendanceRequest) (database.Attendance, error) {
	m.lastUpser = req
	if !m.barbers[req.BarberID] {
		return database.Attendance{}, service.ErrBarberNotFound
	}
	return database.Attendance{
		ID:             uuid.New(),
		BranchID:       req.BranchID,
		BarberID:       req.BarberID,
		AttendanceDate: req.Date,
		Status:         req.Status,
		Notes:          pgtype.Text{String: req.Notes, Valid: req.Notes != ""},
	}, nil
}

type mockAttendanceStore struct {
	lastList    database.ListAttendancesParams
	lastSummary database.SummarizeAttendanceParams
	summary     []database.SummarizeAttendanceRow
}

func (m *mockAttendanceStore) ListAttendances(_ context.Context, arg database.ListAttendancesParams) ([]database.Attendance, error) {
	m.lastList = arg
	return []database.Attendance{}, nil
}

func (m *mockAttendanceStore) SummarizeAttendance(_ context.Context, arg database.SummarizeAttendanceParams) ([]database.SummarizeAttendanceRow, error) {
	m.lastSummary = arg
	return m.summary, nil
}

func setupAttendanceRouter(svc *mockAttendanceService, store *mockAttendanceStore) *chi.Mux {
	h := handler.NewAttendanceHandler(svc, store)
	r := authRouter()
	r.Route("/branches/{bid}/attendance", func(r chi.Router) {
		h.RegisterRoutes(r)
		r.With(middleware.RequireRole(enum.UserRoleOwner, enum.UserRoleAdmin)).Group(h.RegisterAdminRoutes)
	})
	return r
}

func TestAttendance_CheckInOutFlow(t *testing.T) {
	branch, barber := uuid.New(), uuid.New()
	router := setupAttendanceRouter(newMockAttendanceService(barber), &mockAttendanceStore{})
	cashier := testClaims(branch, enum.UserRoleCashier)
	base := "/branches/" + branch.String() + "/attendance"
	body := map[string]string{"barber_id": barber.String()}

	rr := doAuthRequest(t, router, "POST", base+"/check-in", body, cashier)
	assertStatus(t, rr, http.StatusCreated)
	resp := decodeMap(t, rr)
	if resp["status"] != "PRESENT" || resp["check_in"] == nil || resp["check_out"] != nil {
		t.Errorf("check-in response: %v", resp)
	}
	if resp["attendance_date"] != "2026-03-14" {
		t.Errorf("attendance_date: %v", resp["attendance_date"])
	}

	assertError(t, doAuthRequest(t, router, "POST", base+"/check-in", body, cashier),
		http.StatusConflict, service.ErrAlreadyCheckedIn.Error())

	rr = doAuthRequest(t, router, "POST", base+"/check-out", body, cashier)
	assertStatus(t, rr, http.StatusOK)
	if decodeMap(t, rr)["check_out"] == nil {
		t.Error("expected check_out timestamp")
	}

	assertError(t, doAuthRequest(t, router, "POST", base+"/check-out", body, cashier),
		http.StatusConflict, service.ErrAlreadyCheckedOut.Error())
}

func TestAttendance_CheckOutErrors(t *testing.T) {
	branch, barber := uuid.New(), uuid.New()
	router := setupAttendanceRouter(newMockAttendanceService(barber), &mockAttendanceStore{})
	cashier := testClaims(branch, enum.UserRoleCashier)
	base := "/branches/" + branch.String() + "/attendance"

	assertError(t, doAuthRequest(t, router, "POST", base+"/check-out", map[string]string{"barber_id": barber.String()}, cashier),
		http.StatusConflict, service.ErrNotCheckedIn.Error())
	assertError(t, doAuthRequest(t, router, "POST", base+"/check-in", map[string]string{"barber_id": uuid.NewString()}, cashier),
		http.StatusNotFound, service.ErrBarberNotFound.Error())
	assertStatus(t, doAuthRequest(t, router, "POST", base+"/check-in", map[string]string{"barber_id": "bukan-uuid"}, cashier),
		http.StatusBadRequest)
}

func TestAttendance_UpsertRequiresAdmin(t *testing.T) {
	branch, barber := uuid.New(), uuid.New()
	svc := newMockAttendanceService(barber)
	router := setupAttendanceRouter(svc, &mockAttendanceStore{})
	path := "/branches/" + branch.String() + "/attendance"
	body := map[string]string{"barber_id": barber.String(), "date": "2026-03-10", "status": "SICK", "notes": "demam"}

	assertStatus(t, doAuthRequest(t, router, "PUT", path, body, testClaims(branch, enum.UserRoleCashier)), http.StatusForbidden)

	rr := doAuthRequest(t, router, "PUT", path, body, testClaims(branch, enum.UserRoleAdmin))
	assertStatus(t, rr, http.StatusOK)
	if got := svc.lastUpser.Date.Time.Format("2006-01-02"); got != "2026-03-10" {
		t.Errorf("date: %s", got)
	}
	resp := decodeMap(t, rr)
	if resp["status"] != "SICK" || resp["notes"] != "demam" {
		t.Errorf("response: %v", resp)
	}
}

func TestAttendance_UpsertValidation(t *testing.T) {
	branch, barber := uuid.New(), uuid.New()
	router := setupAttendanceRouter(newMockAttendanceService(barber), &mockAttendanceStore{})
	path := "/branches/" + branch.String() + "/attendance"
	owner := testClaims(branch, enum.UserRoleOwner)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"bad status", map[string]string{"barber_id": barber.String(), "date": "2026-03-10", "status": "HOLIDAY"}},
		{"bad date", map[string]string{"barber_id": barber.String(), "date": "10/03/2026", "status": "LEAVE"}},
		{"missing barber", map[string]string{"date": "2026-03-10", "status": "LEAVE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertStatus(t, doAuthRequest(t, router, "PUT", path, tt.body, owner), http.StatusBadRequest)
		})
	}
}

func TestAttendance_ListAndSummary(t *testing.T) {
	branch, barber := uuid.New(), uuid.New()
	store := &mockAttendanceStore{summary: []database.SummarizeAttendanceRow{
		{BarberID: barber, BarberName: "Andi", Present: 20, Leave: 1, Sick: 2},
	}}
	router := setupAttendanceRouter(newMockAttendanceService(barber), store)
	base := "/branches/" + branch.String() + "/attendance"
	cashier := testClaims(branch, enum.UserRoleCashier)

	rr := doAuthRequest(t, router, "GET", base+"?start_date=2026-03-01&end_date=2026-03-31&barber_id="+barber.String(), nil, cashier)
	assertStatus(t, rr, http.StatusOK)
	if store.lastList.BarberID.Bytes != barber || !store.lastList.BarberID.Valid {
		t.Errorf("barber filter: %+v", store.lastList.BarberID)
	}
	assertStatus(t, doAuthRequest(t, router, "GET", base+"?barber_id=x", nil, cashier), http.StatusBadRequest)

	rr = doAuthRequest(t, router, "GET", base+"/summary?start_date=2026-03-01&end_date=2026-03-31", nil, cashier)
	assertStatus(t, rr, http.StatusOK)
	resp := decodeMap(t, rr)
	if resp["start_date"] != "2026-03-01" || resp["end_date"] != "2026-03-31" {
		t.Errorf("range: %v", resp)
	}
	rows := resp["barbers"].([]interface{})
	if len(rows) != 1 || rows[0].(map[string]interface{})["present"] != float64(20) {
		t.Errorf("rows: %v", rows)
	}
	if store.lastSummary.BranchID != branch {
		t.Errorf("branch: %v", store.lastSummary.BranchID)
	}
}
