package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AttendanceServicer defines the service methods needed by attendance handlers.
// Satisfied by *service.AttendanceService.
type AttendanceServicer interface {
	CheckIn(ctx context.Context, branchID, barberID uuid.UUID) (database.Attendance, error)
	CheckOut(ctx context.Context, branchID, barberID uuid.UUID) (database.Attendance, error)
	Upsert(ctx context.Context, req service.UpsertAttendanceRequest) (database.Attendance, error)
}

// AttendanceStore defines the database methods needed by attendance reads.
type AttendanceStore interface {
	ListAttendances(ctx context.Context, arg database.ListAttendancesParams) ([]database.Attendance, error)
	SummarizeAttendance(ctx context.Context, arg database.SummarizeAttendanceParams) ([]database.SummarizeAttendanceRow, error)
}

// AttendanceHandler handles barber check-in/out and attendance reports.
type AttendanceHandler struct {
	svc   AttendanceServicer
	store AttendanceStore
	now   func() time.Time
}

func NewAttendanceHandler(svc AttendanceServicer, store AttendanceStore) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, store: store, now: time.Now}
}

// RegisterRoutes registers the counter endpoints on /branches/{bid}/attendance.
func (h *AttendanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
	r.Post("/check-in", h.CheckIn)
	r.Post("/check-out", h.CheckOut)
}

// RegisterAdminRoutes registers manual corrections. Mount behind OWNER/ADMIN.
func (h *AttendanceHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/", h.Upsert)
}

// --- Request / Response types ---

type barberRefRequest struct {
	BarberID string `json:"barber_id" validate:"required,uuid"`
}

type upsertAttendanceRequest struct {
	BarberID string `json:"barber_id" validate:"required,uuid"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Status   string `json:"status" validate:"required,oneof=PRESENT LEAVE SICK ABSENT"`
	Notes    string `json:"notes" validate:"max=500"`
}

type attendanceResponse struct {
	ID             uuid.UUID  `json:"id"`
	BarberID       uuid.UUID  `json:"barber_id"`
	AttendanceDate string     `json:"attendance_date"`
	Status         string     `json:"status"`
	CheckIn        *time.Time `json:"check_in"`
	CheckOut       *time.Time `json:"check_out"`
	Notes          *string    `json:"notes"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toAttendanceResponse(a database.Attendance) attendanceResponse {
	resp := attendanceResponse{
		ID:             a.ID,
		BarberID:       a.BarberID,
		AttendanceDate: bizdate.Format(a.AttendanceDate),
		Status:         a.Status,
		Notes:          textPtr(a.Notes),
		UpdatedAt:      a.UpdatedAt,
	}
	if a.CheckIn.Valid {
		t := a.CheckIn.Time
		resp.CheckIn = &t
	}
	if a.CheckOut.Valid {
		t := a.CheckOut.Time
		resp.CheckOut = &t
	}
	return resp
}

// --- Handlers ---

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.svc.CheckIn, http.StatusCreated)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, h.svc.CheckOut, http.StatusOK)
}

func (h *AttendanceHandler) clock(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (database.Attendance, error), status int) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var req barberRefRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	att, err := fn(r.Context(), bid, parseUUIDOrNil(req.BarberID))
	if err != nil {
		writeServiceError(w, err, "record attendance")
		return
	}
	writeJSON(w, status, toAttendanceResponse(att))
}

// Upsert overrides the status of one barber-day.
func (h *AttendanceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var req upsertAttendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := bizdate.Parse(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	att, err := h.svc.Upsert(r.Context(), service.UpsertAttendanceRequest{
		BranchID: bid,
		BarberID: parseUUIDOrNil(req.BarberID),
		Date:     date,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "upsert attendance")
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceResponse(att))
}

// List handles GET /branches/{bid}/attendance?start_date=&end_date=&barber_id=.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}
	barber, ok := optionalUUID(w, r, "barber_id")
	if !ok {
		return
	}

	rows, err := h.store.ListAttendances(r.Context(), database.ListAttendancesParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		BarberID:  barber,
	})
	if err != nil {
		serverError(w, err, "list attendances")
		return
	}

	resp := make([]attendanceResponse, len(rows))
	for i, a := range rows {
		resp[i] = toAttendanceResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary counts days per status per barber over the range.
func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}

	rows, err := h.store.SummarizeAttendance(r.Context(), database.SummarizeAttendanceParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serverError(w, err, "summarize attendance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start_date": bizdate.Format(start),
		"end_date":   bizdate.Format(end),
		"barbers":    rows,
	})
}
