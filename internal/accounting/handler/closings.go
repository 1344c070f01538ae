package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ClosingStore defines the database reads needed by closing handlers.
type ClosingStore interface {
	ListDailyClosings(ctx context.Context, arg database.ListDailyClosingsParams) ([]database.DailyClosing, error)
}

// ClosingServicer is satisfied by *service.ClosingService.
type ClosingServicer interface {
	Today() pgtype.Date
	Summary(ctx context.Context, branchID uuid.UUID, date pgtype.Date) (*service.ClosingSummary, error)
	Close(ctx context.Context, req service.CloseRequest) (database.DailyClosing, error)
}

// ClosingHandler handles daily closing (tutup buku) endpoints.
type ClosingHandler struct {
	svc   ClosingServicer
	store ClosingStore
}

func NewClosingHandler(svc ClosingServicer, store ClosingStore) *ClosingHandler {
	return &ClosingHandler{svc: svc, store: store}
}

// RegisterRoutes registers the read-only /closings endpoints.
func (h *ClosingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
}

// RegisterAdminRoutes registers the mutating /closings endpoints.
func (h *ClosingHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Close)
}

type closeRequest struct {
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes string `json:"notes" validate:"max=500"`
}

type closingResponse struct {
	ID               uuid.UUID  `json:"id"`
	ClosingDate      string     `json:"closing_date"`
	TransactionCount int32      `json:"transaction_count"`
	TotalSales       string     `json:"total_sales"`
	CashSales        string     `json:"cash_sales"`
	BankSales        string     `json:"bank_sales"`
	QrisSales        string     `json:"qris_sales"`
	TotalExpenses    string     `json:"total_expenses"`
	ClosingBalance   string     `json:"closing_balance"`
	Notes            *string    `json:"notes"`
	ClosedBy         *uuid.UUID `json:"closed_by"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toClosingResponse(c database.DailyClosing) closingResponse {
	return closingResponse{
		ID:               c.ID,
		ClosingDate:      bizdate.Format(c.ClosingDate),
		TransactionCount: c.TransactionCount,
		TotalSales:       money.String(c.TotalSales),
		CashSales:        money.String(c.CashSales),
		BankSales:        money.String(c.BankSales),
		QrisSales:        money.String(c.QrisSales),
		TotalExpenses:    money.String(c.TotalExpenses),
		ClosingBalance:   money.String(c.ClosingBalance),
		Notes:            textPtr(c.Notes),
		ClosedBy:         uuidPtr(c.ClosedBy),
		CreatedAt:        c.CreatedAt,
	}
}

type closingSummaryResponse struct {
	Date             string                `json:"date"`
	TransactionCount int32                 `json:"transaction_count"`
	TotalSales       string                `json:"total_sales"`
	CashSales        string                `json:"cash_sales"`
	BankSales        string                `json:"bank_sales"`
	QrisSales        string                `json:"qris_sales"`
	TotalExpenses    string                `json:"total_expenses"`
	Accounts         []cashAccountResponse `json:"accounts"`
	ClosingBalance   string                `json:"closing_balance"`
	Closed           bool                  `json:"closed"`
	Closing          *closingResponse      `json:"closing"`
}

// List handles GET /closings?start_date=&end_date=&limit=&offset=.
func (h *ClosingHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, h.svc.Today())
	if !ok {
		return
	}
	limit, offset := parsePagination(r)

	closings, err := h.store.ListDailyClosings(r.Context(), database.ListDailyClosingsParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		serverError(w, err, "list daily closings")
		return
	}
	resp := make([]closingResponse, len(closings))
	for i, c := range closings {
		resp[i] = toClosingResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Summary handles GET /closings/summary?date=. Date defaults to today.
func (h *ClosingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	date, ok := optionalDate(w, "date", r.URL.Query().Get("date"))
	if !ok {
		return
	}
	if !date.Valid {
		date = h.svc.Today()
	}

	sum, err := h.svc.Summary(r.Context(), bid, date)
	if err != nil {
		writeServiceError(w, err, "closing summary")
		return
	}

	resp := closingSummaryResponse{
		Date:             bizdate.Format(sum.Date),
		TransactionCount: sum.TransactionCount,
		TotalSales:       decimalString(sum.TotalSales),
		CashSales:        decimalString(sum.CashSales),
		BankSales:        decimalString(sum.BankSales),
		QrisSales:        decimalString(sum.QrisSales),
		TotalExpenses:    decimalString(sum.TotalExpenses),
		Accounts:         make([]cashAccountResponse, len(sum.Accounts)),
		ClosingBalance:   decimalString(sum.ClosingBalance),
		Closed:           sum.Closing != nil,
	}
	for i, a := range sum.Accounts {
		resp.Accounts[i] = toCashAccountResponse(a)
	}
	if sum.Closing != nil {
		c := toClosingResponse(*sum.Closing)
		resp.Closing = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// Close handles POST /closings. Date defaults to today.
func (h *ClosingHandler) Close(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req closeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := optionalDate(w, "date", req.Date)
	if !ok {
		return
	}
	if !date.Valid {
		date = h.svc.Today()
	}
	if date.Time.After(h.svc.Today().Time) {
		writeError(w, http.StatusBadRequest, "tidak bisa tutup buku untuk tanggal yang akan datang")
		return
	}

	closing, err := h.svc.Close(r.Context(), service.CloseRequest{
		BranchID: bid,
		Date:     date,
		Notes:    req.Notes,
		ClosedBy: claims.UserID,
		Trigger:  service.TriggerManual,
	})
	if err != nil {
		writeServiceError(w, err, "close day")
		return
	}
	writeJSON(w, http.StatusCreated, toClosingResponse(closing))
}
