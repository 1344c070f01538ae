package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	ListDailySales(ctx context.Context, arg database.ListDailySalesParams) ([]database.ListDailySalesRow, error)
	ListBarberPerformance(ctx context.Context, arg database.ListBarberPerformanceParams) ([]database.ListBarberPerformanceRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store ReportsStore
	now   func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore) *ReportsHandler {
	return &ReportsHandler{store: store, now: time.Now}
}

// RegisterRoutes registers branch-scoped report endpoints.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily-sales", h.DailySales)
	r.Get("/barber-performance", h.BarberPerformance)
}

// --- Response types ---

type dailySalesResponse struct {
	Date             string `json:"date"`
	TransactionCount int32  `json:"transaction_count"`
	TotalSales       string `json:"total_sales"`
	CashSales        string `json:"cash_sales"`
	BankSales        string `json:"bank_sales"`
	QrisSales        string `json:"qris_sales"`
}

type barberPerformanceResponse struct {
	BarberID     uuid.UUID `json:"barber_id"`
	BarberName   string    `json:"barber_name"`
	ServiceCount int64     `json:"service_count"`
	Revenue      string    `json:"revenue"`
	Commission   string    `json:"commission"`
}

// --- Handlers ---

// DailySales returns per-day totals of completed transactions.
// Query params: start_date, end_date (YYYY-MM-DD, default month to date).
func (h *ReportsHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}

	rows, err := h.store.ListDailySales(r.Context(), database.ListDailySalesParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		serverError(w, err, "daily sales report")
		return
	}

	resp := make([]dailySalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = dailySalesResponse{
			Date:             bizdate.Format(row.TransactionDate),
			TransactionCount: row.TransactionCount,
			TotalSales:       money.String(row.TotalSales),
			CashSales:        money.String(row.CashSales),
			BankSales:        money.String(row.BankSales),
			QrisSales:        money.String(row.QrisSales),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// BarberPerformance ranks barbers by service revenue over the range.
// Query params: start_date, end_date, limit (default 50).
func (h *ReportsHandler) BarberPerformance(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}
	limit := int32(defaultLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= maxLimit {
			limit = int32(v)
		}
	}

	rows, err := h.store.ListBarberPerformance(r.Context(), database.ListBarberPerformanceParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
	})
	if err != nil {
		serverError(w, err, "barber performance report")
		return
	}

	resp := make([]barberPerformanceResponse, len(rows))
	for i, row := range rows {
		resp[i] = barberPerformanceResponse{
			BarberID:     row.BarberID,
			BarberName:   row.BarberName,
			ServiceCount: row.ServiceCount,
			Revenue:      money.String(row.Revenue),
			Commission:   money.String(row.Commission),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
