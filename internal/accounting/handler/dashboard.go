package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	dashboardTopBarbers = 5
	dashboardRecentTrx  = 10
)

// --- Store interface ---

// DashboardStore defines the database methods needed by the dashboard.
type DashboardStore interface {
	GetDailySalesSummary(ctx context.Context, arg database.GetDailySalesSummaryParams) (database.GetDailySalesSummaryRow, error)
	ListCashAccounts(ctx context.Context, branchID uuid.UUID) ([]database.CashAccount, error)
	SumExpenses(ctx context.Context, arg database.SumExpensesParams) (pgtype.Numeric, error)
	SumSalaryPaid(ctx context.Context, arg database.SumSalaryPaidParams) (pgtype.Numeric, error)
	ListBarberPerformance(ctx context.Context, arg database.ListBarberPerformanceParams) ([]database.ListBarberPerformanceRow, error)
	ListTransactions(ctx context.Context, arg database.ListTransactionsParams) ([]database.Transaction, error)
}

// --- DashboardHandler ---

// DashboardHandler serves the owner dashboard of a branch.
type DashboardHandler struct {
	store DashboardStore
	now   func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store, now: time.Now}
}

// RegisterRoutes registers dashboard endpoints.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.GetDashboard)
}

// --- Response types ---

type dashboardResponse struct {
	Date               string                `json:"date"`
	Today              todaySalesResponse    `json:"today"`
	Accounts           []cashAccountResponse `json:"accounts"`
	TotalBalance       string                `json:"total_balance"`
	Month              monthResponse         `json:"month"`
	TopBarbers         []topBarberResponse   `json:"top_barbers"`
	RecentTransactions []recentTrxResponse   `json:"recent_transactions"`
}

type todaySalesResponse struct {
	TransactionCount int32  `json:"transaction_count"`
	TotalSales       string `json:"total_sales"`
	CashSales        string `json:"cash_sales"`
	BankSales        string `json:"bank_sales"`
	QrisSales        string `json:"qris_sales"`
}

type monthResponse struct {
	Period     string `json:"period"`
	Expenses   string `json:"expenses"`
	SalaryPaid string `json:"salary_paid"`
}

type topBarberResponse struct {
	BarberID     uuid.UUID `json:"barber_id"`
	BarberName   string    `json:"barber_name"`
	ServiceCount int64     `json:"service_count"`
	Revenue      string    `json:"revenue"`
	Commission   string    `json:"commission"`
}

type recentTrxResponse struct {
	ID                uuid.UUID `json:"id"`
	TransactionNumber string    `json:"transaction_number"`
	Status            string    `json:"status"`
	Total             string    `json:"total"`
	TransactionDate   string    `json:"transaction_date"`
	CreatedAt         time.Time `json:"created_at"`
}

// --- Handler ---

// GetDashboard returns today's sales, account balances, month-to-date
// spending, the top barbers of the month and the latest transactions.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	now := h.now()
	today := bizdate.Of(now)
	monthStart := bizdate.MonthStart(today)

	sales, err := h.store.GetDailySalesSummary(ctx, database.GetDailySalesSummaryParams{
		BranchID:        bid,
		TransactionDate: today,
	})
	if err != nil {
		serverError(w, err, "dashboard: daily sales")
		return
	}

	accounts, err := h.store.ListCashAccounts(ctx, bid)
	if err != nil {
		serverError(w, err, "dashboard: cash accounts")
		return
	}

	expenses, err := h.store.SumExpenses(ctx, database.SumExpensesParams{
		BranchID:  bid,
		StartDate: monthStart,
		EndDate:   today,
	})
	if err != nil {
		serverError(w, err, "dashboard: month expenses")
		return
	}

	salaryPaid, err := h.store.SumSalaryPaid(ctx, database.SumSalaryPaidParams{
		BranchID: bid,
		From:     bizdate.StartOfDay(monthStart),
		To:       now,
	})
	if err != nil {
		serverError(w, err, "dashboard: month salary paid")
		return
	}

	barbers, err := h.store.ListBarberPerformance(ctx, database.ListBarberPerformanceParams{
		BranchID:  bid,
		StartDate: monthStart,
		EndDate:   today,
		Limit:     dashboardTopBarbers,
	})
	if err != nil {
		serverError(w, err, "dashboard: barber performance")
		return
	}

	trxs, err := h.store.ListTransactions(ctx, database.ListTransactionsParams{
		BranchID:  bid,
		StartDate: monthStart,
		EndDate:   today,
		Limit:     dashboardRecentTrx,
	})
	if err != nil {
		serverError(w, err, "dashboard: recent transactions")
		return
	}

	resp := dashboardResponse{
		Date: bizdate.Format(today),
		Today: todaySalesResponse{
			TransactionCount: sales.TransactionCount,
			TotalSales:       money.String(sales.TotalSales),
			CashSales:        money.String(sales.CashSales),
			BankSales:        money.String(sales.BankSales),
			QrisSales:        money.String(sales.QrisSales),
		},
		Month: monthResponse{
			Period:     today.Time.Format("2006-01"),
			Expenses:   money.String(expenses),
			SalaryPaid: money.String(salaryPaid),
		},
	}
	resp.Accounts, resp.TotalBalance = buildAccountBalances(accounts)
	resp.TopBarbers = buildTopBarbers(barbers)
	resp.RecentTransactions = buildRecentTransactions(trxs)

	writeJSON(w, http.StatusOK, resp)
}

// --- Response builders ---

// buildAccountBalances lists active accounts and their summed balance.
func buildAccountBalances(accounts []database.CashAccount) ([]cashAccountResponse, string) {
	result := make([]cashAccountResponse, 0, len(accounts))
	total := decimal.Zero
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		result = append(result, toCashAccountResponse(a))
		total = total.Add(money.FromNumeric(a.Balance))
	}
	return result, decimalString(total)
}

func buildTopBarbers(rows []database.ListBarberPerformanceRow) []topBarberResponse {
	result := make([]topBarberResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, topBarberResponse{
			BarberID:     row.BarberID,
			BarberName:   row.BarberName,
			ServiceCount: row.ServiceCount,
			Revenue:      money.String(row.Revenue),
			Commission:   money.String(row.Commission),
		})
	}
	return result
}

func buildRecentTransactions(trxs []database.Transaction) []recentTrxResponse {
	result := make([]recentTrxResponse, 0, len(trxs))
	for _, t := range trxs {
		result = append(result, recentTrxResponse{
			ID:                t.ID,
			TransactionNumber: t.TransactionNumber,
			Status:            t.Status,
			Total:             money.String(t.Total),
			TransactionDate:   bizdate.Format(t.TransactionDate),
			CreatedAt:         t.CreatedAt,
		})
	}
	return result
}
