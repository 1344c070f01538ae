package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/barberkas/api/internal/accounting/handler"
	"github.com/barberkas/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock store ---

type mockDashboardStore struct {
	sales      database.GetDailySalesSummaryRow
	accounts   []database.CashAccount
	expenses   pgtype.Numeric
	salaryPaid pgtype.Numeric
	barbers    []database.ListBarberPerformanceRow
	recentTrxs []database.Transaction
	salesErr   error
	trxErr     error

	lastBarbers database.ListBarberPerformanceParams
	lastTrx     database.ListTransactionsParams
}

func (m *mockDashboardStore) GetDailySalesSummary(_ context.Context, _ database.GetDailySalesSummaryParams) (database.GetDailySalesSummaryRow, error) {
	return m.sales, m.salesErr
}

func (m *mockDashboardStore) ListCashAccounts(_ context.Context, _ uuid.UUID) ([]database.CashAccount, error) {
	return m.accounts, nil
}

func (m *mockDashboardStore) SumExpenses(_ context.Context, _ database.SumExpensesParams) (pgtype.Numeric, error) {
	return m.expenses, nil
}

func (m *mockDashboardStore) SumSalaryPaid(_ context.Context, _ database.SumSalaryPaidParams) (pgtype.Numeric, error) {
	return m.salaryPaid, nil
}

func (m *mockDashboardStore) ListBarberPerformance(_ context.Context, arg database.ListBarberPerformanceParams) ([]database.ListBarberPerformanceRow, error) {
	m.lastBarbers = arg
	return m.barbers, nil
}

func (m *mockDashboardStore) ListTransactions(_ context.Context, arg database.ListTransactionsParams) ([]database.Transaction, error) {
	m.lastTrx = arg
	return m.recentTrxs, m.trxErr
}

func setupDashboardRouter(store handler.DashboardStore) *chi.Mux {
	h := handler.NewDashboardHandler(store)
	r := chi.NewRouter()
	r.Route("/branches/{bid}/dashboard", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestGetDashboard_Success(t *testing.T) {
	bid := uuid.New()
	barberID := uuid.New()

	store := &mockDashboardStore{
		sales: database.GetDailySalesSummaryRow{
			TransactionCount: 7,
			TotalSales:       makePgNumeric("560000"),
			CashSales:        makePgNumeric("300000"),
			BankSales:        makePgNumeric("60000"),
			QrisSales:        makePgNumeric("200000"),
		},
		accounts: []database.CashAccount{
			{ID: uuid.New(), Name: "Kas", Kind: "CASH", Balance: makePgNumeric("1500000"), IsActive: true},
			{ID: uuid.New(), Name: "BCA", Kind: "BANK", Balance: makePgNumeric("4500000"), IsActive: true},
			{ID: uuid.New(), Name: "Lama", Kind: "BANK", Balance: makePgNumeric("0"), IsActive: false},
		},
		expenses:   makePgNumeric("725000"),
		salaryPaid: makePgNumeric("5800000"),
		barbers: []database.ListBarberPerformanceRow{
			{BarberID: barberID, BarberName: "Budi", ServiceCount: 88, Revenue: makePgNumeric("4400000"), Commission: makePgNumeric("1760000")},
		},
		recentTrxs: []database.Transaction{
			{ID: uuid.New(), TransactionNumber: "TRX-20260314-0007", Status: "COMPLETED", Total: makePgNumeric("85000"), TransactionDate: makePgDate(2026, 3, 14)},
			{ID: uuid.New(), TransactionNumber: "TRX-20260314-0006", Status: "VOIDED", Total: makePgNumeric("50000"), TransactionDate: makePgDate(2026, 3, 14)},
		},
	}

	router := setupDashboardRouter(store)
	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/dashboard/", nil)
	expectStatus(t, w, http.StatusOK)

	resp := decodeMap(t, w)

	// Today
	today := resp["today"].(map[string]interface{})
	if today["transaction_count"].(float64) != 7 {
		t.Errorf("expected transaction_count 7, got %v", today["transaction_count"])
	}
	if today["total_sales"] != "560000.00" || today["qris_sales"] != "200000.00" {
		t.Errorf("unexpected today sales: %v", today)
	}

	// Balances skip inactive accounts
	accounts := resp["accounts"].([]interface{})
	if len(accounts) != 2 {
		t.Errorf("expected 2 active accounts, got %d", len(accounts))
	}
	if resp["total_balance"] != "6000000.00" {
		t.Errorf("expected total_balance 6000000.00, got %v", resp["total_balance"])
	}

	// Month to date
	month := resp["month"].(map[string]interface{})
	if month["expenses"] != "725000.00" || month["salary_paid"] != "5800000.00" {
		t.Errorf("unexpected month: %v", month)
	}
	if month["period"] == nil || month["period"] == "" {
		t.Errorf("expected period to be set, got %v", month["period"])
	}

	top := resp["top_barbers"].([]interface{})
	if len(top) != 1 || top[0].(map[string]interface{})["revenue"] != "4400000.00" {
		t.Errorf("unexpected top barbers: %v", top)
	}
	if store.lastBarbers.Limit != 5 {
		t.Errorf("expected top 5 barbers, got limit %d", store.lastBarbers.Limit)
	}

	recent := resp["recent_transactions"].([]interface{})
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent transactions, got %d", len(recent))
	}
	if recent[0].(map[string]interface{})["transaction_number"] != "TRX-20260314-0007" {
		t.Errorf("unexpected first transaction: %v", recent[0])
	}
	if store.lastTrx.Limit != 10 || store.lastTrx.BranchID != bid {
		t.Errorf("unexpected transaction query: %+v", store.lastTrx)
	}
	if store.lastTrx.StartDate.Time.Day() != 1 {
		t.Errorf("expected month start, got %v", store.lastTrx.StartDate)
	}
}

func TestGetDashboard_Empty(t *testing.T) {
	router := setupDashboardRouter(&mockDashboardStore{})
	w := doRequest(t, router, http.MethodGet, "/branches/"+uuid.NewString()+"/dashboard/", nil)
	expectStatus(t, w, http.StatusOK)

	resp := decodeMap(t, w)
	if resp["total_balance"] != "0.00" {
		t.Errorf("expected total_balance 0.00, got %v", resp["total_balance"])
	}
	month := resp["month"].(map[string]interface{})
	if month["expenses"] != "0.00" {
		t.Errorf("expected NULL sums to render 0.00, got %v", month["expenses"])
	}
	for _, key := range []string{"accounts", "top_barbers", "recent_transactions"} {
		if list, ok := resp[key].([]interface{}); !ok || len(list) != 0 {
			t.Errorf("expected empty %s array, got %v", key, resp[key])
		}
	}
}

func TestGetDashboard_StoreError(t *testing.T) {
	tests := []struct {
		name  string
		store *mockDashboardStore
	}{
		{"sales", &mockDashboardStore{salesErr: fmt.Errorf("database connection failed")}},
		{"transactions", &mockDashboardStore{trxErr: fmt.Errorf("database connection failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupDashboardRouter(tt.store)
			w := doRequest(t, router, http.MethodGet, "/branches/"+uuid.NewString()+"/dashboard/", nil)
			expectStatus(t, w, http.StatusInternalServerError)
			expectError(t, w, "terjadi kesalahan pada server")
		})
	}
}

func TestGetDashboard_InvalidBranch(t *testing.T) {
	router := setupDashboardRouter(&mockDashboardStore{})
	w := doRequest(t, router, http.MethodGet, "/branches/abc/dashboard/", nil)
	expectStatus(t, w, http.StatusBadRequest)
}
