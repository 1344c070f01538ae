package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/barberkas/api/internal/accounting/handler"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type mockClosingStore struct {
	closings []database.DailyClosing
	lastList database.ListDailyClosingsParams
}

func (m *mockClosingStore) ListDailyClosings(_ context.Context, arg database.ListDailyClosingsParams) ([]database.DailyClosing, error) {
	m.lastList = arg
	return m.closings, nil
}

type mockClosingService struct {
	today       pgtype.Date
	summary     *service.ClosingSummary
	summaryDate pgtype.Date
	closeReq    service.CloseRequest
	err         error
}

func (m *mockClosingService) Today() pgtype.Date {
	return m.today
}

func (m *mockClosingService) Summary(_ context.Context, _ uuid.UUID, date pgtype.Date) (*service.ClosingSummary, error) {
	m.summaryDate = date
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *mockClosingService) Close(_ context.Context, req service.CloseRequest) (database.DailyClosing, error) {
	m.closeReq = req
	if m.err != nil {
		return database.DailyClosing{}, m.err
	}
	return database.DailyClosing{
		ID:               uuid.New(),
		BranchID:         req.BranchID,
		ClosingDate:      req.Date,
		TransactionCount: 12,
		TotalSales:       makePgNumeric("780000"),
		CashSales:        makePgNumeric("500000"),
		BankSales:        makePgNumeric("80000"),
		QrisSales:        makePgNumeric("200000"),
		TotalExpenses:    makePgNumeric("45000"),
		ClosingBalance:   makePgNumeric("3250000"),
		Notes:            pgtype.Text{String: req.Notes, Valid: req.Notes != ""},
		ClosedBy:         pgtype.UUID{Bytes: req.ClosedBy, Valid: true},
	}, nil
}

func setupClosingRouter(svc *mockClosingService, store *mockClosingStore, branchID uuid.UUID) *chi.Mux {
	h := handler.NewClosingHandler(svc, store)
	r := claimsRouter(adminClaims(branchID))
	r.Route("/branches/{bid}/closings", func(r chi.Router) {
		h.RegisterRoutes(r)
		h.RegisterAdminRoutes(r)
	})
	return r
}

func TestClosingSummary_DefaultsToToday(t *testing.T) {
	bid := uuid.New()
	today := makePgDate(2026, 3, 14)
	svc := &mockClosingService{
		today: today,
		summary: &service.ClosingSummary{
			Date:             today,
			TransactionCount: 3,
			TotalSales:       decimal.RequireFromString("150000"),
			CashSales:        decimal.RequireFromString("100000"),
			BankSales:        decimal.Zero,
			QrisSales:        decimal.RequireFromString("50000"),
			TotalExpenses:    decimal.RequireFromString("20000"),
			Accounts: []database.CashAccount{
				{ID: uuid.New(), Name: "Kas", Kind: "CASH", Balance: makePgNumeric("600000"), IsActive: true},
			},
			ClosingBalance: decimal.RequireFromString("600000"),
		},
	}
	router := setupClosingRouter(svc, &mockClosingStore{}, bid)

	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/closings/summary", nil)
	expectStatus(t, w, http.StatusOK)

	if svc.summaryDate != today {
		t.Errorf("expected summary for today, got %v", svc.summaryDate)
	}
	resp := decodeMap(t, w)
	if resp["date"] != "2026-03-14" || resp["total_sales"] != "150000.00" || resp["qris_sales"] != "50000.00" {
		t.Errorf("unexpected summary: %v", resp)
	}
	if resp["closed"] != false || resp["closing"] != nil {
		t.Errorf("expected an open day, got closed=%v closing=%v", resp["closed"], resp["closing"])
	}
	if len(resp["accounts"].([]interface{})) != 1 {
		t.Errorf("expected 1 account, got %v", resp["accounts"])
	}
}

func TestClosingSummary_ClosedDay(t *testing.T) {
	bid := uuid.New()
	date := makePgDate(2026, 3, 10)
	closing := database.DailyClosing{ID: uuid.New(), ClosingDate: date, TotalSales: makePgNumeric("90000")}
	svc := &mockClosingService{
		today:   makePgDate(2026, 3, 14),
		summary: &service.ClosingSummary{Date: date, Closing: &closing},
	}
	router := setupClosingRouter(svc, &mockClosingStore{}, bid)

	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/closings/summary?date=2026-03-10", nil)
	expectStatus(t, w, http.StatusOK)

	if svc.summaryDate != date {
		t.Errorf("expected summary for %v, got %v", date, svc.summaryDate)
	}
	resp := decodeMap(t, w)
	if resp["closed"] != true {
		t.Errorf("expected closed day, got %v", resp["closed"])
	}
	snap := resp["closing"].(map[string]interface{})
	if snap["total_sales"] != "90000.00" {
		t.Errorf("expected snapshot total 90000.00, got %v", snap["total_sales"])
	}
}

func TestClosingSummary_BadDate(t *testing.T) {
	bid := uuid.New()
	router := setupClosingRouter(&mockClosingService{today: makePgDate(2026, 3, 14)}, &mockClosingStore{}, bid)
	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/closings/summary?date=14-03-2026", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCloseDay(t *testing.T) {
	bid := uuid.New()
	svc := &mockClosingService{today: makePgDate(2026, 3, 14)}
	router := setupClosingRouter(svc, &mockClosingStore{}, bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/closings/", map[string]string{
		"notes": "laci pas",
	})
	expectStatus(t, w, http.StatusCreated)

	if svc.closeReq.Date != makePgDate(2026, 3, 14) {
		t.Errorf("expected today, got %v", svc.closeReq.Date)
	}
	if svc.closeReq.Trigger != service.TriggerManual {
		t.Errorf("expected manual trigger, got %q", svc.closeReq.Trigger)
	}
	if svc.closeReq.ClosedBy == uuid.Nil {
		t.Error("expected closed_by from claims")
	}
	resp := decodeMap(t, w)
	if resp["closing_date"] != "2026-03-14" || resp["notes"] != "laci pas" {
		t.Errorf("unexpected closing: %v", resp)
	}
	if resp["closing_balance"] != "3250000.00" {
		t.Errorf("expected closing_balance 3250000.00, got %v", resp["closing_balance"])
	}
}

func TestCloseDay_AlreadyClosed(t *testing.T) {
	bid := uuid.New()
	svc := &mockClosingService{today: makePgDate(2026, 3, 14), err: service.ErrAlreadyClosed}
	router := setupClosingRouter(svc, &mockClosingStore{}, bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/closings/", map[string]string{
		"date": "2026-03-13",
	})
	expectStatus(t, w, http.StatusConflict)
	expectError(t, w, "tutup buku untuk tanggal ini sudah dilakukan")
}

func TestCloseDay_FutureDate(t *testing.T) {
	bid := uuid.New()
	svc := &mockClosingService{today: makePgDate(2026, 3, 14)}
	router := setupClosingRouter(svc, &mockClosingStore{}, bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/closings/", map[string]string{
		"date": "2026-03-15",
	})
	expectStatus(t, w, http.StatusBadRequest)
	if svc.closeReq.BranchID != uuid.Nil {
		t.Error("expected no close call for a future date")
	}
}

func TestListClosings(t *testing.T) {
	bid := uuid.New()
	store := &mockClosingStore{closings: []database.DailyClosing{
		{ID: uuid.New(), ClosingDate: makePgDate(2026, 3, 13), TransactionCount: 20, TotalSales: makePgNumeric("1200000")},
		{ID: uuid.New(), ClosingDate: makePgDate(2026, 3, 12), TransactionCount: 18, TotalSales: makePgNumeric("1000000")},
	}}
	router := setupClosingRouter(&mockClosingService{today: makePgDate(2026, 3, 14)}, store, bid)

	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/closings/", nil)
	expectStatus(t, w, http.StatusOK)

	if store.lastList.StartDate != makePgDate(2026, 3, 1) || store.lastList.EndDate != makePgDate(2026, 3, 14) {
		t.Errorf("expected month to date, got %v - %v", store.lastList.StartDate, store.lastList.EndDate)
	}
	list := decodeList(t, w)
	if len(list) != 2 || list[0]["closing_date"] != "2026-03-13" {
		t.Errorf("unexpected closings: %v", list)
	}
	if list[0]["closed_by"] != nil {
		t.Errorf("expected null closed_by for a scheduled closing, got %v", list[0]["closed_by"])
	}
}
