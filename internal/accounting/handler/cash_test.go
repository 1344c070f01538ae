package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/barberkas/api/internal/accounting/handler"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mocks ---

type mockCashStore struct {
	accounts     map[uuid.UUID]database.CashAccount
	movements    []database.CashMovement
	lastMovement database.ListCashMovementsParams
	listErr      error
}

func newMockCashStore() *mockCashStore {
	return &mockCashStore{accounts: make(map[uuid.UUID]database.CashAccount)}
}

func (m *mockCashStore) ListCashAccounts(_ context.Context, branchID uuid.UUID) ([]database.CashAccount, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []database.CashAccount
	for _, a := range m.accounts {
		if a.BranchID == branchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockCashStore) GetCashAccount(_ context.Context, arg database.GetCashAccountParams) (database.CashAccount, error) {
	a, ok := m.accounts[arg.ID]
	if !ok || a.BranchID != arg.BranchID {
		return database.CashAccount{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockCashStore) UpdateCashAccount(_ context.Context, arg database.UpdateCashAccountParams) (database.CashAccount, error) {
	a, ok := m.accounts[arg.ID]
	if !ok || a.BranchID != arg.BranchID || !a.IsActive {
		return database.CashAccount{}, pgx.ErrNoRows
	}
	a.Name = arg.Name
	m.accounts[arg.ID] = a
	return a, nil
}

func (m *mockCashStore) ListCashMovements(_ context.Context, arg database.ListCashMovementsParams) ([]database.CashMovement, error) {
	m.lastMovement = arg
	return m.movements, nil
}

type mockCashService struct {
	created     int
	createReq   service.CreateAccountRequest
	moveReq     service.MovementRequest
	transferReq service.TransferRequest
	deleted     []uuid.UUID
	err         error
}

func (m *mockCashService) EnsureDefaultAccounts(_ context.Context, _ uuid.UUID) (int, error) {
	return m.created, m.err
}

func (m *mockCashService) CreateAccount(_ context.Context, req service.CreateAccountRequest) (database.CashAccount, error) {
	m.createReq = req
	if m.err != nil {
		return database.CashAccount{}, m.err
	}
	return database.CashAccount{
		ID:       uuid.New(),
		BranchID: req.BranchID,
		Name:     req.Name,
		Kind:     req.Kind,
		Balance:  makePgNumeric(req.OpeningBalance.StringFixed(2)),
		IsActive: true,
	}, nil
}

func (m *mockCashService) DeleteAccount(_ context.Context, _ uuid.UUID, accountID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, accountID)
	return nil
}

func (m *mockCashService) Deposit(_ context.Context, req service.MovementRequest) (*service.MovementResult, error) {
	return m.move(req, "IN")
}

func (m *mockCashService) Withdraw(_ context.Context, req service.MovementRequest) (*service.MovementResult, error) {
	return m.move(req, "OUT")
}

func (m *mockCashService) move(req service.MovementRequest, direction string) (*service.MovementResult, error) {
	m.moveReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &service.MovementResult{
		Account: database.CashAccount{ID: req.AccountID, Balance: makePgNumeric("150000.00"), IsActive: true},
		Movement: database.CashMovement{
			ID:           uuid.New(),
			AccountID:    req.AccountID,
			Direction:    direction,
			Category:     "DEPOSIT",
			Amount:       makePgNumeric(req.Amount.StringFixed(2)),
			BalanceAfter: makePgNumeric("150000.00"),
		},
	}, nil
}

func (m *mockCashService) Transfer(_ context.Context, req service.TransferRequest) (*service.TransferResult, error) {
	m.transferReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &service.TransferResult{
		TransferID: uuid.New(),
		From:       database.CashAccount{ID: req.FromID, Balance: makePgNumeric("0.00")},
		To:         database.CashAccount{ID: req.ToID, Balance: makePgNumeric("50000.00")},
		Out:        database.CashMovement{AccountID: req.FromID, Direction: "OUT", Category: "TRANSFER", Amount: makePgNumeric("50000.00")},
		In:         database.CashMovement{AccountID: req.ToID, Direction: "IN", Category: "TRANSFER", Amount: makePgNumeric("50000.00")},
	}, nil
}

func setupCashRouter(svc *mockCashService, store *mockCashStore, branchID uuid.UUID) *chi.Mux {
	h := handler.NewCashHandler(svc, store)
	r := claimsRouter(adminClaims(branchID))
	r.Route("/branches/{bid}", func(r chi.Router) {
		r.Route("/cash-accounts", func(r chi.Router) {
			h.RegisterAccountRoutes(r)
			h.RegisterAccountAdminRoutes(r)
		})
		r.Route("/cash-transfers", h.RegisterTransferRoutes)
		r.Route("/cash-movements", h.RegisterMovementRoutes)
	})
	return r
}

func seedAccount(store *mockCashStore, branchID uuid.UUID, name, kind, balance string) database.CashAccount {
	a := database.CashAccount{
		ID:        uuid.New(),
		BranchID:  branchID,
		Name:      name,
		Kind:      kind,
		Balance:   makePgNumeric(balance),
		IsDefault: true,
		IsActive:  true,
	}
	store.accounts[a.ID] = a
	return a
}

// --- Tests ---

func TestListCashAccounts(t *testing.T) {
	bid := uuid.New()
	store := newMockCashStore()
	seedAccount(store, bid, "Kas", "CASH", "250000")
	seedAccount(store, uuid.New(), "Other branch", "CASH", "1")

	router := setupCashRouter(&mockCashService{}, store, bid)
	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/cash-accounts/", nil)
	expectStatus(t, w, http.StatusOK)

	list := decodeList(t, w)
	if len(list) != 1 {
		t.Fatalf("expected 1 account, got %d", len(list))
	}
	if list[0]["balance"] != "250000.00" {
		t.Errorf("expected balance 250000.00, got %v", list[0]["balance"])
	}
}

func TestGetCashAccount_OtherBranchIsNotFound(t *testing.T) {
	bid := uuid.New()
	store := newMockCashStore()
	a := seedAccount(store, uuid.New(), "Kas", "CASH", "0")

	router := setupCashRouter(&mockCashService{}, store, bid)
	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/cash-accounts/"+a.ID.String(), nil)
	expectStatus(t, w, http.StatusNotFound)
	expectError(t, w, service.ErrAccountNotFound.Error())
}

func TestGetCashAccount_InvalidID(t *testing.T) {
	bid := uuid.New()
	router := setupCashRouter(&mockCashService{}, newMockCashStore(), bid)
	w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/cash-accounts/nope", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCreateCashAccount(t *testing.T) {
	bid := uuid.New()
	svc := &mockCashService{}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/", map[string]string{
		"name":            "BCA",
		"kind":            "BANK",
		"opening_balance": "1000000",
	})
	expectStatus(t, w, http.StatusCreated)

	if svc.createReq.BranchID != bid {
		t.Errorf("expected branch %s, got %s", bid, svc.createReq.BranchID)
	}
	if svc.createReq.OpeningBalance.StringFixed(2) != "1000000.00" {
		t.Errorf("expected opening balance 1000000.00, got %s", svc.createReq.OpeningBalance)
	}
	if svc.createReq.CreatedBy == uuid.Nil {
		t.Error("expected created_by from claims")
	}
	resp := decodeMap(t, w)
	if resp["kind"] != "BANK" {
		t.Errorf("expected kind BANK, got %v", resp["kind"])
	}
}

func TestCreateCashAccount_Validation(t *testing.T) {
	bid := uuid.New()
	router := setupCashRouter(&mockCashService{}, newMockCashStore(), bid)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"kind": "CASH"}},
		{"bad kind", map[string]string{"name": "X", "kind": "GOPAY"}},
		{"negative opening", map[string]string{"name": "X", "kind": "CASH", "opening_balance": "-5"}},
		{"garbage opening", map[string]string{"name": "X", "kind": "CASH", "opening_balance": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/", tt.body)
			expectStatus(t, w, http.StatusBadRequest)
			resp := decodeMap(t, w)
			if resp["error"] != "validasi gagal" {
				t.Errorf("expected validation error, got %v", resp["error"])
			}
		})
	}
}

func TestEnsureDefaultAccounts(t *testing.T) {
	bid := uuid.New()
	store := newMockCashStore()
	seedAccount(store, bid, "Kas", "CASH", "0")
	svc := &mockCashService{created: 2}

	router := setupCashRouter(svc, store, bid)
	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/defaults", nil)
	expectStatus(t, w, http.StatusOK)

	resp := decodeMap(t, w)
	if resp["created"].(float64) != 2 {
		t.Errorf("expected created 2, got %v", resp["created"])
	}
	if len(resp["accounts"].([]interface{})) != 1 {
		t.Errorf("expected 1 account listed, got %v", resp["accounts"])
	}
}

func TestUpdateCashAccount_RenameAndDeactivate(t *testing.T) {
	bid := uuid.New()
	store := newMockCashStore()
	a := seedAccount(store, bid, "Kas", "CASH", "0")
	svc := &mockCashService{}
	router := setupCashRouter(svc, store, bid)

	w := doRequest(t, router, http.MethodPut, "/branches/"+bid.String()+"/cash-accounts/"+a.ID.String(), map[string]interface{}{
		"name":      "Kas Laci",
		"is_active": false,
	})
	expectStatus(t, w, http.StatusOK)

	resp := decodeMap(t, w)
	if resp["name"] != "Kas Laci" {
		t.Errorf("expected renamed account, got %v", resp["name"])
	}
	if resp["is_active"] != false {
		t.Errorf("expected is_active false, got %v", resp["is_active"])
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != a.ID {
		t.Errorf("expected deactivation through DeleteAccount, got %v", svc.deleted)
	}
}

func TestUpdateCashAccount_DeactivateRulesApply(t *testing.T) {
	bid := uuid.New()
	store := newMockCashStore()
	a := seedAccount(store, bid, "Kas", "CASH", "100")
	svc := &mockCashService{err: service.ErrAccountHasBalance}
	router := setupCashRouter(svc, store, bid)

	w := doRequest(t, router, http.MethodPut, "/branches/"+bid.String()+"/cash-accounts/"+a.ID.String(), map[string]interface{}{
		"name":      "Kas",
		"is_active": false,
	})
	expectStatus(t, w, http.StatusConflict)
	expectError(t, w, service.ErrAccountHasBalance.Error())
}

func TestDeleteCashAccount_ErrorMapping(t *testing.T) {
	bid := uuid.New()
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrDefaultAccountLocked, http.StatusConflict},
		{service.ErrAccountHasBalance, http.StatusConflict},
		{service.ErrAccountNotFound, http.StatusNotFound},
		{fmt.Errorf("delete: %w", pgx.ErrNoRows), http.StatusNotFound},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := setupCashRouter(&mockCashService{err: tt.err}, newMockCashStore(), bid)
			w := doRequest(t, router, http.MethodDelete, "/branches/"+bid.String()+"/cash-accounts/"+uuid.NewString(), nil)
			expectStatus(t, w, tt.status)
			if tt.status == http.StatusInternalServerError {
				expectError(t, w, "terjadi kesalahan pada server")
			}
		})
	}
}

func TestDeposit(t *testing.T) {
	bid := uuid.New()
	acctID := uuid.New()
	svc := &mockCashService{}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/"+acctID.String()+"/deposit", map[string]string{
		"amount":      "50000",
		"description": "modal awal",
	})
	expectStatus(t, w, http.StatusCreated)

	if svc.moveReq.AccountID != acctID || svc.moveReq.Amount.StringFixed(2) != "50000.00" {
		t.Errorf("unexpected movement request: %+v", svc.moveReq)
	}
	resp := decodeMap(t, w)
	mv := resp["movement"].(map[string]interface{})
	if mv["direction"] != "IN" {
		t.Errorf("expected direction IN, got %v", mv["direction"])
	}
	acct := resp["account"].(map[string]interface{})
	if acct["balance"] != "150000.00" {
		t.Errorf("expected balance 150000.00, got %v", acct["balance"])
	}
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	bid := uuid.New()
	svc := &mockCashService{err: fmt.Errorf("debit: %w", service.ErrInsufficientBalance)}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/"+uuid.NewString()+"/withdraw", map[string]string{
		"amount": "999999",
	})
	expectStatus(t, w, http.StatusConflict)
	expectError(t, w, "saldo tidak mencukupi")
}

func TestWithdraw_ZeroAmount(t *testing.T) {
	bid := uuid.New()
	svc := &mockCashService{err: service.ErrNonPositiveAmount}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/"+uuid.NewString()+"/withdraw", map[string]string{
		"amount": "0",
	})
	expectStatus(t, w, http.StatusBadRequest)
	expectError(t, w, service.ErrNonPositiveAmount.Error())
}

func TestTransfer(t *testing.T) {
	bid := uuid.New()
	from, to := uuid.New(), uuid.New()
	svc := &mockCashService{}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-transfers/", map[string]string{
		"from_account_id": from.String(),
		"to_account_id":   to.String(),
		"amount":          "50000",
	})
	expectStatus(t, w, http.StatusCreated)

	if svc.transferReq.FromID != from || svc.transferReq.ToID != to {
		t.Errorf("unexpected transfer request: %+v", svc.transferReq)
	}
	resp := decodeMap(t, w)
	if resp["transfer_id"] == nil {
		t.Error("expected transfer_id")
	}
	if resp["out"].(map[string]interface{})["direction"] != "OUT" {
		t.Errorf("expected out leg, got %v", resp["out"])
	}
}

func TestTransfer_SameAccount(t *testing.T) {
	bid := uuid.New()
	id := uuid.NewString()
	svc := &mockCashService{err: service.ErrSameAccount}
	router := setupCashRouter(svc, newMockCashStore(), bid)

	w := doRequest(t, router, http.MethodPost, "/branches/"+bid.String()+"/cash-transfers/", map[string]string{
		"from_account_id": id,
		"to_account_id":   id,
		"amount":          "1",
	})
	expectStatus(t, w, http.StatusBadRequest)
	expectError(t, w, service.ErrSameAccount.Error())
}

func TestListMovements_Filters(t *testing.T) {
	bid := uuid.New()
	acct := uuid.New()
	store := newMockCashStore()
	store.movements = []database.CashMovement{
		{ID: uuid.New(), AccountID: acct, Direction: "IN", Category: "SALE", Amount: makePgNumeric("75000")},
	}
	router := setupCashRouter(&mockCashService{}, store, bid)

	path := fmt.Sprintf("/branches/%s/cash-movements/?account_id=%s&category=SALE&start_date=2026-03-01&end_date=2026-03-31&limit=9999", bid, acct)
	w := doRequest(t, router, http.MethodGet, path, nil)
	expectStatus(t, w, http.StatusOK)

	got := store.lastMovement
	if !got.AccountID.Valid || uuid.UUID(got.AccountID.Bytes) != acct {
		t.Errorf("expected account filter %s, got %+v", acct, got.AccountID)
	}
	if got.Category != (pgtype.Text{String: "SALE", Valid: true}) {
		t.Errorf("expected category SALE, got %+v", got.Category)
	}
	if got.StartDate != makePgDate(2026, 3, 1) || got.EndDate != makePgDate(2026, 3, 31) {
		t.Errorf("unexpected range %v - %v", got.StartDate, got.EndDate)
	}
	if got.Limit != 500 {
		t.Errorf("expected limit capped at 500, got %d", got.Limit)
	}

	resp := decodeMap(t, w)
	if len(resp["movements"].([]interface{})) != 1 {
		t.Errorf("expected 1 movement, got %v", resp["movements"])
	}
}

func TestListMovements_BadInput(t *testing.T) {
	bid := uuid.New()
	router := setupCashRouter(&mockCashService{}, newMockCashStore(), bid)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown category", "category=LOTTERY"},
		{"bad account", "account_id=xyz"},
		{"bad date", "start_date=01-03-2026"},
		{"inverted range", "start_date=2026-03-10&end_date=2026-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, "/branches/"+bid.String()+"/cash-movements/?"+tt.query, nil)
			expectStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestCashWrites_RequireClaims(t *testing.T) {
	bid := uuid.New()
	h := handler.NewCashHandler(&mockCashService{}, newMockCashStore())
	r := claimsRouter(nil)
	r.Route("/branches/{bid}/cash-accounts", h.RegisterAccountAdminRoutes)

	w := doRequest(t, r, http.MethodPost, "/branches/"+bid.String()+"/cash-accounts/", map[string]string{
		"name": "Kas", "kind": "CASH",
	})
	expectStatus(t, w, http.StatusUnauthorized)
}
