package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Store / service interfaces ---

// CashStore defines the database reads needed by cash handlers.
// Satisfied by *database.Queries.
type CashStore interface {
	ListCashAccounts(ctx context.Context, branchID uuid.UUID) ([]database.CashAccount, error)
	GetCashAccount(ctx context.Context, arg database.GetCashAccountParams) (database.CashAccount, error)
	UpdateCashAccount(ctx context.Context, arg database.UpdateCashAccountParams) (database.CashAccount, error)
	ListCashMovements(ctx context.Context, arg database.ListCashMovementsParams) ([]database.CashMovement, error)
}

// CashServicer defines the ledger operations. Satisfied by *service.CashflowService.
type CashServicer interface {
	EnsureDefaultAccounts(ctx context.Context, branchID uuid.UUID) (int, error)
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (database.CashAccount, error)
	DeleteAccount(ctx context.Context, branchID, accountID uuid.UUID) error
	Deposit(ctx context.Context, req service.MovementRequest) (*service.MovementResult, error)
	Withdraw(ctx context.Context, req service.MovementRequest) (*service.MovementResult, error)
	Transfer(ctx context.Context, req service.TransferRequest) (*service.TransferResult, error)
}

// --- CashHandler ---

// CashHandler handles cash accounts, deposits, withdrawals, transfers and the
// movement ledger.
type CashHandler struct {
	svc   CashServicer
	store CashStore
	now   func() time.Time
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(svc CashServicer, store CashStore) *CashHandler {
	return &CashHandler{svc: svc, store: store, now: time.Now}
}

// RegisterAccountRoutes registers reads on /branches/{bid}/cash-accounts.
func (h *CashHandler) RegisterAccountRoutes(r chi.Router) {
	r.Get("/", h.ListAccounts)
	r.Get("/{id}", h.GetAccount)
}

// RegisterAccountAdminRoutes registers account writes. Mount behind OWNER/ADMIN.
func (h *CashHandler) RegisterAccountAdminRoutes(r chi.Router) {
	r.Post("/", h.CreateAccount)
	r.Post("/defaults", h.EnsureDefaults)
	r.Put("/{id}", h.UpdateAccount)
	r.Delete("/{id}", h.DeleteAccount)
	r.Post("/{id}/deposit", h.Deposit)
	r.Post("/{id}/withdraw", h.Withdraw)
}

// RegisterTransferRoutes registers /branches/{bid}/cash-transfers. Mount behind OWNER/ADMIN.
func (h *CashHandler) RegisterTransferRoutes(r chi.Router) {
	r.Post("/", h.Transfer)
}

// RegisterMovementRoutes registers /branches/{bid}/cash-movements.
func (h *CashHandler) RegisterMovementRoutes(r chi.Router) {
	r.Get("/", h.ListMovements)
}

// --- Request / Response types ---

type createCashAccountRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Kind           string `json:"kind" validate:"required,oneof=CASH BANK QRIS"`
	OpeningBalance string `json:"opening_balance" validate:"omitempty,money"`
}

type updateCashAccountRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive *bool  `json:"is_active"`
}

type movementRequest struct {
	Amount      string `json:"amount" validate:"required,money"`
	Description string `json:"description" validate:"max=500"`
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id" validate:"required,uuid"`
	ToAccountID   string `json:"to_account_id" validate:"required,uuid"`
	Amount        string `json:"amount" validate:"required,money"`
	Description   string `json:"description" validate:"max=500"`
}

type cashAccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Balance   string    `json:"balance"`
	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toCashAccountResponse(a database.CashAccount) cashAccountResponse {
	return cashAccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Kind:      a.Kind,
		Balance:   money.String(a.Balance),
		IsDefault: a.IsDefault,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

type movementResponse struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     uuid.UUID  `json:"account_id"`
	Direction     string     `json:"direction"`
	Category      string     `json:"category"`
	Amount        string     `json:"amount"`
	BalanceAfter  string     `json:"balance_after"`
	Description   *string    `json:"description"`
	ReferenceType *string    `json:"reference_type"`
	ReferenceID   *uuid.UUID `json:"reference_id"`
	CreatedBy     *uuid.UUID `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toMovementResponse(m database.CashMovement) movementResponse {
	return movementResponse{
		ID:            m.ID,
		AccountID:     m.AccountID,
		Direction:     m.Direction,
		Category:      m.Category,
		Amount:        money.String(m.Amount),
		BalanceAfter:  money.String(m.BalanceAfter),
		Description:   textPtr(m.Description),
		ReferenceType: textPtr(m.ReferenceType),
		ReferenceID:   uuidPtr(m.ReferenceID),
		CreatedBy:     uuidPtr(m.CreatedBy),
		CreatedAt:     m.CreatedAt,
	}
}

type movementResultResponse struct {
	Account  cashAccountResponse `json:"account"`
	Movement movementResponse    `json:"movement"`
}

type transferResponse struct {
	TransferID uuid.UUID           `json:"transfer_id"`
	From       cashAccountResponse `json:"from"`
	To         cashAccountResponse `json:"to"`
	Out        movementResponse    `json:"out"`
	In         movementResponse    `json:"in"`
}

// --- Account handlers ---

func (h *CashHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	accounts, err := h.store.ListCashAccounts(r.Context(), bid)
	if err != nil {
		serverError(w, err, "list cash accounts")
		return
	}
	resp := make([]cashAccountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toCashAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CashHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "akun")
	if !ok {
		return
	}
	acct, err := h.store.GetCashAccount(r.Context(), database.GetCashAccountParams{ID: id, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrAccountNotFound.Error())
			return
		}
		serverError(w, err, "get cash account")
		return
	}
	writeJSON(w, http.StatusOK, toCashAccountResponse(acct))
}

func (h *CashHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req createCashAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.svc.CreateAccount(r.Context(), service.CreateAccountRequest{
		BranchID:       bid,
		Name:           req.Name,
		Kind:           req.Kind,
		OpeningBalance: parseAmount(req.OpeningBalance),
		CreatedBy:      claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "create cash account")
		return
	}
	writeJSON(w, http.StatusCreated, toCashAccountResponse(acct))
}

// EnsureDefaults creates the missing CASH, BANK and QRIS default accounts.
// Safe to call repeatedly.
func (h *CashHandler) EnsureDefaults(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	created, err := h.svc.EnsureDefaultAccounts(r.Context(), bid)
	if err != nil {
		writeServiceError(w, err, "ensure default accounts")
		return
	}
	accounts, err := h.store.ListCashAccounts(r.Context(), bid)
	if err != nil {
		serverError(w, err, "list cash accounts")
		return
	}
	resp := make([]cashAccountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toCashAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created, "accounts": resp})
}

// UpdateAccount renames an account. is_active=false deactivates it under the
// same rules as DELETE.
func (h *CashHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "akun")
	if !ok {
		return
	}
	var req updateCashAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acct, err := h.store.UpdateCashAccount(r.Context(), database.UpdateCashAccountParams{
		ID:       id,
		BranchID: bid,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrAccountNotFound.Error())
			return
		}
		serverError(w, err, "update cash account")
		return
	}

	if req.IsActive != nil && !*req.IsActive {
		if err := h.svc.DeleteAccount(r.Context(), bid, id); err != nil {
			writeServiceError(w, err, "deactivate cash account")
			return
		}
		acct.IsActive = false
	}
	writeJSON(w, http.StatusOK, toCashAccountResponse(acct))
}

func (h *CashHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "akun")
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), bid, id); err != nil {
		writeServiceError(w, err, "delete cash account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CashHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Deposit, "deposit")
}

func (h *CashHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.svc.Withdraw, "withdraw")
}

func (h *CashHandler) move(w http.ResponseWriter, r *http.Request, fn func(context.Context, service.MovementRequest) (*service.MovementResult, error), op string) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "akun")
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := fn(r.Context(), service.MovementRequest{
		BranchID:    bid,
		AccountID:   id,
		Amount:      parseAmount(req.Amount),
		Description: req.Description,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, op)
		return
	}
	writeJSON(w, http.StatusCreated, movementResultResponse{
		Account:  toCashAccountResponse(res.Account),
		Movement: toMovementResponse(res.Movement),
	})
}

// --- Transfer / movements ---

func (h *CashHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Transfer(r.Context(), service.TransferRequest{
		BranchID:    bid,
		FromID:      parseUUIDOrNil(req.FromAccountID),
		ToID:        parseUUIDOrNil(req.ToAccountID),
		Amount:      parseAmount(req.Amount),
		Description: req.Description,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "transfer")
		return
	}
	writeJSON(w, http.StatusCreated, transferResponse{
		TransferID: res.TransferID,
		From:       toCashAccountResponse(res.From),
		To:         toCashAccountResponse(res.To),
		Out:        toMovementResponse(res.Out),
		In:         toMovementResponse(res.In),
	})
}

// ListMovements handles GET /branches/{bid}/cash-movements?account_id=&category=&start_date=&end_date=.
func (h *CashHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}
	account, ok := optionalUUID(w, r, "account_id")
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")
	if category != "" && !enum.IsMovementCategory(category) {
		writeError(w, http.StatusBadRequest, "kategori mutasi tidak valid")
		return
	}
	limit, offset := parsePagination(r)

	rows, err := h.store.ListCashMovements(r.Context(), database.ListCashMovementsParams{
		BranchID:  bid,
		AccountID: account,
		Category:  textOrNull(category),
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		serverError(w, err, "list cash movements")
		return
	}

	resp := make([]movementResponse, len(rows))
	for i, m := range rows {
		resp[i] = toMovementResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movements": resp,
		"limit":     limit,
		"offset":    offset,
	})
}
