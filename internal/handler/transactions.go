package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/middleware"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CheckoutServicer defines the service methods needed by transaction handlers.
// Satisfied by *service.CheckoutService; narrow interface for testability.
type CheckoutServicer interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
	Void(ctx context.Context, req service.VoidRequest) (database.Transaction, error)
}

// TransactionStore defines the database methods needed by transaction reads.
type TransactionStore interface {
	ListTransactions(ctx context.Context, arg database.ListTransactionsParams) ([]database.Transaction, error)
	GetTransaction(ctx context.Context, arg database.GetTransactionParams) (database.Transaction, error)
	ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]database.TransactionItem, error)
}

// TransactionHandler handles POS checkout, history and void.
type TransactionHandler struct {
	svc   CheckoutServicer
	store TransactionStore
	now   func() time.Time
}

func NewTransactionHandler(svc CheckoutServicer, store TransactionStore) *TransactionHandler {
	return &TransactionHandler{svc: svc, store: store, now: time.Now}
}

// RegisterRoutes registers the cashier endpoints on /branches/{bid}/transactions.
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Checkout)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers void. Mount behind an OWNER/ADMIN guard.
func (h *TransactionHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/{id}/void", h.Void)
}

// --- Request / Response types ---

type checkoutRequest struct {
	CustomerID    string                `json:"customer_id" validate:"omitempty,uuid"`
	Items         []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountType  string                `json:"discount_type" validate:"omitempty,oneof=PERCENTAGE FIXED"`
	DiscountValue string                `json:"discount_value" validate:"omitempty,money"`
	Payments      paymentsRequest       `json:"payments"`
	// CashReceived is the cash handed over. Empty or zero means exact cash.
	CashReceived   string `json:"cash_received" validate:"omitempty,money"`
	IdempotencyKey string `json:"idempotency_key" validate:"max=100"`
	Notes          string `json:"notes" validate:"max=500"`
}

type checkoutItemRequest struct {
	CatalogItemID string `json:"catalog_item_id" validate:"required,uuid"`
	BarberID      string `json:"barber_id" validate:"omitempty,uuid"`
	Quantity      int32  `json:"quantity" validate:"required,min=1"`
}

type paymentsRequest struct {
	Cash string `json:"cash" validate:"omitempty,money"`
	Bank string `json:"bank" validate:"omitempty,money"`
	Qris string `json:"qris" validate:"omitempty,money"`
}

type voidRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type transactionResponse struct {
	ID                uuid.UUID                 `json:"id"`
	BranchID          uuid.UUID                 `json:"branch_id"`
	TransactionNumber string                    `json:"transaction_number"`
	Status            string                    `json:"status"`
	CustomerID        *uuid.UUID                `json:"customer_id"`
	CashierID         uuid.UUID                 `json:"cashier_id"`
	Subtotal          string                    `json:"subtotal"`
	DiscountType      *string                   `json:"discount_type"`
	DiscountValue     *string                   `json:"discount_value"`
	DiscountAmount    string                    `json:"discount_amount"`
	Total             string                    `json:"total"`
	CashAmount        string                    `json:"cash_amount"`
	BankAmount        string                    `json:"bank_amount"`
	QrisAmount        string                    `json:"qris_amount"`
	CashReceived      string                    `json:"cash_received"`
	ChangeAmount      string                    `json:"change_amount"`
	Notes             *string                   `json:"notes"`
	TransactionDate   string                    `json:"transaction_date"`
	VoidReason        *string                   `json:"void_reason"`
	VoidedBy          *uuid.UUID                `json:"voided_by"`
	VoidedAt          *time.Time                `json:"voided_at"`
	CreatedAt         time.Time                 `json:"created_at"`
	Items             []transactionItemResponse `json:"items,omitempty"`
	Duplicate         bool                      `json:"duplicate,omitempty"`
}

type transactionItemResponse struct {
	ID               uuid.UUID  `json:"id"`
	CatalogItemID    uuid.UUID  `json:"catalog_item_id"`
	BarberID         *uuid.UUID `json:"barber_id"`
	ItemName         string     `json:"item_name"`
	Kind             string     `json:"kind"`
	Quantity         int32      `json:"quantity"`
	UnitPrice        string     `json:"unit_price"`
	Subtotal         string     `json:"subtotal"`
	CommissionRate   string     `json:"commission_rate"`
	CommissionAmount string     `json:"commission_amount"`
}

func toTransactionResponse(t database.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                t.ID,
		BranchID:          t.BranchID,
		TransactionNumber: t.TransactionNumber,
		Status:            t.Status,
		CustomerID:        uuidPtr(t.CustomerID),
		CashierID:         t.CashierID,
		Subtotal:          money.String(t.Subtotal),
		DiscountType:      textPtr(t.DiscountType),
		DiscountValue:     money.StringPtr(t.DiscountValue),
		DiscountAmount:    money.String(t.DiscountAmount),
		Total:             money.String(t.Total),
		CashAmount:        money.String(t.CashAmount),
		BankAmount:        money.String(t.BankAmount),
		QrisAmount:        money.String(t.QrisAmount),
		CashReceived:      money.String(t.CashReceived),
		ChangeAmount:      money.String(t.ChangeAmount),
		Notes:             textPtr(t.Notes),
		TransactionDate:   bizdate.Format(t.TransactionDate),
		VoidReason:        textPtr(t.VoidReason),
		VoidedBy:          uuidPtr(t.VoidedBy),
		CreatedAt:         t.CreatedAt,
	}
	if t.VoidedAt.Valid {
		at := t.VoidedAt.Time
		resp.VoidedAt = &at
	}
	return resp
}

func toTransactionItemResponse(i database.TransactionItem) transactionItemResponse {
	return transactionItemResponse{
		ID:               i.ID,
		CatalogItemID:    i.CatalogItemID,
		BarberID:         uuidPtr(i.BarberID),
		ItemName:         i.ItemName,
		Kind:             i.Kind,
		Quantity:         i.Quantity,
		UnitPrice:        money.String(i.UnitPrice),
		Subtotal:         money.String(i.Subtotal),
		CommissionRate:   money.String(i.CommissionRate),
		CommissionAmount: money.String(i.CommissionAmount),
	}
}

func withItems(t database.Transaction, items []database.TransactionItem) transactionResponse {
	resp := toTransactionResponse(t)
	resp.Items = make([]transactionItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = toTransactionItemResponse(it)
	}
	return resp
}

// --- Handlers ---

// Checkout handles POST /branches/{bid}/transactions.
// The Idempotency-Key header is used when the body carries no key.
func (h *TransactionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "belum login")
		return
	}

	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	}

	items := make([]service.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CheckoutItem{
			CatalogItemID: parseUUIDOrNil(it.CatalogItemID),
			BarberID:      parseUUIDOrNil(it.BarberID),
			Quantity:      it.Quantity,
		}
	}

	result, err := h.svc.Checkout(r.Context(), service.CheckoutRequest{
		BranchID:       bid,
		CashierID:      claims.UserID,
		CustomerID:     parseUUIDOrNil(req.CustomerID),
		Items:          items,
		DiscountType:   req.DiscountType,
		DiscountValue:  parseAmount(req.DiscountValue),
		Cash:           parseAmount(req.Payments.Cash),
		Bank:           parseAmount(req.Payments.Bank),
		Qris:           parseAmount(req.Payments.Qris),
		CashReceived:   parseAmount(req.CashReceived),
		IdempotencyKey: key,
		Notes:          req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "checkout")
		return
	}

	resp := withItems(result.Transaction, result.Items)
	resp.Duplicate = result.Duplicate
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// List handles GET /branches/{bid}/transactions?start_date=&end_date=&status=.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.TransactionStatusCompleted && status != enum.TransactionStatusVoided {
		writeError(w, http.StatusBadRequest, "status harus COMPLETED atau VOIDED")
		return
	}
	limit, offset := parsePagination(r)

	trxs, err := h.store.ListTransactions(r.Context(), database.ListTransactionsParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		Status:    textOrNull(status),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		serverError(w, err, "list transactions")
		return
	}

	resp := make([]transactionResponse, len(trxs))
	for i, t := range trxs {
		resp[i] = toTransactionResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": resp,
		"limit":        limit,
		"offset":       offset,
	})
}

// Get returns one transaction with its items.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "transaksi")
	if !ok {
		return
	}

	trx, err := h.store.GetTransaction(r.Context(), database.GetTransactionParams{ID: id, BranchID: bid})
	if err != nil {
		writeServiceError(w, err, "get transaction")
		return
	}
	items, err := h.store.ListTransactionItems(r.Context(), trx.ID)
	if err != nil {
		serverError(w, err, "list transaction items")
		return
	}
	writeJSON(w, http.StatusOK, withItems(trx, items))
}

// Void handles POST /branches/{bid}/transactions/{id}/void.
func (h *TransactionHandler) Void(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "transaksi")
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "belum login")
		return
	}

	var req voidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trx, err := h.svc.Void(r.Context(), service.VoidRequest{
		BranchID:      bid,
		TransactionID: id,
		Reason:        req.Reason,
		VoidedBy:      claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "void transaction")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(trx))
}

// parseUUIDOrNil is for ids already checked by the uuid validate tag.
func parseUUIDOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
