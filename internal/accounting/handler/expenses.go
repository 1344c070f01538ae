package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/barberkas/api/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const categoryNameConstraint = "expense_categories_branch_id_name_key"

// --- Store / service interfaces ---

// ExpenseStore defines the database methods needed by expense handlers.
type ExpenseStore interface {
	ListExpenseCategories(ctx context.Context, branchID uuid.UUID) ([]database.ExpenseCategory, error)
	GetExpenseCategory(ctx context.Context, arg database.GetExpenseCategoryParams) (database.ExpenseCategory, error)
	CreateExpenseCategory(ctx context.Context, arg database.CreateExpenseCategoryParams) (database.ExpenseCategory, error)
	UpdateExpenseCategory(ctx context.Context, arg database.UpdateExpenseCategoryParams) (database.ExpenseCategory, error)
	DeactivateExpenseCategory(ctx context.Context, arg database.DeactivateExpenseCategoryParams) (uuid.UUID, error)
	ListExpenses(ctx context.Context, arg database.ListExpensesParams) ([]database.ListExpensesRow, error)
}

// ExpenseServicer books and reverses expenses. Satisfied by *service.ExpenseService.
type ExpenseServicer interface {
	Create(ctx context.Context, req service.CreateExpenseRequest) (database.Expense, error)
	Delete(ctx context.Context, branchID, expenseID, deletedBy uuid.UUID) error
	QuickEntry(ctx context.Context, req service.QuickEntryRequest) (*service.QuickEntryResult, error)
}

// --- ExpenseHandler ---

// ExpenseHandler handles expense categories, expenses and quick entry.
type ExpenseHandler struct {
	svc   ExpenseServicer
	store ExpenseStore
	now   func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc ExpenseServicer, store ExpenseStore) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, store: store, now: time.Now}
}

// RegisterCategoryRoutes registers reads on /branches/{bid}/expense-categories.
func (h *ExpenseHandler) RegisterCategoryRoutes(r chi.Router) {
	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
}

// RegisterCategoryAdminRoutes registers category writes. Mount behind OWNER/ADMIN.
func (h *ExpenseHandler) RegisterCategoryAdminRoutes(r chi.Router) {
	r.Post("/", h.CreateCategory)
	r.Put("/{id}", h.UpdateCategory)
	r.Delete("/{id}", h.DeleteCategory)
}

// RegisterExpenseRoutes registers /branches/{bid}/expenses.
func (h *ExpenseHandler) RegisterExpenseRoutes(r chi.Router) {
	r.Get("/", h.ListExpenses)
	r.Post("/", h.CreateExpense)
	r.Post("/quick", h.QuickEntry)
}

// RegisterExpenseAdminRoutes registers expense deletion. Mount behind OWNER/ADMIN.
func (h *ExpenseHandler) RegisterExpenseAdminRoutes(r chi.Router) {
	r.Delete("/{id}", h.DeleteExpense)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Keywords []string `json:"keywords" validate:"dive,max=50"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toCategoryResponse(c database.ExpenseCategory) categoryResponse {
	kw := c.Keywords
	if kw == nil {
		kw = []string{}
	}
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Keywords:  kw,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// normalizeKeywords lowercases, trims and drops empty or repeated keywords.
func normalizeKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

type createExpenseRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	AccountID   string `json:"account_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required,money"`
	Description string `json:"description" validate:"required,max=500"`
	ExpenseDate string `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
}

type expenseResponse struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	AccountID    uuid.UUID `json:"account_id"`
	AccountName  string    `json:"account_name,omitempty"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	ExpenseDate  string    `json:"expense_date"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func toExpenseResponse(e database.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		AccountID:   e.AccountID,
		Amount:      money.String(e.Amount),
		Description: e.Description,
		ExpenseDate: bizdate.Format(e.ExpenseDate),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

type quickEntryRequest struct {
	AccountID string                 `json:"account_id" validate:"omitempty,uuid"`
	Text      string                 `json:"text" validate:"required,max=5000"`
	Commit    bool                   `json:"commit"`
	Overrides []quickOverrideRequest `json:"overrides" validate:"dive"`
}

type quickOverrideRequest struct {
	Index      int    `json:"index" validate:"min=0"`
	CategoryID string `json:"category_id" validate:"required,uuid"`
}

// --- Category handlers ---

// ListCategories returns active categories; ?include_inactive=true lists all.
func (h *ExpenseHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	all := r.URL.Query().Get("include_inactive") == "true"

	cats, err := h.store.ListExpenseCategories(r.Context(), bid)
	if err != nil {
		serverError(w, err, "list expense categories")
		return
	}
	resp := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		if !c.IsActive && !all {
			continue
		}
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExpenseHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "kategori")
	if !ok {
		return
	}
	cat, err := h.store.GetExpenseCategory(r.Context(), database.GetExpenseCategoryParams{ID: id, BranchID: bid})
	if err != nil {
		writeCategoryError(w, err, "get expense category")
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (h *ExpenseHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.store.CreateExpenseCategory(r.Context(), database.CreateExpenseCategoryParams{
		BranchID: bid,
		Name:     strings.TrimSpace(req.Name),
		Keywords: normalizeKeywords(req.Keywords),
	})
	if err != nil {
		writeCategoryError(w, err, "create expense category")
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

func (h *ExpenseHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "kategori")
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.store.UpdateExpenseCategory(r.Context(), database.UpdateExpenseCategoryParams{
		ID:       id,
		BranchID: bid,
		Name:     strings.TrimSpace(req.Name),
		Keywords: normalizeKeywords(req.Keywords),
	})
	if err != nil {
		writeCategoryError(w, err, "update expense category")
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

// DeleteCategory deactivates a category. Past expenses keep pointing at it.
func (h *ExpenseHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "kategori")
	if !ok {
		return
	}
	if _, err := h.store.DeactivateExpenseCategory(r.Context(), database.DeactivateExpenseCategoryParams{ID: id, BranchID: bid}); err != nil {
		writeCategoryError(w, err, "delete expense category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeCategoryError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, service.ErrExpenseCategoryNotFound.Error())
	case sqlerr.IsUniqueViolation(err, categoryNameConstraint):
		writeError(w, http.StatusConflict, "nama kategori sudah ada")
	default:
		serverError(w, err, msg)
	}
}

// --- Expense handlers ---

// ListExpenses handles GET /branches/{bid}/expenses?start_date=&end_date=&category_id=.
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(w, r, bizdate.Of(h.now()))
	if !ok {
		return
	}
	category, ok := optionalUUID(w, r, "category_id")
	if !ok {
		return
	}
	limit, offset := parsePagination(r)

	rows, err := h.store.ListExpenses(r.Context(), database.ListExpensesParams{
		BranchID:   bid,
		StartDate:  start,
		EndDate:    end,
		CategoryID: category,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		serverError(w, err, "list expenses")
		return
	}

	resp := make([]expenseResponse, len(rows))
	for i, row := range rows {
		resp[i] = expenseResponse{
			ID:           row.ID,
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			AccountID:    row.AccountID,
			AccountName:  row.AccountName,
			Amount:       money.String(row.Amount),
			Description:  row.Description,
			ExpenseDate:  bizdate.Format(row.ExpenseDate),
			CreatedBy:    row.CreatedBy,
			CreatedAt:    row.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": resp,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := optionalDate(w, "expense_date", req.ExpenseDate)
	if !ok {
		return
	}

	exp, err := h.svc.Create(r.Context(), service.CreateExpenseRequest{
		BranchID:    bid,
		CategoryID:  parseUUIDOrNil(req.CategoryID),
		AccountID:   parseUUIDOrNil(req.AccountID),
		Amount:      parseAmount(req.Amount),
		Description: req.Description,
		ExpenseDate: date,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "create expense")
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(exp))
}

// DeleteExpense refunds the amount to its account and removes the row.
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "pengeluaran")
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), bid, id, claims.UserID); err != nil {
		writeServiceError(w, err, "delete expense")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// QuickEntry parses a free-text note. Without commit it only previews; with
// commit it books every line or answers 422 with the preview when some line
// has no single matching category.
func (h *ExpenseHandler) QuickEntry(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req quickEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Commit && req.AccountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  msgValidation,
			"fields": validation.Errors{{Field: "account_id", Error: "wajib diisi"}},
		})
		return
	}

	overrides := make(map[int]uuid.UUID, len(req.Overrides))
	for _, o := range req.Overrides {
		overrides[o.Index] = parseUUIDOrNil(o.CategoryID)
	}

	result, err := h.svc.QuickEntry(r.Context(), service.QuickEntryRequest{
		BranchID:  bid,
		AccountID: parseUUIDOrNil(req.AccountID),
		Text:      req.Text,
		Commit:    req.Commit,
		Overrides: overrides,
		CreatedBy: claims.UserID,
	})
	if errors.Is(err, service.ErrUnresolvedLines) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	if err != nil {
		writeServiceError(w, err, "quick expense entry")
		return
	}

	status := http.StatusOK
	if result.Committed {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
