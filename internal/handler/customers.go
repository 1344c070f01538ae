package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const customerPhoneConstraint = "customers_branch_id_phone_key"

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CustomerStore interface {
	ListCustomers(ctx context.Context, arg database.ListCustomersParams) ([]database.Customer, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error)
	UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error)
	SoftDeleteCustomer(ctx context.Context, arg database.SoftDeleteCustomerParams) (uuid.UUID, error)
}

// CustomerHandler handles customer CRUD endpoints.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints on /branches/{bid}/customers.
// Cashiers register walk-in customers at the counter, so create and update
// are open to every role.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
}

// RegisterAdminRoutes registers the endpoints reserved for OWNER/ADMIN.
func (h *CustomerHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type customerRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"omitempty,min=6,max=20"`
	Notes string `json:"notes" validate:"max=500"`
}

type customerResponse struct {
	ID          uuid.UUID  `json:"id"`
	BranchID    uuid.UUID  `json:"branch_id"`
	Name        string     `json:"name"`
	Phone       *string    `json:"phone"`
	Notes       *string    `json:"notes"`
	VisitCount  int32      `json:"visit_count"`
	LastVisitAt *time.Time `json:"last_visit_at"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toCustomerResponse(c database.Customer) customerResponse {
	resp := customerResponse{
		ID:         c.ID,
		BranchID:   c.BranchID,
		Name:       c.Name,
		Phone:      textPtr(c.Phone),
		Notes:      textPtr(c.Notes),
		VisitCount: c.VisitCount,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.LastVisitAt.Valid {
		t := c.LastVisitAt.Time
		resp.LastVisitAt = &t
	}
	return resp
}

// --- Handlers ---

// List returns customers matching ?search= on name or phone.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	limit, offset := parsePagination(r)

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if phone, ok := normalizePhone(search); ok {
		search = phone
	}

	customers, err := h.store.ListCustomers(r.Context(), database.ListCustomersParams{
		BranchID: bid,
		Search:   textOrNull(search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		serverError(w, err, "list customers")
		return
	}

	resp := make([]customerResponse, len(customers))
	for i, c := range customers {
		resp[i] = toCustomerResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "pelanggan")
	if !ok {
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), database.GetCustomerParams{ID: id, BranchID: bid})
	if err != nil {
		writeCustomerError(w, err, "get customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	req, ok := decodeCustomer(w, r)
	if !ok {
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), database.CreateCustomerParams{
		BranchID: bid,
		Name:     req.Name,
		Phone:    textOrNull(req.Phone),
		Notes:    textOrNull(req.Notes),
	})
	if err != nil {
		writeCustomerError(w, err, "create customer")
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "pelanggan")
	if !ok {
		return
	}

	req, ok := decodeCustomer(w, r)
	if !ok {
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), database.UpdateCustomerParams{
		ID:       id,
		BranchID: bid,
		Name:     req.Name,
		Phone:    textOrNull(req.Phone),
		Notes:    textOrNull(req.Notes),
	})
	if err != nil {
		writeCustomerError(w, err, "update customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// Delete soft-deletes a customer. Past transactions keep the reference.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "pelanggan")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteCustomer(r.Context(), database.SoftDeleteCustomerParams{ID: id, BranchID: bid}); err != nil {
		writeCustomerError(w, err, "delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeCustomer reads the body and stores the phone in local 08xx form.
func decodeCustomer(w http.ResponseWriter, r *http.Request) (customerRequest, bool) {
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Phone == "" {
		return req, true
	}
	phone, ok := normalizePhone(req.Phone)
	if !ok {
		writeError(w, http.StatusBadRequest, "nomor telepon tidak valid")
		return req, false
	}
	req.Phone = phone
	return req, true
}

// normalizePhone turns "+62 812-3456-789", "62812..." and "0812..." into
// "0812...". It reports false when s is not a phone number.
func normalizePhone(s string) (string, bool) {
	var b strings.Builder
	for i, c := range strings.TrimSpace(s) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '+' && i == 0:
		case c == ' ' || c == '-' || c == '.' || c == '(' || c == ')':
		default:
			return "", false
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "62") {
		digits = "0" + digits[2:]
	}
	if len(digits) < 6 || len(digits) > 15 {
		return "", false
	}
	return digits, true
}

func writeCustomerError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, "pelanggan tidak ditemukan")
	case sqlerr.IsUniqueViolation(err, customerPhoneConstraint):
		writeError(w, http.StatusConflict, "nomor telepon sudah terdaftar di cabang ini")
	default:
		serverError(w, err, msg)
	}
}
