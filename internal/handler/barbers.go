package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BarberStore defines the database methods needed by barber handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BarberStore interface {
	ListBarbers(ctx context.Context, arg database.ListBarbersParams) ([]database.Barber, error)
	GetBarber(ctx context.Context, arg database.GetBarberParams) (database.Barber, error)
	CreateBarber(ctx context.Context, arg database.CreateBarberParams) (database.Barber, error)
	UpdateBarber(ctx context.Context, arg database.UpdateBarberParams) (database.Barber, error)
	DeactivateBarber(ctx context.Context, arg database.DeactivateBarberParams) (uuid.UUID, error)
}

// BarberHandler handles barber CRUD endpoints.
type BarberHandler struct {
	store BarberStore
}

func NewBarberHandler(store BarberStore) *BarberHandler {
	return &BarberHandler{store: store}
}

// RegisterRoutes registers the read endpoints on /branches/{bid}/barbers.
func (h *BarberHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers the write endpoints. Mount behind an
// OWNER/ADMIN guard.
func (h *BarberHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type barberRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	BaseSalary     string `json:"base_salary" validate:"required,money"`
	CommissionRate string `json:"commission_rate" validate:"required,money"`
	IsActive       *bool  `json:"is_active"`
}

type barberResponse struct {
	ID             uuid.UUID `json:"id"`
	BranchID       uuid.UUID `json:"branch_id"`
	Name           string    `json:"name"`
	Phone          *string   `json:"phone"`
	BaseSalary     string    `json:"base_salary"`
	CommissionRate string    `json:"commission_rate"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toBarberResponse(b database.Barber) barberResponse {
	return barberResponse{
		ID:             b.ID,
		BranchID:       b.BranchID,
		Name:           b.Name,
		Phone:          textPtr(b.Phone),
		BaseSalary:     money.String(b.BaseSalary),
		CommissionRate: money.String(b.CommissionRate),
		IsActive:       b.IsActive,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// --- Handlers ---

// List returns the branch's barbers. ?include_inactive=true adds former barbers.
func (h *BarberHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	barbers, err := h.store.ListBarbers(r.Context(), database.ListBarbersParams{
		BranchID:        bid,
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
	})
	if err != nil {
		serverError(w, err, "list barbers")
		return
	}

	resp := make([]barberResponse, len(barbers))
	for i, b := range barbers {
		resp[i] = toBarberResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BarberHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "barber")
	if !ok {
		return
	}

	barber, err := h.store.GetBarber(r.Context(), database.GetBarberParams{ID: id, BranchID: bid})
	if err != nil {
		writeBarberError(w, err, "get barber")
		return
	}
	writeJSON(w, http.StatusOK, toBarberResponse(barber))
}

func (h *BarberHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	var req barberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, ok := parseRate(w, "commission_rate", req.CommissionRate)
	if !ok {
		return
	}

	barber, err := h.store.CreateBarber(r.Context(), database.CreateBarberParams{
		BranchID:       bid,
		Name:           req.Name,
		Phone:          textOrNull(req.Phone),
		BaseSalary:     money.ToNumeric(parseAmount(req.BaseSalary)),
		CommissionRate: money.ToNumeric(rate),
	})
	if err != nil {
		serverError(w, err, "create barber")
		return
	}
	writeJSON(w, http.StatusCreated, toBarberResponse(barber))
}

// Update replaces a barber's fields. Salary periods already opened keep the
// base salary they were created with.
func (h *BarberHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "barber")
	if !ok {
		return
	}

	var req barberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, ok := parseRate(w, "commission_rate", req.CommissionRate)
	if !ok {
		return
	}

	current, err := h.store.GetBarber(r.Context(), database.GetBarberParams{ID: id, BranchID: bid})
	if err != nil {
		writeBarberError(w, err, "get barber")
		return
	}
	active := current.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	barber, err := h.store.UpdateBarber(r.Context(), database.UpdateBarberParams{
		ID:             id,
		BranchID:       bid,
		Name:           req.Name,
		Phone:          textOrNull(req.Phone),
		BaseSalary:     money.ToNumeric(parseAmount(req.BaseSalary)),
		CommissionRate: money.ToNumeric(rate),
		IsActive:       active,
	})
	if err != nil {
		writeBarberError(w, err, "update barber")
		return
	}
	writeJSON(w, http.StatusOK, toBarberResponse(barber))
}

// Delete deactivates a barber; past transactions keep referencing it.
func (h *BarberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "barber")
	if !ok {
		return
	}

	if _, err := h.store.DeactivateBarber(r.Context(), database.DeactivateBarberParams{ID: id, BranchID: bid}); err != nil {
		writeBarberError(w, err, "deactivate barber")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeBarberError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "barber tidak ditemukan")
		return
	}
	serverError(w, err, msg)
}
