package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CatalogStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListCatalogItems(ctx context.Context, arg database.ListCatalogItemsParams) ([]database.CatalogItem, error)
	GetCatalogItem(ctx context.Context, arg database.GetCatalogItemParams) (database.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, arg database.CreateCatalogItemParams) (database.CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, arg database.UpdateCatalogItemParams) (database.CatalogItem, error)
	DeactivateCatalogItem(ctx context.Context, arg database.DeactivateCatalogItemParams) (uuid.UUID, error)
}

// CatalogHandler handles the services and products sold at the POS.
type CatalogHandler struct {
	store CatalogStore
}

func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers the read endpoints on /branches/{bid}/catalog.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers the write endpoints. Mount behind an
// OWNER/ADMIN guard.
func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type catalogRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Kind  string `json:"kind" validate:"required,oneof=SERVICE PRODUCT"`
	Price string `json:"price" validate:"required,money"`
	// CommissionRate overrides the barber's rate when set.
	CommissionRate string `json:"commission_rate" validate:"omitempty,money"`
	IsActive       *bool  `json:"is_active"`
}

type catalogResponse struct {
	ID             uuid.UUID `json:"id"`
	BranchID       uuid.UUID `json:"branch_id"`
	Name           string    `json:"name"`
	Kind           string    `json:"kind"`
	Price          string    `json:"price"`
	CommissionRate *string   `json:"commission_rate"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCatalogResponse(c database.CatalogItem) catalogResponse {
	return catalogResponse{
		ID:             c.ID,
		BranchID:       c.BranchID,
		Name:           c.Name,
		Kind:           c.Kind,
		Price:          money.String(c.Price),
		CommissionRate: money.StringPtr(c.CommissionRate),
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// --- Handlers ---

// List returns catalog items, optionally filtered by ?kind=SERVICE|PRODUCT.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != enum.CatalogKindService && kind != enum.CatalogKindProduct {
		writeError(w, http.StatusBadRequest, "kind harus SERVICE atau PRODUCT")
		return
	}

	items, err := h.store.ListCatalogItems(r.Context(), database.ListCatalogItemsParams{
		BranchID:        bid,
		Kind:            textOrNull(kind),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
	})
	if err != nil {
		serverError(w, err, "list catalog items")
		return
	}

	resp := make([]catalogResponse, len(items))
	for i, c := range items {
		resp[i] = toCatalogResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	item, err := h.store.GetCatalogItem(r.Context(), database.GetCatalogItemParams{ID: id, BranchID: bid})
	if err != nil {
		writeCatalogError(w, err, "get catalog item")
		return
	}
	writeJSON(w, http.StatusOK, toCatalogResponse(item))
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	var req catalogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, ok := optionalRate(w, req.CommissionRate)
	if !ok {
		return
	}

	item, err := h.store.CreateCatalogItem(r.Context(), database.CreateCatalogItemParams{
		BranchID:       bid,
		Name:           req.Name,
		Kind:           req.Kind,
		Price:          money.ToNumeric(parseAmount(req.Price)),
		CommissionRate: rate,
	})
	if err != nil {
		serverError(w, err, "create catalog item")
		return
	}
	writeJSON(w, http.StatusCreated, toCatalogResponse(item))
}

// Update replaces an item. Prices on past transactions are not affected.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	var req catalogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, ok := optionalRate(w, req.CommissionRate)
	if !ok {
		return
	}

	current, err := h.store.GetCatalogItem(r.Context(), database.GetCatalogItemParams{ID: id, BranchID: bid})
	if err != nil {
		writeCatalogError(w, err, "get catalog item")
		return
	}
	active := current.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	item, err := h.store.UpdateCatalogItem(r.Context(), database.UpdateCatalogItemParams{
		ID:             id,
		BranchID:       bid,
		Name:           req.Name,
		Kind:           req.Kind,
		Price:          money.ToNumeric(parseAmount(req.Price)),
		CommissionRate: rate,
		IsActive:       active,
	})
	if err != nil {
		writeCatalogError(w, err, "update catalog item")
		return
	}
	writeJSON(w, http.StatusOK, toCatalogResponse(item))
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	if _, err := h.store.DeactivateCatalogItem(r.Context(), database.DeactivateCatalogItemParams{ID: id, BranchID: bid}); err != nil {
		writeCatalogError(w, err, "deactivate catalog item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionalRate turns an empty override into NULL.
func optionalRate(w http.ResponseWriter, s string) (pgtype.Numeric, bool) {
	if s == "" {
		return pgtype.Numeric{}, true
	}
	rate, ok := parseRate(w, "commission_rate", s)
	if !ok {
		return pgtype.Numeric{}, false
	}
	return money.ToNumeric(rate), true
}

func writeCatalogError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "item katalog tidak ditemukan")
		return
	}
	serverError(w, err, msg)
}
