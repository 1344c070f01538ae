package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BranchStore defines the database methods needed by branch handlers.
type BranchStore interface {
	CreateBranch(ctx context.Context, arg database.CreateBranchParams) (database.Branch, error)
	GetBranch(ctx context.Context, id uuid.UUID) (database.Branch, error)
	ListBranches(ctx context.Context, includeInactive bool) ([]database.Branch, error)
	UpdateBranch(ctx context.Context, arg database.UpdateBranchParams) (database.Branch, error)
}

// DefaultAccountEnsurer creates the per-kind default cash accounts of a branch.
// Satisfied by *service.CashflowService.
type DefaultAccountEnsurer interface {
	EnsureDefaultAccounts(ctx context.Context, branchID uuid.UUID) (int, error)
}

// BranchHandler handles branch CRUD endpoints. Mounted OWNER-only.
type BranchHandler struct {
	store    BranchStore
	accounts DefaultAccountEnsurer
}

func NewBranchHandler(store BranchStore, accounts DefaultAccountEnsurer) *BranchHandler {
	return &BranchHandler{store: store, accounts: accounts}
}

// RegisterRoutes registers the branch collection under /branches.
func (h *BranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// RegisterItemRoutes registers single-branch endpoints under /branches/{bid},
// sharing the sub-router that carries the branch-scoped resources.
func (h *BranchHandler) RegisterItemRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Delete("/", h.Delete)
}

// --- Request / Response types ---

type branchRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Address  string `json:"address" validate:"max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	IsActive *bool  `json:"is_active"`
}

type branchResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Phone     *string   `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBranchResponse(b database.Branch) branchResponse {
	return branchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   textPtr(b.Address),
		Phone:     textPtr(b.Phone),
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// --- Handlers ---

// List returns branches. ?include_inactive=true also lists closed branches.
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.store.ListBranches(r.Context(), r.URL.Query().Get("include_inactive") == "true")
	if err != nil {
		serverError(w, err, "list branches")
		return
	}

	resp := make([]branchResponse, len(branches))
	for i, b := range branches {
		resp[i] = toBranchResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create opens a branch together with its default cash accounts.
func (h *BranchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	branch, err := h.store.CreateBranch(r.Context(), database.CreateBranchParams{
		Name:    req.Name,
		Address: textOrNull(req.Address),
		Phone:   textOrNull(req.Phone),
	})
	if err != nil {
		serverError(w, err, "create branch")
		return
	}

	// The branch is already committed; a failure here is repaired by
	// POST /branches/{bid}/cash-accounts/defaults.
	if _, err := h.accounts.EnsureDefaultAccounts(r.Context(), branch.ID); err != nil {
		log.Error().Err(err).Str("branch_id", branch.ID.String()).Msg("ensure default accounts")
	}

	writeJSON(w, http.StatusCreated, toBranchResponse(branch))
}

func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "bid", "cabang")
	if !ok {
		return
	}

	branch, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		writeBranchError(w, err, "get branch")
		return
	}
	writeJSON(w, http.StatusOK, toBranchResponse(branch))
}

// Update replaces the branch fields. is_active is kept when omitted.
func (h *BranchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "bid", "cabang")
	if !ok {
		return
	}

	var req branchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		writeBranchError(w, err, "get branch")
		return
	}
	active := current.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}

	branch, err := h.store.UpdateBranch(r.Context(), database.UpdateBranchParams{
		ID:       id,
		Name:     req.Name,
		Address:  textOrNull(req.Address),
		Phone:    textOrNull(req.Phone),
		IsActive: active,
	})
	if err != nil {
		writeBranchError(w, err, "update branch")
		return
	}
	writeJSON(w, http.StatusOK, toBranchResponse(branch))
}

// Delete deactivates a branch. Its history stays intact.
func (h *BranchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "bid", "cabang")
	if !ok {
		return
	}

	current, err := h.store.GetBranch(r.Context(), id)
	if err != nil {
		writeBranchError(w, err, "get branch")
		return
	}

	_, err = h.store.UpdateBranch(r.Context(), database.UpdateBranchParams{
		ID:       id,
		Name:     current.Name,
		Address:  current.Address,
		Phone:    current.Phone,
		IsActive: false,
	})
	if err != nil {
		writeBranchError(w, err, "deactivate branch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeBranchError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "cabang tidak ditemukan")
		return
	}
	serverError(w, err, msg)
}
