package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/middleware"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	userEmailConstraint = "users_email_key"
	userPinConstraint   = "users_branch_pin_key"
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsersByBranch(ctx context.Context, branchID uuid.UUID) ([]database.User, error)
	GetUser(ctx context.Context, arg database.GetUserParams) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	UpdateUserPassword(ctx context.Context, arg database.UpdateUserPasswordParams) error
	SoftDeleteUser(ctx context.Context, arg database.SoftDeleteUserParams) (uuid.UUID, error)
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/users
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Put("/{id}/password", h.ChangePassword)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=OWNER ADMIN CASHIER"`
	Pin      string `json:"pin" validate:"omitempty,min=4,max=6,number"`
}

type updateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=OWNER ADMIN CASHIER"`
	Pin      string `json:"pin" validate:"omitempty,min=4,max=6,number"`
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	HasPin    bool      `json:"has_pin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserDetailResponse(u database.User) userDetailResponse {
	return userDetailResponse{
		ID:        u.ID,
		BranchID:  u.BranchID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		HasPin:    u.Pin.Valid,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Handlers ---

// List returns all active users for the given branch.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	users, err := h.store.ListUsersByBranch(r.Context(), bid)
	if err != nil {
		serverError(w, err, "list users")
		return
	}

	resp := make([]userDetailResponse, len(users))
	for i, u := range users {
		resp[i] = toUserDetailResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new user to the given branch.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !canAssignRole(r, req.Role) {
		writeError(w, http.StatusForbidden, "admin tidak dapat membuat pengguna OWNER")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, err, "hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		BranchID:       bid,
		Email:          req.Email,
		HashedPassword: string(hashed),
		FullName:       req.FullName,
		Role:           req.Role,
		Pin:            textOrNull(req.Pin),
	})
	if err != nil {
		writeUserError(w, err, "create user")
		return
	}

	writeJSON(w, http.StatusCreated, toUserDetailResponse(user))
}

// Update modifies an existing user in the given branch.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	userID, ok := urlUUID(w, r, "id", "pengguna")
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !canAssignRole(r, req.Role) {
		writeError(w, http.StatusForbidden, "admin tidak dapat menjadikan pengguna OWNER")
		return
	}
	if !h.canEdit(w, r, bid, userID) {
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:       userID,
		BranchID: bid,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		Pin:      textOrNull(req.Pin),
	})
	if err != nil {
		writeUserError(w, err, "update user")
		return
	}

	writeJSON(w, http.StatusOK, toUserDetailResponse(user))
}

// ChangePassword replaces a user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	userID, ok := urlUUID(w, r, "id", "pengguna")
	if !ok {
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.canEdit(w, r, bid, userID) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, err, "hash password")
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), database.UpdateUserPasswordParams{
		ID:             userID,
		BranchID:       bid,
		HashedPassword: string(hashed),
	}); err != nil {
		serverError(w, err, "update user password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete soft-deletes a user by setting is_active=false.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	userID, ok := urlUUID(w, r, "id", "pengguna")
	if !ok {
		return
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == userID {
		writeError(w, http.StatusBadRequest, "tidak dapat menghapus akun sendiri")
		return
	}
	if !h.canEdit(w, r, bid, userID) {
		return
	}

	_, err := h.store.SoftDeleteUser(r.Context(), database.SoftDeleteUserParams{
		ID:       userID,
		BranchID: bid,
	})
	if err != nil {
		writeUserError(w, err, "delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// canAssignRole reports whether the caller may give role to a user.
// Only an OWNER may create or promote another OWNER.
func canAssignRole(r *http.Request, role string) bool {
	if role != enum.UserRoleOwner {
		return true
	}
	claims := middleware.ClaimsFromContext(r.Context())
	return claims != nil && claims.Role == enum.UserRoleOwner
}

// canEdit loads the target user and stops an ADMIN from touching an OWNER.
func (h *UserHandler) canEdit(w http.ResponseWriter, r *http.Request, bid, userID uuid.UUID) bool {
	target, err := h.store.GetUser(r.Context(), database.GetUserParams{ID: userID, BranchID: bid})
	if err != nil {
		writeUserError(w, err, "get user")
		return false
	}
	if target.Role == enum.UserRoleOwner && !canAssignRole(r, enum.UserRoleOwner) {
		writeError(w, http.StatusForbidden, "admin tidak dapat mengubah pengguna OWNER")
		return false
	}
	return true
}

func writeUserError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		writeError(w, http.StatusNotFound, "pengguna tidak ditemukan")
	case sqlerr.IsUniqueViolation(err, userEmailConstraint):
		writeError(w, http.StatusConflict, "email sudah terdaftar")
	case sqlerr.IsUniqueViolation(err, userPinConstraint):
		writeError(w, http.StatusConflict, "PIN sudah dipakai pengguna lain di cabang ini")
	default:
		serverError(w, err, msg)
	}
}
