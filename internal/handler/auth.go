package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries. The user lookups only return active users.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByBranchAndPin(ctx context.Context, arg database.GetUserByBranchAndPinParams) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetBranch(ctx context.Context, id uuid.UUID) (database.Branch, error)
}

const (
	loginPassword = "password"
	loginPin      = "pin"
	loginRefresh  = "refresh"
)

// AuthHandler issues tokens for email/password, cashier PIN and refresh logins.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
	metrics   *metrics.Metrics
}

// NewAuthHandler creates an AuthHandler. m may be nil.
func NewAuthHandler(store AuthStore, jwtSecret string, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret, metrics: m}
}

// RegisterRoutes registers the public login endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.Post("/auth/pin-login", h.PinLogin)
	r.Post("/auth/refresh", h.Refresh)
}

// RegisterMeRoute registers GET /auth/me. Mount behind Authenticate.
func (h *AuthHandler) RegisterMeRoute(r chi.Router) {
	r.Get("/auth/me", h.Me)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type pinLoginRequest struct {
	BranchID string `json:"branch_id" validate:"required,uuid"`
	Pin      string `json:"pin" validate:"required,min=4,max=6,number"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         sessionResponse `json:"user"`
}

type sessionResponse struct {
	ID         uuid.UUID `json:"id"`
	BranchID   uuid.UUID `json:"branch_id"`
	BranchName string    `json:"branch_name"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
}

const (
	msgBadCredentials = "email atau password salah"
	msgBranchInactive = "cabang sudah tidak aktif"
)

var errBranchInactive = errors.New("branch inactive")

// --- Handlers ---

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.reject(w, r, loginPassword, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		serverError(w, err, "get user by email")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		h.reject(w, r, loginPassword, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	h.issue(w, r, loginPassword, user)
}

// PinLogin handles branch_id + PIN authentication for the cashier station.
// PINs are only unique within a branch.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	branchID := uuid.MustParse(req.BranchID)

	user, err := h.store.GetUserByBranchAndPin(r.Context(), database.GetUserByBranchAndPinParams{
		BranchID: branchID,
		Pin:      pgtype.Text{String: req.Pin, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.reject(w, r, loginPin, http.StatusUnauthorized, "PIN salah")
			return
		}
		serverError(w, err, "get user by pin")
		return
	}

	h.issue(w, r, loginPin, user)
}

// Refresh exchanges a valid refresh token for a new access + refresh token
// pair. Role and branch are re-read, so changes apply on the next refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		h.reject(w, r, loginRefresh, http.StatusUnauthorized, "refresh token tidak valid")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.reject(w, r, loginRefresh, http.StatusUnauthorized, "user tidak ditemukan")
			return
		}
		serverError(w, err, "get user by id")
		return
	}

	h.issue(w, r, loginRefresh, user)
}

// Me returns the logged in user with the branch name.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "belum login")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "user tidak ditemukan")
			return
		}
		serverError(w, err, "get user by id")
		return
	}

	branch, err := h.store.GetBranch(r.Context(), user.BranchID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		serverError(w, err, "get branch")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(user, branch))
}

// --- Helpers ---

// loginBranch loads the home branch of user. Staff of a deactivated branch
// cannot log in; OWNER can, since they manage every branch.
func (h *AuthHandler) loginBranch(ctx context.Context, user database.User) (database.Branch, error) {
	branch, err := h.store.GetBranch(ctx, user.BranchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) && user.Role == enum.UserRoleOwner {
			return database.Branch{}, nil
		}
		return database.Branch{}, err
	}
	if !branch.IsActive && user.Role != enum.UserRoleOwner {
		return database.Branch{}, errBranchInactive
	}
	return branch, nil
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, method string, user database.User) {
	branch, err := h.loginBranch(r.Context(), user)
	if err != nil {
		if errors.Is(err, errBranchInactive) || errors.Is(err, pgx.ErrNoRows) {
			h.reject(w, r, method, http.StatusForbidden, msgBranchInactive)
			return
		}
		serverError(w, err, "get login branch")
		return
	}

	accessToken, err := auth.GenerateToken(h.jwtSecret, user.ID, user.BranchID, user.Role)
	if err != nil {
		serverError(w, err, "generate access token")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		serverError(w, err, "generate refresh token")
		return
	}

	h.count(method, "ok")
	zerolog.Ctx(r.Context()).Info().
		Str("user_id", user.ID.String()).
		Str("role", user.Role).
		Str("method", method).
		Msg("user logged in")

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toSessionResponse(user, branch),
	})
}

func (h *AuthHandler) reject(w http.ResponseWriter, r *http.Request, method string, status int, msg string) {
	h.count(method, "rejected")
	zerolog.Ctx(r.Context()).Warn().Str("method", method).Int("status", status).Msg("login rejected")
	writeError(w, status, msg)
}

func (h *AuthHandler) count(method, result string) {
	if h.metrics != nil {
		h.metrics.Logins.WithLabelValues(method, result).Inc()
	}
}

func toSessionResponse(user database.User, branch database.Branch) sessionResponse {
	return sessionResponse{
		ID:         user.ID,
		BranchID:   user.BranchID,
		BranchName: branch.Name,
		FullName:   user.FullName,
		Email:      user.Email,
		Role:       user.Role,
	}
}
